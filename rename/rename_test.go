package rename

import (
	"sync"
	"testing"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/spec"
)

func testSpec(t *testing.T) *spec.Validated {
	t.Helper()
	b := spec.NewBuilder()
	for _, r := range [][2]string{
		{"java.time.", "j$.time."},
		{"java.util.", "j$.util."},
		{"java.util.concurrent.", "j$.util.concurrent."},
		{"java.util.Optional", "j$.util.Optional"},
	} {
		if err := b.PutRewritePrefix(r[0], r[1]); err != nil {
			t.Fatal(err)
		}
	}
	for _, m := range []string{"java.time.chrono.", "java.util.concurrent.locks.", "java.util.Date"} {
		if err := b.PutMaintainPrefix(m); err != nil {
			t.Fatal(err)
		}
	}
	v, err := spec.Validate(b.Freeze(), nil)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	return v
}

func TestResolve(t *testing.T) {
	v := testSpec(t)
	tests := []struct {
		input        string
		wantKind     Kind
		wantName     string
		wantRule     string
		wantMaintain string
	}{
		{"java.time.Instant", Renamed, "j$.time.Instant", "java.time.", ""},
		{"java.time.format.DateTimeFormatter", Renamed, "j$.time.format.DateTimeFormatter", "java.time.", ""},
		{"java.time.chrono.ChronoLocalDate", Unchanged, "java.time.chrono.ChronoLocalDate", "java.time.", "java.time.chrono."},
		{"java.util.concurrent.ConcurrentHashMap", Renamed, "j$.util.concurrent.ConcurrentHashMap", "java.util.concurrent.", ""},
		{"java.util.concurrent.locks.StampedLock", Unchanged, "java.util.concurrent.locks.StampedLock", "java.util.concurrent.", "java.util.concurrent.locks."},
		{"java.util.Optional", Renamed, "j$.util.Optional", "java.util.Optional", ""},
		{"java.util.OptionalInt", Renamed, "j$.util.OptionalInt", "java.util.Optional", ""},
		{"java.util.Date", Unchanged, "java.util.Date", "java.util.", "java.util.Date"},
		{"java.util.Map$Entry", Renamed, "j$.util.Map$Entry", "java.util.", ""},
		{"java.lang.String", Unchanged, "java.lang.String", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := Resolve(descriptor.TypeName(tt.input), v)
			if d.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", d.Kind, tt.wantKind)
			}
			if string(d.Name) != tt.wantName {
				t.Errorf("Name = %q, want %q", d.Name, tt.wantName)
			}
			if d.Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", d.Rule, tt.wantRule)
			}
			if d.MaintainedBy != tt.wantMaintain {
				t.Errorf("MaintainedBy = %q, want %q", d.MaintainedBy, tt.wantMaintain)
			}
		})
	}
}

func TestResolve_MaintainedLessSpecificThanRewrite(t *testing.T) {
	b := spec.NewBuilder()
	_ = b.PutRewritePrefix("java.util.stream.", "j$.util.stream.")
	_ = b.PutMaintainPrefix("java.util.")
	v := spec.MustValidate(b.Freeze())

	d := Resolve("java.util.stream.Stream", v)
	if !d.IsRenamed() || d.Name != "j$.util.stream.Stream" {
		t.Errorf("Resolve() = %+v, want renamed to j$.util.stream.Stream", d)
	}
	if d := Resolve("java.util.List", v); d.IsRenamed() {
		t.Errorf("Resolve(java.util.List) = %+v, want unchanged", d)
	}
}

func TestResolve_ClassNamePrefixes(t *testing.T) {
	b := spec.NewBuilder()
	for _, r := range [][2]string{
		{"java.util.Optional", "j$.util.Optional"},
		{"java.util.Desugar", "j$.util.Desugar"},
		{"java.util.Spliterator", "j$.util.Spliterator"},
	} {
		if err := b.PutRewritePrefix(r[0], r[1]); err != nil {
			t.Fatal(err)
		}
	}
	v := spec.MustValidate(b.Freeze())

	tests := []struct {
		input    string
		wantName string
		wantRule string
	}{
		{"java.util.Optional", "j$.util.Optional", "java.util.Optional"},
		{"java.util.OptionalInt", "j$.util.OptionalInt", "java.util.Optional"},
		{"java.util.DesugarArrays", "j$.util.DesugarArrays", "java.util.Desugar"},
		{"java.util.Spliterators", "j$.util.Spliterators", "java.util.Spliterator"},
		{"java.util.Spliterator$OfInt", "j$.util.Spliterator$OfInt", "java.util.Spliterator"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := Resolve(descriptor.TypeName(tt.input), v)
			if !d.IsRenamed() || string(d.Name) != tt.wantName || d.Rule != tt.wantRule {
				t.Errorf("Resolve(%q) = %+v, want renamed to %q by %q", tt.input, d, tt.wantName, tt.wantRule)
			}
		})
	}

	if d := Resolve("java.util.List", v); d.IsRenamed() {
		t.Errorf("Resolve(java.util.List) = %+v, want unchanged", d)
	}
}

func TestResolver_Deterministic(t *testing.T) {
	v := testSpec(t)
	cached, err := New(v)
	if err != nil {
		t.Fatal(err)
	}
	uncached, err := New(v, WithCacheSize(0))
	if err != nil {
		t.Fatal(err)
	}

	names := []descriptor.TypeName{"java.time.Instant", "java.time.chrono.IsoEra", "java.util.Optional", "java.lang.Object"}
	for _, n := range names {
		first := cached.Resolve(n)
		second := cached.Resolve(n)
		plain := uncached.Resolve(n)
		if first != second || first != plain || first != Resolve(n, v) {
			t.Errorf("Resolve(%q) not deterministic: %+v / %+v / %+v", n, first, second, plain)
		}
	}
	if cached.Spec() != v {
		t.Error("Spec() returned a different specification")
	}
}

func TestResolver_Concurrent(t *testing.T) {
	r, err := New(testSpec(t), WithCacheSize(2))
	if err != nil {
		t.Fatal(err)
	}
	names := []descriptor.TypeName{"java.time.Instant", "java.util.List", "java.time.chrono.IsoEra", "java.util.Date"}
	want := make([]Decision, len(names))
	for i, n := range names {
		want[i] = r.Resolve(n)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				idx := i % len(names)
				if got := r.Resolve(names[idx]); got != want[idx] {
					t.Errorf("Resolve(%q) = %+v, want %+v", names[idx], got, want[idx])
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestWithCacheSize_Negative(t *testing.T) {
	if _, err := New(testSpec(t), WithCacheSize(-1)); err == nil {
		t.Error("New() with negative cache size expected error")
	}
}

func TestResolver_RenameMethod(t *testing.T) {
	r, err := New(testSpec(t))
	if err != nil {
		t.Fatal(err)
	}
	m := descriptor.MustMethod("java.util.Collection#toArray(java.time.Instant[],int)java.util.stream.Stream")
	got := r.RenameMethod(m)
	want := "j$.util.Collection#toArray(j$.time.Instant[],int)j$.util.stream.Stream"
	if got.String() != want {
		t.Errorf("RenameMethod() = %q, want %q", got, want)
	}
	if m.String() != "java.util.Collection#toArray(java.time.Instant[],int)java.util.stream.Stream" {
		t.Errorf("RenameMethod() mutated its argument: %q", m)
	}
}

func TestDecision_String(t *testing.T) {
	tests := []struct {
		d    Decision
		want string
	}{
		{Decision{Kind: Renamed, Name: "j$.time.Instant", Rule: "java.time."}, `renamed to j$.time.Instant (rewrite "java.time.")`},
		{Decision{Kind: Unchanged, Name: "java.time.chrono.IsoEra", MaintainedBy: "java.time.chrono."}, `unchanged (maintained "java.time.chrono.")`},
		{Decision{Kind: Unchanged, Name: "java.lang.Object"}, "unchanged"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
