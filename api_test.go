package libdesugar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/go-libdesugar/catalog"
	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/diag"
	"github.com/albertocavalcante/go-libdesugar/document"
	"github.com/albertocavalcante/go-libdesugar/emulated"
	"github.com/albertocavalcante/go-libdesugar/hierarchy"
	"github.com/albertocavalcante/go-libdesugar/spec"
)

func loadTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	session, err := LoadFile(filepath.Join("testdata", "desugar.json"), opts...)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	return session
}

func loadClasses(t *testing.T) hierarchy.MapProvider {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "classes.json"))
	if err != nil {
		t.Fatal(err)
	}
	var classes []hierarchy.ClassInfo
	if err := json.Unmarshal(data, &classes); err != nil {
		t.Fatal(err)
	}
	return hierarchy.NewMapProvider(classes...)
}

func TestLoadFile(t *testing.T) {
	session := loadTestSession(t, WithMinAPILevel(21))

	if got := session.MinAPILevel(); got != 21 {
		t.Errorf("MinAPILevel() = %d, want 21", got)
	}
	meta := session.Specification().Metadata()
	if meta.Identifier != "com.example:desugar_jdk_libs:1.0.0" {
		t.Errorf("Identifier = %q", meta.Identifier)
	}
	if len(session.Diagnostics()) != 0 {
		t.Errorf("Diagnostics() = %v, want none", session.Diagnostics())
	}

	// common_flags and library_flags apply at 21, program_flags do not.
	s := session.Specification()
	if len(s.RetargetRules()) != 1 {
		t.Errorf("RetargetRules() = %v, want 1 rule", s.RetargetRules())
	}
	if len(s.BackportRules()) != 1 {
		t.Errorf("BackportRules() = %v, want 1 rule", s.BackportRules())
	}
	if s.IsMaintained("java.util.stream.Collectors") {
		t.Error("program flags applied in library mode")
	}
}

func TestLoad_ModeAndLevel(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "desugar.json"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		opts           []Option
		wantRetarget   int
		wantBackport   int
		wantCollectors bool
	}{
		{"library 21", []Option{WithMinAPILevel(21)}, 1, 1, false},
		{"library 24", []Option{WithMinAPILevel(24)}, 1, 0, false},
		{"program 30", []Option{WithMinAPILevel(30), WithMode(document.ModeProgram)}, 0, 0, true},
		{"program 34", []Option{WithMinAPILevel(34), WithMode(document.ModeProgram)}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := Load(data, document.FormatJSON, tt.opts...)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			s := session.Specification()
			if got := len(s.RetargetRules()); got != tt.wantRetarget {
				t.Errorf("len(RetargetRules()) = %d, want %d", got, tt.wantRetarget)
			}
			if got := len(s.BackportRules()); got != tt.wantBackport {
				t.Errorf("len(BackportRules()) = %d, want %d", got, tt.wantBackport)
			}
			if got := s.IsMaintained("java.util.stream.Collectors"); got != tt.wantCollectors {
				t.Errorf("IsMaintained(Collectors) = %v, want %v", got, tt.wantCollectors)
			}
		})
	}
}

func TestLoad_InvalidSpecification(t *testing.T) {
	doc := `{
  "rewrite_prefix": {
    "java.util.": "j$.util."
  },
  "maintain_prefix": ["java.util."]
}`
	var c diag.Collector
	_, err := Load([]byte(doc), document.FormatJSON, WithDiagnostics(&c))
	if err == nil {
		t.Fatal("Load() succeeded, want error")
	}
	if !errors.Is(err, ErrInvalidSpecification) {
		t.Errorf("errors.Is(err, ErrInvalidSpecification) = false: %v", err)
	}
	if !c.HasErrors() {
		t.Error("diagnostic sink saw no errors")
	}
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load([]byte(`{"rewrite_prefix": `), document.FormatJSON)
	if err == nil {
		t.Fatal("Load() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "parse specification") {
		t.Errorf("error = %v, want parse context", err)
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want os.ErrNotExist", err)
	}
}

func TestOpen_Warnings(t *testing.T) {
	b := spec.NewBuilder()
	if err := b.PutRewritePrefix("java.time.", "j$.time."); err != nil {
		t.Fatal(err)
	}
	if err := b.PutMaintainPrefix("java.nio."); err != nil {
		t.Fatal(err)
	}

	var external diag.Collector
	session, err := Open(b.Freeze(), WithDiagnostics(&external))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got := session.Diagnostics()
	if len(got) != 1 {
		t.Fatalf("Diagnostics() = %v, want 1 warning", got)
	}
	if got[0].Code != diag.CodeUnenclosedMaintain || got[0].Severity != diag.SeverityWarning {
		t.Errorf("Diagnostics()[0] = %+v", got[0])
	}
	if len(external.Warnings()) != 1 {
		t.Errorf("external sink saw %d warnings, want 1", len(external.Warnings()))
	}
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"negative api level", WithMinAPILevel(-1)},
		{"negative cache size", WithRenameCacheSize(-1)},
		{"negative workers", WithWorkers(-2)},
		{"unknown tie-break", WithTieBreak(emulated.TieBreakPolicy(9))},
		{"unknown mode", WithMode(document.Mode(7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(spec.NewBuilder().Freeze(), tt.opt); err == nil {
				t.Error("Open() succeeded, want option error")
			}
		})
	}
}

func TestSession_Rename(t *testing.T) {
	session := loadTestSession(t, WithMinAPILevel(21))

	tests := []struct {
		name        string
		in          descriptor.TypeName
		want        descriptor.TypeName
		wantRenamed bool
	}{
		{"rewritten", "java.time.Instant", "j$.time.Instant", true},
		{"nested", "java.util.stream.Stream$Builder", "j$.util.stream.Stream$Builder", true},
		{"maintained", "java.time.zone.ZoneRules", "java.time.zone.ZoneRules", false},
		{"unrelated", "java.lang.String", "java.lang.String", false},
		{"mid-segment", "java.timeline.Clock", "java.timeline.Clock", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := session.Rename(tt.in)
			if d.Name != tt.want || d.IsRenamed() != tt.wantRenamed {
				t.Errorf("Rename(%q) = %+v, want %q (renamed=%v)", tt.in, d, tt.want, tt.wantRenamed)
			}
		})
	}
}

func TestSession_Plan(t *testing.T) {
	session := loadTestSession(t, WithMinAPILevel(21), WithWorkers(2))

	plans, err := session.Plan(context.Background(), loadClasses(t), "com.example.Bag", "com.example.FilteringBag")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("len(plans) = %d, want 2", len(plans))
	}

	bag := plans[0]
	wantCompanions := []emulated.Companion{{Interface: "java.util.Collection", Companion: "j$.util.Collection"}}
	if d := cmp.Diff(wantCompanions, bag.AdditionalInterfaces); d != "" {
		t.Errorf("AdditionalInterfaces mismatch (-want +got):\n%s", d)
	}
	fwd, ok := bag.Forwarder("removeIf(java.util.function.Predicate)boolean")
	if !ok {
		t.Fatalf("no removeIf forwarder in %s", bag)
	}
	if fwd.Source != emulated.SourceLibrary {
		t.Errorf("Source = %q, want %q", fwd.Source, emulated.SourceLibrary)
	}
	wantTarget := "j$.util.Collection$-EL#removeIf(java.util.Collection,java.util.function.Predicate)boolean"
	if fwd.Target.String() != wantTarget {
		t.Errorf("Target = %s, want %s", fwd.Target, wantTarget)
	}

	// The subclass inherits the companion through Bag's own plan.
	if !plans[1].IsEmpty() {
		t.Errorf("FilteringBag plan = %s, want empty", plans[1])
	}
}

func TestSession_Plan_UnknownClass(t *testing.T) {
	session := loadTestSession(t)

	_, err := session.Plan(context.Background(), loadClasses(t), "com.example.Nope")
	if err == nil {
		t.Fatal("Plan() succeeded for an unknown class")
	}
	if !strings.Contains(err.Error(), "com.example.Nope") {
		t.Errorf("error = %v, want class name", err)
	}
}

func TestSession_Catalog(t *testing.T) {
	session := loadTestSession(t, WithMinAPILevel(21))

	f, err := os.Open(filepath.Join("testdata", "surface.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	surface, err := catalog.LoadSurface(f)
	if err != nil {
		t.Fatalf("LoadSurface() error = %v", err)
	}

	c, err := session.Catalog(context.Background(), surface)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	want := []string{
		"java.lang.Math#floorMod(long,int)int",
		"java.time.Instant",
		"java.util.Collection",
		"java.util.Date",
	}
	if d := cmp.Diff(want, c.Entries()); d != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", d)
	}

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != len(want) {
		t.Errorf("WriteTo() wrote %d lines, want %d", got, len(want))
	}
}

func TestSession_Export(t *testing.T) {
	session := loadTestSession(t, WithMinAPILevel(21))

	data, err := session.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	again, err := Load(data, document.FormatJSON, WithMinAPILevel(21))
	if err != nil {
		t.Fatalf("Load(Export()) error = %v", err)
	}
	if diff := DiffSpecifications(session.Specification(), again.Specification()); !diff.IsEmpty() {
		t.Errorf("export round trip changed rules:\n%s", diff)
	}
}
