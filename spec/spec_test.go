package spec

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
)

func TestBuilder_PutRewritePrefix(t *testing.T) {
	b := NewBuilder()
	if err := b.PutRewritePrefix("java.time.", "j$.time."); err != nil {
		t.Fatalf("PutRewritePrefix() unexpected error: %v", err)
	}
	if err := b.PutRewritePrefix("java.util.stream.", "j$.util.stream."); err != nil {
		t.Fatalf("PutRewritePrefix() unexpected error: %v", err)
	}

	err := b.PutRewritePrefix("java.time.", "j$.time.")
	var dup *DuplicateRuleError
	if !errors.As(err, &dup) {
		t.Fatalf("duplicate PutRewritePrefix() error = %v, want *DuplicateRuleError", err)
	}
	if dup.Key != "java.time." || dup.Section != SectionRewritePrefix {
		t.Errorf("DuplicateRuleError = %+v", dup)
	}
	if !errors.Is(err, ErrInvalidSpecification) {
		t.Error("DuplicateRuleError does not match ErrInvalidSpecification")
	}

	s := b.Freeze()
	want := []RewriteRule{
		{Source: "java.time.", Destination: "j$.time."},
		{Source: "java.util.stream.", Destination: "j$.util.stream."},
	}
	if diff := cmp.Diff(want, s.RewriteRules()); diff != "" {
		t.Errorf("RewriteRules() mismatch (-want +got):\n%s", diff)
	}
	if dst, ok := s.RewriteDestination("java.time."); !ok || dst != "j$.time." {
		t.Errorf("RewriteDestination() = %q, %v", dst, ok)
	}
}

func TestBuilder_RejectsMalformedPrefix(t *testing.T) {
	b := NewBuilder()
	if err := b.PutRewritePrefix("java..time.", "j$.time."); !errors.Is(err, descriptor.ErrInvalidTypeName) {
		t.Errorf("PutRewritePrefix(malformed) error = %v, want ErrInvalidTypeName", err)
	}
	if err := b.PutMaintainPrefix(""); err == nil {
		t.Error("PutMaintainPrefix(\"\") expected error, got nil")
	}
}

func TestBuilder_FrozenMutators(t *testing.T) {
	b := NewBuilder()
	_ = b.PutRewritePrefix("java.time.", "j$.time.")
	s := b.Freeze()
	if again := b.Freeze(); again != s {
		t.Error("second Freeze() returned a different specification")
	}

	calls := map[string]func() error{
		"PutRewritePrefix":  func() error { return b.PutRewritePrefix("java.nio.", "j$.nio.") },
		"PutMaintainPrefix": func() error { return b.PutMaintainPrefix("java.time.chrono.") },
		"PutRetargetMethod": func() error {
			return b.PutRetargetMethod(MethodRule{
				Method:      descriptor.MustMethod("java.util.Date#toInstant()java.time.Instant"),
				Replacement: descriptor.MustMethod("j$.util.DesugarDate#toInstant(java.util.Date)j$.time.Instant"),
			})
		},
		"PutBackportMethod": func() error {
			return b.PutBackportMethod(MethodRule{
				Method:      descriptor.MustMethod("java.lang.Math#floorMod(int,int)int"),
				Replacement: descriptor.MustMethod("j$.lang.DesugarMath#floorMod(int,int)int"),
			})
		},
		"PutEmulatedInterface": func() error {
			return b.PutEmulatedInterface(EmulatedInterface{Interface: "java.util.List", Companion: "j$.util.List"})
		},
		"SetMetadata": func() error { return b.SetMetadata(Metadata{Identifier: "x"}) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			var frozen *FrozenSpecificationError
			if !errors.As(err, &frozen) {
				t.Fatalf("%s after Freeze() error = %v, want *FrozenSpecificationError", name, err)
			}
			if frozen.Operation != name {
				t.Errorf("Operation = %q, want %q", frozen.Operation, name)
			}
			if !errors.Is(err, ErrFrozen) {
				t.Error("error does not match ErrFrozen")
			}
		})
	}

	if got := len(s.RewriteRules()); got != 1 {
		t.Errorf("frozen specification changed: %d rewrite rules", got)
	}
}

func TestBuilder_MaintainPrefixIsASet(t *testing.T) {
	b := NewBuilder()
	for _, p := range []string{"java.util.function.", "java.time.chrono.", "java.util.function."} {
		if err := b.PutMaintainPrefix(p); err != nil {
			t.Fatalf("PutMaintainPrefix(%q) unexpected error: %v", p, err)
		}
	}
	s := b.Freeze()
	want := []string{"java.util.function.", "java.time.chrono."}
	if diff := cmp.Diff(want, s.MaintainedPrefixes()); diff != "" {
		t.Errorf("MaintainedPrefixes() mismatch (-want +got):\n%s", diff)
	}
	if !s.IsMaintained("java.time.chrono.") || s.IsMaintained("java.time.") {
		t.Error("IsMaintained() returned wrong answers")
	}
}

func TestBuilder_MethodRules(t *testing.T) {
	b := NewBuilder()
	rule := MethodRule{
		Method:      descriptor.MustMethod("java.util.Date#toInstant()java.time.Instant"),
		Replacement: descriptor.MustMethod("j$.util.DesugarDate#toInstant(java.util.Date)j$.time.Instant"),
		MinAPILevel: 24,
	}
	if err := b.PutRetargetMethod(rule); err != nil {
		t.Fatalf("PutRetargetMethod() unexpected error: %v", err)
	}
	err := b.PutRetargetMethod(rule)
	var dup *DuplicateRuleError
	if !errors.As(err, &dup) || dup.Section != SectionRetargetMethod {
		t.Fatalf("duplicate PutRetargetMethod() error = %v", err)
	}
	if err := b.PutBackportMethod(MethodRule{Method: rule.Method}); err == nil {
		t.Error("PutBackportMethod() without replacement expected error")
	}

	s := b.Freeze()
	got, ok := s.Retarget(descriptor.MustMethod("java.util.Date#toInstant()java.time.Instant"))
	if !ok {
		t.Fatal("Retarget() not found")
	}
	if got.Replacement.String() != rule.Replacement.String() {
		t.Errorf("Retarget().Replacement = %s", got.Replacement)
	}
	if got.AppliesAt(21) || !got.AppliesAt(24) || !got.AppliesAt(30) {
		t.Error("AppliesAt() does not honour MinAPILevel")
	}
	if !(MethodRule{}).AppliesAt(1) {
		t.Error("unguarded rule must apply at every level")
	}
	if _, ok := s.Backport(rule.Method); ok {
		t.Error("Backport() found a retarget rule")
	}
}

func TestBuilder_EmulatedInterface(t *testing.T) {
	b := NewBuilder()
	e := EmulatedInterface{
		Interface: "java.util.Collection",
		Companion: "j$.util.Collection",
		Defaults: []DefaultMethod{
			{Signature: "stream()java.util.stream.Stream", Forwarder: descriptor.MustMethod("j$.util.Collection$-EL#stream(java.util.Collection)j$.util.stream.Stream")},
			{Signature: "removeIf(java.util.function.Predicate)boolean", Forwarder: descriptor.MustMethod("j$.util.Collection$-EL#removeIf(java.util.Collection,java.util.function.Predicate)boolean")},
		},
	}
	if err := b.PutEmulatedInterface(e); err != nil {
		t.Fatalf("PutEmulatedInterface() unexpected error: %v", err)
	}
	if err := b.PutEmulatedInterface(e); err == nil {
		t.Error("duplicate PutEmulatedInterface() expected error")
	}

	bad := EmulatedInterface{
		Interface: "java.util.List",
		Companion: "j$.util.List",
		Defaults: []DefaultMethod{
			{Signature: "sort(java.util.Comparator)void"},
			{Signature: "sort(java.util.Comparator)void"},
		},
	}
	var dup *DuplicateRuleError
	if err := b.PutEmulatedInterface(bad); !errors.As(err, &dup) || dup.Section != SectionEmulatedDefault {
		t.Errorf("duplicate default signature error = %v", err)
	}

	s := b.Freeze()
	got, ok := s.EmulatedInterface("java.util.Collection")
	if !ok {
		t.Fatal("EmulatedInterface() not found")
	}
	if got.Defaults[0].Signature != "removeIf(java.util.function.Predicate)boolean" {
		t.Errorf("Defaults not sorted: %v", got.Defaults)
	}
	if _, ok := got.Default("stream()java.util.stream.Stream"); !ok {
		t.Error("Default(stream) not found")
	}
	if _, ok := got.Default("spliterator()java.util.Spliterator"); ok {
		t.Error("Default(spliterator) unexpectedly found")
	}
	if s.IsEmulated("java.util.List") {
		t.Error("rejected interface was recorded")
	}
}

func TestSpecification_AccessorsReturnCopies(t *testing.T) {
	b := NewBuilder()
	_ = b.PutRewritePrefix("java.time.", "j$.time.")
	_ = b.PutMaintainPrefix("java.time.chrono.")
	s := b.Freeze()

	rules := s.RewriteRules()
	rules[0].Destination = "tampered."
	maintained := s.MaintainedPrefixes()
	maintained[0] = "tampered."

	if dst, _ := s.RewriteDestination("java.time."); dst != "j$.time." {
		t.Errorf("RewriteDestination() = %q after caller mutation", dst)
	}
	if s.MaintainedPrefixes()[0] != "java.time.chrono." {
		t.Error("MaintainedPrefixes() exposed internal state")
	}
	if s.IsEmpty() {
		t.Error("IsEmpty() = true for non-empty specification")
	}
	if !NewBuilder().Freeze().IsEmpty() {
		t.Error("IsEmpty() = false for empty specification")
	}
}
