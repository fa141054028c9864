package descriptor

import (
	"errors"
	"testing"
)

func TestNewTypeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "java.util.List", false},
		{"nested class", "java.util.Map$Entry", false},
		{"rewritten namespace", "j$.time.Instant", false},
		{"synthesized holder", "j$.util.Collection$-EL", false},
		{"default package", "Foo", false},
		{"empty", "", true},
		{"trailing dot", "java.util.", true},
		{"double dot", "java..util", true},
		{"leading digit", "1java.util", true},
		{"slash form", "java/util/List", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTypeName(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewTypeName(%q) expected error, got nil", tt.input)
				} else if !errors.Is(err, ErrInvalidTypeName) {
					t.Errorf("NewTypeName(%q) error %v does not wrap ErrInvalidTypeName", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTypeName(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.input {
				t.Errorf("NewTypeName(%q).String() = %q", tt.input, got.String())
			}
		})
	}
}

func TestTypeName_Parts(t *testing.T) {
	tn := MustTypeName("java.util.Map$Entry")
	if got := tn.Package(); got != "java.util" {
		t.Errorf("Package() = %q, want %q", got, "java.util")
	}
	if got := tn.SimpleName(); got != "Map$Entry" {
		t.Errorf("SimpleName() = %q, want %q", got, "Map$Entry")
	}
	if got := tn.BinaryName(); got != "java/util/Map$Entry" {
		t.Errorf("BinaryName() = %q, want %q", got, "java/util/Map$Entry")
	}
	if got := MustTypeName("Foo").Package(); got != "" {
		t.Errorf("Package() of default package type = %q, want empty", got)
	}
}

func TestValidatePrefix(t *testing.T) {
	valid := []string{"java.time.", "java.util.Optional", "j$.", "java"}
	for _, p := range valid {
		if err := ValidatePrefix(p); err != nil {
			t.Errorf("ValidatePrefix(%q) unexpected error: %v", p, err)
		}
	}
	invalid := []string{"", ".java", "java..time.", "java time"}
	for _, p := range invalid {
		if err := ValidatePrefix(p); err == nil {
			t.Errorf("ValidatePrefix(%q) expected error, got nil", p)
		}
	}
}

func TestIsSegmentAligned(t *testing.T) {
	tests := []struct {
		shorter, longer string
		want            bool
	}{
		{"java.util.", "java.util.stream.", true},
		{"java.util", "java.util.stream.", true},
		{"java.util.", "java.util.", true},
		{"java.util.Opt", "java.util.Optional", false},
		{"pkg.su", "pkg.sub.", false},
		{"java.time.", "java.util.", false},
	}
	for _, tt := range tests {
		if got := IsSegmentAligned(tt.shorter, tt.longer); got != tt.want {
			t.Errorf("IsSegmentAligned(%q, %q) = %v, want %v", tt.shorter, tt.longer, got, tt.want)
		}
	}
}

func TestPrefixCovers(t *testing.T) {
	tests := []struct {
		prefix, name string
		want         bool
	}{
		{"java.time.", "java.time.Instant", true},
		{"java.time", "java.time.Instant", true},
		{"java.util.Optional", "java.util.Optional", true},
		{"java.util.Map", "java.util.Map$Entry", true},
		{"java.util.Optional", "java.util.OptionalInt", true},
		{"java.util.Spliterator", "java.util.Spliterators", true},
		{"java.time.", "java.timeline.Clock", false},
		{"java.time.", "java.util.Date", false},
		{"", "java.util.Date", false},
	}
	for _, tt := range tests {
		if got := PrefixCovers(tt.prefix, tt.name); got != tt.want {
			t.Errorf("PrefixCovers(%q, %q) = %v, want %v", tt.prefix, tt.name, got, tt.want)
		}
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input     string
		wantSig   string
		wantParam int
		wantErr   bool
	}{
		{"java.util.Collection#removeIf(java.util.function.Predicate)boolean", "removeIf(java.util.function.Predicate)boolean", 1, false},
		{"java.util.Map#getOrDefault(java.lang.Object, java.lang.Object)java.lang.Object", "getOrDefault(java.lang.Object,java.lang.Object)java.lang.Object", 2, false},
		{"java.lang.Math#floorMod(int,int)int", "floorMod(int,int)int", 2, false},
		{"java.util.Arrays#stream(java.lang.Object[])java.util.stream.Stream", "stream(java.lang.Object[])java.util.stream.Stream", 1, false},
		{"java.util.Optional#<init>()", "<init>()", 0, false},
		{"removeIf(java.util.function.Predicate)boolean", "", 0, true},
		{"java.util.List#(int)void", "", 0, true},
		{"java.util.List#get(int", "", 0, true},
		{"java.util.List#get(in t)void", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := ParseMethod(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMethod(%q) expected error, got %v", tt.input, m)
				}
				if !errors.Is(err, ErrInvalidMethod) {
					t.Errorf("ParseMethod(%q) error %v does not wrap ErrInvalidMethod", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMethod(%q) unexpected error: %v", tt.input, err)
			}
			if got := m.Signature(); got != tt.wantSig {
				t.Errorf("Signature() = %q, want %q", got, tt.wantSig)
			}
			if len(m.Params) != tt.wantParam {
				t.Errorf("len(Params) = %d, want %d", len(m.Params), tt.wantParam)
			}
		})
	}
}

func TestMethod_StringRoundTrip(t *testing.T) {
	in := "java.util.Date#toInstant()java.time.Instant"
	m := MustMethod(in)
	if m.String() != in {
		t.Errorf("String() = %q, want %q", m.String(), in)
	}
	again := MustMethod(m.String())
	if again.String() != in {
		t.Errorf("re-parsed String() = %q, want %q", again.String(), in)
	}
}

func TestMethod_WithHolder(t *testing.T) {
	m := MustMethod("java.util.Collection#removeIf(java.util.function.Predicate)boolean")
	moved := m.WithHolder("j$.util.Collection")
	if moved.Holder != "j$.util.Collection" {
		t.Errorf("Holder = %q", moved.Holder)
	}
	if m.Holder != "java.util.Collection" {
		t.Errorf("WithHolder mutated the receiver: %q", m.Holder)
	}
	if moved.Signature() != m.Signature() {
		t.Errorf("Signature changed: %q vs %q", moved.Signature(), m.Signature())
	}
	if !MustMethod("java.util.Optional#<init>()").IsConstructor() {
		t.Error("IsConstructor() = false for <init>")
	}
}
