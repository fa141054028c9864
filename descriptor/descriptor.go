// Package descriptor provides validated type names and method references for
// library types as they appear in a desugared library specification.
//
// Type names use the dotted binary form ("java.util.Map$Entry"). Method
// references use the form holder#name(argType,argType)returnType, for example
//
//	java.util.Collection#removeIf(java.util.function.Predicate)boolean
//
// All values are immutable once constructed. Zero values are invalid unless
// documented otherwise.
package descriptor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidTypeName indicates a malformed dotted type name or prefix.
	ErrInvalidTypeName = errors.New("invalid type name")

	// ErrInvalidMethod indicates a malformed method reference.
	ErrInvalidMethod = errors.New("invalid method reference")
)

// Segment characters follow JVM binary names; '-' shows up in synthesized
// holders such as "j$.util.Collection$-EL".
const segment = `[A-Za-z_$][A-Za-z0-9_$\-]*`

var (
	typeNameRegex   = regexp.MustCompile(`^` + segment + `(\.` + segment + `)*$`)
	prefixRegex     = regexp.MustCompile(`^` + segment + `(\.` + segment + `)*\.?$`)
	paramTypeRegex  = regexp.MustCompile(`^` + segment + `(\.` + segment + `)*(\[\])*$`)
	methodNameRegex = regexp.MustCompile(`^(<init>|<clinit>|[A-Za-z_$][A-Za-z0-9_$\-]*)$`)
)

// TypeName is a dotted, fully-qualified type name.
type TypeName string

// NewTypeName validates s as a dotted type name.
func NewTypeName(s string) (TypeName, error) {
	if s == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidTypeName)
	}
	if !typeNameRegex.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTypeName, s)
	}
	return TypeName(s), nil
}

// MustTypeName creates a TypeName or panics. Use only for constants/tests.
func MustTypeName(s string) TypeName {
	t, err := NewTypeName(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the dotted name.
func (t TypeName) String() string {
	return string(t)
}

// Package returns the dotted package of t, or "" for the default package.
func (t TypeName) Package() string {
	if i := strings.LastIndexByte(string(t), '.'); i >= 0 {
		return string(t[:i])
	}
	return ""
}

// SimpleName returns the last dotted segment of t.
func (t TypeName) SimpleName() string {
	if i := strings.LastIndexByte(string(t), '.'); i >= 0 {
		return string(t[i+1:])
	}
	return string(t)
}

// BinaryName returns t in slash-separated internal form ("java/util/List").
func (t TypeName) BinaryName() string {
	return strings.ReplaceAll(string(t), ".", "/")
}

// ValidatePrefix checks that p is a well-formed rewrite or maintain prefix.
// A prefix is a dotted name that may end with a trailing '.' (a package
// prefix) or stop inside a segment (a class-name prefix).
func ValidatePrefix(p string) error {
	if p == "" {
		return fmt.Errorf("%w: prefix cannot be empty", ErrInvalidTypeName)
	}
	if !prefixRegex.MatchString(p) {
		return fmt.Errorf("%w: prefix %q", ErrInvalidTypeName, p)
	}
	return nil
}

// IsSegmentAligned reports whether longer extends shorter at a '.' segment
// boundary. It returns false when shorter is not a prefix of longer.
//
//	IsSegmentAligned("java.util.", "java.util.stream.")  // true
//	IsSegmentAligned("java.util", "java.util.stream.")   // true
//	IsSegmentAligned("java.util.Opt", "java.util.Optional") // false
func IsSegmentAligned(shorter, longer string) bool {
	if !strings.HasPrefix(longer, shorter) {
		return false
	}
	if len(shorter) == len(longer) || strings.HasSuffix(shorter, ".") {
		return true
	}
	return longer[len(shorter)] == '.'
}

// PrefixCovers reports whether a rewrite or maintain prefix applies to the
// type name. A package prefix ends in '.' and covers every name below it. A
// class-name prefix covers every name that starts with it, so
// "java.util.Optional" covers "java.util.OptionalInt" and
// "java.util.Optional$Builder".
func PrefixCovers(prefix, name string) bool {
	return prefix != "" && strings.HasPrefix(name, prefix)
}

// Method identifies a method declared by a holder type.
type Method struct {
	Holder TypeName
	Name   string
	Params []TypeName
	Return TypeName
}

// ParseMethod parses a method reference of the form
// holder#name(argType,argType)returnType. The return type may be omitted for
// constructors ("java.util.Optional#<init>()").
func ParseMethod(s string) (Method, error) {
	hash := strings.IndexByte(s, '#')
	if hash <= 0 {
		return Method{}, fmt.Errorf("%w: %q: missing holder", ErrInvalidMethod, s)
	}
	holder, err := NewTypeName(s[:hash])
	if err != nil {
		return Method{}, fmt.Errorf("%w: %q: %w", ErrInvalidMethod, s, err)
	}
	sig, err := ParseSignature(s[hash+1:])
	if err != nil {
		return Method{}, fmt.Errorf("%w: %q: %w", ErrInvalidMethod, s, err)
	}
	sig.Holder = holder
	return sig, nil
}

// MustMethod parses a method reference or panics. Use only for constants/tests.
func MustMethod(s string) Method {
	m, err := ParseMethod(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseSignature parses a holder-less signature name(argType,...)returnType.
// The returned Method has an empty Holder.
func ParseSignature(s string) (Method, error) {
	open := strings.IndexByte(s, '(')
	closing := strings.LastIndexByte(s, ')')
	if open <= 0 || closing < open {
		return Method{}, fmt.Errorf("%w: signature %q", ErrInvalidMethod, s)
	}
	m := Method{Name: s[:open]}
	if !methodNameRegex.MatchString(m.Name) {
		return Method{}, fmt.Errorf("%w: method name %q", ErrInvalidMethod, m.Name)
	}
	if args := strings.TrimSpace(s[open+1 : closing]); args != "" {
		for _, a := range strings.Split(args, ",") {
			a = strings.TrimSpace(a)
			if !paramTypeRegex.MatchString(a) {
				return Method{}, fmt.Errorf("%w: parameter type %q", ErrInvalidMethod, a)
			}
			m.Params = append(m.Params, TypeName(a))
		}
	}
	if ret := strings.TrimSpace(s[closing+1:]); ret != "" {
		if !paramTypeRegex.MatchString(ret) {
			return Method{}, fmt.Errorf("%w: return type %q", ErrInvalidMethod, ret)
		}
		m.Return = TypeName(ret)
	}
	return m, nil
}

// Signature returns the holder-less form name(args)ret. Two methods with the
// same signature override each other.
func (m Method) Signature() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(p))
	}
	b.WriteByte(')')
	b.WriteString(string(m.Return))
	return b.String()
}

// String returns the canonical holder#name(args)ret form.
func (m Method) String() string {
	return string(m.Holder) + "#" + m.Signature()
}

// WithHolder returns a copy of m declared on holder.
func (m Method) WithHolder(holder TypeName) Method {
	c := m
	c.Params = append([]TypeName(nil), m.Params...)
	c.Holder = holder
	return c
}

// IsConstructor reports whether m is an instance or class initializer.
func (m Method) IsConstructor() bool {
	return m.Name == "<init>" || m.Name == "<clinit>"
}

// IsZero reports whether m is the zero Method.
func (m Method) IsZero() bool {
	return m.Holder == "" && m.Name == ""
}
