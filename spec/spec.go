// Package spec models a desugared library specification: the declarative
// rules that retarget a runtime library namespace into a bundled alternative.
//
// A Specification is assembled once through a Builder, frozen, then proven
// consistent by Validate. The resulting Validated value is read-only and may
// be shared by any number of concurrent resolvers.
//
//	b := spec.NewBuilder()
//	_ = b.PutRewritePrefix("java.time.", "j$.time.")
//	_ = b.PutMaintainPrefix("java.time.chrono.")
//	v, err := spec.Validate(b.Freeze(), sink)
//
// Builder is single-writer: construction must finish and Freeze must be
// called before the specification is handed to concurrent readers.
package spec

import (
	"fmt"
	"slices"
	"sort"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
)

// Section names used in diagnostics and documents.
const (
	SectionRewritePrefix     = "rewrite_prefix"
	SectionMaintainPrefix    = "maintain_prefix"
	SectionRetargetMethod    = "retarget_method"
	SectionBackportMethod    = "backport_method"
	SectionEmulateInterface  = "emulate_interface"
	SectionEmulatedDefault   = "emulate_interface.default_methods"
	SectionSpecificationMeta = "metadata"
)

// Metadata holds the top-level flags of a specification document.
type Metadata struct {
	// Identifier names the library release, e.g. "com.tools:desugar_jdk_libs:2.0.4".
	Identifier string

	// FormatVersion is the document format version.
	FormatVersion int

	// RequiredCompilationAPILevel is the API level the program must be
	// compiled against for the rules to be meaningful.
	RequiredCompilationAPILevel int

	// SynthesizedPackagePrefix is the dotted package that receives classes
	// synthesized for the library (e.g. "j$.").
	SynthesizedPackagePrefix string
}

// RewriteRule renames every type under Source to the same suffix under
// Destination.
type RewriteRule struct {
	Source      string
	Destination string
}

// String renders the rule as "source -> destination".
func (r RewriteRule) String() string {
	return r.Source + " -> " + r.Destination
}

// MethodRule redirects calls to Method to Replacement. It serves both
// retargeted and backported methods.
type MethodRule struct {
	Method      descriptor.Method
	Replacement descriptor.Method

	// MinAPILevel guards the rule: it applies only when the target minimum
	// API level is at least this value. Zero means unguarded.
	MinAPILevel int
}

// AppliesAt reports whether the rule is active for minimum API level level.
func (r MethodRule) AppliesAt(level int) bool {
	return r.MinAPILevel == 0 || level >= r.MinAPILevel
}

// DefaultMethod is a default method an emulated interface contributes,
// together with the implementation a forwarder must call.
type DefaultMethod struct {
	// Signature is the holder-less name(args)ret form.
	Signature string

	// Forwarder is the static implementation the synthesized forwarder calls.
	Forwarder descriptor.Method
}

// EmulatedInterface describes a library interface whose default methods must
// be forwarded because the target runtime's hierarchy lacks them.
type EmulatedInterface struct {
	Interface descriptor.TypeName
	Companion descriptor.TypeName

	// Defaults is sorted by Signature.
	Defaults []DefaultMethod
}

// Default returns the default method with the given signature.
func (e EmulatedInterface) Default(signature string) (DefaultMethod, bool) {
	i := sort.Search(len(e.Defaults), func(i int) bool { return e.Defaults[i].Signature >= signature })
	if i < len(e.Defaults) && e.Defaults[i].Signature == signature {
		return e.Defaults[i], true
	}
	return DefaultMethod{}, false
}

func (e EmulatedInterface) clone() EmulatedInterface {
	e.Defaults = slices.Clone(e.Defaults)
	return e
}

// Builder assembles a Specification. It is not safe for concurrent use.
type Builder struct {
	meta Metadata

	rewrite      []RewriteRule
	rewriteIndex map[string]int

	maintain    []string
	maintainSet map[string]struct{}

	retarget *methodTable
	backport *methodTable

	emulated      map[descriptor.TypeName]EmulatedInterface
	emulatedOrder []descriptor.TypeName

	frozen *Specification
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		rewriteIndex: make(map[string]int),
		maintainSet:  make(map[string]struct{}),
		retarget:     newMethodTable(SectionRetargetMethod),
		backport:     newMethodTable(SectionBackportMethod),
		emulated:     make(map[descriptor.TypeName]EmulatedInterface),
	}
}

func (b *Builder) checkMutable(op string) error {
	if b.frozen != nil {
		return &FrozenSpecificationError{Operation: op}
	}
	return nil
}

// SetMetadata replaces the top-level flags.
func (b *Builder) SetMetadata(m Metadata) error {
	if err := b.checkMutable("SetMetadata"); err != nil {
		return err
	}
	if m.SynthesizedPackagePrefix != "" {
		if err := descriptor.ValidatePrefix(m.SynthesizedPackagePrefix); err != nil {
			return fmt.Errorf("%s: %w", SectionSpecificationMeta, err)
		}
	}
	b.meta = m
	return nil
}

// PutRewritePrefix adds a prefix rewrite. Inserting a source that is already
// present fails with DuplicateRuleError, even when the destination matches.
func (b *Builder) PutRewritePrefix(source, destination string) error {
	if err := b.checkMutable("PutRewritePrefix"); err != nil {
		return err
	}
	if err := descriptor.ValidatePrefix(source); err != nil {
		return fmt.Errorf("%s: %w", SectionRewritePrefix, err)
	}
	if err := descriptor.ValidatePrefix(destination); err != nil {
		return fmt.Errorf("%s %q: %w", SectionRewritePrefix, source, err)
	}
	if i, ok := b.rewriteIndex[source]; ok {
		return &DuplicateRuleError{
			Section:  SectionRewritePrefix,
			Key:      source,
			Existing: b.rewrite[i].Destination,
			Proposed: destination,
		}
	}
	b.rewriteIndex[source] = len(b.rewrite)
	b.rewrite = append(b.rewrite, RewriteRule{Source: source, Destination: destination})
	return nil
}

// PutMaintainPrefix exempts prefix from rewriting. Conflicts with rewrite
// rules are reported by Validate, not here. Repeating a prefix is a no-op.
func (b *Builder) PutMaintainPrefix(prefix string) error {
	if err := b.checkMutable("PutMaintainPrefix"); err != nil {
		return err
	}
	if err := descriptor.ValidatePrefix(prefix); err != nil {
		return fmt.Errorf("%s: %w", SectionMaintainPrefix, err)
	}
	if _, ok := b.maintainSet[prefix]; ok {
		return nil
	}
	b.maintainSet[prefix] = struct{}{}
	b.maintain = append(b.maintain, prefix)
	return nil
}

// PutRetargetMethod adds a retargeted method.
func (b *Builder) PutRetargetMethod(r MethodRule) error {
	if err := b.checkMutable("PutRetargetMethod"); err != nil {
		return err
	}
	return b.retarget.put(r)
}

// PutBackportMethod adds a backported method.
func (b *Builder) PutBackportMethod(r MethodRule) error {
	if err := b.checkMutable("PutBackportMethod"); err != nil {
		return err
	}
	return b.backport.put(r)
}

// PutEmulatedInterface adds an emulated interface. Defaults are sorted by
// signature; a signature listed twice fails with DuplicateRuleError.
func (b *Builder) PutEmulatedInterface(e EmulatedInterface) error {
	if err := b.checkMutable("PutEmulatedInterface"); err != nil {
		return err
	}
	if _, err := descriptor.NewTypeName(string(e.Interface)); err != nil {
		return fmt.Errorf("%s: %w", SectionEmulateInterface, err)
	}
	if _, err := descriptor.NewTypeName(string(e.Companion)); err != nil {
		return fmt.Errorf("%s %s: companion: %w", SectionEmulateInterface, e.Interface, err)
	}
	if existing, ok := b.emulated[e.Interface]; ok {
		return &DuplicateRuleError{
			Section:  SectionEmulateInterface,
			Key:      string(e.Interface),
			Existing: string(existing.Companion),
			Proposed: string(e.Companion),
		}
	}
	e = e.clone()
	sort.SliceStable(e.Defaults, func(i, j int) bool { return e.Defaults[i].Signature < e.Defaults[j].Signature })
	for i, d := range e.Defaults {
		if _, err := descriptor.ParseSignature(d.Signature); err != nil {
			return fmt.Errorf("%s %s: %w", SectionEmulateInterface, e.Interface, err)
		}
		if i > 0 && e.Defaults[i-1].Signature == d.Signature {
			return &DuplicateRuleError{
				Section:  SectionEmulatedDefault,
				Key:      string(e.Interface) + "#" + d.Signature,
				Existing: e.Defaults[i-1].Forwarder.String(),
				Proposed: d.Forwarder.String(),
			}
		}
	}
	b.emulated[e.Interface] = e
	b.emulatedOrder = append(b.emulatedOrder, e.Interface)
	return nil
}

// Freeze ends construction and returns the immutable Specification. Every
// later mutator call fails with FrozenSpecificationError. Calling Freeze
// again returns the same value.
func (b *Builder) Freeze() *Specification {
	if b.frozen != nil {
		return b.frozen
	}
	s := &Specification{
		meta:          b.meta,
		rewrite:       slices.Clone(b.rewrite),
		rewriteIndex:  make(map[string]int, len(b.rewriteIndex)),
		maintain:      slices.Clone(b.maintain),
		maintainSet:   make(map[string]struct{}, len(b.maintainSet)),
		retarget:      b.retarget.clone(),
		backport:      b.backport.clone(),
		emulated:      make(map[descriptor.TypeName]EmulatedInterface, len(b.emulated)),
		emulatedOrder: slices.Clone(b.emulatedOrder),
	}
	for k, v := range b.rewriteIndex {
		s.rewriteIndex[k] = v
	}
	for k := range b.maintainSet {
		s.maintainSet[k] = struct{}{}
	}
	for k, v := range b.emulated {
		s.emulated[k] = v.clone()
	}
	b.frozen = s
	return s
}

// Specification is a frozen set of rules. All accessors return copies.
type Specification struct {
	meta Metadata

	rewrite      []RewriteRule
	rewriteIndex map[string]int

	maintain    []string
	maintainSet map[string]struct{}

	retarget *methodTable
	backport *methodTable

	emulated      map[descriptor.TypeName]EmulatedInterface
	emulatedOrder []descriptor.TypeName
}

// Metadata returns the top-level flags.
func (s *Specification) Metadata() Metadata {
	return s.meta
}

// RewriteRules returns the rewrite rules in insertion order.
func (s *Specification) RewriteRules() []RewriteRule {
	return slices.Clone(s.rewrite)
}

// RewriteDestination returns the destination for an exact source prefix.
func (s *Specification) RewriteDestination(source string) (string, bool) {
	i, ok := s.rewriteIndex[source]
	if !ok {
		return "", false
	}
	return s.rewrite[i].Destination, true
}

// MaintainedPrefixes returns the maintained prefixes in insertion order.
func (s *Specification) MaintainedPrefixes() []string {
	return slices.Clone(s.maintain)
}

// IsMaintained reports whether prefix was declared maintained, literally.
func (s *Specification) IsMaintained(prefix string) bool {
	_, ok := s.maintainSet[prefix]
	return ok
}

// Retarget returns the retarget rule for m.
func (s *Specification) Retarget(m descriptor.Method) (MethodRule, bool) {
	return s.retarget.get(m)
}

// RetargetRules returns the retarget rules in insertion order.
func (s *Specification) RetargetRules() []MethodRule {
	return s.retarget.all()
}

// Backport returns the backport rule for m.
func (s *Specification) Backport(m descriptor.Method) (MethodRule, bool) {
	return s.backport.get(m)
}

// BackportRules returns the backport rules in insertion order.
func (s *Specification) BackportRules() []MethodRule {
	return s.backport.all()
}

// EmulatedInterface returns the descriptor of an emulated interface.
func (s *Specification) EmulatedInterface(t descriptor.TypeName) (EmulatedInterface, bool) {
	e, ok := s.emulated[t]
	if !ok {
		return EmulatedInterface{}, false
	}
	return e.clone(), true
}

// IsEmulated reports whether t is an emulated interface.
func (s *Specification) IsEmulated(t descriptor.TypeName) bool {
	_, ok := s.emulated[t]
	return ok
}

// EmulatedInterfaces returns every emulated interface in insertion order.
func (s *Specification) EmulatedInterfaces() []EmulatedInterface {
	out := make([]EmulatedInterface, 0, len(s.emulatedOrder))
	for _, t := range s.emulatedOrder {
		out = append(out, s.emulated[t].clone())
	}
	return out
}

// IsEmpty reports whether the specification has no rules at all.
func (s *Specification) IsEmpty() bool {
	return len(s.rewrite) == 0 && len(s.maintain) == 0 &&
		len(s.retarget.order) == 0 && len(s.backport.order) == 0 && len(s.emulated) == 0
}

// methodTable is a signature-keyed, insertion-ordered rule map.
type methodTable struct {
	section string
	rules   map[string]MethodRule
	order   []string
}

func newMethodTable(section string) *methodTable {
	return &methodTable{section: section, rules: make(map[string]MethodRule)}
}

func (t *methodTable) put(r MethodRule) error {
	if r.Method.IsZero() || r.Replacement.IsZero() {
		return fmt.Errorf("%s: method and replacement are required", t.section)
	}
	key := r.Method.String()
	if existing, ok := t.rules[key]; ok {
		return &DuplicateRuleError{
			Section:  t.section,
			Key:      key,
			Existing: existing.Replacement.String(),
			Proposed: r.Replacement.String(),
		}
	}
	t.rules[key] = r
	t.order = append(t.order, key)
	return nil
}

func (t *methodTable) get(m descriptor.Method) (MethodRule, bool) {
	r, ok := t.rules[m.String()]
	return r, ok
}

func (t *methodTable) all() []MethodRule {
	out := make([]MethodRule, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.rules[k])
	}
	return out
}

func (t *methodTable) clone() *methodTable {
	c := &methodTable{
		section: t.section,
		rules:   make(map[string]MethodRule, len(t.rules)),
		order:   slices.Clone(t.order),
	}
	for k, v := range t.rules {
		c.rules[k] = v
	}
	return c
}
