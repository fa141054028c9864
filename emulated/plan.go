// Package emulated computes, per class, the emulated-interface companions
// a class must additionally implement and the default-method forwarders it
// must receive.
//
// Companions are added only for the maximal emulated interfaces a class
// reaches through its declared interfaces: implementing List and Set never
// also adds Collection or Iterable, because List and Set already imply
// them. Emulated interfaces that contribute no default method surface get
// no companion.
//
// For every default signature contributed by a reachable emulated
// interface, the class's own body (or one in its superclass chain) wins. Otherwise
// the most specific contributing interface wins; remaining ties are broken
// according to the configured TieBreakPolicy, and a tie with no ordering
// signal is an *UnresolvedDiamondError.
package emulated

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
)

// ForwarderSource tells where a forwarder's target comes from.
type ForwarderSource string

const (
	// SourceLibrary targets the desugared library's implementation.
	SourceLibrary ForwarderSource = "library"

	// SourceProgram targets a default method of a program interface that
	// overrides the library default.
	SourceProgram ForwarderSource = "program"
)

// Companion is an additional interface a class must implement.
type Companion struct {
	// Interface is the emulated source interface.
	Interface descriptor.TypeName `json:"interface"`

	// Companion is its rewritten counterpart.
	Companion descriptor.TypeName `json:"companion"`
}

// Forwarder is a synthetic method that forwards a default method to its
// implementation.
type Forwarder struct {
	// Signature is the forwarded method, "name(args)ret".
	Signature string `json:"signature"`

	// Interface is the interface whose default won.
	Interface descriptor.TypeName `json:"interface"`

	// Target is the method the forwarder invokes.
	Target descriptor.Method `json:"-"`

	// Source tells whether Target belongs to the library or the program.
	Source ForwarderSource `json:"source"`
}

// ForwardingPlan is the immutable result of resolving one class.
type ForwardingPlan struct {
	// Class is the class under analysis.
	Class descriptor.TypeName `json:"class"`

	// AdditionalInterfaces are the companions to add, in the order their
	// source interfaces are reached from the class.
	AdditionalInterfaces []Companion `json:"additional_interfaces,omitempty"`

	// Forwarders are sorted by signature.
	Forwarders []Forwarder `json:"forwarders,omitempty"`

	// Overridden lists, sorted, the default signatures the class hierarchy
	// already implements.
	Overridden []string `json:"overridden,omitempty"`
}

// IsEmpty reports whether the plan requires no change to the class.
func (p *ForwardingPlan) IsEmpty() bool {
	return len(p.AdditionalInterfaces) == 0 && len(p.Forwarders) == 0
}

// Forwarder returns the forwarder for signature, if any.
func (p *ForwardingPlan) Forwarder(signature string) (Forwarder, bool) {
	for _, f := range p.Forwarders {
		if f.Signature == signature {
			return f, true
		}
	}
	return Forwarder{}, false
}

// CompanionSources returns the source interfaces of AdditionalInterfaces.
func (p *ForwardingPlan) CompanionSources() []descriptor.TypeName {
	out := make([]descriptor.TypeName, len(p.AdditionalInterfaces))
	for i, c := range p.AdditionalInterfaces {
		out[i] = c.Interface
	}
	return out
}

// String renders the plan for humans.
func (p *ForwardingPlan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "class %s\n", p.Class)
	if p.IsEmpty() {
		b.WriteString("  (no changes)\n")
	}
	for _, c := range p.AdditionalInterfaces {
		fmt.Fprintf(&b, "  implements %s (for %s)\n", c.Companion, c.Interface)
	}
	for _, f := range p.Forwarders {
		fmt.Fprintf(&b, "  forward %s -> %s [%s via %s]\n", f.Signature, f.Target, f.Source, f.Interface)
	}
	for _, sig := range p.Overridden {
		fmt.Fprintf(&b, "  keep %s (overridden)\n", sig)
	}
	return b.String()
}
