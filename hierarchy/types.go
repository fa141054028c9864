package hierarchy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
)

// TypeName is an alias for descriptor.TypeName.
type TypeName = descriptor.TypeName

// ClassInfo is the shape of one class or interface as seen by the resolver.
type ClassInfo struct {
	// Name is the fully qualified dotted name.
	Name TypeName `json:"name"`

	// Super is the direct superclass. Empty for interfaces and for the
	// top of the class hierarchy.
	Super TypeName `json:"super,omitempty"`

	// Interfaces are the directly implemented (or, for interfaces, extended)
	// interfaces in declaration order.
	Interfaces []TypeName `json:"interfaces,omitempty"`

	// IsInterface is true for interfaces.
	IsInterface bool `json:"interface,omitempty"`

	// Methods are the signatures ("name(args)ret") the type declares with a
	// body. For interfaces these are its default methods.
	Methods []string `json:"methods,omitempty"`
}

// Declares reports whether the type declares a body for signature.
func (c ClassInfo) Declares(signature string) bool {
	return slices.Contains(c.Methods, signature)
}

// DirectSupertypes returns the superclass (if any) followed by the declared
// interfaces.
func (c ClassInfo) DirectSupertypes() []TypeName {
	out := make([]TypeName, 0, len(c.Interfaces)+1)
	if c.Super != "" {
		out = append(out, c.Super)
	}
	return append(out, c.Interfaces...)
}

// Provider supplies class shapes.
type Provider interface {
	// Lookup returns the shape of name, or false when it is unknown.
	Lookup(name TypeName) (ClassInfo, bool)
}

// MapProvider is an in-memory Provider.
type MapProvider map[TypeName]ClassInfo

// NewMapProvider indexes classes by name. Later entries replace earlier ones.
func NewMapProvider(classes ...ClassInfo) MapProvider {
	p := make(MapProvider, len(classes))
	for _, c := range classes {
		p[c.Name] = c
	}
	return p
}

// Lookup implements Provider.
func (p MapProvider) Lookup(name TypeName) (ClassInfo, bool) {
	c, ok := p[name]
	return c, ok
}

// Graph is the supertype graph rooted at one class.
type Graph struct {
	// Root is the class under analysis.
	Root TypeName

	// Nodes contains every type reachable from Root, keyed by name.
	Nodes map[TypeName]*Node

	// Missing lists referenced types the provider did not know, sorted.
	Missing []TypeName
}

// Node is one type in the graph.
type Node struct {
	// Info is the provider's view of the type. For missing types only
	// Info.Name is set.
	Info ClassInfo

	// Supertypes are the direct supertypes, superclass first.
	Supertypes []TypeName

	// Subtypes are the types in the graph that directly extend this one
	// (reverse edges).
	Subtypes []TypeName

	// Depth is the length of the shortest path from Root.
	Depth int

	// Missing is true when the provider had no entry for the type.
	Missing bool
}

// IsInterface reports whether the node is a known interface.
func (n *Node) IsInterface() bool {
	return n != nil && !n.Missing && n.Info.IsInterface
}

// CycleError reports a cyclic supertype relation.
type CycleError struct {
	Cycle []TypeName
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycle)+1)
	for _, t := range e.Cycle {
		parts = append(parts, t.String())
	}
	if len(e.Cycle) > 0 {
		parts = append(parts, e.Cycle[0].String())
	}
	return fmt.Sprintf("cyclic type hierarchy: %s", strings.Join(parts, " -> "))
}
