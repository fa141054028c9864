// Package hierarchy models the class interface graph of a single class under
// analysis: the class itself, its superclass chain and the transitive closure
// of the interfaces they declare.
//
// Class shapes come from a Provider, normally backed by a bytecode reader.
// Tests and tools can use the in-memory MapProvider:
//
//	p := hierarchy.NewMapProvider(
//		hierarchy.ClassInfo{Name: "java.util.Collection", IsInterface: true},
//		hierarchy.ClassInfo{Name: "java.util.List", IsInterface: true, Interfaces: []descriptor.TypeName{"java.util.Collection"}},
//		hierarchy.ClassInfo{Name: "app.MyList", Super: "java.lang.Object", Interfaces: []descriptor.TypeName{"java.util.List"}},
//	)
//	g, err := hierarchy.Build("app.MyList", p)
//
// # Querying the Graph
//
//	g.Supertypes("app.MyList")                            // nearest first
//	g.IsSubtypeOf("java.util.List", "java.util.Collection") // true
//	g.Path("app.MyList", "java.util.Collection")
//
// # Output Formats
//
//	dot := g.ToDOT()   // Graphviz
//	text := g.ToText() // tree rendering
package hierarchy
