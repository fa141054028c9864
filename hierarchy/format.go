package hierarchy

import (
	"bytes"
	"fmt"
	"strings"
)

const separatorWidth = 60 // Width of separator lines in text output

// ToDOT outputs the graph in Graphviz DOT format. Edges point from a type to
// its supertypes. Types listed in highlight are filled.
func (g *Graph) ToDOT(highlight ...TypeName) string {
	marked := make(map[TypeName]bool, len(highlight))
	for _, t := range highlight {
		marked[t] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph hierarchy {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  node [shape=box];\n\n")

	names := g.sortedNames()
	for _, name := range names {
		node := g.Nodes[name]
		var attrs []string
		if node.IsInterface() {
			attrs = append(attrs, "shape=ellipse")
		}
		if name == g.Root {
			attrs = append(attrs, "style=bold")
		}
		if node.Missing {
			attrs = append(attrs, "style=dashed")
		}
		if marked[name] {
			attrs = append(attrs, "style=filled")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q;\n", name.String())
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", name.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")

	for _, name := range names {
		for _, sup := range g.Nodes[name].Supertypes {
			fmt.Fprintf(&buf, "  %q -> %q;\n", name.String(), sup.String())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToText outputs a human-readable tree of the root's supertypes.
func (g *Graph) ToText() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Type Hierarchy (root: %s)\n", g.Root)
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	fmt.Fprintf(&buf, "Total types: %d\n", len(g.Nodes))
	fmt.Fprintf(&buf, "Interfaces: %d\n", len(g.Interfaces(g.Root)))
	if len(g.Missing) > 0 {
		fmt.Fprintf(&buf, "Missing: %d\n", len(g.Missing))
	}
	buf.WriteString("\n")

	buf.WriteString(g.Root.String())
	g.writeLabel(&buf, g.Root)
	buf.WriteString("\n")

	onPath := map[TypeName]bool{g.Root: true}
	if node := g.Nodes[g.Root]; node != nil {
		for i, sup := range node.Supertypes {
			g.printTree(&buf, sup, "", i == len(node.Supertypes)-1, onPath)
		}
	}
	return buf.String()
}

func (g *Graph) printTree(buf *bytes.Buffer, name TypeName, prefix string, isLast bool, onPath map[TypeName]bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	buf.WriteString(prefix + connector + name.String())
	g.writeLabel(buf, name)

	if onPath[name] {
		buf.WriteString(" (circular)\n")
		return
	}
	buf.WriteString("\n")

	onPath[name] = true
	defer func() { onPath[name] = false }()

	node := g.Nodes[name]
	if node == nil {
		return
	}

	childPrefix := prefix + "│   "
	if isLast {
		childPrefix = prefix + "    "
	}
	for i, sup := range node.Supertypes {
		g.printTree(buf, sup, childPrefix, i == len(node.Supertypes)-1, onPath)
	}
}

func (g *Graph) writeLabel(buf *bytes.Buffer, name TypeName) {
	node := g.Nodes[name]
	switch {
	case node == nil:
	case node.Missing:
		buf.WriteString(" (missing)")
	case node.Info.IsInterface:
		buf.WriteString(" (interface)")
	}
}
