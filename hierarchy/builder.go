package hierarchy

import (
	"fmt"
	"slices"
)

// Build walks the supertypes of root breadth-first and returns the graph.
//
// Types unknown to the provider are kept as leaf nodes marked Missing. An
// unknown root is an error. A cyclic hierarchy yields the partial graph and
// a *CycleError.
func Build(root TypeName, p Provider) (*Graph, error) {
	info, ok := p.Lookup(root)
	if !ok {
		return nil, fmt.Errorf("class %s: not found", root)
	}

	g := &Graph{
		Root:  root,
		Nodes: make(map[TypeName]*Node),
	}
	g.Nodes[root] = newNode(info)

	queue := []TypeName{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node := g.Nodes[current]

		for _, sup := range node.Supertypes {
			child, seen := g.Nodes[sup]
			if !seen {
				if ci, ok := p.Lookup(sup); ok {
					child = newNode(ci)
				} else {
					child = &Node{Info: ClassInfo{Name: sup}, Missing: true}
					g.Missing = append(g.Missing, sup)
				}
				child.Depth = node.Depth + 1
				g.Nodes[sup] = child
				queue = append(queue, sup)
			}
			if !slices.Contains(child.Subtypes, current) {
				child.Subtypes = append(child.Subtypes, current)
			}
		}
	}

	slices.Sort(g.Missing)

	if cycles := g.FindCycles(); len(cycles) > 0 {
		return g, &CycleError{Cycle: cycles[0]}
	}
	return g, nil
}

func newNode(info ClassInfo) *Node {
	return &Node{
		Info:       info,
		Supertypes: info.DirectSupertypes(),
	}
}
