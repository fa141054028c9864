package hierarchy

import (
	"slices"
)

// Get returns the node for name, or nil.
func (g *Graph) Get(name TypeName) *Node {
	return g.Nodes[name]
}

// Contains reports whether name is reachable from the root.
func (g *Graph) Contains(name TypeName) bool {
	_, ok := g.Nodes[name]
	return ok
}

// Depth returns the shortest distance from the root to name, or -1.
func (g *Graph) Depth(name TypeName) int {
	if n := g.Nodes[name]; n != nil {
		return n.Depth
	}
	return -1
}

// Supertypes returns every transitive supertype of name in breadth-first
// order: nearer types first, and among equally near ones the superclass
// before the interfaces, interfaces in declaration order.
func (g *Graph) Supertypes(name TypeName) []TypeName {
	node := g.Nodes[name]
	if node == nil {
		return nil
	}

	var result []TypeName
	visited := map[TypeName]bool{name: true}
	queue := slices.Clone(node.Supertypes)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, current)
		if n := g.Nodes[current]; n != nil {
			queue = append(queue, n.Supertypes...)
		}
	}
	return result
}

// Interfaces returns the known interfaces among Supertypes(name).
func (g *Graph) Interfaces(name TypeName) []TypeName {
	var result []TypeName
	for _, t := range g.Supertypes(name) {
		if g.Nodes[t].IsInterface() {
			result = append(result, t)
		}
	}
	return result
}

// SuperclassChain returns the superclasses of name, nearest first.
func (g *Graph) SuperclassChain(name TypeName) []TypeName {
	var chain []TypeName
	seen := map[TypeName]bool{name: true}
	node := g.Nodes[name]
	for node != nil && node.Info.Super != "" {
		sup := node.Info.Super
		if seen[sup] {
			break
		}
		seen[sup] = true
		chain = append(chain, sup)
		node = g.Nodes[sup]
	}
	return chain
}

// IsSubtypeOf reports whether sub strictly extends or implements sup.
func (g *Graph) IsSubtypeOf(sub, sup TypeName) bool {
	if sub == sup {
		return false
	}
	return slices.Contains(g.Supertypes(sub), sup)
}

// Path returns the shortest supertype path from one type to another,
// including both ends, or nil when to is not a supertype of from.
func (g *Graph) Path(from, to TypeName) []TypeName {
	if _, ok := g.Nodes[from]; !ok {
		return nil
	}
	if from == to {
		return []TypeName{from}
	}

	parent := map[TypeName]TypeName{}
	visited := map[TypeName]bool{from: true}
	queue := []TypeName{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, sup := range node.Supertypes {
			if visited[sup] {
				continue
			}
			visited[sup] = true
			parent[sup] = current

			if sup == to {
				path := []TypeName{to}
				for at := to; at != from; {
					at = parent[at]
					path = append(path, at)
				}
				slices.Reverse(path)
				return path
			}
			queue = append(queue, sup)
		}
	}
	return nil
}

// HasCycles reports whether any supertype relation is cyclic.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}

// FindCycles returns every cycle found by a depth-first walk, visiting
// types in sorted order so the result is stable.
func (g *Graph) FindCycles() [][]TypeName {
	var cycles [][]TypeName
	visited := make(map[TypeName]bool)
	onStack := make(map[TypeName]bool)
	path := make([]TypeName, 0)

	var walk func(name TypeName)
	walk = func(name TypeName) {
		visited[name] = true
		onStack[name] = true
		path = append(path, name)

		if node := g.Nodes[name]; node != nil {
			for _, sup := range node.Supertypes {
				if !visited[sup] {
					walk(sup)
				} else if onStack[sup] {
					start := slices.Index(path, sup)
					if start >= 0 {
						cycles = append(cycles, slices.Clone(path[start:]))
					}
				}
			}
		}

		path = path[:len(path)-1]
		onStack[name] = false
	}

	for _, name := range g.sortedNames() {
		if !visited[name] {
			walk(name)
		}
	}
	return cycles
}

func (g *Graph) sortedNames() []TypeName {
	names := make([]TypeName, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
