// Package graph builds the dependency graph implied by declaration references
// and computes a reproducible apply order over it.
package graph

import (
	"sort"

	"github.com/v2kk/stackctl/internal/resource"
)

// Graph is the immutable dependency graph of a stack's declarations.
// An edge from a declaration to a dependency means the dependency must be
// applied first.
type Graph struct {
	decls []*resource.Declaration
	nodes map[string]*resource.Declaration
	index map[string]int      // key -> declaration order
	deps  map[string][]string // key -> dependency keys, deduped, declaration-ordered
}

// Build constructs the graph for the given declarations. Every reference and
// explicit dependency is validated against the declared set; a reference to an
// undeclared logical name yields a DanglingReferenceError before any apply
// action can happen.
func Build(decls []*resource.Declaration) (*Graph, error) {
	g := &Graph{
		decls: decls,
		nodes: make(map[string]*resource.Declaration, len(decls)),
		index: make(map[string]int, len(decls)),
		deps:  make(map[string][]string, len(decls)),
	}

	for i, d := range decls {
		g.nodes[d.Key()] = d
		g.index[d.Key()] = i
	}

	for _, d := range decls {
		seen := make(map[string]struct{})
		var deps []string

		for _, ref := range resource.CollectReferences(d.Properties) {
			key := ref.SourceKey()
			if _, ok := g.nodes[key]; !ok {
				return nil, &DanglingReferenceError{
					Declaration: d.Key(),
					Reference:   ref.String(),
				}
			}
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				deps = append(deps, key)
			}
		}

		for _, key := range d.Dependencies() {
			if _, ok := g.nodes[key]; !ok {
				return nil, &DanglingReferenceError{
					Declaration: d.Key(),
					Reference:   key,
				}
			}
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				deps = append(deps, key)
			}
		}

		// Deterministic traversal: visit dependencies in declaration order.
		sort.Slice(deps, func(a, b int) bool { return g.index[deps[a]] < g.index[deps[b]] })
		g.deps[d.Key()] = deps
	}

	return g, nil
}

// Dependencies returns the dependency keys of the given declaration key.
func (g *Graph) Dependencies(key string) []string {
	return g.deps[key]
}

// Declaration returns the declaration for a key, or nil if absent.
func (g *Graph) Declaration(key string) *resource.Declaration {
	return g.nodes[key]
}

// Len returns the number of declarations in the graph.
func (g *Graph) Len() int {
	return len(g.decls)
}

// dfs colors for Order.
const (
	white = iota // not visited
	gray         // on the current DFS path
	black        // done
)

// Order computes a total apply order placing every dependency before its
// dependents. Independent declarations keep their declaration order. A cycle
// in the reference graph yields a CyclicDependencyError naming its members.
func (g *Graph) Order() ([]*resource.Declaration, error) {
	color := make(map[string]int, len(g.decls))
	var order []*resource.Declaration
	var path []string

	var visit func(key string) error
	visit = func(key string) error {
		color[key] = gray
		path = append(path, key)

		for _, dep := range g.deps[key] {
			switch color[dep] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case gray:
				// The cycle is the path segment from the first occurrence
				// of dep to the current node.
				start := 0
				for i, k := range path {
					if k == dep {
						start = i
						break
					}
				}
				members := make([]string, len(path[start:]))
				copy(members, path[start:])
				return &CyclicDependencyError{Members: members}
			}
		}

		path = path[:len(path)-1]
		color[key] = black
		order = append(order, g.nodes[key])
		return nil
	}

	for _, d := range g.decls {
		if color[d.Key()] == white {
			if err := visit(d.Key()); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}
