package transform

import (
	"errors"
	"sort"

	graphlib "github.com/dominikbraun/graph"

	"github.com/matzehuels/componentscope/pkg/hierarchy"
)

// Cycle is a group of components that contain each other, directly or
// through other members of the group.
type Cycle struct {
	IDs   []string `json:"ids"`
	Names []string `json:"names"`
}

// BackEdge is a direct containment edge that closes a cycle during a
// depth-first walk.
type BackEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FindCycles returns the strongly connected components of the direct
// containment graph that form cycles: groups of two or more components, and
// single components that contain themselves. Cycles and the ids inside them
// follow the hierarchy's insertion order. h is not modified.
func FindCycles(h *hierarchy.Hierarchy) ([]Cycle, error) {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	for _, id := range h.IDs() {
		if err := g.AddVertex(id); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, err
		}
	}
	for _, r := range h.Records() {
		for _, child := range r.Direct() {
			if err := g.AddEdge(r.ID, child); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, err
			}
		}
	}

	sccs, err := graphlib.StronglyConnectedComponents(g)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, h.Len())
	for i, id := range h.IDs() {
		position[id] = i
	}

	var cycles []Cycle
	for _, scc := range sccs {
		if len(scc) == 1 {
			r, ok := h.Get(scc[0])
			if !ok || !r.HasDirect(scc[0]) {
				continue
			}
		}
		sort.Slice(scc, func(i, j int) bool { return position[scc[i]] < position[scc[j]] })
		c := Cycle{IDs: scc, Names: make([]string, len(scc))}
		for i, id := range scc {
			if r, ok := h.Get(id); ok {
				c.Names[i] = r.Name
			}
		}
		cycles = append(cycles, c)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return position[cycles[i].IDs[0]] < position[cycles[j].IDs[0]]
	})
	return cycles, nil
}

// BackEdges returns the direct containment edges that a depth-first walk in
// insertion order finds pointing back to a component still on the stack.
// Removing them would make the graph acyclic; h is not modified.
func BackEdges(h *hierarchy.Hierarchy) []BackEdge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, h.Len())
	var edges []BackEdge

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		if r, ok := h.Get(id); ok {
			for _, child := range r.Direct() {
				switch color[child] {
				case white:
					dfs(child)
				case gray:
					edges = append(edges, BackEdge{From: id, To: child})
				}
			}
		}
		color[id] = black
	}

	for _, id := range h.IDs() {
		if color[id] == white {
			dfs(id)
		}
	}
	return edges
}
