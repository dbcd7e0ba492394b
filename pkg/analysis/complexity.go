package analysis

import (
	"sort"

	"github.com/matzehuels/componentscope/pkg/hierarchy"
)

// ComponentRef identifies a component by id and display name.
type ComponentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ComplexComponent is a non-atomic component with its distinct children.
type ComplexComponent struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Children []ComponentRef `json:"children"`
}

// ComplexityGroup holds the components that contain exactly ChildrenCount
// distinct components.
type ComplexityGroup struct {
	ChildrenCount int                `json:"childrenCount"`
	Components    []ComplexComponent `json:"components"`
}

// ComplexityReport partitions every component of a hierarchy: each one is
// either atomic or a member of exactly one group. Groups are sorted by
// ascending ChildrenCount.
type ComplexityReport struct {
	AtomicComponents       []ComponentRef    `json:"atomicComponents"`
	ComponentsByComplexity []ComplexityGroup `json:"componentsByComplexity"`
}

// Len returns the number of classified components.
func (r *ComplexityReport) Len() int {
	n := len(r.AtomicComponents)
	for _, g := range r.ComponentsByComplexity {
		n += len(g.Components)
	}
	return n
}

// Complexity returns the distinct child count recorded for id.
func (r *ComplexityReport) Complexity(id string) (int, bool) {
	for _, c := range r.AtomicComponents {
		if c.ID == id {
			return 0, true
		}
	}
	for _, g := range r.ComponentsByComplexity {
		for _, c := range g.Components {
			if c.ID == id {
				return g.ChildrenCount, true
			}
		}
	}
	return 0, false
}

// Classify computes the complexity report for h.
//
// A component's complexity is the number of distinct names among its
// children. Two child ids that share a display name count once, and each
// listed child is represented by the first component in h carrying that name.
// Self-containment from cycles counts like any other child.
func Classify(h *hierarchy.Hierarchy) ComplexityReport {
	report := ComplexityReport{AtomicComponents: []ComponentRef{}, ComponentsByComplexity: []ComplexityGroup{}}
	if h == nil {
		return report
	}

	firstByName := make(map[string]string, h.Len())
	for _, r := range h.Records() {
		if _, ok := firstByName[r.Name]; !ok {
			firstByName[r.Name] = r.ID
		}
	}

	groups := make(map[int][]ComplexComponent)
	for _, r := range h.Records() {
		children := distinctChildren(h, r, firstByName)
		if len(children) == 0 {
			report.AtomicComponents = append(report.AtomicComponents, ComponentRef{ID: r.ID, Name: r.Name})
			continue
		}
		groups[len(children)] = append(groups[len(children)], ComplexComponent{
			ID:       r.ID,
			Name:     r.Name,
			Children: children,
		})
	}

	counts := make([]int, 0, len(groups))
	for count := range groups {
		counts = append(counts, count)
	}
	sort.Ints(counts)
	for _, count := range counts {
		report.ComponentsByComplexity = append(report.ComponentsByComplexity, ComplexityGroup{
			ChildrenCount: count,
			Components:    groups[count],
		})
	}
	return report
}

func distinctChildren(h *hierarchy.Hierarchy, r *hierarchy.Record, firstByName map[string]string) []ComponentRef {
	var out []ComponentRef
	seen := make(map[string]bool)
	for _, id := range r.Children() {
		child, ok := h.Get(id)
		if !ok || seen[child.Name] {
			continue
		}
		seen[child.Name] = true
		out = append(out, ComponentRef{ID: firstByName[child.Name], Name: child.Name})
	}
	return out
}
