package transform

import "github.com/matzehuels/componentscope/pkg/hierarchy"

// Stats describes one propagation run.
type Stats struct {
	Relaxations int // records processed from the worklist
	Added       int // ids added to children sets
}

// GrowthFunc observes a children set growing from before to after ids.
type GrowthFunc func(id string, before, after int)

// Propagate grows every record's children set to the transitive closure of
// containment. It mutates h in place and leaves direct containment untouched.
//
// Records are processed from a worklist. Whenever a record's children set
// grows, every record that lists it as a child is scheduled again, so the
// loop stops exactly when no union can add an id. Cycles terminate because
// sets only grow and are bounded by h.Len(); components on a cycle end up
// listing themselves.
func Propagate(h *hierarchy.Hierarchy) Stats {
	return PropagateFunc(h, nil)
}

// PropagateFunc is Propagate with a callback invoked after each growth.
func PropagateFunc(h *hierarchy.Hierarchy, onGrow GrowthFunc) Stats {
	var stats Stats
	if h == nil {
		return stats
	}

	dependents := make(map[string][]string)
	for _, r := range h.Records() {
		for _, child := range r.Children() {
			dependents[child] = append(dependents[child], r.ID)
		}
	}

	queue := h.IDs()
	queued := make(map[string]bool, len(queue))
	for _, id := range queue {
		queued[id] = true
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		queued[id] = false
		stats.Relaxations++

		r, ok := h.Get(id)
		if !ok {
			continue
		}
		before := r.ChildCount()
		// ChildCount is re-read each step so ids added here are unioned too.
		for i := 0; i < r.ChildCount(); i++ {
			childID := r.ChildAt(i)
			child, ok := h.Get(childID)
			if !ok {
				continue
			}
			for _, grandchild := range child.Children() {
				if r.AddChild(grandchild) {
					dependents[grandchild] = append(dependents[grandchild], id)
				}
			}
		}

		after := r.ChildCount()
		if after == before {
			continue
		}
		stats.Added += after - before
		if onGrow != nil {
			onGrow(id, before, after)
		}
		for _, parent := range dependents[id] {
			if !queued[parent] {
				queued[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return stats
}

// IsClosed reports whether h is at a fixed point: no record is missing a
// child of one of its children.
func IsClosed(h *hierarchy.Hierarchy) bool {
	for _, r := range h.Records() {
		for _, childID := range r.Children() {
			child, ok := h.Get(childID)
			if !ok {
				continue
			}
			for _, grandchild := range child.Children() {
				if !r.HasChild(grandchild) {
					return false
				}
			}
		}
	}
	return true
}
