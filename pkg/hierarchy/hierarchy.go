package hierarchy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when a record is created with an empty id.
	ErrInvalidID = errors.New("component id must not be empty")

	// ErrUnknownComponent is returned by [Hierarchy.Link] when an endpoint is missing.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrDanglingReference is returned by [Hierarchy.Validate] when a children set
	// names an id that has no record. The builder never produces one; seeing it
	// means an invariant was broken.
	ErrDanglingReference = errors.New("dangling component reference")
)

// Record is one logical component in the hierarchy.
//
// A record keeps two child sets: the direct containment observed in the
// design tree, and the containment closure that [transform.Propagate] grows
// in place. Before propagation both sets hold the same ids.
//
// [transform.Propagate]: github.com/matzehuels/componentscope/pkg/hierarchy/transform
type Record struct {
	ID   string // canonical id (first declaration for the name, or the node's own id)
	Name string // first name seen for this component

	direct   *idSet
	children *idSet
}

func newRecord(id, name string) *Record {
	return &Record{ID: id, Name: name, direct: newIDSet(), children: newIDSet()}
}

// Direct returns the ids this component directly contains, in insertion order.
func (r *Record) Direct() []string { return r.direct.slice() }

// DirectCount returns the number of directly contained components.
func (r *Record) DirectCount() int { return r.direct.len() }

// HasDirect reports whether id is a direct child.
func (r *Record) HasDirect(id string) bool { return r.direct.has(id) }

// Children returns the current (possibly closure-propagated) child ids in insertion order.
func (r *Record) Children() []string { return r.children.slice() }

// ChildCount returns the size of the children set.
func (r *Record) ChildCount() int { return r.children.len() }

// ChildAt returns the i-th child id. Indexes stay valid while the set grows,
// which lets callers iterate over a set they are extending.
func (r *Record) ChildAt(i int) string { return r.children.at(i) }

// HasChild reports whether id is in the children set.
func (r *Record) HasChild(id string) bool { return r.children.has(id) }

// AddChild adds id to the children set only, leaving direct containment untouched.
// It reports whether the set grew.
func (r *Record) AddChild(id string) bool { return r.children.add(id) }

func (r *Record) addDirect(id string) {
	r.direct.add(id)
	r.children.add(id)
}

func (r *Record) clone() *Record {
	return &Record{ID: r.ID, Name: r.Name, direct: r.direct.clone(), children: r.children.clone()}
}

// Hierarchy maps component ids to records and remembers insertion order, so
// every iteration over it is deterministic.
//
// A Hierarchy is not safe for concurrent use.
type Hierarchy struct {
	order   []string
	records map[string]*Record
}

// New returns an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{records: make(map[string]*Record)}
}

// Len returns the number of records.
func (h *Hierarchy) Len() int { return len(h.order) }

// Get returns the record for id.
func (h *Hierarchy) Get(id string) (*Record, bool) {
	r, ok := h.records[id]
	return r, ok
}

// IDs returns all record ids in insertion order.
func (h *Hierarchy) IDs() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Records returns all records in insertion order.
func (h *Hierarchy) Records() []*Record {
	out := make([]*Record, len(h.order))
	for i, id := range h.order {
		out[i] = h.records[id]
	}
	return out
}

// Ensure returns the record for id, creating it with name if absent.
// The second result reports whether a record was created. An existing
// record keeps the first name it was given.
func (h *Hierarchy) Ensure(id, name string) (*Record, bool) {
	if r, ok := h.records[id]; ok {
		return r, false
	}
	r := newRecord(id, name)
	h.records[id] = r
	h.order = append(h.order, id)
	return r, true
}

// Add creates a record. It returns ErrInvalidID for an empty id and is a
// no-op returning the existing record when id is already present.
func (h *Hierarchy) Add(id, name string) (*Record, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	r, _ := h.Ensure(id, name)
	return r, nil
}

// Link records that parent directly contains child. Both records must exist.
func (h *Hierarchy) Link(parentID, childID string) error {
	p, ok := h.records[parentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, parentID)
	}
	if _, ok := h.records[childID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, childID)
	}
	p.addDirect(childID)
	return nil
}

// EdgeCount returns the number of direct containment edges.
func (h *Hierarchy) EdgeCount() int {
	n := 0
	for _, r := range h.records {
		n += r.direct.len()
	}
	return n
}

// Validate checks that every id referenced by a direct or children set has a record.
func (h *Hierarchy) Validate() error {
	for _, id := range h.order {
		r := h.records[id]
		for _, set := range []*idSet{r.direct, r.children} {
			for _, child := range set.items {
				if _, ok := h.records[child]; !ok {
					return fmt.Errorf("%w: %s references %s", ErrDanglingReference, id, child)
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy that shares no state with h.
func (h *Hierarchy) Clone() *Hierarchy {
	c := &Hierarchy{
		order:   make([]string, len(h.order)),
		records: make(map[string]*Record, len(h.records)),
	}
	copy(c.order, h.order)
	for id, r := range h.records {
		c.records[id] = r.clone()
	}
	return c
}

// idSet is an insertion-ordered set of ids.
type idSet struct {
	items []string
	index map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{index: make(map[string]struct{})}
}

func (s *idSet) add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.items = append(s.items, id)
	return true
}

func (s *idSet) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) len() int        { return len(s.items) }
func (s *idSet) at(i int) string { return s.items[i] }
func (s *idSet) slice() []string { return append([]string(nil), s.items...) }
func (s *idSet) clone() *idSet {
	c := &idSet{items: s.slice(), index: make(map[string]struct{}, len(s.items))}
	for _, id := range s.items {
		c.index[id] = struct{}{}
	}
	return c
}
