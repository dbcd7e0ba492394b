package analysis

import "github.com/matzehuels/componentscope/pkg/hierarchy"

// Appearance is one component that directly contains another.
type Appearance struct {
	ParentID   string `json:"parentId"`
	ParentName string `json:"parentName"`
}

// AppearanceEntry lists where one component is placed.
type AppearanceEntry struct {
	ID        string       `json:"-"`
	Name      string       `json:"name"`
	AppearsIn []Appearance `json:"appearsIn"`
}

// AppearanceIndex maps component ids to the components that directly contain
// them. Entries keep the hierarchy's insertion order.
type AppearanceIndex struct {
	entries []AppearanceEntry
	pos     map[string]int
}

// NewAppearanceIndex returns an empty index.
func NewAppearanceIndex() *AppearanceIndex {
	return &AppearanceIndex{pos: make(map[string]int)}
}

// Add appends an entry, replacing any existing entry with the same id.
func (x *AppearanceIndex) Add(e AppearanceEntry) {
	if e.AppearsIn == nil {
		e.AppearsIn = []Appearance{}
	}
	if i, ok := x.pos[e.ID]; ok {
		x.entries[i] = e
		return
	}
	x.pos[e.ID] = len(x.entries)
	x.entries = append(x.entries, e)
}

// Len returns the number of indexed components.
func (x *AppearanceIndex) Len() int { return len(x.entries) }

// Get returns the entry for id.
func (x *AppearanceIndex) Get(id string) (AppearanceEntry, bool) {
	i, ok := x.pos[id]
	if !ok {
		return AppearanceEntry{}, false
	}
	return x.entries[i], true
}

// Entries returns all entries in insertion order.
func (x *AppearanceIndex) Entries() []AppearanceEntry {
	return append([]AppearanceEntry(nil), x.entries...)
}

// Index builds the appearance index of h from direct containment.
// Every component gets an entry, including those that appear nowhere.
// Propagation does not change the result.
func Index(h *hierarchy.Hierarchy) *AppearanceIndex {
	x := NewAppearanceIndex()
	if h == nil {
		return x
	}
	for _, r := range h.Records() {
		x.Add(AppearanceEntry{ID: r.ID, Name: r.Name})
	}
	for _, parent := range h.Records() {
		for _, childID := range parent.Direct() {
			i, ok := x.pos[childID]
			if !ok {
				continue
			}
			x.entries[i].AppearsIn = append(x.entries[i].AppearsIn, Appearance{
				ParentID:   parent.ID,
				ParentName: parent.Name,
			})
		}
	}
	return x
}
