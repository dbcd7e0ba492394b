package analysis

import (
	"reflect"
	"testing"

	"github.com/matzehuels/componentscope/pkg/hierarchy"
	"github.com/matzehuels/componentscope/pkg/hierarchy/transform"
)

type rec struct {
	id, name string
	direct   []string
}

func newHierarchy(t *testing.T, recs ...rec) *hierarchy.Hierarchy {
	t.Helper()
	h := hierarchy.New()
	for _, r := range recs {
		h.Ensure(r.id, r.name)
	}
	for _, r := range recs {
		for _, c := range r.direct {
			if err := h.Link(r.id, c); err != nil {
				t.Fatal(err)
			}
		}
	}
	return h
}

func chain(t *testing.T) *hierarchy.Hierarchy {
	h := newHierarchy(t,
		rec{"a", "A", []string{"b"}},
		rec{"b", "B", []string{"c"}},
		rec{"c", "C", nil},
	)
	transform.Propagate(h)
	return h
}

func TestClassifyChain(t *testing.T) {
	report := Classify(chain(t))

	if want := []ComponentRef{{ID: "c", Name: "C"}}; !reflect.DeepEqual(report.AtomicComponents, want) {
		t.Errorf("AtomicComponents = %v, want %v", report.AtomicComponents, want)
	}
	want := []ComplexityGroup{
		{ChildrenCount: 1, Components: []ComplexComponent{
			{ID: "b", Name: "B", Children: []ComponentRef{{ID: "c", Name: "C"}}},
		}},
		{ChildrenCount: 2, Components: []ComplexComponent{
			{ID: "a", Name: "A", Children: []ComponentRef{{ID: "b", Name: "B"}, {ID: "c", Name: "C"}}},
		}},
	}
	if !reflect.DeepEqual(report.ComponentsByComplexity, want) {
		t.Errorf("ComponentsByComplexity = %+v, want %+v", report.ComponentsByComplexity, want)
	}
}

func TestClassifyDeduplicatesByName(t *testing.T) {
	h := newHierarchy(t,
		rec{"p", "Panel", []string{"i1", "i2"}},
		rec{"i1", "Icon", nil},
		rec{"i2", "Icon", nil},
	)
	report := Classify(h)
	if n, _ := report.Complexity("p"); n != 1 {
		t.Errorf("Complexity(p) = %d, want 1", n)
	}
	got := report.ComponentsByComplexity[0].Components[0].Children
	if want := []ComponentRef{{ID: "i1", Name: "Icon"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestClassifyDeduplicatesByExactName(t *testing.T) {
	h := newHierarchy(t,
		rec{"p", "Panel", []string{"i1", "i2"}},
		rec{"i1", "Icon", nil},
		rec{"i2", "icon", nil},
	)
	report := Classify(h)
	got := report.ComponentsByComplexity[0].Components[0].Children
	want := []ComponentRef{{ID: "i1", Name: "Icon"}, {ID: "i2", Name: "icon"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestClassifyPartition(t *testing.T) {
	h := newHierarchy(t,
		rec{"a", "A", []string{"b", "c", "d"}},
		rec{"b", "B", []string{"a"}},
		rec{"c", "C", []string{"d"}},
		rec{"d", "D", nil},
		rec{"e", "E", nil},
	)
	transform.Propagate(h)
	report := Classify(h)

	seen := make(map[string]int)
	for _, c := range report.AtomicComponents {
		seen[c.ID]++
	}
	for _, g := range report.ComponentsByComplexity {
		for _, c := range g.Components {
			seen[c.ID]++
			if len(c.Children) != g.ChildrenCount {
				t.Errorf("%s has %d children in group %d", c.ID, len(c.Children), g.ChildrenCount)
			}
		}
	}
	for _, id := range h.IDs() {
		if seen[id] != 1 {
			t.Errorf("%s classified %d times, want 1", id, seen[id])
		}
	}
	if report.Len() != h.Len() {
		t.Errorf("Len() = %d, want %d", report.Len(), h.Len())
	}
	for i := 1; i < len(report.ComponentsByComplexity); i++ {
		if report.ComponentsByComplexity[i-1].ChildrenCount >= report.ComponentsByComplexity[i].ChildrenCount {
			t.Errorf("groups not ascending: %d then %d",
				report.ComponentsByComplexity[i-1].ChildrenCount, report.ComponentsByComplexity[i].ChildrenCount)
		}
	}
}

func TestClassifyGroupKeepsHierarchyOrder(t *testing.T) {
	h := newHierarchy(t,
		rec{"z", "Zeta", []string{"x"}},
		rec{"a", "Alpha", []string{"x"}},
		rec{"x", "Leaf", nil},
	)
	report := Classify(h)
	g := report.ComponentsByComplexity[0]
	if g.Components[0].ID != "z" || g.Components[1].ID != "a" {
		t.Errorf("group order = [%s %s], want [z a]", g.Components[0].ID, g.Components[1].ID)
	}
}

func TestClassifyEmpty(t *testing.T) {
	report := Classify(hierarchy.New())
	if report.AtomicComponents == nil || report.ComponentsByComplexity == nil {
		t.Error("empty report should carry empty, non-nil slices")
	}
	if _, ok := report.Complexity("missing"); ok {
		t.Error("Complexity(missing) reported ok")
	}
}

func TestIndexDuality(t *testing.T) {
	h := newHierarchy(t,
		rec{"a", "A", []string{"b", "c"}},
		rec{"b", "B", []string{"c"}},
		rec{"c", "C", nil},
		rec{"d", "D", []string{"d"}},
	)
	before := Index(h)
	transform.Propagate(h)
	x := Index(h)

	if !reflect.DeepEqual(before.Entries(), x.Entries()) {
		t.Error("Index changed after propagation")
	}
	for _, parent := range h.Records() {
		for _, child := range h.Records() {
			entry, ok := x.Get(child.ID)
			if !ok {
				t.Fatalf("no entry for %s", child.ID)
			}
			listed := false
			for _, a := range entry.AppearsIn {
				if a.ParentID == parent.ID {
					listed = true
				}
			}
			if listed != parent.HasDirect(child.ID) {
				t.Errorf("%s in appearsIn(%s) = %v, direct = %v", parent.ID, child.ID, listed, parent.HasDirect(child.ID))
			}
		}
	}
}

func TestIndexEntries(t *testing.T) {
	x := Index(chain(t))
	want := []AppearanceEntry{
		{ID: "a", Name: "A", AppearsIn: []Appearance{}},
		{ID: "b", Name: "B", AppearsIn: []Appearance{{ParentID: "a", ParentName: "A"}}},
		{ID: "c", Name: "C", AppearsIn: []Appearance{{ParentID: "b", ParentName: "B"}}},
	}
	if got := x.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %+v, want %+v", got, want)
	}
}

func TestAppearanceIndexAddReplaces(t *testing.T) {
	x := NewAppearanceIndex()
	x.Add(AppearanceEntry{ID: "a", Name: "A"})
	x.Add(AppearanceEntry{ID: "b", Name: "B"})
	x.Add(AppearanceEntry{ID: "a", Name: "A2"})
	if x.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", x.Len())
	}
	if e, _ := x.Get("a"); e.Name != "A2" {
		t.Errorf("Get(a).Name = %q, want A2", e.Name)
	}
	if x.Entries()[0].ID != "a" {
		t.Error("replacement moved entry")
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		components, rate int
		want             TimeEstimate
	}{
		{0, 10, TimeEstimate{0, 0, 0}},
		{3, 10, TimeEstimate{3, 0, 30}},
		{6, 10, TimeEstimate{6, 1, 0}},
		{14, 10, TimeEstimate{14, 2, 20}},
		{14, 0, TimeEstimate{14, 2, 20}},
		{5, 15, TimeEstimate{5, 1, 15}},
	}
	for _, tt := range tests {
		got := Estimate(tt.components, tt.rate)
		if got != tt.want {
			t.Errorf("Estimate(%d, %d) = %+v, want %+v", tt.components, tt.rate, got, tt.want)
		}
	}
}

func TestTimeEstimateTotalMinutes(t *testing.T) {
	if got := Estimate(14, 10).TotalMinutes(); got != 140 {
		t.Errorf("TotalMinutes() = %d, want 140", got)
	}
}
