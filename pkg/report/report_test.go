package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/componentscope/pkg/analysis"
	"github.com/matzehuels/componentscope/pkg/design"
	"github.com/matzehuels/componentscope/pkg/hierarchy"
	"github.com/matzehuels/componentscope/pkg/hierarchy/transform"
)

func sampleIndex(t *testing.T) *analysis.AppearanceIndex {
	t.Helper()
	page := &design.Node{ID: "0:1", Name: "Components", Type: design.TypeCanvas, Children: []*design.Node{
		{ID: "1:1", Name: "Icon", Type: design.TypeComponent},
		{ID: "1:2", Name: "Button", Type: design.TypeComponentSet, Children: []*design.Node{
			{ID: "1:3", Name: "State=Default", Type: design.TypeComponent, Children: []*design.Node{
				{ID: "9:1", Name: "Icon", Type: design.TypeInstance},
			}},
		}},
		{ID: "1:4", Name: "Card", Type: design.TypeComponent, Children: []*design.Node{
			{ID: "9:2", Name: "Frame", Type: design.TypeFrame},
			{ID: "9:3", Name: "Button", Type: design.TypeInstance},
			{ID: "9:4", Name: "icon", Type: design.TypeInstance},
		}},
	}}
	h, err := hierarchy.Build(page)
	require.NoError(t, err)
	transform.Propagate(h)
	return analysis.Index(h)
}

func TestRender(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, t.Name(), Render(sampleIndex(t)))
}

func TestRenderEmpty(t *testing.T) {
	assert.Empty(t, Render(analysis.NewAppearanceIndex()))
	assert.Empty(t, Render(nil))
}

func TestGroups(t *testing.T) {
	groups := Groups(sampleIndex(t))
	require.Len(t, groups, 3)

	assert.Equal(t, 0, groups[0].Appearances)
	assert.Equal(t, 1, groups[1].Appearances)
	assert.Equal(t, 2, groups[2].Appearances)

	names := func(g Group) []string {
		var out []string
		for _, e := range g.Entries {
			out = append(out, e.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Card"}, names(groups[0]))
	assert.Equal(t, []string{"Button", "Button / State=Default"}, names(groups[1]))
	assert.Equal(t, []string{"Icon"}, names(groups[2]))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	err := Write(failingWriter{}, sampleIndex(t))
	assert.ErrorContains(t, err, "disk full")
}

func TestWriteMatchesRender(t *testing.T) {
	x := sampleIndex(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, x))
	assert.Equal(t, Render(x), buf.Bytes())
}
