// Package report renders an appearance index as plain text.
//
// Components are grouped by how many components place them, fewest first.
// Each component is written as "- name" followed by one indented line per
// containing component, and a blank line closes every component:
//
//	$ cat componentAppearanceReport.txt
//	- Card
//
//	- Icon
//	    - Button
//	    - Card
//
// Within a group, components keep the index order, so the same input always
// produces the same bytes.
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/matzehuels/componentscope/pkg/analysis"
)

const indent = "    "

// Group is a set of components that appear in the same number of parents.
type Group struct {
	Appearances int
	Entries     []analysis.AppearanceEntry
}

// Groups partitions the index by appearance count, ascending.
func Groups(x *analysis.AppearanceIndex) []Group {
	if x == nil {
		return nil
	}
	byCount := make(map[int][]analysis.AppearanceEntry)
	for _, e := range x.Entries() {
		n := len(e.AppearsIn)
		byCount[n] = append(byCount[n], e)
	}
	counts := make([]int, 0, len(byCount))
	for n := range byCount {
		counts = append(counts, n)
	}
	sort.Ints(counts)

	groups := make([]Group, len(counts))
	for i, n := range counts {
		groups[i] = Group{Appearances: n, Entries: byCount[n]}
	}
	return groups
}

// Write renders x to w.
func Write(w io.Writer, x *analysis.AppearanceIndex) error {
	bw := bufio.NewWriter(w)
	for _, g := range Groups(x) {
		for _, e := range g.Entries {
			fmt.Fprintf(bw, "- %s\n", e.Name)
			for _, a := range e.AppearsIn {
				fmt.Fprintf(bw, "%s- %s\n", indent, a.ParentName)
			}
			bw.WriteByte('\n')
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Render returns the report for x.
func Render(x *analysis.AppearanceIndex) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, x)
	return buf.Bytes()
}
