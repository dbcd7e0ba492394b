package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/componentscope/pkg/analysis"
	"github.com/matzehuels/componentscope/pkg/design"
	"github.com/matzehuels/componentscope/pkg/hierarchy"
)

// Default artifact file names.
const (
	HierarchyFile  = "componentHierarchy.json"
	ComplexityFile = "componentComplexity.json"
	AppearanceFile = "componentAppearanceAnalysis.json"
	ReportFile     = "componentAppearanceReport.txt"
	DocumentFile   = "designDocument.json"
)

type hierarchyEntry struct {
	Name     string   `json:"name"`
	Children []string `json:"children"`
	Direct   []string `json:"direct,omitempty"`
}

type appearanceEntry struct {
	Name      string                `json:"name"`
	AppearsIn []analysis.Appearance `json:"appearsIn"`
}

type appearanceDocument struct {
	ComponentAppearances orderedObject         `json:"componentAppearances"`
	TimeEstimation       analysis.TimeEstimate `json:"timeEstimation"`
}

// Appearances is the appearance analysis artifact.
type Appearances struct {
	Index    *analysis.AppearanceIndex
	Estimate analysis.TimeEstimate
}

// WriteHierarchy encodes h as an id-keyed JSON object in insertion order.
func WriteHierarchy(h *hierarchy.Hierarchy, w io.Writer) error {
	obj := make(orderedObject, 0, h.Len())
	for _, r := range h.Records() {
		obj = append(obj, member{r.ID, hierarchyEntry{
			Name:     r.Name,
			Children: nonNil(r.Children()),
			Direct:   nonNil(r.Direct()),
		}})
	}
	return encode(w, obj)
}

// WriteComplexity encodes a complexity report.
func WriteComplexity(r analysis.ComplexityReport, w io.Writer) error {
	return encode(w, r)
}

// WriteAppearances encodes an appearance index with its time estimate.
func WriteAppearances(a Appearances, w io.Writer) error {
	doc := appearanceDocument{ComponentAppearances: orderedObject{}, TimeEstimation: a.Estimate}
	if a.Index != nil {
		for _, e := range a.Index.Entries() {
			doc.ComponentAppearances = append(doc.ComponentAppearances, member{e.ID, appearanceEntry{
				Name:      e.Name,
				AppearsIn: e.AppearsIn,
			}})
		}
	}
	return encode(w, doc)
}

// WriteDocument encodes a design file.
func WriteDocument(f *design.File, w io.Writer) error {
	return encode(w, f)
}

// ExportHierarchy writes h to a file at path.
func ExportHierarchy(h *hierarchy.Hierarchy, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteHierarchy(h, w) })
}

// ExportComplexity writes a complexity report to a file at path.
func ExportComplexity(r analysis.ComplexityReport, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteComplexity(r, w) })
}

// ExportAppearances writes the appearance analysis to a file at path.
func ExportAppearances(a Appearances, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteAppearances(a, w) })
}

// ExportDocument writes a design file to path.
func ExportDocument(f *design.File, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteDocument(f, w) })
}

func exportFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
