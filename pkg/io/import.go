package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/componentscope/pkg/analysis"
	"github.com/matzehuels/componentscope/pkg/design"
	"github.com/matzehuels/componentscope/pkg/hierarchy"
)

// ReadHierarchy decodes a hierarchy written by [WriteHierarchy].
//
// Records are created in file order. Every id referenced by "children" or
// "direct" must have its own entry; ReadHierarchy returns an error wrapping
// [hierarchy.ErrDanglingReference] otherwise.
func ReadHierarchy(r io.Reader) (*hierarchy.Hierarchy, error) {
	type pending struct {
		id    string
		entry hierarchyEntry
	}
	var entries []pending
	h := hierarchy.New()

	dec := json.NewDecoder(r)
	err := decodeObject(dec, func(id string) error {
		var e hierarchyEntry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("component %s: %w", id, err)
		}
		if _, err := h.Add(id, e.Name); err != nil {
			return fmt.Errorf("component %q: %w", id, err)
		}
		entries = append(entries, pending{id, e})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range entries {
		direct := p.entry.Direct
		if direct == nil {
			direct = p.entry.Children
		}
		for _, child := range direct {
			if err := h.Link(p.id, child); err != nil {
				return nil, fmt.Errorf("component %s references %s: %w", p.id, child, hierarchy.ErrDanglingReference)
			}
		}
		rec, _ := h.Get(p.id)
		for _, child := range p.entry.Children {
			rec.AddChild(child)
		}
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// ReadComplexity decodes a complexity report.
func ReadComplexity(r io.Reader) (analysis.ComplexityReport, error) {
	var report analysis.ComplexityReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return analysis.ComplexityReport{}, fmt.Errorf("decode: %w", err)
	}
	return report, nil
}

// ReadAppearances decodes an appearance analysis written by [WriteAppearances].
func ReadAppearances(r io.Reader) (Appearances, error) {
	out := Appearances{Index: analysis.NewAppearanceIndex()}
	dec := json.NewDecoder(r)
	err := decodeObject(dec, func(key string) error {
		switch key {
		case "componentAppearances":
			return decodeObject(dec, func(id string) error {
				var e appearanceEntry
				if err := dec.Decode(&e); err != nil {
					return fmt.Errorf("component %s: %w", id, err)
				}
				out.Index.Add(analysis.AppearanceEntry{ID: id, Name: e.Name, AppearsIn: e.AppearsIn})
				return nil
			})
		case "timeEstimation":
			if err := dec.Decode(&out.Estimate); err != nil {
				return fmt.Errorf("timeEstimation: %w", err)
			}
			return nil
		default:
			var skip json.RawMessage
			return dec.Decode(&skip)
		}
	})
	if err != nil {
		return Appearances{}, err
	}
	return out, nil
}

// ReadDocument decodes a design file and checks that it has a document root.
func ReadDocument(r io.Reader) (*design.File, error) {
	var f design.File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if f.Document == nil {
		return nil, design.ErrNoDocument
	}
	return &f, nil
}

// ImportHierarchy reads a hierarchy from the file at path.
func ImportHierarchy(path string) (*hierarchy.Hierarchy, error) {
	var h *hierarchy.Hierarchy
	err := importFile(path, func(r io.Reader) (err error) {
		h, err = ReadHierarchy(r)
		return err
	})
	return h, err
}

// ImportComplexity reads a complexity report from the file at path.
func ImportComplexity(path string) (analysis.ComplexityReport, error) {
	var report analysis.ComplexityReport
	err := importFile(path, func(r io.Reader) (err error) {
		report, err = ReadComplexity(r)
		return err
	})
	return report, err
}

// ImportAppearances reads an appearance analysis from the file at path.
func ImportAppearances(path string) (Appearances, error) {
	var a Appearances
	err := importFile(path, func(r io.Reader) (err error) {
		a, err = ReadAppearances(r)
		return err
	})
	return a, err
}

// ImportDocument reads a design file from path.
func ImportDocument(path string) (*design.File, error) {
	var f *design.File
	err := importFile(path, func(r io.Reader) (err error) {
		f, err = ReadDocument(r)
		return err
	})
	return f, err
}

func importFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := read(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
