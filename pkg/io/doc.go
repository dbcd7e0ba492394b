// Package io reads and writes the JSON artifacts of an analysis run.
//
// # Artifacts
//
// Three artifacts are produced per run. The component hierarchy is an object
// keyed by component id:
//
//	{
//	  "1:2": {"name": "Button", "children": ["1:1"], "direct": ["1:1"]},
//	  "1:1": {"name": "Icon", "children": []}
//	}
//
// The complexity report lists atomic components and components grouped by
// distinct child count (see [analysis.ComplexityReport]). The appearance
// analysis is keyed by component id and lists the components that directly
// contain each one, plus a review-time estimate:
//
//	{
//	  "componentAppearances": {
//	    "1:1": {"name": "Icon", "appearsIn": [{"parentId": "1:2", "parentName": "Button"}]}
//	  },
//	  "timeEstimation": {"totalComponents": 2, "hours": 0, "minutes": 20}
//	}
//
// Object keys are written in hierarchy insertion order and read back in file
// order, so a round trip preserves every ordering the reports depend on.
//
// The "direct" array of a hierarchy entry is omitted when empty. When it is
// missing on import, "children" is taken as direct containment.
//
// # Design documents
//
// [ReadDocument] and [WriteDocument] handle the raw design file as returned by
// the design tool API. A saved response can be analyzed later without network
// access.
//
// # Files
//
// Every Read/Write pair has an Import/Export wrapper that works on a path:
//
//	if err := io.ExportHierarchy(h, "componentHierarchy.json"); err != nil {
//	    return err
//	}
//
// [analysis.ComplexityReport]: github.com/matzehuels/componentscope/pkg/analysis.ComplexityReport
package io
