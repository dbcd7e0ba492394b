// Package pkg provides the core libraries for componentscope, a design
// system component analyzer.
//
// # Overview
//
// Componentscope reads a design file, takes the component declarations found
// on one canvas and works out which components are built from which. The pkg
// directory is organized into four areas:
//
//  1. Domain logic: [design], [normalize], [hierarchy], [analysis], [report]
//  2. Infrastructure: [cache], [storage], [session], [config], [observability]
//  3. Integrations: [integrations] and the Figma client
//  4. Orchestration: [pipeline] (fetch → select → build → propagate → analyze)
//
// # Architecture
//
// The typical data flow:
//
//	Figma file API (or a saved file)
//	         ↓
//	    [design] package (node tree, canvas selection)
//	         ↓
//	    [hierarchy] package (direct containment per component)
//	         ↓
//	    [hierarchy/transform] package (transitive closure, cycle diagnostics)
//	         ↓
//	    [analysis] and [report] packages (complexity, appearances, estimate)
//	         ↓
//	    JSON artifacts and a text report ([io])
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	runner.Fetcher = figma.NewClient(token, "", nil)
//	result, err := runner.Execute(ctx, pipeline.Options{FileKey: key, Canvas: 2})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Report)
//
// # Main Packages
//
//   - [design]: the design node tree and canvas selection
//   - [normalize]: component name normalization
//   - [hierarchy]: containment records keyed by component id
//   - [analysis]: complexity report, appearance index and time estimate
//   - [report]: the plain text appearance report
//   - [io]: JSON import and export of every artifact
//   - [pipeline]: the staged run with result caching
//   - [server]: the HTTP API
//
// [design]: github.com/matzehuels/componentscope/pkg/design
// [normalize]: github.com/matzehuels/componentscope/pkg/normalize
// [hierarchy]: github.com/matzehuels/componentscope/pkg/hierarchy
// [hierarchy/transform]: github.com/matzehuels/componentscope/pkg/hierarchy/transform
// [analysis]: github.com/matzehuels/componentscope/pkg/analysis
// [report]: github.com/matzehuels/componentscope/pkg/report
// [io]: github.com/matzehuels/componentscope/pkg/io
// [cache]: github.com/matzehuels/componentscope/pkg/cache
// [storage]: github.com/matzehuels/componentscope/pkg/storage
// [session]: github.com/matzehuels/componentscope/pkg/session
// [config]: github.com/matzehuels/componentscope/pkg/config
// [observability]: github.com/matzehuels/componentscope/pkg/observability
// [integrations]: github.com/matzehuels/componentscope/pkg/integrations
// [pipeline]: github.com/matzehuels/componentscope/pkg/pipeline
// [server]: github.com/matzehuels/componentscope/pkg/server
package pkg
