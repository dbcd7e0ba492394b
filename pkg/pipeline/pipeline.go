// Package pipeline runs the component analysis end to end.
//
// This package implements the fetch → select → build → propagate → classify
// → index → render pipeline used by the CLI and the HTTP API. Centralizing
// it keeps caching, logging and error mapping identical across entry points.
//
// # Architecture
//
// The pipeline consists of these stages:
//
//  1. Fetch: obtain the design file, from the caller or a [Fetcher]
//  2. Select: pick one canvas by 1-based position or by name
//  3. Build: resolve component-bearing nodes into a hierarchy of direct containment
//  4. Propagate: close each record's children under transitive containment
//  5. Classify: group components by complexity
//  6. Index: record which components each component appears in
//  7. Render: estimate effort and render the text report
//
// Stages 3 to 7 are pure and available separately as [Analyze]. The
// [Runner] adds fetching, canvas selection and a result cache keyed by the
// document content.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.Fetcher = figma.NewClient(token, "", httpCache)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    FileKey: "aBcD1234efGH5678",
//	    Canvas:  2,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Report)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/componentscope/pkg/analysis"
	"github.com/matzehuels/componentscope/pkg/cache"
	"github.com/matzehuels/componentscope/pkg/design"
	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	"github.com/matzehuels/componentscope/pkg/hierarchy"
	"github.com/matzehuels/componentscope/pkg/hierarchy/transform"
)

// DefaultMinutesPerComponent is the effort assumed per component.
const DefaultMinutesPerComponent = analysis.DefaultMinutesPerComponent

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source
	FileKey string `json:"file_key,omitempty"`
	Refresh bool   `json:"refresh,omitempty"` // bypass the response and result caches

	// Canvas selection; CanvasName wins over Canvas when both are set.
	Canvas     int    `json:"canvas,omitempty"` // 1-based
	CanvasName string `json:"canvas_name,omitempty"`

	// Analysis
	LookThrough         bool `json:"look_through,omitempty"`
	MinutesPerComponent int  `json:"minutes_per_component,omitempty"`

	// Runtime options (not serialized)
	Document *design.File `json:"-"` // analyze this file instead of fetching
	Logger   *log.Logger  `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Document == nil {
		if err := apperrors.ValidateFileKey(o.FileKey); err != nil {
			return err
		}
	}
	if o.CanvasName == "" && o.Canvas < 0 {
		return apperrors.New(apperrors.ErrCodeCanvasOutOfRange, "canvas must be positive, got %d", o.Canvas)
	}
	if o.Canvas == 0 && o.CanvasName == "" {
		o.Canvas = 1
	}
	if o.MinutesPerComponent < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "minutes per component cannot be negative")
	}
	if o.MinutesPerComponent == 0 {
		o.MinutesPerComponent = DefaultMinutesPerComponent
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// AnalysisKeyOpts returns cache key options for the analysis of canvasID.
func (o *Options) AnalysisKeyOpts(canvasID string) cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{
		Canvas:              canvasID,
		LookThrough:         o.LookThrough,
		MinutesPerComponent: o.MinutesPerComponent,
	}
}

// Analysis is the output of the pure analysis stages.
type Analysis struct {
	// Hierarchy holds direct containment and the propagated closure.
	Hierarchy *hierarchy.Hierarchy

	Complexity  analysis.ComplexityReport
	Appearances *analysis.AppearanceIndex
	Estimate    analysis.TimeEstimate

	// Report is the rendered text report.
	Report []byte

	// Cycles lists mutually containing components. They do not stop the
	// analysis; propagation terminates regardless.
	Cycles []transform.Cycle

	Stats Stats
}

// Result contains the outputs of a pipeline run.
type Result struct {
	*Analysis

	// File is the analyzed design file and FileKey its key, if it was fetched.
	File    *design.File
	FileKey string

	// Canvas is the selected canvas and CanvasIndex its 1-based position.
	Canvas      *design.Node
	CanvasIndex int

	// DocumentHash is the content hash of the design file.
	DocumentHash string

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Build         hierarchy.Stats `json:"build"`
	Propagate     transform.Stats `json:"propagate"`
	BuildTime     time.Duration   `json:"build_time"`
	PropagateTime time.Duration   `json:"propagate_time"`
	AnalyzeTime   time.Duration   `json:"analyze_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalysisHit bool // Whether the analysis came from the result cache
}
