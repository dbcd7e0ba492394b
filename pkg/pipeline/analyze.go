package pipeline

import (
	"context"

	"github.com/matzehuels/componentscope/pkg/analysis"
	"github.com/matzehuels/componentscope/pkg/design"
	"github.com/matzehuels/componentscope/pkg/hierarchy"
	"github.com/matzehuels/componentscope/pkg/hierarchy/transform"
	"github.com/matzehuels/componentscope/pkg/observability"
	"github.com/matzehuels/componentscope/pkg/report"
)

// Analyze runs the build, propagate, classify, index and render stages over
// canvas. It performs no I/O besides logging and hooks.
func Analyze(ctx context.Context, canvas *design.Node, opts Options) (*Analysis, error) {
	if err := opts.setAnalyzeDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	out := &Analysis{}

	var h *hierarchy.Hierarchy
	b := hierarchy.NewBuilder(hierarchy.Options{LookThrough: opts.LookThrough})
	d, err := observability.Stage(ctx, observability.StageBuild, func() (err error) {
		h, err = b.Build(canvas)
		return err
	})
	out.Stats.BuildTime = d
	if err != nil {
		return nil, mapError(err)
	}
	out.Stats.Build = b.Stats()
	logger.Debug("built hierarchy",
		"components", h.Len(),
		"edges", h.EdgeCount(),
		"orphans", out.Stats.Build.Orphans,
		"duration", d)

	cycles, err := transform.FindCycles(h)
	if err != nil {
		return nil, mapError(err)
	}
	out.Cycles = cycles
	for _, c := range cycles {
		observability.Pipeline().OnCycle(ctx, c.IDs)
		logger.Warn("components contain each other", "names", c.Names)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out.Stats.PropagateTime, _ = observability.Stage(ctx, observability.StagePropagate, func() error {
		out.Stats.Propagate = transform.Propagate(h)
		return nil
	})
	logger.Debug("propagated containment",
		"relaxations", out.Stats.Propagate.Relaxations,
		"added", out.Stats.Propagate.Added,
		"duration", out.Stats.PropagateTime)
	out.Hierarchy = h

	classify, _ := observability.Stage(ctx, observability.StageClassify, func() error {
		out.Complexity = analysis.Classify(h)
		return nil
	})

	index, _ := observability.Stage(ctx, observability.StageIndex, func() error {
		out.Appearances = analysis.Index(h)
		out.Estimate = analysis.Estimate(h.Len(), opts.MinutesPerComponent)
		out.Report = report.Render(out.Appearances)
		return nil
	})

	out.Stats.AnalyzeTime = out.Stats.BuildTime + out.Stats.PropagateTime + classify + index
	return out, nil
}

// setAnalyzeDefaults applies the defaults Analyze needs without requiring a
// file key, so Analyze can run on any node.
func (o *Options) setAnalyzeDefaults() error {
	doc := o.Document
	if o.Document == nil {
		o.Document = &design.File{}
	}
	err := o.ValidateAndSetDefaults()
	o.Document = doc
	return err
}
