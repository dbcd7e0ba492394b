package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	pkgio "github.com/matzehuels/componentscope/pkg/io"
	"github.com/matzehuels/componentscope/pkg/pipeline"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	input         string // saved design file instead of the API
	canvas        int    // 1-based canvas position
	canvasName    string // canvas name, wins over canvas
	lookThrough   bool   // count components nested in frames and groups
	minutes       int    // review minutes per component
	refresh       bool   // bypass caches
	noCache       bool   // disable caches entirely
	out           string // artifact directory
	keepArtifacts bool   // write the JSON artifacts, not only the report
	saveDocument  bool   // write the fetched design file next to the artifacts
	noStore       bool   // do not record the run
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	opts := analyzeOpts{out: "."}

	cmd := &cobra.Command{
		Use:   "analyze [file-key | file-url]",
		Short: "Analyze component containment on one canvas",
		Long: `Fetch a design file, select a canvas and compute which components contain
which others. Writes componentHierarchy.json, componentComplexity.json,
componentAppearanceAnalysis.json and componentAppearanceReport.txt.

The file key defaults to $FILE_ID. Without --canvas or --canvas-name the
canvas is chosen interactively, or the first canvas is used when the
terminal is not interactive.`,
		Example: `  componentscope analyze aBcD1234efGH5678 --canvas 2
  componentscope analyze https://www.figma.com/design/aBcD1234efGH5678/DS
  componentscope analyze --input designDocument.json --canvas-name Components`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyAnalyzeDefaults(cmd, &opts)
			popts, err := c.pipelineOptions(args, &opts)
			if err != nil {
				return err
			}
			return c.runAnalyze(cmd.Context(), newPrinter(cmd.OutOrStdout()), popts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "analyze a saved design file (JSON) instead of calling the API")
	cmd.Flags().IntVarP(&opts.canvas, "canvas", "c", 0, "canvas to analyze (1-based)")
	cmd.Flags().StringVar(&opts.canvasName, "canvas-name", "", "canvas to analyze, by name")
	cmd.Flags().BoolVar(&opts.lookThrough, "look-through", false, "also count components nested in frames and groups")
	cmd.Flags().IntVar(&opts.minutes, "minutes-per-component", 0, "review minutes per component (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response and result caches")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.out, "out", "o", opts.out, "directory for the output files")
	cmd.Flags().BoolVar(&opts.keepArtifacts, "keep-artifacts", true, "write the JSON artifacts, not only the text report")
	cmd.Flags().BoolVar(&opts.saveDocument, "save-document", false, "write the fetched design file to "+pkgio.DocumentFile)
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not record the run")

	return cmd
}

// applyAnalyzeDefaults fills flags the user did not set from the config.
func (c *CLI) applyAnalyzeDefaults(cmd *cobra.Command, opts *analyzeOpts) {
	cfg := c.Config.Analysis
	if !cmd.Flags().Changed("minutes-per-component") {
		opts.minutes = cfg.MinutesPerComponent
	}
	if !cmd.Flags().Changed("look-through") {
		opts.lookThrough = cfg.LookThrough
	}
	if !cmd.Flags().Changed("keep-artifacts") {
		opts.keepArtifacts = cfg.KeepArtifacts
	}
}

// pipelineOptions resolves the analysis source and settings.
func (c *CLI) pipelineOptions(args []string, opts *analyzeOpts) (pipeline.Options, error) {
	popts := pipeline.Options{
		Refresh:             opts.refresh,
		Canvas:              opts.canvas,
		CanvasName:          opts.canvasName,
		LookThrough:         opts.lookThrough,
		MinutesPerComponent: opts.minutes,
		Logger:              c.Logger,
	}

	if opts.input != "" {
		if len(args) > 0 {
			return popts, fmt.Errorf("--input and a file key are mutually exclusive")
		}
		f, err := pkgio.ImportDocument(opts.input)
		if err != nil {
			return popts, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "read %s", opts.input)
		}
		popts.Document = f
		return popts, nil
	}

	ref := c.Config.Figma.FileID
	if len(args) > 0 {
		ref = args[0]
	}
	if ref == "" {
		return popts, fmt.Errorf("no file key given (pass one or set FILE_ID)")
	}
	key, err := apperrors.ExtractFileKey(ref)
	if err != nil {
		return popts, err
	}
	popts.FileKey = key
	return popts, nil
}

func (c *CLI) runAnalyze(ctx context.Context, p *printer, popts pipeline.Options, opts *analyzeOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("open result cache: %w", err)
	}
	defer runner.Close()

	if popts.Document == nil {
		client, err := c.newFigmaClient(ctx, opts.noCache)
		if err != nil {
			return err
		}
		runner.Fetcher = client

		spinner := newSpinnerWithContext(ctx, "Fetching "+popts.FileKey+"...")
		spinner.Start()
		f, err := runner.Fetch(ctx, popts)
		if err != nil {
			spinner.StopWithError("Fetch failed")
			return err
		}
		spinner.Stop()
		popts.Document = f
	}

	if popts.Canvas == 0 && popts.CanvasName == "" && canPrompt() {
		// Selection errors are reported by Execute.
		if canvases, err := popts.Document.Canvases(); err == nil && len(canvases) > 1 {
			n, err := pickCanvas(canvases)
			if err != nil {
				return err
			}
			popts.Canvas = n
		}
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done("Analyzed canvas", "canvas", result.Canvas.Name, "components", result.Hierarchy.Len())

	p.cycles(result.Cycles)

	if err := writeArtifacts(p, result, opts); err != nil {
		return err
	}

	var runID string
	if !opts.noStore {
		if runID, err = c.storeRun(ctx, result, opts.keepArtifacts); err != nil {
			c.Logger.Warn("run not recorded", "error", err)
		}
	}

	p.newline()
	p.success("Canvas %s", StyleHighlight.Render(fmt.Sprintf("%d: %s", result.CanvasIndex, result.Canvas.Name)))
	p.summary(result.Hierarchy.Len(), len(result.Cycles), result.CacheInfo.AnalysisHit)
	p.complexity(result.Complexity)
	p.estimate(result.Estimate)
	if runID != "" {
		p.newline()
		p.nextStep("Show this run again", fmt.Sprintf("%s runs report %s", appName, runID))
	}
	return nil
}

// writeArtifacts writes the analysis outputs into opts.out.
func writeArtifacts(p *printer, result *pipeline.Result, opts *analyzeOpts) error {
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := func(name string) string { return filepath.Join(opts.out, name) }

	if opts.saveDocument {
		if err := pkgio.ExportDocument(result.File, path(pkgio.DocumentFile)); err != nil {
			return err
		}
		p.file(path(pkgio.DocumentFile))
	}

	if opts.keepArtifacts {
		if err := pkgio.ExportHierarchy(result.Hierarchy, path(pkgio.HierarchyFile)); err != nil {
			return err
		}
		p.file(path(pkgio.HierarchyFile))

		if err := pkgio.ExportComplexity(result.Complexity, path(pkgio.ComplexityFile)); err != nil {
			return err
		}
		p.file(path(pkgio.ComplexityFile))

		app := pkgio.Appearances{Index: result.Appearances, Estimate: result.Estimate}
		if err := pkgio.ExportAppearances(app, path(pkgio.AppearanceFile)); err != nil {
			return err
		}
		p.file(path(pkgio.AppearanceFile))
	}

	if err := os.WriteFile(path(pkgio.ReportFile), result.Report, 0o644); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSerialization, err, "write report")
	}
	p.file(path(pkgio.ReportFile))
	return nil
}

// storeRun records the result in the configured run store.
func (c *CLI) storeRun(ctx context.Context, result *pipeline.Result, keepArtifacts bool) (string, error) {
	store, err := c.newStore(ctx)
	if err != nil {
		return "", err
	}
	defer store.Close()

	run, err := result.Run(keepArtifacts)
	if err != nil {
		return "", err
	}
	if err := store.Save(ctx, run); err != nil {
		return "", err
	}
	c.Logger.Debug("recorded run", "id", run.ID)
	return run.ID, nil
}
