package pipeline

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/componentscope/pkg/cache"
	"github.com/matzehuels/componentscope/pkg/design"
	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	pkgio "github.com/matzehuels/componentscope/pkg/io"
	"github.com/matzehuels/componentscope/pkg/observability"
)

// Fetcher retrieves design files by key. *figma.Client implements it.
type Fetcher interface {
	FetchFile(ctx context.Context, key string, refresh bool) (*design.File, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching and error mapping stay identical.
//
// The Runner is stateless except for its collaborators; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Set Fetcher to analyze files by key.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		components := 0
		if result != nil {
			components = result.Hierarchy.Len()
		}
		observability.Pipeline().OnRunComplete(ctx, components, time.Since(start), err)
	}()

	// Stage 1: Fetch
	f, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Stage 2: Select
	canvas, index, err := SelectCanvas(f, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("selected canvas", "canvas", canvas.Name, "position", index)

	hash, err := DocumentHash(f)
	if err != nil {
		return nil, err
	}

	// Stages 3-7
	a, hit, err := r.AnalyzeWithCacheInfo(ctx, hash, canvas, opts)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("analyzed components",
		"canvas", canvas.Name,
		"components", a.Hierarchy.Len(),
		"cycles", len(a.Cycles),
		"cached", hit,
		"duration", time.Since(start))

	return &Result{
		Analysis:     a,
		File:         f,
		FileKey:      opts.FileKey,
		Canvas:       canvas,
		CanvasIndex:  index,
		DocumentHash: hash,
		CacheInfo:    CacheInfo{AnalysisHit: hit},
	}, nil
}

// Fetch returns opts.Document when set, and otherwise fetches opts.FileKey
// through the runner's Fetcher.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*design.File, error) {
	if opts.Document != nil {
		if opts.Document.Document == nil {
			return nil, mapError(design.ErrNoDocument)
		}
		return opts.Document, nil
	}
	if r.Fetcher == nil {
		return nil, apperrors.New(apperrors.ErrCodeInternal, "no design source configured")
	}

	var f *design.File
	d, err := observability.Stage(ctx, observability.StageFetch, func() (err error) {
		f, err = r.Fetcher.FetchFile(ctx, opts.FileKey, opts.Refresh)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	r.Logger.Debug("fetched design file", "file", f.Name, "nodes", f.Document.Count(), "duration", d)
	return f, nil
}

// SelectCanvas picks the canvas named by opts.CanvasName, or else the canvas
// at the 1-based position opts.Canvas. It returns the canvas and its position.
func SelectCanvas(f *design.File, opts Options) (*design.Node, int, error) {
	canvases, err := f.Canvases()
	if err != nil {
		return nil, 0, mapError(err)
	}
	if opts.CanvasName != "" {
		for i, c := range canvases {
			if strings.EqualFold(c.Name, opts.CanvasName) {
				return c, i + 1, nil
			}
		}
		return nil, 0, apperrors.New(apperrors.ErrCodeCanvasOutOfRange, "no canvas named %q", opts.CanvasName)
	}
	n := opts.Canvas
	if n == 0 {
		n = 1
	}
	if err := apperrors.ValidateCanvasIndex(n, len(canvases)); err != nil {
		return nil, 0, err
	}
	return canvases[n-1], n, nil
}

// DocumentHash returns the content hash of f used in cache keys.
func DocumentHash(f *design.File) (string, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteDocument(f, &buf); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeSerialization, err, "encode document")
	}
	return cache.Hash(buf.Bytes()), nil
}

// AnalyzeWithCacheInfo analyzes canvas with result caching and returns cache
// hit info. documentHash identifies the document canvas belongs to.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, documentHash string, canvas *design.Node, opts Options) (*Analysis, bool, error) {
	r.applyLogger(&opts)
	if err := opts.setAnalyzeDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.AnalysisKey(documentHash, opts.AnalysisKeyOpts(canvas.ID))
	keyType := cache.KeyType(cacheKey)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			a, err := decodeAnalysis(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, keyType)
				return a, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
	}

	a, err := Analyze(ctx, canvas, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := encodeAnalysis(a); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLAnalysis); err == nil {
			observability.Cache().OnCacheSet(ctx, keyType, len(data))
		}
	}
	return a, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
