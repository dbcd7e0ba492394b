package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/componentscope/pkg/analysis"
	"github.com/matzehuels/componentscope/pkg/cache"
	"github.com/matzehuels/componentscope/pkg/design"
	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	"github.com/matzehuels/componentscope/pkg/hierarchy"
	"github.com/matzehuels/componentscope/pkg/httputil"
	"github.com/matzehuels/componentscope/pkg/integrations"
	"github.com/matzehuels/componentscope/pkg/observability"
)

func node(id, name string, typ design.NodeType, children ...*design.Node) *design.Node {
	return &design.Node{ID: id, Name: name, Type: typ, Children: children}
}

// sampleFile has a cover page and a component page where Card uses Button
// next to a layout frame, and Button's default variant uses Icon.
func sampleFile() *design.File {
	return &design.File{
		Name: "Design System",
		Document: node("0:0", "Document", design.TypeDocument,
			node("1:0", "Cover", design.TypeCanvas),
			node("2:0", "Components", design.TypeCanvas,
				node("2:1", "Button", design.TypeComponentSet,
					node("2:2", "State=Default", design.TypeComponent,
						node("3:2", "Icon", design.TypeInstance),
					),
				),
				node("3:1", "Icon", design.TypeComponent),
				node("4:1", "Card", design.TypeComponent,
					node("4:2", "Body", design.TypeFrame),
					node("5:1", "Button", design.TypeInstance),
				),
			),
		),
	}
}

const sampleReport = "- Card\n\n" +
	"- Button\n    - Card\n\n" +
	"- Button / State=Default\n    - Button\n\n" +
	"- Icon\n    - Button / State=Default\n\n"

type fakeFetcher struct {
	file  *design.File
	err   error
	calls int
}

func (f *fakeFetcher) FetchFile(ctx context.Context, key string, refresh bool) (*design.File, error) {
	f.calls++
	return f.file, f.err
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode apperrors.Code
	}{
		{"file key", Options{FileKey: "aBcD1234"}, ""},
		{"document", Options{Document: sampleFile()}, ""},
		{"missing source", Options{}, apperrors.ErrCodeInvalidFileKey},
		{"bad key", Options{FileKey: "../x"}, apperrors.ErrCodeInvalidFileKey},
		{"negative canvas", Options{FileKey: "aBcD1234", Canvas: -1}, apperrors.ErrCodeCanvasOutOfRange},
		{"negative minutes", Options{FileKey: "aBcD1234", MinutesPerComponent: -5}, apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
			if err == nil {
				assert.Equal(t, 1, tt.opts.Canvas)
				assert.Equal(t, DefaultMinutesPerComponent, tt.opts.MinutesPerComponent)
				assert.NotNil(t, tt.opts.Logger)
			}
		})
	}
}

func TestSelectCanvas(t *testing.T) {
	f := sampleFile()

	c, n, err := SelectCanvas(f, Options{Canvas: 2})
	require.NoError(t, err)
	assert.Equal(t, "Components", c.Name)
	assert.Equal(t, 2, n)

	c, n, err = SelectCanvas(f, Options{Canvas: 1, CanvasName: "components"})
	require.NoError(t, err)
	assert.Equal(t, "2:0", c.ID)
	assert.Equal(t, 2, n)

	_, _, err = SelectCanvas(f, Options{Canvas: 3})
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeCanvasOutOfRange))

	_, _, err = SelectCanvas(f, Options{CanvasName: "Missing"})
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeCanvasOutOfRange))

	empty := &design.File{Document: node("0:0", "Document", design.TypeDocument)}
	_, _, err = SelectCanvas(empty, Options{Canvas: 1})
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNoCanvas))
}

func TestAnalyze(t *testing.T) {
	canvas, _, err := SelectCanvas(sampleFile(), Options{Canvas: 2})
	require.NoError(t, err)

	a, err := Analyze(context.Background(), canvas, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"2:1", "2:2", "3:1", "4:1"}, a.Hierarchy.IDs())
	card, _ := a.Hierarchy.Get("4:1")
	assert.Equal(t, []string{"2:1"}, card.Direct())
	assert.ElementsMatch(t, []string{"2:1", "2:2", "3:1"}, card.Children())

	assert.Equal(t, []analysis.ComponentRef{{ID: "3:1", Name: "Icon"}}, a.Complexity.AtomicComponents)
	c, ok := a.Complexity.Complexity("4:1")
	assert.True(t, ok)
	assert.Equal(t, 3, c)

	assert.Equal(t, sampleReport, string(a.Report))
	assert.Equal(t, 4, a.Estimate.TotalComponents)
	assert.Equal(t, 0, a.Estimate.Hours)
	assert.Equal(t, 40, a.Estimate.Minutes)
	assert.Empty(t, a.Cycles)
	assert.Equal(t, 4, a.Stats.Build.Records)
}

func TestAnalyzeContainersHideComponents(t *testing.T) {
	canvas := node("1:0", "Page", design.TypeCanvas,
		node("1:1", "Icon", design.TypeComponent),
		node("1:2", "Card", design.TypeComponent,
			node("1:3", "Layout", design.TypeFrame, node("1:4", "Icon", design.TypeInstance)),
		),
	)

	a, err := Analyze(context.Background(), canvas, Options{})
	require.NoError(t, err)
	assert.Len(t, a.Complexity.AtomicComponents, 2)
	assert.Equal(t, "- Icon\n\n- Card\n\n", string(a.Report))

	a, err = Analyze(context.Background(), canvas, Options{LookThrough: true})
	require.NoError(t, err)
	card, _ := a.Hierarchy.Get("1:2")
	assert.Equal(t, []string{"1:1"}, card.Direct())
	assert.Equal(t, "- Card\n\n- Icon\n    - Card\n\n", string(a.Report))
}

func TestAnalyzeCycle(t *testing.T) {
	canvas := node("1:0", "Page", design.TypeCanvas,
		node("1:1", "A", design.TypeComponent, node("1:3", "B", design.TypeInstance)),
		node("1:2", "B", design.TypeComponent, node("1:4", "A", design.TypeInstance)),
	)

	rec := &recordingHooks{}
	observability.SetPipelineHooks(rec)
	defer observability.Reset()

	a, err := Analyze(context.Background(), canvas, Options{})
	require.NoError(t, err)
	require.Len(t, a.Cycles, 1)
	assert.Equal(t, []string{"1:1", "1:2"}, a.Cycles[0].IDs)
	assert.Equal(t, [][]string{{"1:1", "1:2"}}, rec.cycles)

	r, _ := a.Hierarchy.Get("1:1")
	assert.ElementsMatch(t, []string{"1:2", "1:1"}, r.Children())
}

func TestAnalyzeNilCanvas(t *testing.T) {
	_, err := Analyze(context.Background(), nil, Options{})
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidDocument))
	assert.ErrorIs(t, err, hierarchy.ErrNilRoot)
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	fetcher := &fakeFetcher{file: sampleFile()}
	runner := NewRunner(fc, nil, nil)
	runner.Fetcher = fetcher
	defer runner.Close()

	opts := Options{FileKey: "aBcD1234", Canvas: 2}
	first, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.AnalysisHit)
	assert.Equal(t, "Components", first.Canvas.Name)
	assert.Equal(t, 2, first.CanvasIndex)
	assert.Equal(t, "aBcD1234", first.FileKey)
	assert.NotEmpty(t, first.DocumentHash)

	second, err := runner.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.AnalysisHit)
	assert.Equal(t, first.DocumentHash, second.DocumentHash)
	assert.Equal(t, string(first.Report), string(second.Report))

	a1, err := first.Artifacts(true)
	require.NoError(t, err)
	a2, err := second.Artifacts(true)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)

	// Different options are cached separately.
	third, err := runner.Execute(ctx, Options{FileKey: "aBcD1234", Canvas: 2, MinutesPerComponent: 30})
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.AnalysisHit)
	assert.Equal(t, 2, third.Estimate.Hours)

	// Refresh bypasses the cache.
	fourth, err := runner.Execute(ctx, Options{FileKey: "aBcD1234", Canvas: 2, Refresh: true})
	require.NoError(t, err)
	assert.False(t, fourth.CacheInfo.AnalysisHit)
	assert.Equal(t, 4, fetcher.calls)
}

func TestRunnerExecuteDocument(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{Document: sampleFile(), CanvasName: "Components"})
	require.NoError(t, err)
	assert.Equal(t, sampleReport, string(res.Report))
	assert.Empty(t, res.FileKey)

	_, err = runner.Execute(context.Background(), Options{Document: &design.File{Name: "empty"}})
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidDocument))
}

func TestRunnerExecuteFetchErrors(t *testing.T) {
	tests := []struct {
		err  error
		want apperrors.Code
	}{
		{fmt.Errorf("fetch file: %w", integrations.ErrNotFound), apperrors.ErrCodeNotFound},
		{fmt.Errorf("fetch file: %w", integrations.ErrUnauthorized), apperrors.ErrCodeUnauthorized},
		{fmt.Errorf("fetch file: %w", integrations.ErrNetwork), apperrors.ErrCodeNetwork},
		{context.DeadlineExceeded, apperrors.ErrCodeTimeout},
	}
	for _, tt := range tests {
		runner := NewRunner(nil, nil, nil)
		runner.Fetcher = &fakeFetcher{err: tt.err}
		_, err := runner.Execute(context.Background(), Options{FileKey: "aBcD1234"})
		assert.Equal(t, tt.want, apperrors.GetCode(err), "fetch error %v", tt.err)
		assert.ErrorIs(t, err, tt.err)
	}

	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{FileKey: "aBcD1234"})
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInternal), "missing fetcher")
}

func TestRunnerHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetPipelineHooks(rec)
	defer observability.Reset()

	runner := NewRunner(nil, nil, nil)
	runner.Fetcher = &fakeFetcher{file: sampleFile()}
	_, err := runner.Execute(context.Background(), Options{FileKey: "aBcD1234", Canvas: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{
		observability.StageFetch,
		observability.StageBuild,
		observability.StagePropagate,
		observability.StageClassify,
		observability.StageIndex,
	}, rec.stages)
	assert.Equal(t, 4, rec.components)
	assert.NoError(t, rec.runErr)
}

func TestResultRun(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{Document: sampleFile(), Canvas: 2})
	require.NoError(t, err)

	run, err := res.Run(false)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "Design System", run.FileName)
	assert.Equal(t, "Components", run.Canvas)
	assert.Equal(t, 2, run.CanvasIndex)
	assert.Equal(t, 4, run.Components)
	assert.Equal(t, sampleReport, string(run.Artifacts.Report))
	assert.Nil(t, run.Artifacts.Hierarchy)

	run, err = res.Run(true)
	require.NoError(t, err)
	assert.NotEmpty(t, run.Artifacts.Hierarchy)
	assert.NotEmpty(t, run.Artifacts.Complexity)
	assert.NotEmpty(t, run.Artifacts.Appearances)
}

func TestMapError(t *testing.T) {
	coded := apperrors.New(apperrors.ErrCodeInvalidInput, "x")
	assert.Same(t, coded, mapError(coded))
	assert.Nil(t, mapError(nil))
	assert.Equal(t, context.Canceled, mapError(context.Canceled))

	err := mapError(fmt.Errorf("wrap: %w", design.ErrNoCanvas))
	assert.Equal(t, apperrors.ErrCodeNoCanvas, apperrors.GetCode(err))
	assert.Equal(t, "the document has no canvases", apperrors.UserMessage(err))

	err = mapError(errors.New("boom"))
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))

	limited := &httputil.RetryableError{Err: integrations.ErrRateLimited, After: 20 * time.Second}
	err = mapError(fmt.Errorf("fetch file: %w", limited))
	assert.Equal(t, apperrors.ErrCodeRateLimited, apperrors.GetCode(err))
	assert.Equal(t, 20*time.Second, apperrors.RetryAfter(err))
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu         sync.Mutex
	stages     []string
	cycles     [][]string
	components int
	runErr     error
}

func (h *recordingHooks) OnStageStart(_ context.Context, stage string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, stage)
}

func (h *recordingHooks) OnCycle(_ context.Context, ids []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cycles = append(h.cycles, ids)
}

func (h *recordingHooks) OnRunComplete(_ context.Context, components int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.components = components
	h.runErr = err
}
