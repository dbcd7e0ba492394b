package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/componentscope/pkg/design"
	"github.com/matzehuels/componentscope/pkg/httputil"
	"github.com/matzehuels/componentscope/pkg/integrations"
	"github.com/matzehuels/componentscope/pkg/pipeline"
	"github.com/matzehuels/componentscope/pkg/storage"
)

const designFile = `{
  "name": "Design System",
  "document": {
    "id": "0:0", "name": "Document", "type": "DOCUMENT",
    "children": [
      {"id": "1:0", "name": "Cover", "type": "CANVAS"},
      {"id": "2:0", "name": "Components", "type": "CANVAS", "children": [
        {"id": "2:1", "name": "Icon", "type": "COMPONENT"},
        {"id": "2:2", "name": "Card", "type": "COMPONENT", "children": [
          {"id": "2:3", "name": "Icon", "type": "INSTANCE"}
        ]}
      ]}
    ]
  }
}`

const designReport = "- Card\n\n- Icon\n    - Card\n\n"

func newTestServer(t *testing.T, withStore bool) (*httptest.Server, storage.Store) {
	t.Helper()
	cfg := Config{Runner: pipeline.NewRunner(nil, nil, nil), KeepArtifacts: true}
	var store storage.Store
	if withStore {
		s, err := storage.NewDirStore(t.TempDir())
		require.NoError(t, err)
		store = s
		cfg.Store = s
	}
	ts := httptest.NewServer(New(cfg))
	t.Cleanup(ts.Close)
	return ts, store
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func analyze(t *testing.T, ts *httptest.Server, query, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/analyze"+query, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	h := decode[HealthResponse](t, resp)
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Build.Version)
}

func TestAnalyzeAndFetchRun(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp := analyze(t, ts, "?canvas=2", designFile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := decode[RunResponse](t, resp)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "Components", run.Canvas)
	assert.Equal(t, 2, run.Components)
	assert.Equal(t, designReport, run.Report)
	assert.JSONEq(t, `{"2:1":{"name":"Icon","children":[]},"2:2":{"name":"Card","children":["2:1"],"direct":["2:1"]}}`, string(run.Hierarchy))

	resp, err := http.Get(ts.URL + "/v1/runs/" + run.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stored := decode[RunResponse](t, resp)
	assert.Equal(t, run.ID, stored.ID)
	assert.Equal(t, designReport, stored.Report)
	assert.NotEmpty(t, stored.Complexity)

	resp, err = http.Get(ts.URL + "/v1/runs/" + run.ID + "/report")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, designReport, string(body))

	resp, err = http.Get(ts.URL + "/v1/runs")
	require.NoError(t, err)
	list := decode[struct{ Runs []storage.Run }](t, resp)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, run.ID, list.Runs[0].ID)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/runs/"+run.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/v1/runs/" + run.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	e := decode[ErrorResponse](t, resp)
	assert.Equal(t, "RUN_NOT_FOUND", e.Code)
}

func TestAnalyzeErrors(t *testing.T) {
	ts, _ := newTestServer(t, false)

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"canvas out of range", "?canvas=5", designFile, http.StatusBadRequest, "CANVAS_OUT_OF_RANGE"},
		{"canvas not a number", "?canvas=two", designFile, http.StatusBadRequest, "CANVAS_OUT_OF_RANGE"},
		{"unknown canvas name", "?canvas_name=Nope", designFile, http.StatusBadRequest, "CANVAS_OUT_OF_RANGE"},
		{"not json", "", "<html>", http.StatusBadRequest, "INVALID_DOCUMENT"},
		{"no document", "", `{"name":"x"}`, http.StatusBadRequest, "INVALID_DOCUMENT"},
		{"no canvases", "", `{"document":{"id":"0:0","type":"DOCUMENT"}}`, http.StatusBadRequest, "NO_CANVAS"},
		{"bad minutes", "?minutes_per_component=x", designFile, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad file key", "?file_key=../etc", "", http.StatusBadRequest, "INVALID_FILE_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := analyze(t, ts, tt.query, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			e := decode[ErrorResponse](t, resp)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Error)
		})
	}
}

type limitedFetcher struct{}

func (limitedFetcher) FetchFile(context.Context, string, bool) (*design.File, error) {
	return nil, fmt.Errorf("fetch file: %w", &httputil.RetryableError{
		Err:   integrations.ErrRateLimited,
		After: 42 * time.Second,
	})
}

func TestAnalyzeRateLimited(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, nil)
	runner.Fetcher = limitedFetcher{}
	ts := httptest.NewServer(New(Config{Runner: runner}))
	defer ts.Close()

	resp := analyze(t, ts, "?file_key=aBcD1234efGH5678", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "42", resp.Header.Get("Retry-After"))
	e := decode[ErrorResponse](t, resp)
	assert.Equal(t, "RATE_LIMITED", e.Code)
}

func TestAnalyzeWithoutStore(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp := analyze(t, ts, "?canvas_name=components", designFile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := decode[RunResponse](t, resp)
	assert.Equal(t, designReport, run.Report)

	resp, err := http.Get(ts.URL + "/v1/runs")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetRunInvalidID(t *testing.T) {
	ts, _ := newTestServer(t, true)
	resp, err := http.Get(ts.URL + "/v1/runs/not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[ErrorResponse](t, resp)
	assert.Equal(t, "INVALID_RUN_ID", e.Code)
}

func TestMetrics(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "go_goroutines")
}
