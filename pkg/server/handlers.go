package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/componentscope/pkg/buildinfo"
	"github.com/matzehuels/componentscope/pkg/design"
	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	pkgio "github.com/matzehuels/componentscope/pkg/io"
	"github.com/matzehuels/componentscope/pkg/observability"
	"github.com/matzehuels/componentscope/pkg/pipeline"
	"github.com/matzehuels/componentscope/pkg/storage"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RunResponse is a run with its artifacts inlined.
type RunResponse struct {
	*storage.Run
	Report      string          `json:"report"`
	Hierarchy   json.RawMessage `json:"hierarchy,omitempty"`
	Complexity  json.RawMessage `json:"complexity,omitempty"`
	Appearances json.RawMessage `json:"appearances,omitempty"`
	Cached      bool            `json:"cached"`
}

func newRunResponse(run *storage.Run) RunResponse {
	return RunResponse{
		Run:         run,
		Report:      string(run.Artifacts.Report),
		Hierarchy:   run.Artifacts.Hierarchy,
		Complexity:  run.Artifacts.Complexity,
		Appearances: run.Artifacts.Appearances,
	}
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	code := string(apperrors.GetCode(err))
	if code == "" {
		code = string(apperrors.ErrCodeInternal)
	}
	msg := apperrors.UserMessage(err)
	if d := apperrors.RetryAfter(err); d > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(d.Round(time.Second)/time.Second)))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

// analyzeOptions reads pipeline options from the query string.
func analyzeOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		FileKey:     q.Get("file_key"),
		CanvasName:  q.Get("canvas_name"),
		Refresh:     q.Get("refresh") == "true",
		LookThrough: q.Get("look_through") == "true",
	}
	if v := q.Get("canvas"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeCanvasOutOfRange, "canvas must be a number, got %q", v)
		}
		opts.Canvas = n
	}
	if v := q.Get("minutes_per_component"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "minutes_per_component must be a number, got %q", v)
		}
		opts.MinutesPerComponent = n
	}
	return opts, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, err := analyzeOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if opts.FileKey == "" {
		f, err := readDocument(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Document = f
	}

	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	run, err := result.Run(s.cfg.KeepArtifacts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// The response always carries the full artifacts; KeepArtifacts only
	// controls what is stored.
	full, err := result.Artifacts(true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.cfg.Store != nil {
		if err := saveRun(r, s.cfg.Store, run); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	resp := newRunResponse(run)
	resp.Hierarchy = full.Hierarchy
	resp.Complexity = full.Complexity
	resp.Appearances = full.Appearances
	resp.Cached = result.CacheInfo.AnalysisHit
	writeJSON(w, http.StatusOK, resp)
}

func readDocument(w http.ResponseWriter, r *http.Request) (*design.File, error) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()
	f, err := pkgio.ReadDocument(body)
	if err != nil {
		if apperrors.GetCode(err) != "" {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "request body is not a design file")
	}
	return f, nil
}

func saveRun(r *http.Request, store storage.Store, run *storage.Run) error {
	_, err := observability.Stage(r.Context(), observability.StageSave, func() error {
		return store.Save(r.Context(), run)
	})
	return err
}

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.cfg.Store == nil {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeNotFound, "run storage is disabled"))
		return false
	}
	return true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	runs, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*storage.Run, bool) {
	if !s.requireStore(w, r) {
		return nil, false
	}
	run, err := s.cfg.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return run, true
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if run, ok := s.loadRun(w, r); ok {
		writeJSON(w, http.StatusOK, newRunResponse(run))
	}
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(run.Artifacts.Report)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	if err := s.cfg.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
