package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	"github.com/matzehuels/componentscope/pkg/hierarchy/transform"
	pkgio "github.com/matzehuels/componentscope/pkg/io"
	"github.com/matzehuels/componentscope/pkg/storage"
)

// cachedAnalysis is the result cache entry. The artifacts use the same
// encoding as the files written to disk.
type cachedAnalysis struct {
	Hierarchy   json.RawMessage   `json:"hierarchy"`
	Complexity  json.RawMessage   `json:"complexity"`
	Appearances json.RawMessage   `json:"appearances"`
	Report      string            `json:"report"`
	Cycles      []transform.Cycle `json:"cycles,omitempty"`
	Stats       Stats             `json:"stats"`
}

func encodeAnalysis(a *Analysis) ([]byte, error) {
	art, err := a.Artifacts(true)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedAnalysis{
		Hierarchy:   art.Hierarchy,
		Complexity:  art.Complexity,
		Appearances: art.Appearances,
		Report:      string(art.Report),
		Cycles:      a.Cycles,
		Stats:       a.Stats,
	})
}

func decodeAnalysis(data []byte) (*Analysis, error) {
	var c cachedAnalysis
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	h, err := pkgio.ReadHierarchy(bytes.NewReader(c.Hierarchy))
	if err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}
	complexity, err := pkgio.ReadComplexity(bytes.NewReader(c.Complexity))
	if err != nil {
		return nil, fmt.Errorf("complexity: %w", err)
	}
	app, err := pkgio.ReadAppearances(bytes.NewReader(c.Appearances))
	if err != nil {
		return nil, fmt.Errorf("appearances: %w", err)
	}
	return &Analysis{
		Hierarchy:   h,
		Complexity:  complexity,
		Appearances: app.Index,
		Estimate:    app.Estimate,
		Report:      []byte(c.Report),
		Cycles:      c.Cycles,
		Stats:       c.Stats,
	}, nil
}

// Artifacts encodes the analysis outputs. With keepJSON false only the text
// report is produced, matching a run that cleans up its intermediate files.
func (a *Analysis) Artifacts(keepJSON bool) (storage.Artifacts, error) {
	art := storage.Artifacts{Report: append([]byte(nil), a.Report...)}
	if !keepJSON {
		return art, nil
	}

	var buf bytes.Buffer
	if err := pkgio.WriteHierarchy(a.Hierarchy, &buf); err != nil {
		return art, apperrors.Wrap(apperrors.ErrCodeSerialization, err, "encode hierarchy")
	}
	art.Hierarchy = bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := pkgio.WriteComplexity(a.Complexity, &buf); err != nil {
		return art, apperrors.Wrap(apperrors.ErrCodeSerialization, err, "encode complexity")
	}
	art.Complexity = bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := pkgio.WriteAppearances(pkgio.Appearances{Index: a.Appearances, Estimate: a.Estimate}, &buf); err != nil {
		return art, apperrors.Wrap(apperrors.ErrCodeSerialization, err, "encode appearances")
	}
	art.Appearances = bytes.Clone(buf.Bytes())
	return art, nil
}

// Run converts the result into a storable run record.
func (r *Result) Run(keepJSON bool) (*storage.Run, error) {
	art, err := r.Artifacts(keepJSON)
	if err != nil {
		return nil, err
	}
	run := storage.NewRun()
	run.FileKey = r.FileKey
	if r.File != nil {
		run.FileName = r.File.Name
	}
	if r.Canvas != nil {
		run.Canvas = r.Canvas.Name
	}
	run.CanvasIndex = r.CanvasIndex
	run.Components = r.Hierarchy.Len()
	run.Cycles = len(r.Cycles)
	run.Estimate = r.Estimate
	run.Artifacts = art
	return run, nil
}
