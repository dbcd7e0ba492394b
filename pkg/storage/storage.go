// Package storage persists analysis runs.
//
// A [Run] is the record of one analysis: which file and canvas were analyzed,
// summary numbers, and the produced artifacts (hierarchy, complexity and
// appearance JSON plus the text report). Runs are identified by a random
// UUID assigned on first save.
//
// Two backends implement [Store]:
//
//   - [DirStore] writes each run to <dir>/<run-id>/ using the same artifact
//     file names the CLI writes, plus a run.json metadata file.
//   - [MongoStore] keeps each run as one document in a MongoDB collection.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/componentscope/pkg/analysis"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one stored analysis.
type Run struct {
	ID          string                `json:"id" bson:"_id"`
	CreatedAt   time.Time             `json:"createdAt" bson:"createdAt"`
	FileKey     string                `json:"fileKey,omitempty" bson:"fileKey,omitempty"`
	FileName    string                `json:"fileName,omitempty" bson:"fileName,omitempty"`
	Canvas      string                `json:"canvas" bson:"canvas"`
	CanvasIndex int                   `json:"canvasIndex" bson:"canvasIndex"`
	Components  int                   `json:"components" bson:"components"`
	Cycles      int                   `json:"cycles" bson:"cycles"`
	Estimate    analysis.TimeEstimate `json:"timeEstimation" bson:"timeEstimation"`
	Artifacts   Artifacts             `json:"-" bson:"artifacts"`
}

// Artifacts holds the encoded outputs of a run. Nil fields were not kept.
type Artifacts struct {
	Hierarchy   []byte `bson:"hierarchy,omitempty"`
	Complexity  []byte `bson:"complexity,omitempty"`
	Appearances []byte `bson:"appearances,omitempty"`
	Report      []byte `bson:"report,omitempty"`
}

// NewRun returns a run with a fresh id and creation time.
func NewRun() *Run {
	return &Run{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// Store is the interface for run storage backends.
type Store interface {
	// Save stores run, assigning an ID and CreatedAt when unset.
	// Saving a run with an existing ID replaces it.
	Save(ctx context.Context, run *Run) error

	// Load returns the run with its artifacts. A missing run yields an
	// error matching [ErrNotFound].
	Load(ctx context.Context, id string) (*Run, error)

	// List returns stored runs, newest first, without artifacts.
	List(ctx context.Context) ([]*Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

func prepare(run *Run) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
}
