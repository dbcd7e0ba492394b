package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	pkgio "github.com/matzehuels/componentscope/pkg/io"
)

// RunFile is the metadata file written next to a run's artifacts.
const RunFile = "run.json"

// DirStore stores runs as directories on the local filesystem.
type DirStore struct {
	dir string
}

// DefaultDir returns $XDG_DATA_HOME/componentscope/runs, falling back to
// ~/.local/share/componentscope/runs.
func DefaultDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "componentscope", "runs"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "componentscope", "runs"), nil
}

// NewDirStore creates a store rooted at dir, or [DefaultDir] when dir is empty.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *DirStore) Dir() string { return s.dir }

// RunDir returns the directory holding the run with the given id.
func (s *DirStore) RunDir(id string) string { return filepath.Join(s.dir, id) }

type artifactFile struct {
	name string
	data *[]byte
}

func artifactFiles(a *Artifacts) []artifactFile {
	return []artifactFile{
		{pkgio.HierarchyFile, &a.Hierarchy},
		{pkgio.ComplexityFile, &a.Complexity},
		{pkgio.AppearanceFile, &a.Appearances},
		{pkgio.ReportFile, &a.Report},
	}
}

// Save writes the run into a temporary directory and renames it into place,
// so a run directory is either complete or absent.
func (s *DirStore) Save(ctx context.Context, run *Run) error {
	prepare(run)
	if err := apperrors.ValidateRunID(run.ID); err != nil {
		return err
	}

	tmp, err := os.MkdirTemp(s.dir, ".run-*")
	if err != nil {
		return fmt.Errorf("create temp run dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	meta, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSerialization, err, "encode run %s", run.ID)
	}
	if err := os.WriteFile(filepath.Join(tmp, RunFile), meta, 0644); err != nil {
		return fmt.Errorf("write run metadata: %w", err)
	}
	for _, f := range artifactFiles(&run.Artifacts) {
		if *f.data == nil {
			continue
		}
		if err := os.WriteFile(filepath.Join(tmp, f.name), *f.data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	dst := s.RunDir(run.ID)
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("replace run %s: %w", run.ID, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

func (s *DirStore) readMeta(id string) (*Run, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(id), RunFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeRunNotFound, ErrNotFound, "run %s not found", id)
		}
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSerialization, err, "decode run %s", id)
	}
	return &run, nil
}

func (s *DirStore) Load(ctx context.Context, id string) (*Run, error) {
	if err := apperrors.ValidateRunID(id); err != nil {
		return nil, err
	}
	run, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	for _, f := range artifactFiles(&run.Artifacts) {
		data, err := os.ReadFile(filepath.Join(s.RunDir(id), f.name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		*f.data = data
	}
	return run, nil
}

func (s *DirStore) List(ctx context.Context) ([]*Run, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read run dir: %w", err)
	}
	runs := make([]*Run, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || apperrors.ValidateRunID(e.Name()) != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := s.readMeta(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

func (s *DirStore) Delete(ctx context.Context, id string) error {
	if err := apperrors.ValidateRunID(id); err != nil {
		return err
	}
	if err := os.RemoveAll(s.RunDir(id)); err != nil {
		return fmt.Errorf("remove run %s: %w", id, err)
	}
	return nil
}

func (s *DirStore) Close() error { return nil }

var _ Store = (*DirStore)(nil)
