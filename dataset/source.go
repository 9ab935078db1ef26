package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/viant/movierec/catalog"
	"github.com/viant/movierec/engine"
	"github.com/viant/movierec/matrix"
)

// Source reads the two artifacts a Dataset is built from. Key identifies the
// artifacts for the process-wide cache.
type Source interface {
	Key() string
	ReadMatrix(ctx context.Context) (*matrix.Matrix, error)
	ReadMovies(ctx context.Context) ([]catalog.Movie, error)
}

// Options locates the artifacts on disk.
type Options struct {
	// MatrixPath is the SQLite similarity matrix artifact.
	MatrixPath string
	// MetadataPath is the JSON metadata bundle.
	MetadataPath string
}

// FileSource reads artifacts from the local filesystem.
type FileSource struct {
	Options
}

// Key returns the absolute artifact paths.
func (s FileSource) Key() string {
	return absPath(s.MatrixPath) + "|" + absPath(s.MetadataPath)
}

// ReadMatrix opens the matrix artifact read-only and loads every row.
func (s FileSource) ReadMatrix(ctx context.Context) (*matrix.Matrix, error) {
	engine.RegisterSimilarityFunctions()
	db, err := engine.OpenReadOnly(s.MatrixPath)
	if err != nil {
		return nil, loadError(s.MatrixPath, StageOpen, err)
	}
	defer db.Close()

	store, err := matrix.NewReader(db)
	if err != nil {
		return nil, loadError(s.MatrixPath, StageOpen, err)
	}
	m, err := store.Read(ctx)
	if err != nil {
		if errors.Is(err, matrix.ErrInconsistent) {
			return nil, loadError(s.MatrixPath, StageValidate, err)
		}
		return nil, loadError(s.MatrixPath, StageRead, err)
	}
	return m, nil
}

// ReadMovies decodes the metadata bundle.
func (s FileSource) ReadMovies(_ context.Context) ([]catalog.Movie, error) {
	f, err := os.Open(s.MetadataPath)
	if err != nil {
		return nil, loadError(s.MetadataPath, StageOpen, err)
	}
	defer f.Close()

	movies, err := catalog.ReadBundle(f)
	if err != nil {
		if errors.Is(err, catalog.ErrInconsistentBundle) {
			return nil, loadError(s.MetadataPath, StageValidate, err)
		}
		return nil, loadError(s.MetadataPath, StageDecode, err)
	}
	return movies, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
