package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/viant/movierec/catalog"
	"github.com/viant/movierec/engine"
	"github.com/viant/movierec/matrix"
)

// Write stores m and movies as the two artifacts named by opts, replacing any
// existing matrix rows and overwriting the metadata bundle.
func Write(ctx context.Context, opts Options, m *matrix.Matrix, movies []catalog.Movie) error {
	if m.Len() != len(movies) {
		return fmt.Errorf("dataset: %d movies for a matrix of dimension %d", len(movies), m.Len())
	}
	if err := WriteMatrix(ctx, opts.MatrixPath, m); err != nil {
		return err
	}
	return WriteMetadata(opts.MetadataPath, movies)
}

// WriteMatrix stores m in the SQLite artifact at path, creating it if needed.
func WriteMatrix(ctx context.Context, path string, m *matrix.Matrix) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	engine.RegisterSimilarityFunctions()
	db, err := engine.Open(path)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer db.Close()
	store, err := matrix.NewStore(ctx, db)
	if err != nil {
		return fmt.Errorf("dataset: prepare %s: %w", path, err)
	}
	if err := store.Write(ctx, m); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	return nil
}

// WriteMetadata writes the metadata bundle for movies at path.
func WriteMetadata(path string, movies []catalog.Movie) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}
	if err := catalog.WriteBundle(f, movies); err != nil {
		f.Close()
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	return f.Close()
}

func mkdirFor(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("dataset: create %s: %w", dir, err)
	}
	return nil
}
