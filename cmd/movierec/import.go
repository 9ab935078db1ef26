package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/viant/movierec/catalog"
	"github.com/viant/movierec/config"
	"github.com/viant/movierec/dataset"
	"github.com/viant/movierec/internal/logging"
	"github.com/viant/movierec/matrix"
)

// runImport converts a JSON dense matrix, and optionally a metadata bundle,
// into the artifacts named by the data configuration.
func runImport(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("import")
	matrixJSON := fs.String("matrix", "", "JSON file holding the dense matrix as an array of rows")
	metadataJSON := fs.String("metadata", "", "JSON metadata bundle to validate and copy")
	matrixOut := fs.String("out", cfg.Data.MatrixPath, "SQLite matrix artifact to write")
	metadataOut := fs.String("metadata-out", cfg.Data.MetadataPath, "metadata bundle to write")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *matrixJSON == "" {
		fmt.Fprintln(fs.Output(), "import: -matrix is required")
		return errUsage
	}

	m, err := readDenseMatrix(*matrixJSON)
	if err != nil {
		return err
	}
	var movies []catalog.Movie
	if *metadataJSON != "" {
		if movies, err = readBundle(*metadataJSON); err != nil {
			return err
		}
		if len(movies) != m.Len() {
			return fmt.Errorf("import: %s has %d movies but the matrix dimension is %d", *metadataJSON, len(movies), m.Len())
		}
	}

	if err := dataset.WriteMatrix(ctx, *matrixOut, m); err != nil {
		return err
	}
	logging.Info().Str("path", *matrixOut).Int("dimension", m.Len()).Msg("matrix artifact written")
	fmt.Fprintf(out, "wrote %d x %d matrix to %s\n", m.Len(), m.Len(), *matrixOut)

	if movies != nil {
		if err := dataset.WriteMetadata(*metadataOut, movies); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %d movies to %s\n", len(movies), *metadataOut)
	}
	return nil
}

func readDenseMatrix(path string) (*matrix.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	defer f.Close()
	var rows [][]float64
	if err := json.NewDecoder(f).Decode(&rows); err != nil {
		return nil, fmt.Errorf("import: decode %s: %w", path, err)
	}
	m, err := matrix.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("import: %s: %w", path, err)
	}
	return m, nil
}

func readBundle(path string) ([]catalog.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	defer f.Close()
	movies, err := catalog.ReadBundle(f)
	if err != nil {
		return nil, fmt.Errorf("import: %s: %w", path, err)
	}
	return movies, nil
}
