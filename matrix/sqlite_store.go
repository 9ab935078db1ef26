package matrix

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/viant/movierec/engine"
)

// ErrInconsistent reports a matrix artifact whose rows do not form a square
// table (missing rows, wrong row widths, or a declared dimension that does not
// match the stored rows).
var ErrInconsistent = errors.New("matrix: inconsistent artifact")

// Store reads and writes a Matrix in a SQLite database, one BLOB per row.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store for writing and reading. It ensures the similarity
// schema exists in the provided database.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("matrix: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	engine.RegisterSimilarityFunctions()
	return &Store{db: db}, nil
}

// NewReader creates a Store over an existing artifact without touching its
// schema, so it works on read-only connections. The sim_at function used by
// Score is only visible on connections opened after RegisterSimilarityFunctions.
func NewReader(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("matrix: db is nil")
	}
	engine.RegisterSimilarityFunctions()
	return &Store{db: db}, nil
}

// Write replaces the stored matrix with m in a single transaction.
func (s *Store) Write(ctx context.Context, m *Matrix) error {
	if m == nil {
		return fmt.Errorf("matrix: Write called with nil matrix")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM similarity`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO similarity(row_idx, scores) VALUES(?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < m.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, i, EncodeRow(m.Row(i))); err != nil {
			return fmt.Errorf("matrix: write row %d: %w", i, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO similarity_meta(key, value) VALUES(?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, metaDimension, strconv.Itoa(m.Len())); err != nil {
		return err
	}
	return tx.Commit()
}

// Read loads the full matrix. Rows must be numbered 0..N-1 with no gaps, each
// holding exactly N scores; otherwise the returned error wraps ErrInconsistent.
func (s *Store) Read(ctx context.Context) (*Matrix, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM similarity`).Scan(&n); err != nil {
		return nil, err
	}
	declared, ok, err := s.declaredDimension(ctx)
	if err != nil {
		return nil, err
	}
	if ok && declared != n {
		return nil, fmt.Errorf("%w: declared dimension %d but %d rows stored", ErrInconsistent, declared, n)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT row_idx, scores FROM similarity ORDER BY row_idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := make([]float64, n*n)
	next := 0
	for rows.Next() {
		var idx int
		var blob []byte
		if err := rows.Scan(&idx, &blob); err != nil {
			return nil, err
		}
		if idx != next {
			return nil, fmt.Errorf("%w: expected row %d, found row %d", ErrInconsistent, next, idx)
		}
		if err := decodeRowInto(data[idx*n:(idx+1)*n], blob); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInconsistent, idx, err)
		}
		next++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &Matrix{n: n, data: data}, nil
}

// Score looks up a single pair score without loading the matrix, using the
// sim_at SQL function.
func (s *Store) Score(ctx context.Context, i, j int) (float64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var score sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `SELECT sim_at(scores, ?) FROM similarity WHERE row_idx = ?`, j, i).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("matrix: row %d not found", i)
	}
	if err != nil {
		return 0, err
	}
	if !score.Valid {
		return 0, fmt.Errorf("matrix: row %d has no scores", i)
	}
	return score.Float64, nil
}

func (s *Store) declaredDimension(ctx context.Context) (int, bool, error) {
	var tables int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'similarity_meta'`).Scan(&tables); err != nil {
		return 0, false, err
	}
	if tables == 0 {
		return 0, false, nil
	}
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM similarity_meta WHERE key = ?`, metaDimension).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: dimension %q is not an integer", ErrInconsistent, raw)
	}
	return n, true, nil
}
