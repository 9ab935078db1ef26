package matrix

import (
	"context"
	"database/sql"
)

const similaritySchema = `
CREATE TABLE IF NOT EXISTS similarity (
    row_idx INTEGER PRIMARY KEY,
    scores  BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS similarity_meta (
    key   TEXT PRIMARY KEY,
    value TEXT
);
`

// metaDimension is the similarity_meta key holding the declared dimension.
const metaDimension = "dimension"

// EnsureSchema creates the similarity tables in the provided database if they
// do not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, similaritySchema)
	return err
}
