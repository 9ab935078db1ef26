// Package matrix defines the in-memory similarity matrix and the SQLite
// artifact it is persisted in. It includes:
//   - Matrix: an immutable N×N row-major table of float64 scores
//   - Row encoding (BLOB) helpers
//   - Schema helpers to create the similarity tables
//   - Store: reads and writes a Matrix, and looks up single pair scores in SQL
package matrix
