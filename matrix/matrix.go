package matrix

import (
	"fmt"
)

// Matrix is a square table of similarity scores stored row-major. Row i holds
// the scores of movie i against every movie, so At(i, i) is the self
// similarity (1.0 for a well-formed artifact). A Matrix is never modified
// after construction and is safe for concurrent readers.
type Matrix struct {
	n    int
	data []float64
}

// New builds a Matrix from n*n row-major scores. The slice is copied.
func New(n int, data []float64) (*Matrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("matrix: negative dimension %d", n)
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("matrix: %d scores for dimension %d, want %d", len(data), n, n*n)
	}
	return &Matrix{n: n, data: append([]float64(nil), data...)}, nil
}

// FromRows builds a Matrix from a slice of rows. Every row must have
// len(rows) entries.
func FromRows(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("matrix: row %d has %d scores, want %d", i, len(row), n)
		}
		data = append(data, row...)
	}
	return &Matrix{n: n, data: data}, nil
}

// Len returns the dimension N.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return m.n
}

// At returns the score of row i against column j. It panics when either index
// is out of range, like a slice access.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(fmt.Sprintf("matrix: index (%d, %d) out of range for dimension %d", i, j, m.n))
	}
	return m.data[i*m.n+j]
}

// Row returns row i as a read-only view into the matrix. Callers must not
// modify the returned slice; use RowCopy when ownership is needed.
func (m *Matrix) Row(i int) []float64 {
	if i < 0 || i >= m.n {
		panic(fmt.Sprintf("matrix: row %d out of range for dimension %d", i, m.n))
	}
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n]
}

// RowCopy returns a copy of row i.
func (m *Matrix) RowCopy(i int) []float64 {
	return append([]float64(nil), m.Row(i)...)
}

// Column returns a copy of column j.
func (m *Matrix) Column(j int) []float64 {
	if j < 0 || j >= m.n {
		panic(fmt.Sprintf("matrix: column %d out of range for dimension %d", j, m.n))
	}
	col := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		col[i] = m.data[i*m.n+j]
	}
	return col
}

// Bytes reports the memory held by the scores.
func (m *Matrix) Bytes() int64 { return int64(len(m.data)) * 8 }
