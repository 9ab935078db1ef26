package matrix

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeRow encodes a row of scores into a BLOB suitable for storage in
// SQLite: a little-endian sequence of IEEE 754 float64 values without a
// length prefix. The length is derived from the BLOB size on decode.
func EncodeRow(row []float64) []byte {
	if len(row) == 0 {
		return nil
	}
	b := make([]byte, len(row)*8)
	for i, v := range row {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

// DecodeRow decodes a BLOB produced by EncodeRow.
func DecodeRow(b []byte) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("matrix: invalid row blob length %d (not multiple of 8)", len(b))
	}
	n := len(b) / 8
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		row[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return row, nil
}

// decodeRowInto decodes b into dst, which must hold exactly len(b)/8 values.
func decodeRowInto(dst []float64, b []byte) error {
	if len(b) != len(dst)*8 {
		return fmt.Errorf("matrix: row blob length %d, want %d", len(b), len(dst)*8)
	}
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return nil
}
