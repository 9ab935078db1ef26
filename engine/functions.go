package engine

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterSimilarityFunctions registers sim_at and sim_len with the driver so
// they are available on connections opened after this call. It is safe to call
// more than once.
//
//	sim_at(scores BLOB, j INTEGER) -> REAL   score j of an encoded matrix row
//	sim_len(scores BLOB) -> INTEGER          number of scores in the row
func RegisterSimilarityFunctions() {
	registerOnce.Do(func() {
		// The driver rejects duplicate names; registerOnce keeps this idempotent.
		_ = sqlite.RegisterDeterministicScalarFunction("sim_at", 2, simAtImpl)
		_ = sqlite.RegisterDeterministicScalarFunction("sim_len", 1, simLenImpl)
	})
}

func simAtImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("sim_at: expected 2 arguments, got %d", len(args))
	}
	blob, ok := args[0].([]byte)
	if !ok {
		if args[0] == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("sim_at: unsupported argument type %T for scores; want BLOB", args[0])
	}
	j, ok := args[1].(int64)
	if !ok {
		return nil, fmt.Errorf("sim_at: unsupported argument type %T for column; want INTEGER", args[1])
	}
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("sim_at: invalid row blob length %d", len(blob))
	}
	if j < 0 || j >= int64(len(blob)/8) {
		return nil, fmt.Errorf("sim_at: column %d out of range [0, %d)", j, len(blob)/8)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(blob[j*8:])), nil
}

func simLenImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("sim_len: expected 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case nil:
		return int64(0), nil
	case []byte:
		if len(v)%8 != 0 {
			return nil, fmt.Errorf("sim_len: invalid row blob length %d", len(v))
		}
		return int64(len(v) / 8), nil
	default:
		return nil, fmt.Errorf("sim_len: unsupported argument type %T; want BLOB", args[0])
	}
}
