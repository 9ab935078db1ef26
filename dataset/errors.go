package dataset

import (
	"errors"
	"fmt"
)

// ErrLoad is matched by every *LoadError.
var ErrLoad = errors.New("dataset: load failed")

// Stage names the step of a load that failed.
type Stage string

const (
	StageOpen     Stage = "open"
	StageRead     Stage = "read"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
)

// LoadError reports a missing, unreadable or inconsistent artifact. It is
// fatal: no recommendation is possible without a dataset.
type LoadError struct {
	Artifact string
	Stage    Stage
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset: %s %s: %v", e.Stage, e.Artifact, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoad) hold.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

func loadError(artifact string, stage Stage, err error) error {
	return &LoadError{Artifact: artifact, Stage: stage, Err: err}
}
