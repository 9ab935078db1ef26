package service

import (
	"errors"
	"fmt"

	"github.com/viant/movierec/catalog"
)

var (
	// ErrUnknownTitle reports a title that no row carries.
	ErrUnknownTitle = errors.New("service: unknown title")
	// ErrNotACandidate reports a disambiguation index that does not carry the
	// requested title.
	ErrNotACandidate = catalog.ErrNotACandidate
	// ErrIndexOutOfRange reports a row index outside the dataset.
	ErrIndexOutOfRange = errors.New("service: row index out of range")
	// ErrAmbiguousTitle is matched by every *AmbiguousTitleError.
	ErrAmbiguousTitle = errors.New("service: ambiguous title")
)

// AmbiguousTitleError is returned in strict mode when several rows share a
// title and the query did not pick one.
type AmbiguousTitleError struct {
	Title      string
	Candidates []int
}

func (e *AmbiguousTitleError) Error() string {
	return fmt.Sprintf("service: title %q matches rows %v; choose one", e.Title, e.Candidates)
}

// Is makes errors.Is(err, ErrAmbiguousTitle) hold.
func (e *AmbiguousTitleError) Is(target error) bool { return target == ErrAmbiguousTitle }
