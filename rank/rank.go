package rank

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/viant/movierec/matrix"
)

var (
	// ErrInvalidIndex is matched by every *InvalidIndexError.
	ErrInvalidIndex = errors.New("rank: invalid row index")
	// ErrInvalidTopK reports a non-positive result count.
	ErrInvalidTopK = errors.New("rank: topK must be positive")
	// ErrDimensionMismatch reports titles that do not cover every matrix row.
	ErrDimensionMismatch = errors.New("rank: titles and matrix dimension differ")
)

// InvalidIndexError reports a row index outside [0, N). It signals a caller
// bug rather than a runtime condition.
type InvalidIndexError struct {
	Index int
	N     int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("rank: row index %d out of range [0, %d)", e.Index, e.N)
}

// Is makes errors.Is(err, ErrInvalidIndex) hold.
func (e *InvalidIndexError) Is(target error) bool { return target == ErrInvalidIndex }

// Recommendation is a single ranked result.
type Recommendation struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Index int     `json:"index"`
}

// Recommend returns up to topK rows most similar to selectedIndex, excluding
// selectedIndex itself. Results are ordered by score descending; equal scores
// keep ascending row order, and NaN scores rank after every number. topK
// larger than N-1 is clamped.
func Recommend(selectedIndex int, m *matrix.Matrix, titles []string, topK int) ([]Recommendation, error) {
	n := m.Len()
	if len(titles) != n {
		return nil, fmt.Errorf("%w: %d titles for dimension %d", ErrDimensionMismatch, len(titles), n)
	}
	if selectedIndex < 0 || selectedIndex >= n {
		return nil, &InvalidIndexError{Index: selectedIndex, N: n}
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}

	scores := m.Row(selectedIndex)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return ranksBefore(scores[order[a]], scores[order[b]]) })

	if topK > n-1 {
		topK = n - 1
	}
	out := make([]Recommendation, 0, topK)
	for _, idx := range order {
		if len(out) == topK {
			break
		}
		if idx == selectedIndex {
			continue
		}
		out = append(out, Recommendation{Title: titles[idx], Score: scores[idx], Index: idx})
	}
	return out, nil
}

func ranksBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

// Ranker binds a matrix and its titles so callers only pass the query.
type Ranker struct {
	matrix *matrix.Matrix
	titles []string
}

// NewRanker validates that titles cover every matrix row.
func NewRanker(m *matrix.Matrix, titles []string) (*Ranker, error) {
	if m == nil {
		return nil, fmt.Errorf("rank: matrix is nil")
	}
	if len(titles) != m.Len() {
		return nil, fmt.Errorf("%w: %d titles for dimension %d", ErrDimensionMismatch, len(titles), m.Len())
	}
	return &Ranker{matrix: m, titles: append([]string(nil), titles...)}, nil
}

// Recommend ranks the neighbours of selectedIndex. See the package-level
// Recommend for ordering and clamping.
func (r *Ranker) Recommend(selectedIndex, topK int) ([]Recommendation, error) {
	return Recommend(selectedIndex, r.matrix, r.titles, topK)
}

// Len returns the number of rankable rows.
func (r *Ranker) Len() int { return r.matrix.Len() }
