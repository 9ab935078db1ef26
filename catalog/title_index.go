package catalog

import (
	"errors"
	"fmt"
)

// ErrNotACandidate reports a disambiguation index that does not belong to the
// chosen title.
var ErrNotACandidate = errors.New("catalog: index is not a candidate for title")

// TitleIndex maps a title to the ordered row indices sharing it.
//
// Every row 0..N-1 of the titles it was built from appears in exactly one
// bucket, in ascending order, so the bucket lengths sum to N.
type TitleIndex struct {
	buckets map[string][]int
	order   []string
	size    int
}

// BuildTitleIndex indexes titles by row.
func BuildTitleIndex(titles []string) *TitleIndex {
	ix := &TitleIndex{buckets: make(map[string][]int, len(titles)), size: len(titles)}
	for i, title := range titles {
		bucket, ok := ix.buckets[title]
		if !ok {
			ix.order = append(ix.order, title)
		}
		ix.buckets[title] = append(bucket, i)
	}
	return ix
}

// Lookup returns a copy of the rows for title, or nil when the title is
// unknown.
func (ix *TitleIndex) Lookup(title string) []int {
	bucket, ok := ix.buckets[title]
	if !ok {
		return nil
	}
	return append([]int(nil), bucket...)
}

// Contains reports whether title is indexed.
func (ix *TitleIndex) Contains(title string) bool {
	_, ok := ix.buckets[title]
	return ok
}

// Len returns the number of distinct titles.
func (ix *TitleIndex) Len() int { return len(ix.order) }

// Size returns the number of indexed rows.
func (ix *TitleIndex) Size() int { return ix.size }

// Titles returns the distinct titles in order of first appearance.
func (ix *TitleIndex) Titles() []string { return append([]string(nil), ix.order...) }

// Duplicates returns the titles shared by more than one row, in order of
// first appearance.
func (ix *TitleIndex) Duplicates() []string {
	var out []string
	for _, title := range ix.order {
		if len(ix.buckets[title]) > 1 {
			out = append(out, title)
		}
	}
	return out
}

// Resolution is the outcome of mapping a title to a row.
type Resolution struct {
	Title string
	// Index is the first candidate in row order; meaningful only when Found.
	Index int
	// Candidates lists every row sharing Title.
	Candidates []int
	Found      bool
}

// Ambiguous reports whether more than one row shares the title.
func (r Resolution) Ambiguous() bool { return len(r.Candidates) > 1 }

// Choose validates an explicit disambiguation and returns it.
func (r Resolution) Choose(index int) (int, error) {
	for _, c := range r.Candidates {
		if c == index {
			return index, nil
		}
	}
	return 0, fmt.Errorf("%w: %d for %q (candidates %v)", ErrNotACandidate, index, r.Title, r.Candidates)
}

// Resolve maps title to its candidate rows. Index is the first candidate.
func (ix *TitleIndex) Resolve(title string) Resolution {
	bucket, ok := ix.buckets[title]
	if !ok {
		return Resolution{Title: title}
	}
	return Resolution{
		Title:      title,
		Index:      bucket[0],
		Candidates: append([]int(nil), bucket...),
		Found:      true,
	}
}
