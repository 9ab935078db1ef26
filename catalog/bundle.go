package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// ErrInconsistentBundle reports a metadata bundle whose parallel fields have
// different lengths or whose keyed form does not cover rows 0..N-1.
var ErrInconsistentBundle = errors.New("catalog: inconsistent metadata bundle")

// bundle is the on-disk metadata layout: three parallel fields keyed by row.
// Each field is either a JSON array or an object keyed by row number
// ({"0": ..., "1": ...}), the latter being what a dict-of-dicts export of the
// dataset produces.
type bundle struct {
	Title   column[string]   `json:"title"`
	MovieID column[int64]    `json:"movie_id"`
	Tags    column[[]string] `json:"tags"`
}

type column[T any] []T

// UnmarshalJSON accepts either an array or an object keyed by row number.
func (c *column[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if data[0] == '[' {
		var values []T
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*c = values
		return nil
	}
	var keyed map[string]T
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	rows := make([]int, 0, len(keyed))
	for k := range keyed {
		i, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("%w: row key %q is not an integer", ErrInconsistentBundle, k)
		}
		rows = append(rows, i)
	}
	sort.Ints(rows)
	values := make([]T, len(rows))
	for pos, i := range rows {
		if i != pos {
			return fmt.Errorf("%w: missing row %d", ErrInconsistentBundle, pos)
		}
		values[pos] = keyed[strconv.Itoa(i)]
	}
	*c = values
	return nil
}

// ReadBundle decodes a metadata bundle into movies in row order.
func ReadBundle(r io.Reader) ([]Movie, error) {
	var b bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("catalog: decode bundle: %w", err)
	}
	n := len(b.Title)
	if len(b.MovieID) != n || len(b.Tags) != n {
		return nil, fmt.Errorf("%w: %d titles, %d movie ids, %d tag lists",
			ErrInconsistentBundle, n, len(b.MovieID), len(b.Tags))
	}
	movies := make([]Movie, n)
	for i := 0; i < n; i++ {
		movies[i] = Movie{Index: i, Title: b.Title[i], MovieID: b.MovieID[i], Tags: b.Tags[i]}
	}
	return movies, nil
}

// WriteBundle encodes movies as a metadata bundle using the array layout.
func WriteBundle(w io.Writer, movies []Movie) error {
	b := bundle{
		Title:   make(column[string], len(movies)),
		MovieID: make(column[int64], len(movies)),
		Tags:    make(column[[]string], len(movies)),
	}
	for i, m := range movies {
		b.Title[i] = m.Title
		b.MovieID[i] = m.MovieID
		tags := m.Tags
		if tags == nil {
			tags = []string{}
		}
		b.Tags[i] = tags
	}
	return json.NewEncoder(w).Encode(b)
}
