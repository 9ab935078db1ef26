package report

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/viant/vec/search"

	"github.com/viant/movierec/catalog"
	"github.com/viant/movierec/dataset"
)

// Tolerances of the symmetry check: |a-b| <= AbsTolerance + RelTolerance*|b|.
const (
	AbsTolerance = 1e-8
	RelTolerance = 1e-5
)

// DefaultSampleIndices are the rows listed as samples when present.
var DefaultSampleIndices = []int{0, 100, 500, 1000, 1493}

// DefaultTopPairs is the number of most similar pairs reported.
const DefaultTopPairs = 5

// Options selects what Build reports.
type Options struct {
	// MatrixPath and MetadataPath are stat'ed for file sizes when set.
	MatrixPath   string
	MetadataPath string

	TopPairs      int
	SampleIndices []int
}

// File describes an artifact on disk.
type File struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// Field describes one metadata field.
type Field struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
}

// TagStats summarizes tag counts per movie.
type TagStats struct {
	Avg float64 `json:"avg"`
	Min int     `json:"min"`
	Max int     `json:"max"`
}

// Stats summarizes similarity scores with the diagonal set to zero.
type Stats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// Pair is a pair of distinct movies and their similarity.
type Pair struct {
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	RowTitle string  `json:"row_title"`
	ColTitle string  `json:"col_title"`
	Score    float64 `json:"score"`
}

// Sample is a movie listed in the report.
type Sample struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	MovieID int64  `json:"movie_id"`
	Tags    int    `json:"tags"`
}

// Report is the dataset summary.
type Report struct {
	Files  []File   `json:"files,omitempty"`
	Movies int      `json:"movies"`
	Fields []Field  `json:"fields"`
	Tags   TagStats `json:"tags"`
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Memory int64    `json:"memory_bytes"`

	Symmetric    bool    `json:"symmetric"`
	MaxAsymmetry float64 `json:"max_asymmetry"`
	// MaxRowDrift is the largest Euclidean distance between a row and the
	// matching column.
	MaxRowDrift float64 `json:"max_row_drift"`

	UnitDiagonal bool    `json:"unit_diagonal"`
	DiagonalMin  float64 `json:"diagonal_min"`
	DiagonalMax  float64 `json:"diagonal_max"`

	Similarity Stats    `json:"similarity"`
	TopPairs   []Pair   `json:"top_pairs"`
	Samples    []Sample `json:"samples"`
}

// Build computes the report for ds.
func Build(ds *dataset.Dataset, opts Options) (*Report, error) {
	if ds == nil || ds.Matrix == nil {
		return nil, fmt.Errorf("report: dataset is nil")
	}
	if opts.TopPairs <= 0 {
		opts.TopPairs = DefaultTopPairs
	}
	if opts.SampleIndices == nil {
		opts.SampleIndices = DefaultSampleIndices
	}

	r := &Report{}
	for _, path := range []string{opts.MatrixPath, opts.MetadataPath} {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		r.Files = append(r.Files, File{Path: path, Bytes: info.Size()})
	}

	movies := ds.Catalog.Movies()
	n := ds.Matrix.Len()
	r.Movies = len(movies)
	r.Fields = []Field{
		{Name: "title", Items: len(movies)},
		{Name: "movie_id", Items: len(movies)},
		{Name: "tags", Items: len(movies)},
	}
	r.Tags = tagStats(movies)
	r.Rows, r.Cols = n, n
	r.Memory = ds.Matrix.Bytes()

	r.checkSymmetry(ds)
	r.checkDiagonal(ds)
	r.Similarity = similarityStats(ds)
	r.TopPairs = topPairs(ds, opts.TopPairs)

	for _, i := range opts.SampleIndices {
		if i < 0 || i >= len(movies) {
			continue
		}
		m := movies[i]
		r.Samples = append(r.Samples, Sample{Index: i, Title: m.Title, MovieID: m.MovieID, Tags: len(m.Tags)})
	}
	return r, nil
}

func (r *Report) checkSymmetry(ds *dataset.Dataset) {
	m := ds.Matrix
	n := m.Len()
	r.Symmetric = true
	row := make([]float32, n)
	col := make([]float32, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a, b := m.At(i, j), m.At(j, i)
			row[j], col[j] = float32(a), float32(b)
			d := math.Abs(a - b)
			if d > r.MaxAsymmetry {
				r.MaxAsymmetry = d
			}
			if d > AbsTolerance+RelTolerance*math.Abs(b) {
				r.Symmetric = false
			}
		}
		if drift := float64(search.Float32s(row).EuclideanDistance(col)); drift > r.MaxRowDrift {
			r.MaxRowDrift = drift
		}
	}
}

func (r *Report) checkDiagonal(ds *dataset.Dataset) {
	m := ds.Matrix
	r.UnitDiagonal = true
	r.DiagonalMin, r.DiagonalMax = math.Inf(1), math.Inf(-1)
	for i := 0; i < m.Len(); i++ {
		v := m.At(i, i)
		r.DiagonalMin = math.Min(r.DiagonalMin, v)
		r.DiagonalMax = math.Max(r.DiagonalMax, v)
		if math.Abs(v-1) > AbsTolerance+RelTolerance {
			r.UnitDiagonal = false
		}
	}
}

func tagStats(movies []catalog.Movie) TagStats {
	if len(movies) == 0 {
		return TagStats{}
	}
	s := TagStats{Min: math.MaxInt}
	total := 0
	for _, m := range movies {
		c := len(m.Tags)
		total += c
		s.Min = min(s.Min, c)
		s.Max = max(s.Max, c)
	}
	s.Avg = float64(total) / float64(len(movies))
	return s
}

// similarityStats covers every cell, the diagonal counted as zero.
func similarityStats(ds *dataset.Dataset) Stats {
	m := ds.Matrix
	n := m.Len()
	values := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j, v := range m.Row(i) {
			if i == j {
				v = 0
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Stats{}
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	sort.Float64s(values)
	var median float64
	if half := len(values) / 2; len(values)%2 == 0 {
		median = (values[half-1] + values[half]) / 2
	} else {
		median = values[half]
	}
	return Stats{
		Min:    values[0],
		Max:    values[len(values)-1],
		Mean:   mean,
		Median: median,
		Std:    math.Sqrt(variance),
	}
}

// topPairs returns the k highest scoring pairs i < j, ties in row order.
func topPairs(ds *dataset.Dataset, k int) []Pair {
	m := ds.Matrix
	n := m.Len()
	var pairs []Pair
	less := func(a, b Pair) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p := Pair{Row: i, Col: j, Score: m.At(i, j)}
			if math.IsNaN(p.Score) {
				continue
			}
			if len(pairs) == k && !less(p, pairs[k-1]) {
				continue
			}
			pos := sort.Search(len(pairs), func(x int) bool { return less(p, pairs[x]) })
			if len(pairs) < k {
				pairs = append(pairs, Pair{})
			}
			copy(pairs[pos+1:], pairs[pos:len(pairs)-1])
			pairs[pos] = p
		}
	}
	for x := range pairs {
		pairs[x].RowTitle = ds.Titles[pairs[x].Row]
		pairs[x].ColTitle = ds.Titles[pairs[x].Col]
	}
	return pairs
}
