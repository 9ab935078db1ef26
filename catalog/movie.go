package catalog

import "fmt"

// Movie is the metadata of a single matrix row.
type Movie struct {
	// Index is the row of this movie in the similarity matrix.
	Index int `json:"index"`

	// Title is the display title. Titles are not unique: remakes and
	// re-releases may share one.
	Title string `json:"title"`

	// MovieID is the external identifier the dataset was built from.
	MovieID int64 `json:"movie_id"`

	// Tags is the ordered tag list used when the matrix was computed.
	Tags []string `json:"tags"`
}

// Catalog is the read-only list of movies indexed by matrix row.
type Catalog struct {
	movies []Movie
}

// New builds a Catalog. Movie i is assigned Index i regardless of what the
// input says, since position is the row index.
func New(movies []Movie) *Catalog {
	out := make([]Movie, len(movies))
	for i, m := range movies {
		m.Index = i
		m.Tags = append([]string(nil), m.Tags...)
		out[i] = m
	}
	return &Catalog{movies: out}
}

// Len returns the number of movies.
func (c *Catalog) Len() int { return len(c.movies) }

// Movie returns a copy of the movie at row i.
func (c *Catalog) Movie(i int) (Movie, error) {
	if i < 0 || i >= len(c.movies) {
		return Movie{}, fmt.Errorf("catalog: row %d out of range [0, %d)", i, len(c.movies))
	}
	m := c.movies[i]
	m.Tags = append([]string(nil), m.Tags...)
	return m, nil
}

// Titles returns the titles in row order, duplicates included.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.movies))
	for i, m := range c.movies {
		titles[i] = m.Title
	}
	return titles
}

// Tags returns a copy of the tag list of row i.
func (c *Catalog) Tags(i int) ([]string, error) {
	m, err := c.Movie(i)
	if err != nil {
		return nil, err
	}
	return m.Tags, nil
}

// Movies returns a copy of all movies in row order.
func (c *Catalog) Movies() []Movie {
	out := make([]Movie, len(c.movies))
	for i := range c.movies {
		out[i], _ = c.Movie(i)
	}
	return out
}
