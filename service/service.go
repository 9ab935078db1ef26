package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/viant/movierec/catalog"
	"github.com/viant/movierec/config"
	"github.com/viant/movierec/dataset"
	"github.com/viant/movierec/internal/logging"
	"github.com/viant/movierec/internal/metrics"
	"github.com/viant/movierec/poster"
	"github.com/viant/movierec/rank"
)

// MaxTags caps the tags returned for one movie.
const MaxTags = 200

// posterConcurrency bounds parallel poster lookups for one response.
const posterConcurrency = 4

// Query asks for movies similar to Title.
type Query struct {
	Title string
	// Disambiguation picks one of several rows sharing Title.
	Disambiguation *int
	// TopK is the number of results; zero selects the configured default and
	// other values are clamped to the configured bounds.
	TopK int
}

// Item is one recommended movie.
type Item struct {
	Rank      int     `json:"rank"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	Index     int     `json:"index"`
	PosterURL string  `json:"poster_url,omitempty"`
}

// Response is the answer to a Query.
type Response struct {
	Title string `json:"title"`
	// Index is the row the recommendations are based on.
	Index int `json:"index"`
	// Candidates lists every row sharing Title, so a caller can offer a
	// choice when there is more than one.
	Candidates      []int  `json:"candidates"`
	TopK            int    `json:"top_k"`
	Recommendations []Item `json:"recommendations"`
}

// Ambiguous reports whether Title matched more than one row.
func (r *Response) Ambiguous() bool { return len(r.Candidates) > 1 }

// Service answers queries over a loaded dataset.
type Service struct {
	ds      *dataset.Dataset
	ranker  *rank.Ranker
	posters poster.Fetcher
	cfg     config.RecommendConfig
}

// New creates a Service. posters may be nil to skip poster enrichment.
func New(ds *dataset.Dataset, cfg config.RecommendConfig, posters poster.Fetcher) (*Service, error) {
	if ds == nil {
		return nil, fmt.Errorf("service: dataset is nil")
	}
	ranker, err := rank.NewRanker(ds.Matrix, ds.Titles)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if cfg.MinK < 1 {
		cfg.MinK = 1
	}
	if cfg.MaxK < cfg.MinK {
		cfg.MaxK = cfg.MinK
	}
	if cfg.DefaultK < cfg.MinK || cfg.DefaultK > cfg.MaxK {
		cfg.DefaultK = cfg.MinK
	}
	if _, ok := posters.(poster.Nop); ok {
		posters = nil
	}
	return &Service{ds: ds, ranker: ranker, posters: posters, cfg: cfg}, nil
}

// ListTitles returns the title of every row in row order. Shared titles
// appear once per row.
func (s *Service) ListTitles() []string {
	return append([]string(nil), s.ds.Titles...)
}

// Len returns the number of movies.
func (s *Service) Len() int { return s.ds.Len() }

// Recommend ranks the movies most similar to the queried title.
func (s *Service) Recommend(ctx context.Context, q Query) (*Response, error) {
	start := time.Now()
	resp, err := s.recommend(ctx, q)
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	metrics.RecommendRequests.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		logging.Debug().Err(err).Str("title", q.Title).Msg("recommendation rejected")
		return nil, err
	}
	logging.Debug().Str("title", q.Title).Int("index", resp.Index).Int("results", len(resp.Recommendations)).
		Dur("elapsed", time.Since(start)).Msg("recommendation served")
	return resp, nil
}

func (s *Service) recommend(ctx context.Context, q Query) (*Response, error) {
	res := s.ds.Index.Resolve(q.Title)
	if !res.Found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTitle, q.Title)
	}
	selected := res.Index
	switch {
	case q.Disambiguation != nil:
		idx, err := res.Choose(*q.Disambiguation)
		if err != nil {
			return nil, err
		}
		selected = idx
	case res.Ambiguous() && s.cfg.StrictDisambiguation:
		return nil, &AmbiguousTitleError{Title: q.Title, Candidates: res.Candidates}
	}

	k, err := s.topK(q.TopK)
	if err != nil {
		return nil, err
	}
	recs, err := s.ranker.Recommend(selected, k)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(recs))
	for i, r := range recs {
		items[i] = Item{Rank: i + 1, Title: r.Title, Score: r.Score, Index: r.Index}
	}
	s.enrich(ctx, items)
	return &Response{
		Title:           q.Title,
		Index:           selected,
		Candidates:      res.Candidates,
		TopK:            k,
		Recommendations: items,
	}, nil
}

func (s *Service) topK(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("service: %w: got %d", rank.ErrInvalidTopK, requested)
	case requested == 0:
		return s.cfg.DefaultK, nil
	case requested > s.cfg.MaxK:
		return s.cfg.MaxK, nil
	}
	return requested, nil
}

// enrich fills in poster URLs. Lookups never fail; a missing poster leaves
// the URL empty.
func (s *Service) enrich(ctx context.Context, items []Item) {
	if s.posters == nil || len(items) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(posterConcurrency)
	for i := range items {
		g.Go(func() error {
			if url, ok := s.posters.Poster(ctx, items[i].Title); ok {
				items[i].PosterURL = url
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Tags returns up to MaxTags tags of the movie at rowIndex.
func (s *Service) Tags(rowIndex int) ([]string, error) {
	if err := s.checkIndex(rowIndex); err != nil {
		return nil, err
	}
	tags, err := s.ds.Catalog.Tags(rowIndex)
	if err != nil {
		return nil, err
	}
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	return tags, nil
}

// Candidates returns every row carrying title.
func (s *Service) Candidates(title string) ([]int, error) {
	rows := s.ds.Index.Lookup(title)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTitle, title)
	}
	return rows, nil
}

// Score returns the similarity between rows i and j.
func (s *Service) Score(i, j int) (float64, error) {
	if err := s.checkIndex(i); err != nil {
		return 0, err
	}
	if err := s.checkIndex(j); err != nil {
		return 0, err
	}
	return s.ds.Matrix.At(i, j), nil
}

// Movie returns the full metadata of the movie at rowIndex.
func (s *Service) Movie(rowIndex int) (catalog.Movie, error) {
	if err := s.checkIndex(rowIndex); err != nil {
		return catalog.Movie{}, err
	}
	return s.ds.Catalog.Movie(rowIndex)
}

func (s *Service) checkIndex(i int) error {
	if i < 0 || i >= s.ds.Len() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, s.ds.Len())
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownTitle):
		return "unknown_title"
	case errors.Is(err, ErrAmbiguousTitle):
		return "ambiguous"
	default:
		return "invalid"
	}
}
