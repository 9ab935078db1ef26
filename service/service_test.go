package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/viant/movierec/catalog"
	"github.com/viant/movierec/config"
	"github.com/viant/movierec/dataset"
	"github.com/viant/movierec/matrix"
	"github.com/viant/movierec/poster"
	"github.com/viant/movierec/rank"
)

func newTestDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	m, err := matrix.FromRows([][]float64{
		{1.0, 0.8, 0.8, 0.2},
		{0.8, 1.0, 0.5, 0.1},
		{0.8, 0.5, 1.0, 0.3},
		{0.2, 0.1, 0.3, 1.0},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	manyTags := make([]string, 250)
	for i := range manyTags {
		manyTags[i] = fmt.Sprintf("tag%d", i)
	}
	ds, err := dataset.New(m, []catalog.Movie{
		{Title: "Heat", MovieID: 949, Tags: []string{"crime", "heist"}},
		{Title: "Ronin", MovieID: 8195, Tags: manyTags},
		{Title: "Thief", MovieID: 11524, Tags: []string{"crime"}},
		{Title: "Heat", MovieID: 10000, Tags: []string{"remake"}},
	})
	if err != nil {
		t.Fatalf("dataset.New failed: %v", err)
	}
	return ds
}

func testConfig() config.RecommendConfig {
	return config.RecommendConfig{DefaultK: 2, MinK: 1, MaxK: 3}
}

type fakeFetcher struct {
	mu      sync.Mutex
	posters map[string]string
	calls   []string
}

func (f *fakeFetcher) Poster(_ context.Context, title string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, title)
	url, ok := f.posters[title]
	return url, ok
}

func newTestService(t *testing.T, cfg config.RecommendConfig, f poster.Fetcher) *Service {
	t.Helper()
	s, err := New(newTestDataset(t), cfg, f)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func intPtr(i int) *int { return &i }

func TestService_Recommend(t *testing.T) {
	tests := []struct {
		name       string
		query      Query
		wantIndex  int
		wantRows   []int
		wantScores []float64
	}{
		{
			name:       "ties broken by row",
			query:      Query{Title: "Heat", TopK: 2},
			wantIndex:  0,
			wantRows:   []int{1, 2},
			wantScores: []float64{0.8, 0.8},
		},
		{
			name:      "default k",
			query:     Query{Title: "Thief"},
			wantIndex: 2,
			wantRows:  []int{0, 1},
		},
		{
			name:      "k clamped to max",
			query:     Query{Title: "Ronin", TopK: 50},
			wantIndex: 1,
			wantRows:  []int{0, 2, 3},
		},
		{
			name:      "explicit candidate",
			query:     Query{Title: "Heat", Disambiguation: intPtr(3), TopK: 1},
			wantIndex: 3,
			wantRows:  []int{2},
		},
	}
	s := newTestService(t, testConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.Recommend(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Recommend failed: %v", err)
			}
			if resp.Index != tt.wantIndex {
				t.Fatalf("Index = %d, want %d", resp.Index, tt.wantIndex)
			}
			if len(resp.Recommendations) != len(tt.wantRows) {
				t.Fatalf("got %d results, want %d: %+v", len(resp.Recommendations), len(tt.wantRows), resp.Recommendations)
			}
			for i, item := range resp.Recommendations {
				if item.Index != tt.wantRows[i] {
					t.Errorf("result %d index = %d, want %d", i, item.Index, tt.wantRows[i])
				}
				if item.Rank != i+1 {
					t.Errorf("result %d rank = %d, want %d", i, item.Rank, i+1)
				}
				if item.Index == resp.Index {
					t.Errorf("result %d is the selected movie", i)
				}
				if tt.wantScores != nil && item.Score != tt.wantScores[i] {
					t.Errorf("result %d score = %v, want %v", i, item.Score, tt.wantScores[i])
				}
			}
		})
	}
}

func TestService_RecommendDuplicateTitle(t *testing.T) {
	s := newTestService(t, testConfig(), nil)
	resp, err := s.Recommend(context.Background(), Query{Title: "Heat"})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if !resp.Ambiguous() {
		t.Fatalf("response for a shared title is not ambiguous")
	}
	if len(resp.Candidates) != 2 || resp.Candidates[0] != 0 || resp.Candidates[1] != 3 {
		t.Fatalf("Candidates = %v, want [0 3]", resp.Candidates)
	}

	cfg := testConfig()
	cfg.StrictDisambiguation = true
	strict := newTestService(t, cfg, nil)
	_, err = strict.Recommend(context.Background(), Query{Title: "Heat"})
	var amb *AmbiguousTitleError
	if !errors.As(err, &amb) {
		t.Fatalf("strict Recommend error = %v, want *AmbiguousTitleError", err)
	}
	if len(amb.Candidates) != 2 || !errors.Is(err, ErrAmbiguousTitle) {
		t.Fatalf("AmbiguousTitleError = %+v", amb)
	}
	if _, err := strict.Recommend(context.Background(), Query{Title: "Heat", Disambiguation: intPtr(3)}); err != nil {
		t.Fatalf("strict Recommend with a candidate failed: %v", err)
	}
	if _, err := strict.Recommend(context.Background(), Query{Title: "Thief"}); err != nil {
		t.Fatalf("strict Recommend of a unique title failed: %v", err)
	}
}

func TestService_RecommendErrors(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  error
	}{
		{name: "unknown title", query: Query{Title: "Casablanca"}, want: ErrUnknownTitle},
		{name: "empty title", query: Query{Title: ""}, want: ErrUnknownTitle},
		{name: "not a candidate", query: Query{Title: "Heat", Disambiguation: intPtr(1)}, want: ErrNotACandidate},
		{name: "out of range candidate", query: Query{Title: "Heat", Disambiguation: intPtr(99)}, want: ErrNotACandidate},
		{name: "negative k", query: Query{Title: "Ronin", TopK: -1}, want: rank.ErrInvalidTopK},
	}
	s := newTestService(t, testConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Recommend(context.Background(), tt.query)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Recommend error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_RecommendIdempotent(t *testing.T) {
	s := newTestService(t, testConfig(), nil)
	q := Query{Title: "Ronin", TopK: 3}
	first, err := s.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	second, err := s.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	for i := range first.Recommendations {
		if first.Recommendations[i] != second.Recommendations[i] {
			t.Fatalf("result %d differs: %+v vs %+v", i, first.Recommendations[i], second.Recommendations[i])
		}
	}
}

func TestService_Posters(t *testing.T) {
	f := &fakeFetcher{posters: map[string]string{"Ronin": "ronin.jpg"}}
	s := newTestService(t, testConfig(), f)
	resp, err := s.Recommend(context.Background(), Query{Title: "Heat", TopK: 2})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if resp.Recommendations[0].PosterURL != "ronin.jpg" {
		t.Errorf("Ronin poster = %q, want ronin.jpg", resp.Recommendations[0].PosterURL)
	}
	if resp.Recommendations[1].PosterURL != "" {
		t.Errorf("Thief poster = %q, want none", resp.Recommendations[1].PosterURL)
	}
	if len(f.calls) != 2 {
		t.Errorf("fetcher called %d times, want 2", len(f.calls))
	}
}

func TestService_ListTitles(t *testing.T) {
	s := newTestService(t, testConfig(), poster.Nop{})
	titles := s.ListTitles()
	want := []string{"Heat", "Ronin", "Thief", "Heat"}
	if len(titles) != len(want) {
		t.Fatalf("ListTitles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("ListTitles = %v, want %v", titles, want)
		}
	}
	titles[0] = "mutated"
	if s.ListTitles()[0] != "Heat" {
		t.Fatalf("ListTitles exposes internal state")
	}
}

func TestService_Tags(t *testing.T) {
	s := newTestService(t, testConfig(), nil)
	tags, err := s.Tags(0)
	if err != nil || len(tags) != 2 || tags[0] != "crime" {
		t.Fatalf("Tags(0) = %v, %v", tags, err)
	}
	tags, err = s.Tags(1)
	if err != nil || len(tags) != MaxTags {
		t.Fatalf("Tags(1) returned %d tags, %v; want %d", len(tags), err, MaxTags)
	}
	for _, i := range []int{-1, 4} {
		if _, err := s.Tags(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("Tags(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
}

func TestService_CandidatesScoreMovie(t *testing.T) {
	s := newTestService(t, testConfig(), nil)
	rows, err := s.Candidates("Heat")
	if err != nil || len(rows) != 2 {
		t.Fatalf("Candidates(Heat) = %v, %v", rows, err)
	}
	if _, err := s.Candidates("Casablanca"); !errors.Is(err, ErrUnknownTitle) {
		t.Fatalf("Candidates(Casablanca) error = %v", err)
	}
	score, err := s.Score(2, 3)
	if err != nil || score != 0.3 {
		t.Fatalf("Score(2,3) = %v, %v", score, err)
	}
	if _, err := s.Score(0, 4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Score(0,4) error = %v", err)
	}
	movie, err := s.Movie(3)
	if err != nil || movie.MovieID != 10000 || movie.Index != 3 {
		t.Fatalf("Movie(3) = %+v, %v", movie, err)
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
}

func TestTopK(t *testing.T) {
	s := newTestService(t, config.RecommendConfig{DefaultK: 10, MinK: 5, MaxK: 20}, nil)
	tests := []struct {
		in, want int
	}{
		{0, 10}, {1, 1}, {2, 2}, {5, 5}, {12, 12}, {20, 20}, {50, 20},
	}
	for _, tt := range tests {
		got, err := s.topK(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("topK(%d) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestService_RecommendBelowMinK(t *testing.T) {
	s := newTestService(t, config.RecommendConfig{DefaultK: 10, MinK: 5, MaxK: 20}, nil)
	resp, err := s.Recommend(context.Background(), Query{Title: "Ronin", TopK: 2})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if resp.TopK != 2 || len(resp.Recommendations) != 2 {
		t.Fatalf("TopK = %d with %d items, want 2 and 2", resp.TopK, len(resp.Recommendations))
	}
}
