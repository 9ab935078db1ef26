package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/movierec/catalog"
	"github.com/viant/movierec/internal/logging"
	"github.com/viant/movierec/internal/metrics"
	"github.com/viant/movierec/matrix"
)

// Dataset is everything the ranking engine and the query surface need. It is
// read-only after Load returns.
type Dataset struct {
	// Titles holds the title of every row, duplicates included.
	Titles  []string
	Index   *catalog.TitleIndex
	Matrix  *matrix.Matrix
	Catalog *catalog.Catalog

	Key      string
	LoadedAt time.Time
}

// Len returns the number of movies.
func (d *Dataset) Len() int { return d.Matrix.Len() }

// Process-wide cache of loaded datasets keyed by Source.Key.
var shared = struct {
	mu    sync.Mutex
	byKey map[string]*cacheEntry
}{byKey: make(map[string]*cacheEntry)}

type cacheEntry struct {
	mu       sync.Mutex
	ds       *Dataset
	building bool
	cond     *sync.Cond
}

func entryFor(key string) *cacheEntry {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	e := shared.byKey[key]
	if e == nil {
		e = &cacheEntry{}
		e.cond = sync.NewCond(&e.mu)
		shared.byKey[key] = e
	}
	return e
}

// Loader loads a Dataset from a Source at most once per process.
type Loader struct {
	src Source

	mu sync.RWMutex
	ds *Dataset
}

// NewLoader creates a Loader over src.
func NewLoader(src Source) *Loader { return &Loader{src: src} }

// Load builds the dataset on first call and returns the cached one afterwards.
// Concurrent first callers wait for a single build. A failed build is not
// cached, so a later call reads the artifacts again.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if l == nil || l.src == nil {
		return nil, fmt.Errorf("dataset: loader has no source")
	}
	l.mu.RLock()
	ds := l.ds
	l.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}
	ds, err := l.shared(ctx)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.ds = ds
	l.mu.Unlock()
	return ds, nil
}

func (l *Loader) shared(ctx context.Context) (*Dataset, error) {
	e := entryFor(l.src.Key())

	e.mu.Lock()
	for e.building {
		e.cond.Wait()
	}
	if e.ds != nil {
		ds := e.ds
		e.mu.Unlock()
		return ds, nil
	}
	e.building = true
	e.mu.Unlock()

	ds, err := build(ctx, l.src)

	e.mu.Lock()
	e.building = false
	if err == nil {
		e.ds = ds
	}
	e.cond.Broadcast()
	e.mu.Unlock()
	return ds, err
}

// Load loads the dataset stored at opts.
func Load(ctx context.Context, opts Options) (*Dataset, error) {
	return NewLoader(FileSource{Options: opts}).Load(ctx)
}

func build(ctx context.Context, src Source) (*Dataset, error) {
	start := time.Now()
	ds, err := read(ctx, src)
	if err != nil {
		stage := "unknown"
		var le *LoadError
		if errors.As(err, &le) {
			stage = string(le.Stage)
		}
		metrics.DatasetLoadFailures.WithLabelValues(stage).Inc()
		logging.Error().Err(err).Str("source", src.Key()).Str("stage", stage).Msg("dataset load failed")
		return nil, err
	}
	elapsed := time.Since(start)
	metrics.DatasetLoadDuration.Observe(elapsed.Seconds())
	metrics.DatasetMovies.Set(float64(ds.Len()))
	logging.Info().
		Str("source", src.Key()).
		Int("movies", ds.Len()).
		Int("distinct_titles", ds.Index.Len()).
		Int64("matrix_bytes", ds.Matrix.Bytes()).
		Dur("elapsed", elapsed).
		Msg("dataset loaded")
	return ds, nil
}

func read(ctx context.Context, src Source) (*Dataset, error) {
	m, err := src.ReadMatrix(ctx)
	if err != nil {
		return nil, err
	}
	movies, err := src.ReadMovies(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := New(m, movies)
	if err != nil {
		return nil, loadError(src.Key(), StageValidate, err)
	}
	ds.Key = src.Key()
	return ds, nil
}

// New assembles a Dataset from an in-memory matrix and its movies.
func New(m *matrix.Matrix, movies []catalog.Movie) (*Dataset, error) {
	if m.Len() == 0 {
		return nil, fmt.Errorf("similarity matrix is empty")
	}
	if len(movies) != m.Len() {
		return nil, fmt.Errorf("metadata has %d movies but matrix dimension is %d", len(movies), m.Len())
	}
	cat := catalog.New(movies)
	titles := cat.Titles()
	return &Dataset{
		Titles:   titles,
		Index:    catalog.BuildTitleIndex(titles),
		Matrix:   m,
		Catalog:  cat,
		LoadedAt: time.Now(),
	}, nil
}
