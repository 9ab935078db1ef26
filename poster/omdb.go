package poster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/viant/movierec/internal/logging"
	"github.com/viant/movierec/internal/metrics"
)

const (
	// DefaultBaseURL is the public OMDb endpoint.
	DefaultBaseURL = "https://www.omdbapi.com"
	// DefaultTimeout bounds a single OMDb request.
	DefaultTimeout = 6 * time.Second

	breakerName = "omdb"
	maxBody     = 1 << 20
)

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// RatePerSecond limits outgoing requests; zero means unlimited.
	RatePerSecond float64
	Burst         int

	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerFailureThreshold uint32

	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
	// Store persists results across restarts when set.
	Store Store
}

// Client is an OMDb backed Fetcher.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[Entry]
	store   Store
	group   singleflight.Group

	mu   sync.RWMutex
	memo map[string]Entry
}

// omdbResponse holds the fields of an OMDb title response movierec reads.
type omdbResponse struct {
	Response string `json:"Response"`
	Poster   string `json:"Poster"`
	Error    string `json:"Error"`
}

// NewClient creates an OMDb client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BreakerFailureThreshold == 0 {
		opts.BreakerFailureThreshold = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	c := &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		http:    httpClient,
		store:   opts.Store,
		memo:    make(map[string]Entry),
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	threshold := opts.BreakerFailureThreshold
	c.breaker = gobreaker.NewCircuitBreaker[Entry](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: opts.BreakerMaxRequests,
		Interval:    opts.BreakerInterval,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("poster circuit breaker state change")
			metrics.PosterBreakerState.Set(stateValue(to))
		},
	})
	return c
}

// Poster implements Fetcher.
func (c *Client) Poster(ctx context.Context, title string) (string, bool) {
	if title == "" {
		return "", false
	}
	if e, ok := c.memoized(title); ok {
		metrics.PosterLookups.WithLabelValues("cached").Inc()
		return e.URL, e.Found
	}
	if c.apiKey == "" {
		c.fail(&FetchFailure{Title: title, Reason: ReasonNoAPIKey})
		return "", false
	}

	// The flight outlives any one caller; lookup bounds it with c.timeout.
	flight := context.WithoutCancel(ctx)
	ch := c.group.DoChan(title, func() (interface{}, error) {
		return c.resolve(flight, title), nil
	})
	select {
	case <-ctx.Done():
		return "", false
	case r := <-ch:
		e := r.Val.(Entry)
		return e.URL, e.Found
	}
}

// resolve consults the durable store, then OMDb, and records the outcome.
func (c *Client) resolve(ctx context.Context, title string) Entry {
	if e, ok := c.memoized(title); ok {
		metrics.PosterLookups.WithLabelValues("cached").Inc()
		return e
	}
	if c.store != nil {
		e, ok, err := c.store.Get(title)
		if err != nil {
			logging.Warn().Err(err).Str("title", title).Msg("poster cache read failed")
		} else if ok {
			c.remember(title, e, false)
			metrics.PosterLookups.WithLabelValues("cached").Inc()
			return e
		}
	}

	e, err := c.lookup(ctx, title)
	if err != nil {
		var ff *FetchFailure
		if errors.As(err, &ff) && ff.Reason.definitive() {
			c.remember(title, Entry{}, true)
		}
		c.fail(err)
		return Entry{}
	}
	c.remember(title, e, true)
	metrics.PosterLookups.WithLabelValues("hit").Inc()
	return e
}

// lookup performs one rate limited, circuit broken OMDb request. Every error
// it returns is a *FetchFailure.
func (c *Client) lookup(ctx context.Context, title string) (Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Entry{}, &FetchFailure{Title: title, Reason: ReasonRateLimited, Err: err}
		}
	}

	var answer *FetchFailure
	e, err := c.breaker.Execute(func() (Entry, error) {
		e, err := c.fetch(ctx, title)
		var ff *FetchFailure
		if errors.As(err, &ff) && ff.Reason.definitive() {
			// OMDb answered; the breaker only counts transport failures.
			answer = ff
			return Entry{}, nil
		}
		return e, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Entry{}, &FetchFailure{Title: title, Reason: ReasonCircuitOpen, Err: err}
		}
		return Entry{}, err
	}
	if answer != nil {
		return Entry{}, answer
	}
	return e, nil
}

func (c *Client) fetch(ctx context.Context, title string) (Entry, error) {
	query := url.Values{}
	query.Set("t", title)
	query.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+query.Encode(), nil)
	if err != nil {
		return Entry{}, &FetchFailure{Title: title, Reason: ReasonRequest, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Entry{}, &FetchFailure{Title: title, Reason: ReasonRequest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return Entry{}, &FetchFailure{Title: title, Reason: ReasonStatus, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	var body omdbResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return Entry{}, &FetchFailure{Title: title, Reason: ReasonDecode, Err: err}
	}
	if body.Response != "True" {
		var cause error
		if body.Error != "" {
			cause = errors.New(body.Error)
		}
		return Entry{}, &FetchFailure{Title: title, Reason: ReasonNotFound, Err: cause}
	}
	if body.Poster == "" || body.Poster == "N/A" {
		return Entry{}, &FetchFailure{Title: title, Reason: ReasonNoPoster}
	}
	return Entry{URL: body.Poster, Found: true}, nil
}

func (c *Client) memoized(title string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.memo[title]
	return e, ok
}

func (c *Client) remember(title string, e Entry, persist bool) {
	c.mu.Lock()
	c.memo[title] = e
	c.mu.Unlock()
	if persist && c.store != nil {
		if err := c.store.Put(title, e); err != nil {
			logging.Warn().Err(err).Str("title", title).Msg("poster cache write failed")
		}
	}
}

func (c *Client) fail(err error) {
	reason := "unknown"
	var ff *FetchFailure
	if errors.As(err, &ff) {
		reason = string(ff.Reason)
	}
	metrics.PosterLookups.WithLabelValues(reason).Inc()
	switch {
	case ff != nil && ff.Reason.definitive(), ff != nil && ff.Reason == ReasonNoAPIKey:
		logging.Debug().Err(err).Str("reason", reason).Msg("no poster")
	default:
		logging.Warn().Err(err).Str("reason", reason).Msg("poster lookup failed")
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
