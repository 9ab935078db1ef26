package poster

import (
	"context"
	"fmt"
)

// Fetcher resolves a movie title to a poster URL.
type Fetcher interface {
	// Poster returns the poster URL for title, or ok == false when none could
	// be found for any reason.
	Poster(ctx context.Context, title string) (url string, ok bool)
}

// Nop never finds a poster. It stands in when posters are disabled.
type Nop struct{}

// Poster implements Fetcher.
func (Nop) Poster(context.Context, string) (string, bool) { return "", false }

// Reason classifies why a lookup produced no poster.
type Reason string

const (
	ReasonNoAPIKey    Reason = "no_api_key"
	ReasonRequest     Reason = "request"
	ReasonStatus      Reason = "status"
	ReasonDecode      Reason = "decode"
	ReasonNotFound    Reason = "not_found"
	ReasonNoPoster    Reason = "no_poster"
	ReasonCircuitOpen Reason = "circuit_open"
	ReasonRateLimited Reason = "rate_limited"
)

// definitive reports whether the reason is an answer from OMDb rather than a
// failure to get one. Only definitive answers are memoized.
func (r Reason) definitive() bool {
	return r == ReasonNotFound || r == ReasonNoPoster
}

// FetchFailure describes a lookup that produced no poster.
type FetchFailure struct {
	Title  string
	Reason Reason
	Err    error
}

func (f *FetchFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("poster: %s %q: %v", f.Reason, f.Title, f.Err)
	}
	return fmt.Sprintf("poster: %s %q", f.Reason, f.Title)
}

func (f *FetchFailure) Unwrap() error { return f.Err }
