package poster

import (
	"io"

	"github.com/viant/movierec/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewFromConfig builds the Fetcher described by cfg. When posters are
// disabled it returns Nop. The returned Closer releases the durable cache.
func NewFromConfig(cfg config.PosterConfig) (Fetcher, io.Closer, error) {
	if !cfg.Enabled {
		return Nop{}, nopCloser{}, nil
	}
	opts := Options{
		APIKey:                  cfg.APIKey,
		BaseURL:                 cfg.BaseURL,
		Timeout:                 cfg.Timeout,
		RatePerSecond:           cfg.RatePerSecond,
		Burst:                   cfg.Burst,
		BreakerMaxRequests:      cfg.BreakerMaxRequests,
		BreakerInterval:         cfg.BreakerInterval,
		BreakerTimeout:          cfg.BreakerTimeout,
		BreakerFailureThreshold: cfg.BreakerFailureThreshold,
	}
	var closer io.Closer = nopCloser{}
	if cfg.CacheDir != "" {
		store, err := OpenBadgerStore(cfg.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		opts.Store = store
		closer = store
	}
	return NewClient(opts), closer, nil
}
