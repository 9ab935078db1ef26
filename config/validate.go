package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the rest of movierec cannot
// work with. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if c.Data.MatrixPath == "" {
		errs = append(errs, errors.New("data.matrix_path is required"))
	}
	if c.Data.MetadataPath == "" {
		errs = append(errs, errors.New("data.metadata_path is required"))
	}

	r := c.Recommend
	if r.MinK < 1 {
		errs = append(errs, fmt.Errorf("recommend.min_k must be at least 1, got %d", r.MinK))
	}
	if r.MaxK < r.MinK {
		errs = append(errs, fmt.Errorf("recommend.max_k (%d) is below recommend.min_k (%d)", r.MaxK, r.MinK))
	}
	if r.DefaultK < r.MinK || r.DefaultK > r.MaxK {
		errs = append(errs, fmt.Errorf("recommend.default_k (%d) is outside [%d, %d]", r.DefaultK, r.MinK, r.MaxK))
	}

	p := c.Poster
	if p.Enabled {
		if p.BaseURL == "" {
			errs = append(errs, errors.New("poster.base_url is required when posters are enabled"))
		}
		if p.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("poster.timeout must be positive, got %v", p.Timeout))
		}
		if p.RatePerSecond < 0 {
			errs = append(errs, fmt.Errorf("poster.rate_per_second must not be negative, got %v", p.RatePerSecond))
		}
		if p.RatePerSecond > 0 && p.Burst < 1 {
			errs = append(errs, fmt.Errorf("poster.burst must be at least 1, got %d", p.Burst))
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
