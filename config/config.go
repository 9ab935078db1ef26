package config

import "time"

// Config is the complete movierec configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Poster    PosterConfig    `koanf:"poster"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DataConfig locates the two dataset artifacts.
type DataConfig struct {
	MatrixPath   string `koanf:"matrix_path"`
	MetadataPath string `koanf:"metadata_path"`
}

// RecommendConfig bounds the number of results a caller may ask for. MaxK
// caps every request; MinK only bounds DefaultK and the range front ends offer.
type RecommendConfig struct {
	DefaultK int `koanf:"default_k"`
	MinK     int `koanf:"min_k"`
	MaxK     int `koanf:"max_k"`

	// StrictDisambiguation rejects an ambiguous title without an explicit
	// candidate instead of using the first one.
	StrictDisambiguation bool `koanf:"strict_disambiguation"`
}

// PosterConfig configures the OMDb poster lookup.
type PosterConfig struct {
	Enabled       bool          `koanf:"enabled"`
	APIKey        string        `koanf:"api_key"`
	BaseURL       string        `koanf:"base_url"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Burst         int           `koanf:"burst"`

	// CacheDir enables the durable Badger memo when set.
	CacheDir string `koanf:"cache_dir"`

	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			MatrixPath:   "data/similarity.sqlite",
			MetadataPath: "data/movies.json",
		},
		Recommend: RecommendConfig{
			DefaultK:             10,
			MinK:                 5,
			MaxK:                 20,
			StrictDisambiguation: false,
		},
		Poster: PosterConfig{
			Enabled:                 true,
			BaseURL:                 "https://www.omdbapi.com",
			Timeout:                 6 * time.Second,
			RatePerSecond:           5,
			Burst:                   5,
			BreakerMaxRequests:      1,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config { return defaultConfig() }
