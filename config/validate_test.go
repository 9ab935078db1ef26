package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing matrix path", mutate: func(c *Config) { c.Data.MatrixPath = "" }, wantErr: true},
		{name: "missing metadata path", mutate: func(c *Config) { c.Data.MetadataPath = "" }, wantErr: true},
		{name: "min k zero", mutate: func(c *Config) { c.Recommend.MinK = 0 }, wantErr: true},
		{name: "max below min", mutate: func(c *Config) { c.Recommend.MaxK = 3 }, wantErr: true},
		{name: "default outside bounds", mutate: func(c *Config) { c.Recommend.DefaultK = 25 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Poster.Timeout = 0 }, wantErr: true},
		{name: "zero timeout with posters off", mutate: func(c *Config) {
			c.Poster.Enabled = false
			c.Poster.Timeout = 0
		}},
		{name: "negative rate", mutate: func(c *Config) { c.Poster.RatePerSecond = -1 }, wantErr: true},
		{name: "unlimited rate", mutate: func(c *Config) {
			c.Poster.RatePerSecond = 0
			c.Poster.Burst = 0
		}},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
