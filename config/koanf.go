package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched when no explicit path is given.
var DefaultConfigPaths = []string{
	"movierec.yaml",
	"movierec.yml",
	"/etc/movierec/movierec.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix prefixes every structured environment variable.
const EnvPrefix = "MOVIEREC_"

var envAliases = map[string]string{
	"omdb_api_key": "poster.api_key",
	"log_level":    "logging.level",
	"log_format":   "logging.format",
}

// Load builds the configuration. path names a YAML file; when empty the file
// is looked up via CONFIG_PATH and DefaultConfigPaths, and a missing file is
// not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	// Aliases first so the prefixed form wins when both are set.
	if err := k.Load(env.ProviderWithValue("", ".", aliasValue), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", prefixedKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// aliasKey maps the few unprefixed variables; everything else is skipped.
func aliasKey(key string) string {
	return envAliases[strings.ToLower(key)]
}

// aliasValue skips empty aliases so an unset OMDB_API_KEY="" does not clear
// a key from the file.
func aliasValue(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return aliasKey(key), value
}

// prefixedKey maps MOVIEREC_POSTER__API_KEY to poster.api_key.
func prefixedKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}
