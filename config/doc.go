// Package config loads movierec settings in three layers: built-in defaults,
// an optional YAML file, then environment variables.
//
// Environment variables use the MOVIEREC_ prefix with a double underscore
// between section and key, for example MOVIEREC_POSTER__RATE_PER_SECOND.
// A few unprefixed variables are honored as well: OMDB_API_KEY, LOG_LEVEL and
// LOG_FORMAT.
package config
