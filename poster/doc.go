// Package poster looks up movie poster URLs from the OMDb API.
//
// Lookups are best effort: a Fetcher never returns an error. Any failure is
// logged with its reason and counted, and the caller sees "no poster".
// Definitive answers, found or not, are memoized for the lifetime of the
// process and optionally persisted in a Badger directory.
package poster
