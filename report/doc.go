// Package report summarizes a loaded dataset: artifact sizes, metadata
// coverage, matrix shape and symmetry, similarity statistics, the most
// similar pairs and a few sample movies.
package report
