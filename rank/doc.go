// Package rank turns a precomputed similarity row into an ordered list of the
// most similar other movies.
package rank
