// Package catalog holds the per-movie metadata that runs parallel to the
// similarity matrix rows: titles, external movie identifiers and tag lists.
// It also builds the title index used to map a user-chosen title back to one
// or more row indices.
package catalog
