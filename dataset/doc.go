// Package dataset loads the similarity matrix artifact and the metadata
// bundle into memory and builds the title index over them.
//
// A dataset is loaded at most once per process for a given pair of artifact
// paths: concurrent callers share a single build and every later call returns
// the same *Dataset. There is no invalidation; the dataset lives until the
// process exits.
package dataset
