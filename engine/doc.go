// Package engine provides helpers for working with the modernc.org/sqlite
// driver that backs the similarity matrix artifact: opening connections and
// registering the SQL scalar functions used to read single scores straight
// from encoded matrix rows.
package engine
