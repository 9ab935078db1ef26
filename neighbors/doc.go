// Package neighbors exposes recommendations as a SQLite virtual table so
// the ranking can be joined and filtered with plain SQL.
//
//	CREATE VIRTUAL TABLE temp.neighbors USING movierec_neighbors('<dataset key>');
//	SELECT rank, neighbor, title, score FROM neighbors WHERE source = 0 AND k = 5;
//
// Temp tables belong to one connection. Attach pins a connection from a pool
// and creates the table on it; Register does the same on a pool limited to a
// single connection. Rows come from the in-memory matrix, so a query never
// reads back through the connection that runs it.
package neighbors
