package neighbors

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/viant/movierec/catalog"
	"github.com/viant/movierec/dataset"
	"github.com/viant/movierec/engine"
	"github.com/viant/movierec/matrix"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	m, err := matrix.FromRows([][]float64{
		{1.0, 0.8, 0.8, 0.2},
		{0.8, 1.0, 0.5, 0.1},
		{0.8, 0.5, 1.0, 0.3},
		{0.2, 0.1, 0.3, 1.0},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	ds, err := dataset.New(m, []catalog.Movie{
		{Title: "Alien"}, {Title: "Aliens"}, {Title: "Prometheus"}, {Title: "Amelie"},
	})
	if err != nil {
		t.Fatalf("dataset.New failed: %v", err)
	}
	ds.Key = "test:" + t.Name()
	return ds
}

func openDB(t *testing.T, ds *dataset.Dataset) *sql.DB {
	t.Helper()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	if err := Register(db, ds); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			t.Skipf("virtual table module unavailable: %v", err)
		}
		t.Fatalf("Register failed: %v", err)
	}
	return db
}

type result struct {
	rank     int
	neighbor int
	title    string
	score    float64
}

func query(t *testing.T, db *sql.DB, q string, args ...interface{}) []result {
	t.Helper()
	rows, err := db.Query(q, args...)
	if err != nil {
		t.Fatalf("query %q failed: %v", q, err)
	}
	defer rows.Close()
	var out []result
	for rows.Next() {
		var r result
		if err := rows.Scan(&r.rank, &r.neighbor, &r.title, &r.score); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	return out
}

func TestNeighbors_RankedRows(t *testing.T) {
	db := openDB(t, testDataset(t))

	got := query(t, db, `SELECT rank, neighbor, title, score FROM neighbors WHERE source = ? AND k = ?`, 0, 2)
	want := []result{
		{rank: 1, neighbor: 1, title: "Aliens", score: 0.8},
		{rank: 2, neighbor: 2, title: "Prometheus", score: 0.8},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNeighbors_DefaultK(t *testing.T) {
	db := openDB(t, testDataset(t))

	got := query(t, db, `SELECT rank, neighbor, title, score FROM neighbors WHERE source = 3`)
	if len(got) != 3 {
		t.Fatalf("got %d rows, want every other row (3)", len(got))
	}
	for _, r := range got {
		if r.neighbor == 3 {
			t.Fatalf("source row returned as its own neighbour: %+v", r)
		}
	}
	if got[0].neighbor != 2 {
		t.Fatalf("best neighbour of 3 = %d, want 2", got[0].neighbor)
	}
}

func TestNeighbors_Join(t *testing.T) {
	db := openDB(t, testDataset(t))
	if _, err := db.Exec(`CREATE TEMP TABLE watched(idx INTEGER)`); err != nil {
		t.Fatalf("create watched failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO watched(idx) VALUES (1)`); err != nil {
		t.Fatalf("insert watched failed: %v", err)
	}
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM neighbors n WHERE n.source = 0 AND n.neighbor NOT IN (SELECT idx FROM watched)`).Scan(&count)
	if err != nil {
		t.Fatalf("join query failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("unwatched neighbours = %d, want 2", count)
	}
}

func TestNeighbors_Errors(t *testing.T) {
	db := openDB(t, testDataset(t))

	if _, err := db.Query(`SELECT neighbor FROM neighbors`); err == nil {
		t.Fatalf("query without source succeeded, want error")
	}
	rows, err := db.Query(`SELECT neighbor FROM neighbors WHERE source = 42`)
	if err == nil {
		for rows.Next() {
		}
		err = rows.Err()
		rows.Close()
	}
	if err == nil {
		t.Fatalf("query with out-of-range source succeeded, want error")
	}
	if got := query(t, db, `SELECT rank, neighbor, title, score FROM neighbors WHERE source = 0 AND k = 0`); len(got) != 0 {
		t.Fatalf("k=0 returned %d rows, want none", len(got))
	}
}

func TestRegister_NilDataset(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open failed: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if err := Register(db, nil); err == nil {
		t.Fatalf("Register(nil) succeeded, want error")
	}
}

func TestRegister_RejectsSharedPool(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open failed: %v", err)
	}
	defer db.Close()
	if err := Register(db, testDataset(t)); !errors.Is(err, ErrSharedPool) {
		t.Fatalf("Register on pooled db error = %v, want ErrSharedPool", err)
	}
}

func TestAttach_PooledConnection(t *testing.T) {
	ctx := context.Background()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open failed: %v", err)
	}
	defer db.Close()

	// Keep one pooled connection busy so Attach gets another one.
	held, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("db.Conn failed: %v", err)
	}
	defer held.Close()

	conn, err := Attach(ctx, db, testDataset(t))
	if err != nil {
		if strings.Contains(err.Error(), "no such module") {
			t.Skipf("virtual table module unavailable: %v", err)
		}
		t.Fatalf("Attach failed: %v", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `SELECT rank, neighbor FROM neighbors WHERE source = 0 AND k = 2`)
	if err != nil {
		t.Fatalf("query on attached connection failed: %v", err)
	}
	var got []int
	for rows.Next() {
		var rank, neighbor int
		if err := rows.Scan(&rank, &neighbor); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		got = append(got, neighbor)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	rows.Close()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("neighbours = %v, want [1 2]", got)
	}

	var n int
	if err := held.QueryRowContext(ctx, `SELECT COUNT(*) FROM neighbors WHERE source = 0`).Scan(&n); err == nil {
		t.Fatalf("neighbors visible on another connection, want it scoped to the attached one")
	}
}

func TestAttach_NilDataset(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open failed: %v", err)
	}
	defer db.Close()
	if _, err := Attach(context.Background(), db, nil); err == nil {
		t.Fatalf("Attach(nil) succeeded, want error")
	}
	if n := db.Stats().InUse; n != 0 {
		t.Fatalf("connections in use after failed Attach = %d, want 0", n)
	}
}

func TestHelpers(t *testing.T) {
	if got := sanitizeName("nb;DROP"); got != "nbDROP" {
		t.Fatalf("sanitizeName = %q", got)
	}
	if got := sanitizeName(";;"); got != DefaultTable {
		t.Fatalf("sanitizeName empty = %q, want %q", got, DefaultTable)
	}
	if got := unquote(quoteLiteral("a|b'c")); got != "a|b'c" {
		t.Fatalf("quote round trip = %q", got)
	}
	if n, err := asInt("7"); err != nil || n != 7 {
		t.Fatalf("asInt(\"7\") = %d, %v", n, err)
	}
	if _, err := asInt(1.5); err == nil {
		t.Fatalf("asInt(1.5) succeeded, want error")
	}
}
