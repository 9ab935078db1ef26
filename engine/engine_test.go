package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestOpenInMemory verifies that we can open an in-memory SQLite database
// using the modernc.org/sqlite driver and execute a trivial statement.
func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t(x INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO t(x) VALUES (1),(2),(3)"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
}

func TestOpenReadOnly(t *testing.T) {
	dir := t.TempDir()
	if _, err := OpenReadOnly(filepath.Join(dir, "missing.sqlite")); err == nil {
		t.Fatalf("OpenReadOnly(missing) succeeded, want error")
	}
	if _, err := OpenReadOnly(dir); err == nil {
		t.Fatalf("OpenReadOnly(dir) succeeded, want error")
	}

	path := filepath.Join(dir, "ro.sqlite")
	rw, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", path, err)
	}
	if _, err := rw.Exec("CREATE TABLE t(x INTEGER); INSERT INTO t(x) VALUES (7)"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	rw.Close()

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly failed: %v", err)
	}
	defer ro.Close()
	var x int
	if err := ro.QueryRow("SELECT x FROM t").Scan(&x); err != nil {
		t.Fatalf("SELECT failed: %v", err)
	}
	if x != 7 {
		t.Fatalf("x = %d, want 7", x)
	}
	if _, err := ro.Exec("INSERT INTO t(x) VALUES (8)"); err == nil {
		t.Fatalf("INSERT on read-only handle succeeded, want error")
	}
}

func TestOpenReadOnly_SpecialCharacters(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.sqlite")
	rw, err := Open(seed)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", seed, err)
	}
	if _, err := rw.Exec("CREATE TABLE t(x INTEGER); INSERT INTO t(x) VALUES (7)"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	rw.Close()

	path := filepath.Join(dir, "a?b#c%20d.sqlite")
	if err := os.Rename(seed, path); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly failed: %v", err)
	}
	defer ro.Close()
	var x int
	if err := ro.QueryRow("SELECT x FROM t").Scan(&x); err != nil {
		t.Fatalf("SELECT failed: %v", err)
	}
	if x != 7 {
		t.Fatalf("x = %d, want 7", x)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "a?b#c%20d.sqlite") {
			t.Fatalf("unexpected file %q created next to the database", e.Name())
		}
	}
}

func TestReadOnlyDSN(t *testing.T) {
	got := readOnlyDSN("/data/a?b#c%d.sqlite")
	want := "file:/data/a%3Fb%23c%25d.sqlite?mode=ro"
	if got != want {
		t.Fatalf("readOnlyDSN = %q, want %q", got, want)
	}
}
