package neighbors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"modernc.org/sqlite/vtab"

	"github.com/viant/movierec/dataset"
	"github.com/viant/movierec/rank"
)

// ModuleName is the name the virtual table module is registered under.
const ModuleName = "movierec_neighbors"

// DefaultTable is the table Register and Attach create in the temp schema.
const DefaultTable = "neighbors"

// ErrSharedPool reports a Register call on a pool that may hand queries to a
// connection other than the one holding the temp table.
var ErrSharedPool = errors.New("neighbors: temp table needs a pool limited to one connection, use Attach")

const (
	colNeighbor = iota
	colTitle
	colScore
	colRank
	colSource
	colK
)

const (
	idxSource = 1 << iota
	idxK
)

// Datasets are shared across connections by key; the module is registered
// once per process.
var registry = struct {
	mu    sync.RWMutex
	byKey map[string]*dataset.Dataset
}{byKey: make(map[string]*dataset.Dataset)}

func lookup(key string) (*dataset.Dataset, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	ds, ok := registry.byKey[key]
	return ds, ok
}

// Module implements vtab.Module for the neighbors table.
type Module struct{}

// Table is one neighbors table bound to a dataset.
type Table struct {
	name string
	ds   *dataset.Dataset
}

type row struct {
	neighbor int
	title    string
	score    float64
	rank     int
	source   int
	k        int
}

// Cursor iterates the ranked neighbours of one source row.
type Cursor struct {
	table *Table
	rows  []row
	pos   int
}

// Register makes ds queryable through a temp table named DefaultTable on db.
// Temp tables live on a single connection, so db must be limited to one open
// connection (db.SetMaxOpenConns(1)); otherwise Register returns
// ErrSharedPool. Use Attach with a pooled db.
func Register(db *sql.DB, ds *dataset.Dataset) error {
	return RegisterTable(db, ds, DefaultTable)
}

// RegisterTable is Register with an explicit table name.
func RegisterTable(db *sql.DB, ds *dataset.Dataset, table string) error {
	if db.Stats().MaxOpenConnections != 1 {
		return ErrSharedPool
	}
	key, err := prepare(db, ds)
	if err != nil {
		return err
	}
	if _, err := db.Exec(createStmt(table, key)); err != nil {
		return fmt.Errorf("neighbors: create table %s: %w", table, err)
	}
	return nil
}

// Attach pins a connection from db and creates the DefaultTable temp table on
// it. The table is visible only through the returned connection, which the
// caller must close.
func Attach(ctx context.Context, db *sql.DB, ds *dataset.Dataset) (*sql.Conn, error) {
	return AttachTable(ctx, db, ds, DefaultTable)
}

// AttachTable is Attach with an explicit table name.
func AttachTable(ctx context.Context, db *sql.DB, ds *dataset.Dataset, table string) (*sql.Conn, error) {
	key, err := prepare(db, ds)
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("neighbors: acquire connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, createStmt(table, key)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("neighbors: create table %s: %w", table, err)
	}
	return conn, nil
}

// prepare publishes ds under its key and registers the module on db.
func prepare(db *sql.DB, ds *dataset.Dataset) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("neighbors: dataset is nil")
	}
	key := ds.Key
	if key == "" {
		key = fmt.Sprintf("mem:%p", ds)
	}
	registry.mu.Lock()
	registry.byKey[key] = ds
	registry.mu.Unlock()

	if err := vtab.RegisterModule(db, ModuleName, &Module{}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return "", fmt.Errorf("neighbors: register module: %w", err)
		}
	}
	return key, nil
}

func createStmt(table, key string) string {
	return fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS temp.%s USING %s(%s)",
		sanitizeName(table), ModuleName, quoteLiteral(key))
}

// Create declares the table schema and binds the dataset named in args.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

// Connect attaches to an existing table.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("neighbors: expected a dataset key argument, got %d args", len(args))
	}
	key := unquote(strings.TrimSpace(args[3]))
	ds, ok := lookup(key)
	if !ok {
		return nil, fmt.Errorf("neighbors: no dataset registered under %q", key)
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("neighbors: EnableConstraintSupport failed: %w", err)
	}
	decl := fmt.Sprintf("CREATE TABLE %s(neighbor INTEGER, title TEXT, score REAL, rank INTEGER, source INTEGER HIDDEN, k INTEGER HIDDEN)", args[2])
	if err := ctx.Declare(decl); err != nil {
		return nil, err
	}
	return &Table{name: args[2], ds: ds}, nil
}

// BestIndex requires an equality on source and pushes down an optional k.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var source, k *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable || c.Op != vtab.OpEQ {
			continue
		}
		switch c.Column {
		case colSource:
			source = c
		case colK:
			k = c
		}
	}
	if source == nil {
		return fmt.Errorf("neighbors: source constraint is required")
	}
	next := 0
	source.ArgIndex = next
	source.Omit = true
	next++
	info.IdxNum = idxSource
	if k != nil {
		k.ArgIndex = next
		k.Omit = true
		info.IdxNum |= idxK
	}
	return nil
}

// Open allocates a cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect releases nothing; the dataset outlives the table.
func (t *Table) Disconnect() error { return nil }

// Destroy releases nothing.
func (t *Table) Destroy() error { return nil }

// Filter ranks the neighbours of the constrained source row.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows, c.pos = nil, 0
	if idxNum&idxSource == 0 || len(vals) == 0 || vals[0] == nil {
		return fmt.Errorf("neighbors: source argument is required")
	}
	source, err := asInt(vals[0])
	if err != nil {
		return err
	}
	ds := c.table.ds
	k := ds.Len() - 1
	if idxNum&idxK != 0 {
		if len(vals) < 2 || vals[1] == nil {
			return fmt.Errorf("neighbors: k argument is missing")
		}
		if k, err = asInt(vals[1]); err != nil {
			return err
		}
	}
	if k <= 0 || ds.Len() < 2 {
		return nil
	}
	recs, err := rank.Recommend(source, ds.Matrix, ds.Titles, k)
	if err != nil {
		return fmt.Errorf("neighbors: %w", err)
	}
	c.rows = make([]row, len(recs))
	for i, r := range recs {
		c.rows[i] = row{neighbor: r.Index, title: r.Title, score: r.Score, rank: i + 1, source: source, k: k}
	}
	return nil
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end of rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns a column of the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos >= len(c.rows) {
		return nil, fmt.Errorf("neighbors: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	r := c.rows[c.pos]
	switch col {
	case colNeighbor:
		return int64(r.neighbor), nil
	case colTitle:
		return r.title, nil
	case colScore:
		return r.score, nil
	case colRank:
		return int64(r.rank), nil
	case colSource:
		return int64(r.source), nil
	case colK:
		return int64(r.k), nil
	}
	return nil, fmt.Errorf("neighbors: unsupported column %d", col)
}

// Rowid is the rank, unique within one scan.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos >= len(c.rows) {
		return 0, fmt.Errorf("neighbors: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return int64(c.rows[c.pos].rank), nil
}

// Close releases the rows.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }
