package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/viant/movierec/config"
	"github.com/viant/movierec/engine"
	"github.com/viant/movierec/neighbors"
)

// runSQL runs one query against an in-memory database where the loaded
// dataset is exposed as the neighbors table.
func runSQL(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("sql")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(fs.Output(), "usage: movierec sql \"SELECT rank, title, score FROM neighbors WHERE source = 0 AND k = 5\"")
		return errUsage
	}
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}
	db, err := engine.Open(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()
	conn, err := neighbors.Attach(ctx, db, ds)
	if err != nil {
		return err
	}
	defer conn.Close()
	rows, err := conn.QueryContext(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	defer rows.Close()
	return printRows(out, rows)
}

func printRows(out io.Writer, rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			switch x := v.(type) {
			case nil:
				cells[i] = "NULL"
			case []byte:
				cells[i] = string(x)
			case float64:
				cells[i] = fmt.Sprintf("%.4f", x)
			default:
				cells[i] = fmt.Sprint(x)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return tw.Flush()
}
