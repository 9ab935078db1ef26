// Command movierec answers "movies like this one" queries from a precomputed
// similarity matrix.
//
// Usage:
//
//	movierec [-config movierec.yaml] <command> [flags]
//
// Commands:
//
//	titles      list every title with its row index
//	recommend   rank the movies most similar to a title
//	tags        print the tags of a movie
//	report      summarize the dataset
//	import      convert a JSON dense matrix into the SQLite matrix artifact
//	sql         query the neighbors virtual table
//	serve       run the JSON HTTP API
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/viant/movierec/dataset"
	"github.com/viant/movierec/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err == nil {
		return
	}
	var le *dataset.LoadError
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case errors.As(err, &le):
		logging.Fatal().Err(err).Str("artifact", le.Artifact).Str("stage", string(le.Stage)).Msg("cannot load dataset")
	default:
		fmt.Fprintln(os.Stderr, "movierec:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

const usage = `usage: movierec [-config file] <command> [flags]

commands:
  titles      list every title with its row index
  recommend   rank the movies most similar to a title
  tags        print the tags of a movie
  report      summarize the dataset
  import      convert a JSON dense matrix into the SQLite matrix artifact
  sql         query the neighbors virtual table
  serve       run the JSON HTTP API
`

func printUsage(w io.Writer) { fmt.Fprint(w, usage) }
