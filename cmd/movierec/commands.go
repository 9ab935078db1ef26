package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/viant/movierec/config"
	"github.com/viant/movierec/dataset"
	"github.com/viant/movierec/httpapi"
	"github.com/viant/movierec/internal/logging"
	"github.com/viant/movierec/poster"
	"github.com/viant/movierec/report"
	"github.com/viant/movierec/service"
)

type command func(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error

var commands = map[string]command{
	"titles":    runTitles,
	"recommend": runRecommend,
	"tags":      runTags,
	"report":    runReport,
	"import":    runImport,
	"sql":       runSQL,
	"serve":     runServe,
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("movierec", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { printUsage(fs.Output()) }
	configPath := fs.String("config", "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		printUsage(fs.Output())
		return errUsage
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(fs.Output(), "unknown command %q\n", fs.Arg(0))
		printUsage(fs.Output())
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Caller: cfg.Logging.Caller})
	return cmd(ctx, cfg, fs.Args()[1:], out)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func loadDataset(ctx context.Context, cfg *config.Config) (*dataset.Dataset, error) {
	return dataset.Load(ctx, dataset.Options{
		MatrixPath:   cfg.Data.MatrixPath,
		MetadataPath: cfg.Data.MetadataPath,
	})
}

// newService loads the dataset and wires the poster fetcher. The returned
// func releases the poster cache.
func newService(ctx context.Context, cfg *config.Config, posters bool) (*service.Service, func(), error) {
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	var fetcher poster.Fetcher = poster.Nop{}
	release := func() {}
	if posters {
		f, closer, err := poster.NewFromConfig(cfg.Poster)
		if err != nil {
			return nil, nil, err
		}
		fetcher = f
		release = func() {
			if err := closer.Close(); err != nil {
				logging.Warn().Err(err).Msg("closing poster cache failed")
			}
		}
	}
	svc, err := service.New(ds, cfg.Recommend, fetcher)
	if err != nil {
		release()
		return nil, nil, err
	}
	return svc, release, nil
}

func runTitles(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("titles")
	if err := parse(fs, args); err != nil {
		return err
	}
	svc, release, err := newService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer release()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, title := range svc.ListTitles() {
		fmt.Fprintf(tw, "%d\t%s\n", i, title)
	}
	return tw.Flush()
}

func runRecommend(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("recommend")
	title := fs.String("title", "", "movie title")
	index := fs.Int("index", -1, "row index choosing among movies sharing the title")
	k := fs.Int("k", 0, "number of recommendations (0 for the configured default)")
	posters := fs.Bool("posters", cfg.Poster.Enabled, "look up poster URLs")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *title == "" && fs.NArg() > 0 {
		*title = strings.Join(fs.Args(), " ")
	}
	if *title == "" {
		fmt.Fprintln(fs.Output(), "recommend: -title is required")
		return errUsage
	}

	svc, release, err := newService(ctx, cfg, *posters)
	if err != nil {
		return err
	}
	defer release()

	q := service.Query{Title: *title, TopK: *k}
	if *index >= 0 {
		q.Disambiguation = index
	}
	resp, err := svc.Recommend(ctx, q)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(out, resp)
	}

	fmt.Fprintf(out, "Based on: %s [%d]\n", resp.Title, resp.Index)
	if resp.Ambiguous() {
		fmt.Fprintf(out, "Several movies share this title: %v (pick one with -index)\n", resp.Candidates)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTITLE\tSIMILARITY\tINDEX\tPOSTER")
	for _, item := range resp.Recommendations {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%d\t%s\n", item.Rank, item.Title, item.Score, item.Index, item.PosterURL)
	}
	return tw.Flush()
}

func runTags(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("tags")
	index := fs.Int("index", -1, "row index")
	title := fs.String("title", "", "movie title; the first matching row is used")
	if err := parse(fs, args); err != nil {
		return err
	}
	svc, release, err := newService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer release()

	row := *index
	if row < 0 && *title != "" {
		rows, err := svc.Candidates(*title)
		if err != nil {
			return err
		}
		row = rows[0]
	}
	if row < 0 {
		fmt.Fprintln(fs.Output(), "tags: -index or -title is required")
		return errUsage
	}
	tags, err := svc.Tags(row)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strings.Join(tags, ", "))
	return nil
}

func runReport(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("report")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}
	r, err := report.Build(ds, report.Options{
		MatrixPath:   cfg.Data.MatrixPath,
		MetadataPath: cfg.Data.MetadataPath,
	})
	if err != nil {
		return err
	}
	if *asJSON {
		return report.WriteJSON(out, r)
	}
	return report.WriteText(out, r)
}

func runServe(ctx context.Context, cfg *config.Config, args []string, _ io.Writer) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	if err := parse(fs, args); err != nil {
		return err
	}
	svc, release, err := newService(ctx, cfg, cfg.Poster.Enabled)
	if err != nil {
		return err
	}
	defer release()
	serverCfg := cfg.Server
	serverCfg.Addr = *addr
	return httpapi.Serve(ctx, serverCfg, httpapi.NewRouter(svc))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
