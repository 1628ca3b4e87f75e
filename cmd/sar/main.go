// Command sar indexes a directory of news collections and answers boolean
// queries against it from the command line.
//
//	sar -dir corpus -q 'perro and not gato'
//	sar -dir corpus -multifield -permuterm -Q queries.txt -C
//	sar -dir corpus -positional -T expected.tsv
//
// With no query source it reads queries from stdin, one per line.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sarnews/newsearch/internal/indexer"
	"github.com/sarnews/newsearch/internal/indexer/index"
	"github.com/sarnews/newsearch/internal/searcher/executor"
	"github.com/sarnews/newsearch/pkg/config"
	"github.com/sarnews/newsearch/pkg/logger"
)

// showMax caps the listed hits unless -A is given.
const showMax = 10

type options struct {
	configPath string
	dir        string
	workers    int
	multifield bool
	positional bool
	stem       bool
	permuterm  bool
	query      string
	queryFile  string
	testFile   string
	count      bool
	showAll    bool
	stats      bool
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("sar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file; flags below override it")
	fs.StringVar(&opts.dir, "dir", "", "directory of JSON news collections")
	fs.IntVar(&opts.workers, "workers", 0, "parallel collection decoders (default from config)")
	fs.BoolVar(&opts.multifield, "multifield", false, "index title, date, keywords and summary besides the article")
	fs.BoolVar(&opts.positional, "positional", false, "keep term positions for phrase queries")
	fs.BoolVar(&opts.stem, "stem", false, "build the stem index and stem query terms")
	fs.BoolVar(&opts.permuterm, "permuterm", false, "build the permuterm index for wildcard queries")
	fs.StringVar(&opts.query, "q", "", "query to answer")
	fs.StringVar(&opts.queryFile, "Q", "", "file with one query per line")
	fs.StringVar(&opts.testFile, "T", "", "file of query<TAB>expected-count lines to verify")
	fs.BoolVar(&opts.count, "C", false, "print only query<TAB>count")
	fs.BoolVar(&opts.showAll, "A", false, "list every hit instead of the first 10")
	fs.BoolVar(&opts.stats, "stats", false, "print index statistics after indexing")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger.SetupWriter(stderr, opts.logLevel, "text")

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "sar: %v\n", err)
		return 1
	}
	applyFlags(cfg, opts)
	if cfg.Corpus.Dir == "" {
		fmt.Fprintln(stderr, "sar: -dir is required")
		return 2
	}

	start := time.Now()
	store, err := indexer.NewEngine(cfg.Indexer, nil).BuildFromDir(ctx, cfg.Corpus.Dir, cfg.Corpus.Workers)
	if err != nil {
		fmt.Fprintf(stderr, "sar: %v\n", err)
		return 1
	}
	logger.WithComponent("sar").Info("index ready", "news", store.NumNews(), "elapsed", time.Since(start))
	if opts.stats {
		printStats(stdout, store.Stats())
	}

	exec := executor.New(store, executor.WithStemming(cfg.Search.UseStemming))
	a := &answerer{
		exec:    exec,
		out:     stdout,
		count:   opts.count,
		showAll: opts.showAll,
		timeout: cfg.Search.QueryTimeout,
	}

	switch {
	case opts.testFile != "":
		return a.verify(ctx, opts.testFile, stderr)
	case opts.query != "":
		return a.answerAll(ctx, []string{opts.query}, stderr)
	case opts.queryFile != "":
		queries, err := readLines(opts.queryFile)
		if err != nil {
			fmt.Fprintf(stderr, "sar: %v\n", err)
			return 1
		}
		return a.answerAll(ctx, queries, stderr)
	case opts.stats:
		return 0
	default:
		return a.interactive(ctx, stdin, stderr)
	}
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.dir != "" {
		cfg.Corpus.Dir = opts.dir
	}
	if opts.workers > 0 {
		cfg.Corpus.Workers = opts.workers
	}
	cfg.Indexer.MultiField = cfg.Indexer.MultiField || opts.multifield
	cfg.Indexer.Positional = cfg.Indexer.Positional || opts.positional
	cfg.Indexer.Permuterm = cfg.Indexer.Permuterm || opts.permuterm
	if opts.stem {
		cfg.Indexer.Stemming = true
		cfg.Search.UseStemming = true
	}
}

type answerer struct {
	exec    *executor.Executor
	out     io.Writer
	count   bool
	showAll bool
	timeout time.Duration
}

func (a *answerer) answerAll(ctx context.Context, queries []string, stderr io.Writer) int {
	status := 0
	for _, q := range queries {
		if err := a.answer(ctx, q); err != nil {
			fmt.Fprintf(stderr, "sar: %q: %v\n", q, err)
			status = 1
		}
	}
	return status
}

func (a *answerer) answer(ctx context.Context, query string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if a.count {
		n, err := a.exec.Count(ctx, query)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s\t%d\n", query, n)
		return nil
	}

	limit := showMax
	if a.showAll {
		limit = 0
	}
	res, err := a.exec.Execute(ctx, query, limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Query: %s\n", res.Parsed)
	fmt.Fprintf(a.out, "Retrieved news: %d\n", res.TotalHits)
	for i, h := range res.Results {
		fmt.Fprintf(a.out, "#%d\tnews %d (%s #%d)\n", i+1, h.ID, h.Path, h.Offset)
		fmt.Fprintf(a.out, "\tDate: %s\n\tTitle: %s\n\tKeywords: %s\n", h.Date, h.Title, h.Keywords)
		if h.Score != 0 {
			fmt.Fprintf(a.out, "\tScore: %.4f\n", h.Score)
		}
	}
	if len(res.Results) < res.TotalHits {
		fmt.Fprintf(a.out, "... %d more (use -A to list all)\n", res.TotalHits-len(res.Results))
	}
	return nil
}

// verify answers every query in path and compares the count with the
// expected one. Mismatches are reported and make the exit status 1.
func (a *answerer) verify(ctx context.Context, path string, stderr io.Writer) int {
	lines, err := readLines(path)
	if err != nil {
		fmt.Fprintf(stderr, "sar: %v\n", err)
		return 1
	}
	failed := 0
	for _, line := range lines {
		query, want, ok := strings.Cut(line, "\t")
		if !ok {
			fmt.Fprintf(stderr, "sar: malformed test line %q\n", line)
			failed++
			continue
		}
		expected, err := strconv.Atoi(strings.TrimSpace(want))
		if err != nil {
			fmt.Fprintf(stderr, "sar: bad expected count in %q\n", line)
			failed++
			continue
		}
		qctx, cancel := a.withTimeout(ctx)
		got, err := a.exec.Count(qctx, query)
		cancel()
		switch {
		case err != nil:
			fmt.Fprintf(a.out, "FAIL\t%s\terror: %v\n", query, err)
			failed++
		case got != expected:
			fmt.Fprintf(a.out, "FAIL\t%s\tgot %d, want %d\n", query, got, expected)
			failed++
		default:
			fmt.Fprintf(a.out, "%s\t%d\n", query, got)
		}
	}
	if failed > 0 {
		fmt.Fprintf(a.out, "%d of %d queries failed\n", failed, len(lines))
		return 1
	}
	fmt.Fprintf(a.out, "all %d queries passed\n", len(lines))
	return 0
}

func (a *answerer) interactive(ctx context.Context, stdin io.Reader, stderr io.Writer) int {
	sc := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stderr, "query> ")
		if !sc.Scan() {
			fmt.Fprintln(stderr)
			break
		}
		q := strings.TrimSpace(sc.Text())
		if q == "" {
			break
		}
		if err := a.answer(ctx, q); err != nil {
			fmt.Fprintf(stderr, "sar: %v\n", err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return 130
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(stderr, "sar: reading queries: %v\n", err)
		return 1
	}
	return 0
}

func (a *answerer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// readLines returns the non-blank lines of path that do not start with '#'.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

func printStats(w io.Writer, st index.Stats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Indexed documents:\t%d\n", st.Documents)
	fmt.Fprintf(tw, "Indexed news:\t%d\n", st.News)
	fmt.Fprintf(tw, "Article tokens:\t%d\n", st.Tokens)
	fmt.Fprintf(tw, "Positional queries:\t%t\n", st.Positional)
	fmt.Fprintln(tw, "\nField\tTerms\tStems\tPermuterms")
	for _, f := range st.Fields {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", f.Field, f.Terms, f.Stems, f.Permuterms)
	}
	tw.Flush()
}
