package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/GriffinCanCode/seolint/internal/checker"
	"github.com/GriffinCanCode/seolint/internal/config"
	"github.com/GriffinCanCode/seolint/internal/document"
	"github.com/GriffinCanCode/seolint/internal/fetch"
	"github.com/GriffinCanCode/seolint/internal/logging"
	"github.com/GriffinCanCode/seolint/internal/monitoring"
	"github.com/GriffinCanCode/seolint/internal/report"
	"github.com/GriffinCanCode/seolint/internal/ruleset"
	"github.com/GriffinCanCode/seolint/internal/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	exitClean   = 0
	exitDefects = 1
	exitError   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	rulesFile   string
	rules       string
	format      string
	output      string
	pattern     string
	port        string
	logLevel    string
	engine      string
	concurrency int
	serve       bool
	listRules   bool
	dev         bool
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("seolint", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.rulesFile, "rules-file", cfg.Audit.RulesFile, "YAML, TOML or JSON rule file")
	fs.StringVar(&opts.rules, "rules", "", "Comma-separated rule names to run (default all enabled)")
	fs.StringVar(&opts.format, "format", string(report.FormatText), "Report format: text or json")
	fs.StringVar(&opts.output, "o", "", "Write the report to a file instead of stdout")
	fs.StringVar(&opts.pattern, "pattern", document.DefaultPattern, "Glob for pages inside directories")
	fs.StringVar(&opts.port, "port", cfg.Server.Port, "Server port (with -serve)")
	fs.StringVar(&opts.logLevel, "log-level", cfg.Logging.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&opts.engine, "engine", cfg.Audit.Engine, "Query engine: goquery or cascadia")
	fs.IntVar(&opts.concurrency, "concurrency", cfg.Audit.Concurrency, "Pages loaded in parallel")
	fs.BoolVar(&opts.serve, "serve", false, "Run the HTTP audit service")
	fs.BoolVar(&opts.listRules, "list-rules", false, "List the active rules and exit")
	fs.BoolVar(&opts.dev, "dev", cfg.Logging.Development, "Development mode (console logs, debug level)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.LoadOrDefault()

	opts, locations, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitClean
		}
		return exitError
	}

	cfg.Server.Port = opts.port
	cfg.Logging.Level = opts.logLevel
	cfg.Logging.Development = opts.dev
	cfg.Audit.RulesFile = opts.rulesFile
	cfg.Audit.Concurrency = opts.concurrency
	cfg.Audit.Engine = opts.engine

	engine, err := document.ParseEngine(cfg.Audit.Engine)
	if err != nil {
		fmt.Fprintf(stderr, "seolint: %v\n", err)
		return exitError
	}

	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)
	defer func() { _ = logger.Sync() }()

	set, err := loadRules(cfg.Audit.RulesFile, opts.rules)
	if err != nil {
		fmt.Fprintf(stderr, "seolint: %v\n", err)
		return exitError
	}

	if opts.listRules {
		if err := listRules(stdout, set); err != nil {
			fmt.Fprintf(stderr, "seolint: %v\n", err)
			return exitError
		}
		return exitClean
	}

	fetcher := fetch.NewClient(fetch.Options{
		Timeout:           cfg.Fetch.Timeout,
		Retries:           cfg.Fetch.Retries,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		UserAgent:         cfg.Fetch.UserAgent,
		Logger:            logger.Component("fetch").Logger,
	})

	if opts.serve {
		return serve(ctx, cfg, set, fetcher, logger)
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintf(stderr, "seolint: %v\n", err)
		return exitError
	}
	if len(locations) == 0 {
		fmt.Fprintln(stderr, "seolint: no pages given (files, directories, URLs or - for stdin)")
		return exitError
	}

	pages, err := document.Expand(ctx, locations, opts.pattern)
	if err != nil {
		fmt.Fprintf(stderr, "seolint: %v\n", err)
		return exitError
	}

	rules, err := set.Compile()
	if err != nil {
		fmt.Fprintf(stderr, "seolint: %v\n", err)
		return exitError
	}

	chk := checker.New(rules,
		checker.WithLogger(logger),
		checker.WithLoader(document.NewLoader(fetcher).WithStdin(stdin).WithEngine(engine)),
		checker.WithConcurrency(cfg.Audit.Concurrency),
	)

	reports, err := chk.Run(ctx, pages)
	if err != nil {
		fmt.Fprintf(stderr, "seolint: audit interrupted: %v\n", err)
		return exitError
	}

	if err := writeReports(stdout, opts.output, format, reports); err != nil {
		fmt.Fprintf(stderr, "seolint: %v\n", err)
		return exitError
	}

	summary := report.Summarize(reports)
	switch {
	case summary.Errors > 0:
		return exitError
	case summary.Defects > 0:
		return exitDefects
	default:
		return exitClean
	}
}

func loadRules(path, names string) (*ruleset.Set, error) {
	set, err := ruleset.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	var selected []string
	if names != "" {
		selected = strings.Split(names, ",")
	}
	return set.Select(selected...)
}

func listRules(w io.Writer, set *ruleset.Set) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSELECTOR")
	for _, d := range set.Enabled() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.Kind, describe(d))
	}
	return tw.Flush()
}

func describe(d ruleset.Definition) string {
	if d.Kind == ruleset.KindLimitTagCount {
		return fmt.Sprintf("%s <= %d", d.Selector(), d.Limit)
	}
	return d.Selector()
}

func writeReports(stdout io.Writer, path string, format report.Format, reports []*report.Report) error {
	if path == "" {
		return report.Write(stdout, format, reports)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(f, format, reports); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func serve(ctx context.Context, cfg *config.Config, set *ruleset.Set, fetcher *fetch.Client, logger *logging.Logger) int {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(cfg, set,
		server.WithLogger(logger),
		server.WithMetrics(monitoring.NewMetrics()),
		server.WithFetcher(fetcher),
	)
	if err != nil {
		logger.Error("Failed to create server", zap.Error(err))
		return exitError
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", zap.Error(err))
		return exitError
	}
	return exitClean
}
