package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"streetpulse/internal/config"
	"streetpulse/internal/dataprocessing"
	"streetpulse/internal/exporter"
	"streetpulse/internal/files"
	"streetpulse/internal/infrastructure"
	"streetpulse/pkg/contracts"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// workbookName is the file written into -out for the xlsx format.
const workbookName = "streetpulse.xlsx"

type options struct {
	configFile    string
	source        string
	outDir        string
	format        string
	locale        string
	lastYearStart int
	exclude       string
	delimiter     string
	timezone      string
	workers       int
	showVersion   bool

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to config.yaml when present)")
	fs.StringVar(&opts.source, "source", "", "pedestrian count source: a .csv/.xlsx file or a directory of them")
	fs.StringVar(&opts.outDir, "out", "reports", "output directory")
	fs.StringVar(&opts.format, "format", FormatCSV, "output format: csv or xlsx")
	fs.StringVar(&opts.locale, "locale", "en_US", "locale for month and weekday labels, e.g. de_DE")
	fs.IntVar(&opts.lastYearStart, "last-year-start", 0, "year whose October 1st opens the last window")
	fs.StringVar(&opts.exclude, "exclude", "", "location to drop before windowing; empty keeps all")
	fs.StringVar(&opts.delimiter, "delimiter", "", "source delimiter; sniffed from the header when empty")
	fs.StringVar(&opts.timezone, "timezone", "", "IANA zone for timestamps without an offset")
	fs.IntVar(&opts.workers, "workers", 4, "tables built concurrently")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	switch opts.format {
	case FormatCSV, FormatXLSX:
	default:
		return nil, fmt.Errorf("unknown format %q: want csv or xlsx", opts.format)
	}
	if opts.workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", opts.workers)
	}
	return opts, nil
}

// loadConfig overlays the flags that were given on top of the file and
// environment configuration.
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.set["source"] {
		cfg.Dataset.SourcePath = opts.source
	}
	if opts.set["last-year-start"] {
		cfg.Dataset.LastYearStart = opts.lastYearStart
	}
	if opts.set["exclude"] {
		cfg.Dataset.ExcludedLocation = opts.exclude
	}
	if opts.set["delimiter"] {
		cfg.Dataset.Delimiter = opts.delimiter
	}
	if opts.set["timezone"] {
		cfg.Dataset.Timezone = opts.timezone
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func newTableWriter(opts *options, logger *slog.Logger) (exporter.TableWriter, string, error) {
	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if opts.format == FormatXLSX {
		path := filepath.Join(opts.outDir, workbookName)
		w, err := exporter.NewWorkbookWriter(path, logger)
		return w, path, err
	}
	return exporter.NewCSVWriter(opts.outDir, ',', logger), opts.outDir, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The console stays free for the summary line.
	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closer.Close()

	ctx = infrastructure.EnsureTraceID(ctx)
	loc, err := cfg.Dataset.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Dataset.Timezone, err)
	}

	logger.InfoContext(ctx, "Starting aggregate export",
		slog.String("source", cfg.Dataset.SourcePath),
		slog.String("output", opts.outDir),
		slog.String("format", opts.format),
		slog.String("locale", opts.locale),
		slog.Int("last_year_start", cfg.Dataset.LastYearStart))

	src, err := files.NewDiscovery("").Resolve(cfg.Dataset.SourcePath)
	if err != nil {
		return err
	}

	start := time.Now()
	ds, err := dataprocessing.Load(ctx, src.Path, dataprocessing.Options{
		ExcludedLocation: cfg.Dataset.ExcludedLocation,
		LastYearStart:    cfg.Dataset.LastYearStart,
		Delimiter:        cfg.Dataset.DelimiterRune(),
		Location:         loc,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	out, target, err := newTableWriter(opts, logger)
	if err != nil {
		return err
	}

	n, exportErr := exporter.Export(ctx, ds, out, exporter.Options{
		Labels:  exporter.LocalizedLabels(opts.locale),
		Workers: opts.workers,
		Logger:  logger,
	})
	if err := errors.Join(exportErr, out.Close()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%d tables written to %s in %s\n", n, target, time.Since(start).Round(time.Millisecond))
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("Aggregate export failed", slog.String("error", strings.TrimSpace(err.Error())))
		os.Exit(1)
	}
}
