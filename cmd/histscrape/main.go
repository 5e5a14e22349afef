package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"stockhist/internal/config"
	"stockhist/internal/dataprocessing"
	"stockhist/internal/exporter"
	"stockhist/internal/infrastructure"
	"stockhist/internal/scrape"
	"stockhist/pkg/domain"
)

func main() {
	symbol := flag.String("symbol", "", "ticker symbol to scrape (required, e.g. A or AAPL)")
	period := flag.String("period", "", "relative date range: 6m | 1y (blank keeps site default)")
	fromStr := flag.String("from", "", "optional start date (YYYY-MM-DD)")
	toStr := flag.String("to", "", "optional end date (YYYY-MM-DD)")
	strategy := flag.String("strategy", "auto", "extraction strategy: direct | ranged | browser | auto")
	outPath := flag.String("out", "", "output CSV path (defaults to <SYMBOL>.csv in the reports dir)")
	headless := flag.Bool("headless", true, "run browser headless (browser strategy only)")
	flag.Parse()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -symbol is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: Failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	cfg.Browser.Headless = *headless

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	req, err := buildRequest(*symbol, *period, *fromStr, *toStr)
	if err != nil {
		logger.Error("invalid request", slog.String("error", err.Error()))
		os.Exit(2)
	}

	logger.Info("stockhist starting",
		slog.String("symbol", req.NormalizedSymbol()),
		slog.String("period", req.Period.Token()),
		slog.String("strategy", *strategy))

	source, err := selectStrategy(*strategy, req, cfg, logger)
	if err != nil {
		logger.Error("invalid strategy", slog.String("error", err.Error()))
		os.Exit(2)
	}

	if err := run(context.Background(), cfg, logger, source, req, *outPath); err != nil {
		logger.Error("scrape failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run executes one pipeline pass: fetch, normalize, assemble, export.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, source scrape.Strategy, req domain.Request, outPath string) error {
	raw, err := source.Fetch(ctx, req)
	if err != nil {
		return err
	}
	logger.Info("raw rows extracted", slog.Int("count", len(raw)))

	normalizer := dataprocessing.NewNormalizer(logger)
	rows, dropped := normalizer.NormalizeAll(raw)
	if dropped > 0 {
		logger.Warn("some rows dropped", slog.Int("dropped", dropped))
	}

	assembler := dataprocessing.NewAssembler(logger)
	table, err := assembler.Assemble(req.NormalizedSymbol(), rows)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = cfg.GetReportPath(exporter.DefaultFilename(table.Symbol))
	}

	historyExporter := exporter.NewHistoryExporter(logger)
	if err := historyExporter.Export(table, outPath); err != nil {
		return err
	}

	logger.Info("history exported",
		slog.String("symbol", table.Symbol),
		slog.Int("rows", table.Len()),
		slog.String("path", outPath))
	return nil
}

// buildRequest validates the command-line inputs into a scrape request.
func buildRequest(symbol, period, fromStr, toStr string) (domain.Request, error) {
	req := domain.Request{Symbol: symbol}

	switch period {
	case "":
		req.Period = domain.PeriodDefault
	case "6m":
		req.Period = domain.PeriodSixMonth
	case "1y":
		req.Period = domain.PeriodOneYear
	default:
		return req, fmt.Errorf("unknown period %q (want 6m or 1y)", period)
	}

	if fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return req, fmt.Errorf("invalid -from date: %w", err)
		}
		req.From = from
	}
	if toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return req, fmt.Errorf("invalid -to date: %w", err)
		}
		req.To = to
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return req, fmt.Errorf("-to date precedes -from date")
	}

	return req, nil
}

// selectStrategy maps the flag value onto an extraction strategy. "auto"
// tries the cheap strategies first and the browser last. Only the ranged
// strategy can honor explicit -from/-to bounds; the others would silently
// serve the site's default range, so they refuse ranged requests.
func selectStrategy(name string, req domain.Request, cfg *config.Config, logger *slog.Logger) (scrape.Strategy, error) {
	hasRange := !req.From.IsZero() || !req.To.IsZero()

	switch name {
	case "direct":
		if hasRange {
			return nil, fmt.Errorf("-from/-to require the ranged or auto strategy")
		}
		return scrape.NewDirect(cfg.Source, logger), nil
	case "ranged":
		return scrape.NewRanged(cfg.Source, logger), nil
	case "browser":
		if hasRange {
			return nil, fmt.Errorf("-from/-to require the ranged or auto strategy")
		}
		return scrape.NewBrowser(cfg.Source, cfg.Browser, logger), nil
	case "auto":
		if hasRange {
			return scrape.NewFallback(logger,
				scrape.NewRanged(cfg.Source, logger),
			), nil
		}
		return scrape.NewFallback(logger,
			scrape.NewDirect(cfg.Source, logger),
			scrape.NewRanged(cfg.Source, logger),
			scrape.NewBrowser(cfg.Source, cfg.Browser, logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want direct, ranged, browser, or auto)", name)
	}
}
