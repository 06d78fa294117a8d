package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"naver-land-tracker/config"
	"naver-land-tracker/models"
	"naver-land-tracker/pipeline"
	"naver-land-tracker/scraper/naver"
	"naver-land-tracker/services"
	"naver-land-tracker/storage"
	"naver-land-tracker/utils"
)

func main() {
	complexIDs := flag.String("complex-ids", "", "comma separated complex ids, overrides COMPLEX_IDS")
	tradeTypes := flag.String("trade-types", "", "comma separated trade types (A1,B1,B2), overrides TRADE_TYPES")
	scrapeOnly := flag.Bool("scrape-only", false, "only scrape, skip snapshot and summaries")
	summaryOnly := flag.Bool("summary-only", false, "skip scraping, summarize today's stored snapshot")
	dry := flag.Bool("dry", false, "log summaries instead of writing them to PostgreSQL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *complexIDs != "" {
		cfg.ComplexIDs = config.SplitList(*complexIDs)
	}
	if *tradeTypes != "" {
		cfg.TradeTypes = config.SplitList(*tradeTypes)
	}

	logger := utils.NewLoggerFor(cfg.Environment, cfg.LogLevel)
	if err := run(cfg, logger, *scrapeOnly, *summaryOnly, *dry); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger, scrapeOnly, summaryOnly, dry bool) error {
	types, err := models.ParseTradeTypes(cfg.TradeTypes)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(cfg.ComplexIDs) == 0 || len(types) == 0 {
		return fmt.Errorf("config: at least one complex id and one trade type are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Naver listing tracker starting ===")
	logger.Info("Config: complexes=%v trade_types=%v max_listings=%d concurrency=%d backend=%s",
		cfg.ComplexIDs, cfg.TradeTypes, cfg.MaxListingsPerComplex, cfg.MaxConcurrency, cfg.SnapshotBackend)

	store, err := openSnapshotStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		publisher storage.SummaryPublisher
		pg        *storage.PostgresPublisher
	)
	if dry || scrapeOnly {
		publisher = storage.NewLogPublisher(logger)
	} else {
		pg, err = storage.NewPostgresPublisher(ctx, cfg.DSN(), logger)
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return err
		}
		publisher = pg
	}
	defer publisher.Close()

	p := pipeline.New(naver.New(cfg, logger), store, publisher,
		services.NewReporter(os.Stdout), cfg.Location(), logger)

	err = p.Run(ctx, pipeline.Options{
		ComplexIDs:  cfg.ComplexIDs,
		TradeTypes:  types,
		ScrapeOnly:  scrapeOnly,
		SummaryOnly: summaryOnly,
	})
	if err != nil {
		return err
	}

	if pg != nil && !scrapeOnly {
		today, _ := p.Dates()
		stored, err := pg.FetchByDate(ctx, today)
		if err != nil {
			logger.Warn("Could not read back summaries: %v", err)
		} else {
			logger.Info("%d summaries stored in PostgreSQL for %s (table: complex_summaries)", len(stored), today)
		}
	}
	return nil
}

func openSnapshotStore(cfg *config.Config, logger *utils.Logger) (storage.SnapshotStore, error) {
	switch cfg.SnapshotBackend {
	case "", "csv":
		return storage.NewCSVStore(cfg.SnapshotDir, logger)
	case "sqlite":
		return storage.NewSQLiteStore(cfg.SnapshotDBPath, logger)
	default:
		return nil, fmt.Errorf("config: unknown SNAPSHOT_BACKEND %q", cfg.SnapshotBackend)
	}
}
