package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quentin/tickvault/internal/bus"
	"github.com/quentin/tickvault/internal/config"
	"github.com/quentin/tickvault/internal/domain"
	"github.com/quentin/tickvault/internal/events"
	"github.com/quentin/tickvault/internal/gaps"
	"github.com/quentin/tickvault/internal/logger"
	"github.com/quentin/tickvault/internal/metrics"
	"github.com/quentin/tickvault/internal/provider"
	"github.com/quentin/tickvault/internal/repository"
	"github.com/quentin/tickvault/internal/service"
	"github.com/quentin/tickvault/internal/verify"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "tickvault-backfill",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols to backfill (required)")
	startFlag := flag.String("start", "", "First day of the range, YYYY-MM-DD (required)")
	endFlag := flag.String("end", "", "Last day of the range, YYYY-MM-DD (required)")
	vendor := flag.String("vendor", "", "Vendor name recorded on jobs (default from config)")
	replayDir := flag.String("replay-dir", "", "Local bar drop directory to fetch from")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	symbols := splitSymbols(*symbolsFlag)
	if len(symbols) == 0 {
		appLogger.Fatal("No symbols given; use -symbols=AAPL,MSFT")
	}
	start, err := time.Parse(domain.DayFormat, *startFlag)
	if err != nil {
		appLogger.WithField("start", *startFlag).Fatal("Invalid -start date")
	}
	end, err := time.Parse(domain.DayFormat, *endFlag)
	if err != nil {
		appLogger.WithField("end", *endFlag).Fatal("Invalid -end date")
	}
	if end.Before(start) {
		appLogger.Fatal("Invalid date range: end is before start")
	}
	if *vendor == "" {
		*vendor = cfg.Backfill.Vendor
	}
	if *replayDir == "" {
		appLogger.Fatal("No fetch source given; use -replay-dir")
	}

	appLogger.WithFields(logger.Fields{
		"symbols": symbols,
		"start":   *startFlag,
		"end":     *endFlag,
		"vendor":  *vendor,
	}).Info("Starting backfill run")

	// Initialize the job store through the pool registry
	registry := repository.NewRegistry()
	defer registry.Close()

	db, err := registry.Open(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	jobRepo := repository.NewJobRepository(db)

	// Event fan-out: downstream contexts subscribe in-process; the NATS
	// bridge forwards outcomes out of process when enabled
	publisher := events.NewPublisher(appLogger)
	if cfg.NATS.Enabled {
		natsClient, err := bus.Connect(cfg.NATS.URL)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to NATS")
		}
		defer natsClient.Close()
		natsClient.BridgeEvents(publisher, cfg.NATS.SubjectPrefix, appLogger)
	}

	detector := gaps.New(cfg.Store.Root, appLogger)
	verifier := verify.New(provider.DefaultMatrix(), cfg.Backfill.ToleranceDays, appLogger)
	fetcher := service.NewProviderFetcher(provider.NewReplayProvider(*replayDir), cfg.Store.Root)

	backfillService := service.NewBackfillService(
		jobRepo,
		detector,
		verifier,
		fetcher,
		publisher,
		metrics.New(nil),
		appLogger,
		&service.BackfillConfig{
			StoreRoot:    cfg.Store.Root,
			Feed:         cfg.Backfill.Feed,
			RetryCount:   cfg.Backfill.RetryCount,
			RetryBackoff: cfg.Backfill.RetryBackoff,
		},
	)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	summary, err := backfillService.RunBackfill(ctx, symbols, start, end, *vendor)
	if err != nil {
		appLogger.WithError(err).Error("Backfill interrupted")
	}
	if summary != nil {
		appLogger.WithFields(logger.Fields{
			"gaps":      summary.GapsFound,
			"completed": summary.Completed,
			"failed":    summary.Failed,
		}).Info("Backfill run finished")
		if summary.Failed > 0 {
			os.Exit(1)
		}
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
