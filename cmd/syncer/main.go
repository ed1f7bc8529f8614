package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"media_syncer/internal/config"
	"media_syncer/internal/consumer"
	"media_syncer/internal/publisher"
	"media_syncer/internal/retailers"
	"media_syncer/internal/scheduler"
	"media_syncer/internal/service"
	"media_syncer/internal/source/catalog"
	"media_syncer/internal/source/feed"
	"media_syncer/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize RabbitMQ publisher
	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	// Initialize stores
	mediaStore := postgres.NewMediaStore(db)
	influencerStore := postgres.NewInfluencerStore(db)

	// Initialize feed source
	feedSource := feed.New(feed.Config{
		BaseURL:        cfg.Feed.BaseURL,
		PageSize:       cfg.Feed.PageSize,
		Timeout:        cfg.Feed.Timeout,
		MaxAttempts:    cfg.Feed.Retry.MaxAttempts,
		InitialBackoff: cfg.Feed.Retry.InitialBackoff,
		MaxBackoff:     cfg.Feed.Retry.MaxBackoff,
	}, logger)

	// Initialize catalog client
	catalogClient := catalog.New(catalog.Config{
		BaseURL:     cfg.Catalog.BaseURL,
		PublicToken: cfg.Catalog.PublicToken,
		Timeout:     cfg.Catalog.Timeout,
	}, logger)

	// Retailer directory: built-in table unless overridden by config
	directory := retailers.Default()
	if len(cfg.Retailers) > 0 {
		entries := make([]retailers.Entry, len(cfg.Retailers))
		for i, e := range cfg.Retailers {
			entries[i] = retailers.Entry{SiteID: e.SiteID, Name: e.Name, Domain: e.Domain}
		}
		directory = retailers.New(entries)
	}

	syncService := service.NewSyncService(
		feedSource,
		mediaStore,
		influencerStore,
		rabbitMQ,
		logger,
	)

	enrichService := service.NewEnrichService(
		mediaStore,
		directory,
		catalogClient,
		cfg.Enrich.Workers,
		logger,
	)

	// Enrichment requests arrive over AMQP; completion is observed via the
	// persisted post.
	enrichConsumer, err := consumer.NewRabbitMQ(consumer.Config{
		URL:       cfg.RabbitMQ.URL,
		QueueName: cfg.RabbitMQ.EnrichQueue,
	}, enrichService, logger)
	if err != nil {
		logger.Error("failed to start enrichment consumer", "error", err)
		os.Exit(1)
	}
	defer enrichConsumer.Close()

	sched := scheduler.NewScheduler(syncService, influencerStore, cfg.Sync.Interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := enrichConsumer.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("enrichment consumer stopped", "error", err)
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting media syncer",
		"interval", cfg.Sync.Interval,
		"retailers", directory.Len(),
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
