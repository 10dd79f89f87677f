package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeffreyvdb/dhgate-monitor/internal/config"
	"github.com/jeffreyvdb/dhgate-monitor/internal/detect"
	"github.com/jeffreyvdb/dhgate-monitor/internal/extract"
	"github.com/jeffreyvdb/dhgate-monitor/internal/fetch"
	"github.com/jeffreyvdb/dhgate-monitor/internal/monitor"
	"github.com/jeffreyvdb/dhgate-monitor/internal/notify"
	"github.com/jeffreyvdb/dhgate-monitor/internal/ratelimit"
	"github.com/jeffreyvdb/dhgate-monitor/internal/schedule"
	"github.com/jeffreyvdb/dhgate-monitor/internal/snapshot"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration document")
	once := flag.Bool("once", false, "run a single check and exit instead of scheduling")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repo, err := newRepository(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize snapshot repository", "error", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer repo.Close()

	fetcher := newFetcher(cfg, logger)
	if closer, ok := fetcher.(fetch.Closer); ok {
		defer closer.Close()
	}

	runner := monitor.NewRunner(
		fetcher,
		extract.New(cfg.MaxProductsToCheck, logger),
		detect.NewKeywordFilter(cfg.Filters.Keywords, cfg.Filters.CaseSensitive),
		repo,
		notify.NewEmailNotifier(
			cfg.Email.SMTPServer,
			cfg.Email.SMTPPort,
			cfg.Email.SenderEmail,
			cfg.Email.SenderPassword,
			cfg.Email.RecipientEmail,
			logger,
		),
		ratelimit.NewSimpleRateLimiter(2*time.Second, 6*time.Second),
		logger,
	)

	run := func(ctx context.Context) {
		if _, err := runner.Run(ctx, cfg.Sellers); err != nil {
			logger.Error("run failed", "error", err)
		}
	}

	if *once {
		run(ctx)
		return
	}

	sched, err := schedule.New(cfg.Schedule.Time, run, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	// First check fires immediately; after that the daily schedule applies.
	run(ctx)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func newRepository(ctx context.Context, cfg *config.Config) (snapshot.Repository, error) {
	switch cfg.Storage.Driver {
	case "redis":
		return snapshot.NewRedisRepository(ctx, cfg.Storage.RedisAddr, "", 0)
	case "postgres":
		return snapshot.NewPostgresRepository(ctx, cfg.Storage.PostgresDSN)
	default:
		return snapshot.NewFileRepository(cfg.Storage.Path)
	}
}

func newFetcher(cfg *config.Config, logger *slog.Logger) fetch.PageFetcher {
	if cfg.Fetcher.Strategy == "browser" {
		opts := fetch.DefaultBrowserOptions()
		opts.Headless = cfg.Fetcher.Headless
		opts.Timeout = time.Duration(cfg.Fetcher.TimeoutSeconds) * time.Second
		opts.MaxRetries = cfg.Fetcher.MaxRetries
		return fetch.NewBrowserFetcher(opts, logger)
	}

	policy := fetch.DefaultPolicy()
	policy.MaxAttempts = cfg.Fetcher.MaxRetries
	policy.BaseTimeout = time.Duration(cfg.Fetcher.TimeoutSeconds) * time.Second
	return fetch.NewHTTPFetcher(policy, logger)
}
