// mailtest sends a sample digest with fake products so SMTP settings can be
// verified without waiting for a real detection run.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jeffreyvdb/dhgate-monitor/internal/config"
	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
	"github.com/jeffreyvdb/dhgate-monitor/internal/notify"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration document")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewEmailNotifier(
		cfg.Email.SMTPServer,
		cfg.Email.SMTPPort,
		cfg.Email.SenderEmail,
		cfg.Email.SenderPassword,
		cfg.Email.RecipientEmail,
		logger,
	)

	now := time.Now()
	sample := map[string][]models.Product{
		"Test Shop": {
			{
				ID:      "dhgate_123456789",
				Title:   "Kids Soccer Jersey 2024 Home Kit",
				Link:    "https://www.dhgate.com/product/kids-soccer-jersey/123456789.html",
				Price:   "$12.50",
				FoundAt: now,
			},
			{
				ID:      "dhgate_987654321",
				Title:   "Youth Basketball Jersey - Kids Size",
				Link:    "https://www.dhgate.com/product/youth-basketball-jersey/987654321.html",
				FoundAt: now,
			},
		},
	}

	if err := notifier.SendDigest(context.Background(), sample); err != nil {
		logger.Error("failed to send sample digest", "error", err)
		os.Exit(1)
	}

	logger.Info("sample digest sent", "recipient", cfg.Email.RecipientEmail)
}
