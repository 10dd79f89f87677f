// Package monitor orchestrates one detection run: per seller, fetch the
// listing page, extract candidates, filter and assign identities, diff
// against the stored snapshot, then send a single digest covering all
// sellers with new products. Seller failures are isolated; no seller can
// abort the run.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jeffreyvdb/dhgate-monitor/internal/detect"
	"github.com/jeffreyvdb/dhgate-monitor/internal/extract"
	"github.com/jeffreyvdb/dhgate-monitor/internal/fetch"
	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
	"github.com/jeffreyvdb/dhgate-monitor/internal/notify"
	"github.com/jeffreyvdb/dhgate-monitor/internal/ratelimit"
	"github.com/jeffreyvdb/dhgate-monitor/internal/snapshot"
)

type Runner struct {
	fetcher   fetch.PageFetcher
	extractor *extract.Extractor
	filter    *detect.KeywordFilter
	repo      snapshot.Repository
	notifier  notify.Notifier
	limiter   ratelimit.RateLimiter
	logger    *slog.Logger

	now func() time.Time
}

func NewRunner(
	fetcher fetch.PageFetcher,
	extractor *extract.Extractor,
	filter *detect.KeywordFilter,
	repo snapshot.Repository,
	notifier notify.Notifier,
	limiter ratelimit.RateLimiter,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		fetcher:   fetcher,
		extractor: extractor,
		filter:    filter,
		repo:      repo,
		notifier:  notifier,
		limiter:   limiter,
		logger:    logger.With("component", "runner"),
		now:       time.Now,
	}
}

// Run processes every seller sequentially and returns the newly seen
// products per seller. Unexpected panics are recovered and logged so a bad
// run never takes the scheduler down with it.
func (r *Runner) Run(ctx context.Context, sellers []models.Seller) (result map[string][]models.Product, err error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("run panicked", "panic", rec)
			err = errors.New("run aborted by panic")
		}
	}()

	logger.Info("starting run", "sellers", len(sellers))

	newProducts := make(map[string][]models.Product)
	for i, seller := range sellers {
		if ctx.Err() != nil {
			return newProducts, ctx.Err()
		}

		if i > 0 && r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return newProducts, err
			}
		}

		fresh := r.checkSeller(ctx, logger, seller)
		if len(fresh) > 0 {
			newProducts[seller.Name] = fresh
		}
	}

	if len(newProducts) > 0 {
		if err := r.notifier.SendDigest(ctx, newProducts); err != nil {
			// At-most-once delivery: the snapshots are already saved and the
			// run still counts as successful.
			logger.Warn("failed to send digest", "error", err)
		}
	} else {
		logger.Info("no new products found")
	}

	logger.Info("run finished", "sellers_with_new_products", len(newProducts))
	return newProducts, nil
}

// checkSeller runs the pipeline for one seller. Every failure path returns
// nil after logging; an empty or failed scrape leaves the stored snapshot
// untouched so a transient error is never mistaken for a removed catalog.
func (r *Runner) checkSeller(ctx context.Context, logger *slog.Logger, seller models.Seller) []models.Product {
	logger = logger.With("seller", seller.Name)
	logger.Info("checking seller", "url", seller.SearchURL)

	markup, err := r.fetcher.Fetch(ctx, seller.SearchURL)
	if err != nil {
		logger.Warn("fetch failed, skipping seller", "error", err)
		return nil
	}

	candidates, err := r.extractor.Candidates(markup, seller.SearchURL)
	if err != nil {
		logger.Warn("extraction failed, skipping seller", "error", err)
		return nil
	}

	current := detect.Collect(candidates, r.filter, r.now())
	if len(current) == 0 {
		logger.Info("no matching products this run, keeping previous snapshot")
		return nil
	}

	prior, err := r.repo.Load(ctx, seller.Name)
	if err != nil {
		logger.Warn("failed to load snapshot, skipping seller", "error", err)
		return nil
	}

	fresh := detect.Diff(prior, current)

	if err := r.repo.Save(ctx, seller.Name, current); err != nil {
		logger.Warn("failed to save snapshot", "error", err)
		return nil
	}

	logger.Info("seller checked",
		"candidates", len(candidates),
		"matching", len(current),
		"new", len(fresh),
	)

	return fresh
}
