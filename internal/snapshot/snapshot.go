// Package snapshot persists the per-seller record of previously observed
// matching products. Snapshots are keyed by seller name; renaming a seller
// starts a fresh baseline.
package snapshot

import (
	"context"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

// Repository loads and saves one seller's snapshot. Save replaces the
// seller's entry in full; the pipeline never saves an empty snapshot, so a
// failed scrape cannot wipe the baseline.
type Repository interface {
	Load(ctx context.Context, seller string) (models.Snapshot, error)
	Save(ctx context.Context, seller string, snap models.Snapshot) error
	Close() error
}
