// Package notify delivers one aggregated digest per run covering every
// seller with newly seen products. Delivery is a single best-effort attempt;
// a failure is surfaced but never retried or queued.
package notify

import (
	"context"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

type Notifier interface {
	// SendDigest sends one message aggregating newProducts, a mapping from
	// seller name to its newly seen products. Callers only invoke it when at
	// least one seller has new products.
	SendDigest(ctx context.Context, newProducts map[string][]models.Product) error
}
