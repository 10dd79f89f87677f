// Package fetch retrieves listing page markup for a seller's search URL.
// Two interchangeable strategies exist: a plain HTTP client with browser-like
// headers, and a real browser session. The detection pipeline depends only on
// the PageFetcher interface.
package fetch

import (
	"context"
	"errors"
)

var (
	// ErrFetchFailed wraps any network error, non-2xx status or exhausted
	// retry budget. Callers treat it as zero products for that seller.
	ErrFetchFailed = errors.New("fetch failed")

	ErrInvalidURL = errors.New("invalid listing URL")
)

type PageFetcher interface {
	// Fetch returns the raw page markup for url, or an error wrapping
	// ErrFetchFailed.
	Fetch(ctx context.Context, url string) (string, error)
}

// Closer is implemented by fetchers holding external resources.
type Closer interface {
	Close() error
}
