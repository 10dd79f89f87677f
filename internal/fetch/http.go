package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/andybalholm/brotli"
)

// HTTPFetcher retrieves listing pages with a plain HTTP client, rotating
// browser fingerprints per request and retrying with escalating timeouts.
type HTTPFetcher struct {
	client       *http.Client
	policy       Policy
	fingerprints *FingerprintPool
	logger       *slog.Logger
}

func NewHTTPFetcher(policy Policy, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		policy:       policy,
		fingerprints: NewFingerprintPool(),
		logger:       logger.With("component", "http_fetcher"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	var markup string
	err = f.policy.Do(ctx, func(attempt int) error {
		timeout := f.policy.AttemptTimeout(attempt)
		f.logger.Info("fetching listing page", "url", rawURL, "attempt", attempt+1, "timeout", timeout)

		body, err := f.fetchOnce(ctx, rawURL, timeout)
		if err != nil {
			f.logger.Warn("fetch attempt failed", "url", rawURL, "attempt", attempt+1, "error", err)
			return err
		}
		markup = body
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, rawURL, err)
	}

	return markup, nil
}

// Close releases idle connections held by the underlying transport.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	fp := f.fingerprints.Next()
	req.Header = fp.Headers.Clone()
	req.Header.Set("User-Agent", fp.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Client errors are not transient for this site; only server errors
		// warrant another attempt.
		if resp.StatusCode < 500 {
			return "", fmt.Errorf("%w: unexpected status: %d", errPermanent, resp.StatusCode)
		}
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	return string(body), nil
}

// readBody decompresses the response body when the transport did not do it
// for us (it only handles gzip transparently when it set the header itself).
// Every encoding the fingerprints advertise must have a branch here.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		reader = fr
	default:
		reader = resp.Body
	}
	return io.ReadAll(reader)
}
