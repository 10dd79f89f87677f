package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserOptions configure the automated browser session.
type BrowserOptions struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	MaxRetries     int
}

func DefaultBrowserOptions() *BrowserOptions {
	return &BrowserOptions{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Locale:         "en-US",
		MaxRetries:     3,
	}
}

// BrowserFetcher retrieves listing pages through a real browser. Each Fetch
// call runs in its own session which is torn down on every exit path, so a
// wedged page never leaks into the next seller.
type BrowserFetcher struct {
	opts   *BrowserOptions
	logger *slog.Logger
}

func NewBrowserFetcher(opts *BrowserOptions, logger *slog.Logger) *BrowserFetcher {
	if opts == nil {
		opts = DefaultBrowserOptions()
	}
	return &BrowserFetcher{
		opts:   opts,
		logger: logger.With("component", "browser_fetcher"),
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	session, err := newBrowserSession(f.opts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer session.Close()

	page, err := session.context.NewPage()
	if err != nil {
		return "", fmt.Errorf("%w: failed to create page: %v", ErrFetchFailed, err)
	}
	page.SetDefaultTimeout(float64(f.opts.Timeout.Milliseconds()))

	if err := f.navigateWithRetry(page, url); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	f.humanize(page)

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("%w: failed to read page content: %v", ErrFetchFailed, err)
	}

	return content, nil
}

func (f *BrowserFetcher) navigateWithRetry(page playwright.Page, url string) error {
	var lastErr error

	for i := 0; i < f.opts.MaxRetries; i++ {
		if i > 0 {
			f.logger.Info("retrying navigation", "attempt", i+1, "url", url)
			time.Sleep(time.Duration(i+1) * time.Second)
		}

		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(f.opts.Timeout.Milliseconds())),
		})
		if err == nil {
			return nil
		}

		lastErr = err
		f.logger.Warn("navigation failed", "error", err, "attempt", i+1)
	}

	return fmt.Errorf("failed after %d retries: %w", f.opts.MaxRetries, lastErr)
}

// humanize adds a little mouse and scroll noise before reading the page.
func (f *BrowserFetcher) humanize(page playwright.Page) {
	for i := 0; i < 3; i++ {
		x := float64(100 + i*200)
		y := float64(100 + i*150)
		page.Mouse().Move(x, y)
		time.Sleep(time.Millisecond * time.Duration(200+i*100))
	}

	page.Evaluate(`window.scrollBy(0, Math.random() * 300)`)
	time.Sleep(time.Second)
}

type browserSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
}

func newBrowserSession(opts *BrowserOptions) (*browserSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			fmt.Sprintf("--window-size=%d,%d", opts.ViewportWidth, opts.ViewportHeight),
			"--user-agent=" + opts.UserAgent,
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	ctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: &opts.UserAgent,
		Locale:    &opts.Locale,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &browserSession{pw: pw, browser: browser, context: ctx}, nil
}

func (s *browserSession) Close() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}
