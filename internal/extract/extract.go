// Package extract parses listing page markup into deduplicated product
// candidates. It knows nothing about keywords or identity; that happens in
// the detect package.
package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

// DefaultSelectors are the structural rules tried in order against the
// listing markup. The first rule catches canonical product anchors; the rest
// cover the grid/list layout variants the site has shipped over time.
var DefaultSelectors = []string{
	`a[href*="/product/"]`,
	".search-item a",
	".pro-item a",
	".list-item a",
}

var priceSelectors = []string{
	".price",
	".pro-price",
	`[class*="price"]`,
	".cost",
}

// Extractor turns raw markup into candidate products.
type Extractor struct {
	selectors []string
	maxItems  int
	logger    *slog.Logger
}

func New(maxItems int, logger *slog.Logger) *Extractor {
	return &Extractor{
		selectors: DefaultSelectors,
		maxItems:  maxItems,
		logger:    logger.With("component", "extractor"),
	}
}

// Candidates collects product anchors from markup, deduplicates them by
// href, resolves titles and absolute links, and caps the result. Items that
// cannot yield both a non-empty title and a link are skipped, never an error.
// baseURL is the page the markup was fetched from, used to resolve relative
// hrefs.
func (e *Extractor) Candidates(markup, baseURL string) ([]models.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	var anchors []*goquery.Selection
	seen := make(map[string]bool)
	for _, selector := range e.selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || href == "" || !strings.Contains(href, "/product/") {
				return
			}
			if seen[href] {
				return
			}
			seen[href] = true
			anchors = append(anchors, sel)
		})
	}

	e.logger.Debug("collected product anchors", "count", len(anchors))

	candidates := make([]models.Candidate, 0, len(anchors))
	for _, sel := range anchors {
		if len(candidates) >= e.maxItems {
			break
		}

		href, _ := sel.Attr("href")
		link := resolveLink(base, href)
		if link == "" {
			continue
		}

		title := extractTitle(sel)
		if title == "" {
			continue
		}

		candidates = append(candidates, models.Candidate{
			Title: title,
			Link:  link,
			Price: extractPrice(sel),
		})
	}

	return candidates, nil
}

// extractTitle resolves a candidate's title from the anchor itself, falling
// back to the nearest heading-like element around it.
func extractTitle(sel *goquery.Selection) string {
	if title, ok := sel.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}

	if text := strings.TrimSpace(sel.Text()); text != "" {
		return text
	}

	parent := sel.Parent()
	if parent.Length() == 0 {
		return ""
	}

	heading := parent.Find("h1, h2, h3, h4, span, div").First()
	return strings.TrimSpace(heading.Text())
}

// extractPrice best-effort scans the anchor and its parent for a price-like
// node. The result is a free-form string, possibly empty.
func extractPrice(sel *goquery.Selection) string {
	scopes := []*goquery.Selection{sel, sel.Parent()}
	for _, scope := range scopes {
		if scope.Length() == 0 {
			continue
		}
		for _, ps := range priceSelectors {
			if price := strings.TrimSpace(scope.Find(ps).First().Text()); price != "" {
				return price
			}
		}
	}
	return ""
}

// resolveLink absolutizes href against base. Protocol-relative ("//host/x")
// and site-relative ("/x") forms both occur in the wild.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	return resolved.String()
}
