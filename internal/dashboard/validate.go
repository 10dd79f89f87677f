package dashboard

import "regexp"

// Accepted marketplace URL shapes: store pages, wholesale search pages, and
// anything on a marketplace subdomain.
var marketplaceURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(www\.)?dhgate\.com/store/\d+`),
	regexp.MustCompile(`^https?://(www\.)?dhgate\.com/wholesale/.*`),
	regexp.MustCompile(`^https?://[^/]+\.dhgate\.com/.*`),
}

// ValidMarketplaceURL reports whether url points at a monitorable store or
// search page.
func ValidMarketplaceURL(url string) bool {
	for _, p := range marketplaceURLPatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}
