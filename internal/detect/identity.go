package detect

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

// productPathPattern captures the numeric product id from canonical product
// URLs like https://www.dhgate.com/product/kids-jersey/493478194.html.
var productPathPattern = regexp.MustCompile(`/product/[^/]+/(\d+)\.html`)

// ProductID derives a stable fingerprint for a product link. Query string
// and fragment are stripped first so tracking parameters never change the
// identity. When the path carries a numeric product id the fingerprint is
// "dhgate_<id>"; otherwise it is the md5 hex of the stripped URL.
func ProductID(link string) string {
	core := stripTracking(link)

	if m := productPathPattern.FindStringSubmatch(core); m != nil {
		return "dhgate_" + m[1]
	}

	sum := md5.Sum([]byte(core))
	return hex.EncodeToString(sum[:])
}

func stripTracking(link string) string {
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[:i]
	}
	if i := strings.IndexByte(link, '#'); i >= 0 {
		link = link[:i]
	}
	return link
}
