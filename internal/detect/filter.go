// Package detect reduces extracted candidates to matching products with
// stable identities, and diffs them against the previous snapshot.
package detect

import "strings"

// KeywordFilter matches titles containing at least one configured keyword as
// a substring. An empty keyword list matches nothing.
type KeywordFilter struct {
	keywords      []string
	caseSensitive bool
}

func NewKeywordFilter(keywords []string, caseSensitive bool) *KeywordFilter {
	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if !caseSensitive {
			k = strings.ToLower(k)
		}
		kws = append(kws, k)
	}
	return &KeywordFilter{keywords: kws, caseSensitive: caseSensitive}
}

func (f *KeywordFilter) Matches(title string) bool {
	if title == "" {
		return false
	}

	if !f.caseSensitive {
		title = strings.ToLower(title)
	}

	for _, kw := range f.keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
