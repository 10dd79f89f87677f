package detect

import (
	"sort"
	"time"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

// Collect filters candidates and assigns identities, producing the
// current-run snapshot for one seller. Later duplicates of an id are ignored
// so the first occurrence in document order wins. now stamps FoundAt.
func Collect(candidates []models.Candidate, filter *KeywordFilter, now time.Time) models.Snapshot {
	current := make(models.Snapshot)
	for _, c := range candidates {
		if !filter.Matches(c.Title) {
			continue
		}

		id := ProductID(c.Link)
		if _, exists := current[id]; exists {
			continue
		}

		current[id] = models.Product{
			ID:      id,
			Title:   c.Title,
			Link:    c.Link,
			Price:   c.Price,
			FoundAt: now,
		}
	}
	return current
}

// Diff returns the products present in current but not in prior, sorted by
// id so digests and logs are stable. Diffing a snapshot against itself
// yields nil.
func Diff(prior, current models.Snapshot) []models.Product {
	var fresh []models.Product
	for id, p := range current {
		if _, seen := prior[id]; !seen {
			fresh = append(fresh, p)
		}
	}

	sort.Slice(fresh, func(i, j int) bool { return fresh[i].ID < fresh[j].ID })
	return fresh
}
