package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

func product(id, title string) models.Product {
	return models.Product{
		ID:    id,
		Title: title,
		Link:  "https://www.dhgate.com/product/x/" + id + ".html",
	}
}

func TestDiffFindsNewProducts(t *testing.T) {
	prior := models.Snapshot{
		"dhgate_111": product("dhgate_111", "Kids Jersey Home"),
	}
	current := models.Snapshot{
		"dhgate_111": product("dhgate_111", "Kids Jersey Home"),
		"dhgate_222": product("dhgate_222", "Kids Jersey"),
	}

	fresh := Diff(prior, current)

	require.Len(t, fresh, 1)
	assert.Equal(t, "dhgate_222", fresh[0].ID)
}

func TestDiffIdempotent(t *testing.T) {
	snap := models.Snapshot{
		"dhgate_111": product("dhgate_111", "Kids Jersey"),
		"dhgate_222": product("dhgate_222", "Kids Shorts"),
	}

	assert.Empty(t, Diff(snap, snap))
}

func TestDiffEmptyPrior(t *testing.T) {
	current := models.Snapshot{
		"dhgate_111": product("dhgate_111", "Kids Jersey"),
		"dhgate_222": product("dhgate_222", "Kids Shorts"),
	}

	fresh := Diff(models.Snapshot{}, current)

	require.Len(t, fresh, 2)
	// Sorted by id for stable digests.
	assert.Equal(t, "dhgate_111", fresh[0].ID)
	assert.Equal(t, "dhgate_222", fresh[1].ID)
}

func TestDiffDisappearedProductsAreNotNew(t *testing.T) {
	prior := models.Snapshot{
		"dhgate_111": product("dhgate_111", "Kids Jersey"),
		"dhgate_222": product("dhgate_222", "Kids Shorts"),
	}
	current := models.Snapshot{
		"dhgate_222": product("dhgate_222", "Kids Shorts"),
	}

	assert.Empty(t, Diff(prior, current))
}

func TestCollect(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	filter := NewKeywordFilter([]string{"kids"}, false)

	candidates := []models.Candidate{
		{Title: "Kids Jersey", Link: "https://www.dhgate.com/product/a/111.html?track=1", Price: "$10"},
		{Title: "Adult Jersey", Link: "https://www.dhgate.com/product/b/333.html"},
		{Title: "Kids Jersey duplicate", Link: "https://www.dhgate.com/product/a/111.html#top"},
		{Title: "KIDS Shorts", Link: "https://www.dhgate.com/product/c/222.html"},
	}

	current := Collect(candidates, filter, now)

	require.Len(t, current, 2)

	p, ok := current["dhgate_111"]
	require.True(t, ok)
	assert.Equal(t, "Kids Jersey", p.Title, "first occurrence in document order wins")
	assert.Equal(t, "$10", p.Price)
	assert.Equal(t, now, p.FoundAt)

	_, ok = current["dhgate_222"]
	assert.True(t, ok)
}

func TestCollectDeterministic(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	filter := NewKeywordFilter([]string{"kids"}, false)
	candidates := []models.Candidate{
		{Title: "Kids Jersey", Link: "https://www.dhgate.com/product/a/111.html"},
		{Title: "Kids Shorts", Link: "https://www.dhgate.com/product/b/222.html"},
	}

	assert.Equal(t, Collect(candidates, filter, now), Collect(candidates, filter, now))
}
