package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

func testSnapshot() models.Snapshot {
	return models.Snapshot{
		"dhgate_111": {
			ID:      "dhgate_111",
			Title:   "Kids Jersey",
			Link:    "https://www.dhgate.com/product/kids-jersey/111.html",
			Price:   "$10",
			FoundAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product_data.json")
	ctx := context.Background()

	repo, err := NewFileRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "ShopA", testSnapshot()))

	// A fresh repository reads the same data back from disk.
	reopened, err := NewFileRepository(path)
	require.NoError(t, err)

	snap, err := reopened.Load(ctx, "ShopA")
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "Kids Jersey", snap["dhgate_111"].Title)
}

func TestFileRepositoryUnknownSellerIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product_data.json")

	repo, err := NewFileRepository(path)
	require.NoError(t, err)

	snap, err := repo.Load(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFileRepositorySaveReplacesEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product_data.json")
	ctx := context.Background()

	repo, err := NewFileRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "ShopA", testSnapshot()))

	replacement := models.Snapshot{
		"dhgate_222": {ID: "dhgate_222", Title: "Kids Shorts"},
	}
	require.NoError(t, repo.Save(ctx, "ShopA", replacement))

	snap, err := repo.Load(ctx, "ShopA")
	require.NoError(t, err)
	require.Len(t, snap, 1)
	_, hasOld := snap["dhgate_111"]
	assert.False(t, hasOld, "save is a full replace, not a union")
}

func TestFileRepositoryLoadReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product_data.json")
	ctx := context.Background()

	repo, err := NewFileRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "ShopA", testSnapshot()))

	snap, err := repo.Load(ctx, "ShopA")
	require.NoError(t, err)
	delete(snap, "dhgate_111")

	again, err := repo.Load(ctx, "ShopA")
	require.NoError(t, err)
	assert.Len(t, again, 1, "mutating a loaded snapshot must not affect the store")
}

func TestFileRepositoryIsolatesSellers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product_data.json")
	ctx := context.Background()

	repo, err := NewFileRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "ShopA", testSnapshot()))
	require.NoError(t, repo.Save(ctx, "ShopB", models.Snapshot{
		"dhgate_999": {ID: "dhgate_999", Title: "Kids Cap"},
	}))

	a, err := repo.Load(ctx, "ShopA")
	require.NoError(t, err)
	b, err := repo.Load(ctx, "ShopB")
	require.NoError(t, err)

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
	_, crossed := a["dhgate_999"]
	assert.False(t, crossed)
}

func TestFileRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileRepository(path)
	assert.Error(t, err)
}
