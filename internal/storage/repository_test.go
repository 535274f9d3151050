package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadprices/internal/core"
	"nomadprices/internal/entries"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := NewSQLiteRepository(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryInsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	at := time.Date(2024, 1, 15, 9, 30, 0, 123, time.UTC)
	first := core.PriceEntry{
		ID: "a", Category: "Food", ItemName: "Street Tacos",
		Price: decimal.RequireFromString("2.50"), Currency: "USD",
		Location: "Mexico City, Mexico", Country: "Mexico",
		Comment: "al pastor", SubmittedAt: at, SubmittedBy: "Alex",
	}
	second := first
	second.ID = "b"
	second.Price = decimal.RequireFromString("1.5")

	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	all, err = repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)

	got := all[1]
	assert.True(t, got.Price.Equal(first.Price), "price %s", got.Price)
	assert.True(t, got.SubmittedAt.Equal(at))
	assert.Equal(t, first.Comment, got.Comment)
	assert.Equal(t, first.Country, got.Country)

	n, err := repo.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRepositoryKeepsSubmittedAt(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	times := map[string]time.Time{
		"zero":    {},
		"nanos":   time.Date(2024, 3, 1, 12, 0, 0, 999999999, time.UTC),
		"offset":  time.Date(2024, 3, 1, 14, 0, 0, 0, time.FixedZone("CET", 3600)),
		"ancient": time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for id, at := range times {
		e := core.PriceEntry{ID: id, Category: "Food", ItemName: "x", Currency: "USD", Location: "y", SubmittedAt: at}
		require.NoError(t, repo.Insert(ctx, e))
	}

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(times))
	for _, got := range all {
		want := times[got.ID]
		assert.True(t, got.SubmittedAt.Equal(want), "%s: got %v, want %v", got.ID, got.SubmittedAt, want)
		assert.Equal(t, want.IsZero(), got.SubmittedAt.IsZero(), got.ID)
	}
}

func TestRepositoryRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	e := core.PriceEntry{ID: "dup", Category: "Food", ItemName: "x", Currency: "USD", Location: "y"}
	require.NoError(t, repo.Insert(ctx, e))
	assert.Error(t, repo.Insert(ctx, e))
}

func TestRepositorySeedOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, entries.Seed(ctx, repo, entries.DefaultSeed()))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestRepositoryOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prices.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.Ping(context.Background()))
}

func TestFileDir(t *testing.T) {
	assert.Equal(t, "", fileDir(":memory:"))
	assert.Equal(t, "", fileDir(DefaultDSN))
	assert.Equal(t, "", fileDir("prices.db"))
	assert.Equal(t, "data", fileDir("file:data/prices.db?_pragma=busy_timeout(5000)"))
}
