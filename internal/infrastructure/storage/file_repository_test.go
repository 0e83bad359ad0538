package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"threatfeed/internal/domain"
)

func article(link string, published time.Time) domain.Article {
	return domain.Article{
		Source:      "Test Feed",
		Category:    domain.CategoryNews,
		Title:       "title " + link,
		Link:        link,
		RawSummary:  "raw " + link,
		Summary:     "raw " + link,
		Date:        published.Format(domain.DateLayout),
		PublishedAt: published.UTC(),
	}
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "absent.json"), 10, nil)
	items, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewFileRepository(path, 10, nil)
	items, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLoadAppliesForwardReadableDefaults(t *testing.T) {
	t.Parallel()

	// Snapshot written by an older version: no category, no processed flag.
	raw := `[{"source":"Old Feed","title":"t","link":"https://e.com/a",
		"raw_summary":"r","summary":"r","date":"2024-01-01 10:00",
		"timestamp":"2024-01-01T10:00:00Z","is_zeroday":false}]`
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	repo := NewFileRepository(path, 10, nil)
	items, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, domain.CategoryGeneral, items[0].Category)
	require.False(t, items[0].Processed)
}

func TestSaveLoadRoundTripOrdering(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	repo := NewFileRepository(filepath.Join(t.TempDir(), "history.json"), 10, nil)
	ctx := context.Background()

	items := []domain.Article{
		article("https://e.com/old", now.Add(-2*time.Hour)),
		article("https://e.com/new", now),
		article("https://e.com/mid", now.Add(-1*time.Hour)),
	}
	require.NoError(t, repo.Save(ctx, items))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for i := 0; i < len(loaded)-1; i++ {
		require.False(t, loaded[i].PublishedAt.Before(loaded[i+1].PublishedAt),
			"archive not in descending order at index %d", i)
	}
}

func TestSaveEvictsOldestBeyondBound(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	repo := NewFileRepository(filepath.Join(t.TempDir(), "history.json"), 5, nil)
	ctx := context.Background()

	var items []domain.Article
	for i := 0; i < 8; i++ {
		items = append(items, article(
			"https://e.com/"+string(rune('a'+i)),
			now.Add(-time.Duration(i)*time.Hour),
		))
	}
	require.NoError(t, repo.Save(ctx, items))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 5)

	// The five newest survive; the three oldest are gone.
	links := map[string]bool{}
	for _, item := range loaded {
		links[item.Link] = true
	}
	for _, kept := range []string{"a", "b", "c", "d", "e"} {
		require.True(t, links["https://e.com/"+kept], "expected %s kept", kept)
	}
	for _, evicted := range []string{"f", "g", "h"} {
		require.False(t, links["https://e.com/"+evicted], "expected %s evicted", evicted)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := NewFileRepository(filepath.Join(dir, "history.json"), 10, nil)
	require.NoError(t, repo.Save(context.Background(), []domain.Article{
		article("https://e.com/a", time.Now().UTC()),
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "history.json", entries[0].Name())
}

func TestMergeDeduplicatesByLink(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	repo := NewFileRepository(filepath.Join(t.TempDir(), "history.json"), 10, nil)

	existing := article("https://e.com/x", now.Add(-1*time.Hour))
	existing.Summary = "already enriched"
	existing.Processed = true

	duplicate := article("https://e.com/x", now.Add(-1*time.Hour))
	fresh := article("https://e.com/y", now)

	merged := repo.Merge([]domain.Article{duplicate, fresh}, []domain.Article{existing})
	require.Len(t, merged, 2)

	// Existing record wins over the re-fetched duplicate.
	var gotX domain.Article
	for _, item := range merged {
		if item.Link == "https://e.com/x" {
			gotX = item
		}
	}
	require.Equal(t, "already enriched", gotX.Summary)
	require.True(t, gotX.Processed)
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	repo := NewFileRepository(filepath.Join(t.TempDir(), "history.json"), 10, nil)

	existing := []domain.Article{
		article("https://e.com/a", now),
		article("https://e.com/b", now.Add(-time.Hour)),
	}

	once := repo.Merge(nil, existing)
	twice := repo.Merge(nil, once)
	require.Equal(t, once, twice)
}

func TestSavedSnapshotIsStableAcrossIdenticalSaves(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	path := filepath.Join(t.TempDir(), "history.json")
	repo := NewFileRepository(path, 10, nil)
	ctx := context.Background()

	items := []domain.Article{article("https://e.com/a", now)}
	require.NoError(t, repo.Save(ctx, items))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
	require.True(t, json.Valid(second))
}
