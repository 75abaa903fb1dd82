package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewalker/internal/models"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sitewalker.db"), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRequiresExistingWhenNotCreating(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"), Options{CreateIfNotExists: false})
	assert.Error(t, err)
}

func TestStoreAndReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fetched := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Store(ctx, models.CrawlResult{
		URL:       "https://example.com/",
		Content:   "<html><body>root</body></html>",
		Text:      "root",
		Title:     "Root",
		Depth:     0,
		FetchedAt: fetched,
	}))
	require.NoError(t, s.Store(ctx, models.CrawlResult{
		URL:       "https://example.com/about",
		Content:   "<html><body>about</body></html>",
		Text:      "about",
		Title:     "About",
		Depth:     1,
		FetchedAt: fetched.Add(time.Second),
	}))

	results, err := s.Results(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://example.com/", results[0].URL)
	assert.Equal(t, "Root", results[0].Title)
	assert.Equal(t, 0, results[0].Depth)
	assert.Equal(t, fetched, results[0].FetchedAt)
	assert.Equal(t, "https://example.com/about", results[1].URL)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStoreUpsertsByURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := models.CrawlResult{URL: "https://example.com/", Title: "Old", Depth: 0, FetchedAt: time.Now()}
	require.NoError(t, s.Store(ctx, first))

	first.Title = "New"
	first.Depth = 2
	require.NoError(t, s.Store(ctx, first))

	results, err := s.Results(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "New", results[0].Title)
	assert.Equal(t, 2, results[0].Depth)
}

func TestConcurrentStores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func(n int) {
			done <- s.Store(ctx, models.CrawlResult{
				URL:       "https://example.com/page" + string(rune('a'+n)),
				Depth:     1,
				FetchedAt: time.Now(),
			})
		}(i)
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}
