package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/news-curator/internal/apperror"
	"github.com/sakif/news-curator/internal/model"
	"github.com/sakif/news-curator/internal/repository"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only during the test.
// t.Cleanup closes it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func publishedAt(day int) *time.Time {
	t := time.Date(2025, 9, day, 12, 0, 0, 0, time.UTC)
	return &t
}

// insertTestDocument creates a document and fails the test if it errors.
func insertTestDocument(t *testing.T, db *DB, url string, cat model.Category, published *time.Time) *model.Document {
	t.Helper()
	doc := &model.Document{
		URL:         url,
		Title:       "title of " + url,
		Category:    cat,
		PublishedAt: published,
		Source:      "test",
	}
	if published != nil {
		doc.Published = published.Format(time.RFC3339)
	}
	if err := db.Insert(context.Background(), doc); err != nil {
		t.Fatalf("failed to insert test document: %v", err)
	}
	return doc
}

// =========================================================================
// INSERT / FIND TESTS
// =========================================================================

func TestInsert_SetsIDAndTimestamps(t *testing.T) {
	db := newTestDB(t)

	doc := &model.Document{URL: "https://zenn.dev/a", Title: "A", Category: model.CategoryProgramming}
	require.NoError(t, db.Insert(context.Background(), doc))

	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.Equal(t, model.DefaultSentiment, doc.Sentiment)
}

func TestInsert_DuplicateURLIsConflict(t *testing.T) {
	db := newTestDB(t)
	insertTestDocument(t, db, "https://zenn.dev/a", model.CategoryProgramming, nil)

	err := db.Insert(context.Background(), &model.Document{
		URL: "https://zenn.dev/a", Title: "again", Category: model.CategoryProgramming,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	n, err := db.Count(context.Background(), repository.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsert_ConcurrentSameURL(t *testing.T) {
	db := newTestDB(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		inserted  int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Insert(context.Background(), &model.Document{
				URL: "https://qiita.com/x", Title: "x", Category: model.CategoryProgramming,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				inserted++
			case errors.Is(err, apperror.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	assert.Equal(t, 9, conflicts)
}

func TestFindByURL(t *testing.T) {
	db := newTestDB(t)
	stored := insertTestDocument(t, db, "https://zenn.dev/a", model.CategoryProgramming, publishedAt(3))

	got, err := db.FindByURL(context.Background(), "https://zenn.dev/a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, model.CategoryProgramming, got.Category)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, publishedAt(3).Equal(*got.PublishedAt))

	missing, err := db.FindByURL(context.Background(), "https://zenn.dev/nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// =========================================================================
// LIST / COUNT TESTS
// =========================================================================

func TestListAndCount_FilterByCategory(t *testing.T) {
	db := newTestDB(t)
	insertTestDocument(t, db, "https://zenn.dev/1", model.CategoryProgramming, nil)
	insertTestDocument(t, db, "https://web.gekisaka.jp/1", model.CategorySoccer, nil)
	insertTestDocument(t, db, "https://qiita.com/1", model.CategoryProgramming, nil)

	ctx := context.Background()
	prog := repository.Filter{Category: model.CategoryProgramming}

	n, err := db.Count(ctx, prog)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs, err := db.List(ctx, prog)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// insertion order
	assert.Equal(t, "https://zenn.dev/1", docs[0].URL)
	assert.Equal(t, "https://qiita.com/1", docs[1].URL)

	all, err := db.List(ctx, repository.Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)

	docs, err := db.List(context.Background(), repository.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

// =========================================================================
// DELETE OLDEST TESTS
// =========================================================================

func TestDeleteOldest_OrderByPublishedThenCreation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := model.CategoryProgramming

	// inserted out of publish order on purpose
	insertTestDocument(t, db, "https://zenn.dev/day5", cat, publishedAt(5))
	insertTestDocument(t, db, "https://zenn.dev/day1", cat, publishedAt(1))
	insertTestDocument(t, db, "https://zenn.dev/day3-first", cat, publishedAt(3))
	insertTestDocument(t, db, "https://zenn.dev/day3-second", cat, publishedAt(3))
	insertTestDocument(t, db, "https://zenn.dev/undated", cat, nil)
	insertTestDocument(t, db, "https://web.gekisaka.jp/day1", model.CategorySoccer, publishedAt(1))

	deleted, err := db.DeleteOldest(ctx, 3, repository.Filter{Category: cat})
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	remaining, err := db.List(ctx, repository.Filter{Category: cat})
	require.NoError(t, err)
	urls := make([]string, 0, len(remaining))
	for _, d := range remaining {
		urls = append(urls, d.URL)
	}
	assert.ElementsMatch(t, []string{"https://zenn.dev/day5", "https://zenn.dev/day3-second"}, urls)

	// the other category is untouched
	n, err := db.Count(ctx, repository.Filter{Category: model.CategorySoccer})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteOldest_MoreThanStored(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 3; i++ {
		insertTestDocument(t, db, fmt.Sprintf("https://zenn.dev/%d", i), model.CategoryProgramming, publishedAt(i+1))
	}

	deleted, err := db.DeleteOldest(context.Background(), 10, repository.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
}

func TestDeleteOldest_ZeroIsNoop(t *testing.T) {
	db := newTestDB(t)
	insertTestDocument(t, db, "https://zenn.dev/a", model.CategoryProgramming, nil)

	deleted, err := db.DeleteOldest(context.Background(), 0, repository.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
