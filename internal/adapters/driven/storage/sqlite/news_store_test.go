package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

func testArticle(url, city, state string, published time.Time) domain.NewsArticle {
	return domain.NewsArticle{
		Title:       "Headline " + url,
		Description: "Something happened in " + city,
		URL:         url,
		PublishedAt: published,
		SourceName:  "The Star",
		Country:     domain.NewsCountry,
		City:        city,
		State:       state,
		Category:    "general",
	}
}

func TestNewsStore_SaveArticle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	news := store.NewsStore()
	published := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	saved, err := news.SaveArticle(ctx, testArticle("https://a", "Ipoh", "Perak", published))
	require.NoError(t, err)
	assert.True(t, saved)

	// Same (url, city), not newer: ignored.
	older := testArticle("https://a", "Ipoh", "Perak", published.Add(-time.Hour))
	older.Title = "Stale title"
	saved, err = news.SaveArticle(ctx, older)
	require.NoError(t, err)
	assert.False(t, saved)

	// Same url, other city: separate row.
	saved, err = news.SaveArticle(ctx, testArticle("https://a", "Kuantan", "Pahang", published))
	require.NoError(t, err)
	assert.True(t, saved)

	// Newer copy replaces.
	newer := testArticle("https://a", "Ipoh", "Perak", published.Add(time.Hour))
	newer.Title = "Updated title"
	saved, err = news.SaveArticle(ctx, newer)
	require.NoError(t, err)
	assert.True(t, saved)

	got, err := news.ListForLocation(ctx, domain.Location{Country: "MY", City: "Ipoh", State: "Perak"}, "all", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Updated title", got[0].Title)
	assert.True(t, published.Add(time.Hour).Equal(got[0].PublishedAt))

	stats, err := news.Stats(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalArticles)
}

func TestNewsStore_SaveArticle_RequiresIdentity(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.NewsStore().SaveArticle(context.Background(), domain.NewsArticle{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewsStore_ListForLocation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	news := store.NewsStore()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, a := range []domain.NewsArticle{
		testArticle("https://city", "Shah Alam", "Selangor", base.Add(3*time.Hour)),
		testArticle("https://state", "Petaling Jaya", "Selangor", base.Add(2*time.Hour)),
		testArticle("https://national", domain.NationalCity, domain.NationalState, base.Add(4*time.Hour)),
		testArticle("https://city", domain.NationalCity, domain.NationalState, base.Add(3*time.Hour)),
		testArticle("https://elsewhere", "Kuching", "Sarawak", base.Add(5*time.Hour)),
	} {
		_, err := news.SaveArticle(ctx, a)
		require.NoError(t, err)
	}

	loc := domain.Location{Country: "MY", City: "Shah Alam", State: "Selangor", InRegion: true}
	got, err := news.ListForLocation(ctx, loc, "", 10)
	require.NoError(t, err)

	var urls []string
	for _, a := range got {
		urls = append(urls, a.URL)
	}
	assert.Equal(t, []string{"https://national", "https://city", "https://state"}, urls)

	got, err = news.ListForLocation(ctx, loc, "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestNewsStore_ListForLocation_Category(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	news := store.NewsStore()
	now := time.Now().UTC()

	sports := testArticle("https://sports", "Ipoh", "Perak", now)
	sports.Category = "sports"
	_, err := news.SaveArticle(ctx, sports)
	require.NoError(t, err)
	_, err = news.SaveArticle(ctx, testArticle("https://general", "Ipoh", "Perak", now))
	require.NoError(t, err)

	got, err := news.ListForLocation(ctx, domain.Location{Country: "MY", City: "Ipoh", State: "Perak"}, "sports", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://sports", got[0].URL)
}

func TestNewsStore_StatsAndPurge(t *testing.T) {
	clock := newFakeClock()
	store, cleanup := setupTestStore(t, WithClock(clock.Now))
	defer cleanup()

	ctx := context.Background()
	news := store.NewsStore()

	_, err := news.SaveArticle(ctx, testArticle("https://old", "Ipoh", "Perak", clock.Now()))
	require.NoError(t, err)

	clock.Advance(31 * 24 * time.Hour)
	for _, url := range []string{"https://n1", "https://n2"} {
		_, err := news.SaveArticle(ctx, testArticle(url, "Kuching", "Sarawak", clock.Now()))
		require.NoError(t, err)
	}

	stats, err := news.Stats(ctx, clock.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalArticles)
	assert.Equal(t, 2, stats.RecentArticles)
	require.NotNil(t, stats.LastRefresh)
	assert.True(t, clock.Now().Equal(*stats.LastRefresh))
	require.Len(t, stats.Locations, 2)
	assert.Equal(t, "Kuching", stats.Locations[0].City)
	assert.Equal(t, 2, stats.Locations[0].Count)

	n, err := news.PurgeBefore(ctx, clock.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err = news.Stats(ctx, clock.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalArticles)
}

func TestNewsStore_Stats_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	stats, err := store.NewsStore().Stats(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalArticles)
	assert.Nil(t, stats.LastRefresh)
	assert.Empty(t, stats.Locations)
}
