package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
)

// Ensure NewsStore implements the interface.
var _ driven.NewsStore = (*NewsStore)(nil)

type articleKey struct {
	url  string
	city string
}

// NewsStore is an in-memory implementation of driven.NewsStore.
type NewsStore struct {
	mu       sync.RWMutex
	articles map[articleKey]domain.NewsArticle
	now      func() time.Time
}

// NewNewsStore creates a new in-memory news store.
func NewNewsStore(opts ...Option) *NewsStore {
	o := buildOptions(opts)
	return &NewsStore{
		articles: make(map[articleKey]domain.NewsArticle),
		now:      o.now,
	}
}

// SaveArticle inserts the article or replaces an older copy for the same city.
func (s *NewsStore) SaveArticle(_ context.Context, a domain.NewsArticle) (bool, error) {
	if a.URL == "" || a.City == "" {
		return false, fmt.Errorf("%w: article needs url and city", domain.ErrInvalidInput)
	}
	now := s.now().UTC()
	key := articleKey{url: a.URL, city: a.City}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.articles[key]; ok {
		if !a.PublishedAt.After(existing.PublishedAt) {
			return false, nil
		}
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	s.articles[key] = a
	return true, nil
}

// ListForLocation returns articles for the city, its state and the national
// city, newest first, one per URL.
func (s *NewsStore) ListForLocation(_ context.Context, loc domain.Location, category string, limit int) ([]domain.NewsArticle, error) {
	if limit <= 0 {
		limit = domain.DefaultNewsLimit
	}

	s.mu.RLock()
	var matches []domain.NewsArticle
	for _, a := range s.articles {
		if a.Country != loc.Country {
			continue
		}
		if a.City != loc.City && a.State != loc.State && a.City != domain.NationalCity {
			continue
		}
		if category != "" && category != "all" && a.Category != category {
			continue
		}
		matches = append(matches, a)
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].PublishedAt.Equal(matches[j].PublishedAt) {
			return matches[i].PublishedAt.After(matches[j].PublishedAt)
		}
		return matches[i].ID < matches[j].ID
	})

	seen := make(map[string]bool)
	var out []domain.NewsArticle
	for _, a := range matches {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Stats summarises stored articles.
func (s *NewsStore) Stats(_ context.Context, since time.Time) (*domain.NewsStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.NewsStats{Locations: []domain.LocationCount{}}
	byCity := make(map[[2]string]*domain.LocationCount)
	var last time.Time
	for _, a := range s.articles {
		stats.TotalArticles++
		if a.CreatedAt.After(since) {
			stats.RecentArticles++
		}
		if a.UpdatedAt.After(last) {
			last = a.UpdatedAt
		}
		k := [2]string{a.City, a.State}
		lc, ok := byCity[k]
		if !ok {
			lc = &domain.LocationCount{City: a.City, State: a.State}
			byCity[k] = lc
		}
		lc.Count++
		if a.PublishedAt.After(lc.LatestNews) {
			lc.LatestNews = a.PublishedAt
		}
	}
	if !last.IsZero() {
		stats.LastRefresh = &last
	}

	for _, lc := range byCity {
		stats.Locations = append(stats.Locations, *lc)
	}
	sort.Slice(stats.Locations, func(i, j int) bool {
		if stats.Locations[i].Count != stats.Locations[j].Count {
			return stats.Locations[i].Count > stats.Locations[j].Count
		}
		return stats.Locations[i].City < stats.Locations[j].City
	})
	if len(stats.Locations) > 10 {
		stats.Locations = stats.Locations[:10]
	}
	return stats, nil
}

// PurgeBefore deletes articles created before t.
func (s *NewsStore) PurgeBefore(_ context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, a := range s.articles {
		if a.CreatedAt.Before(t) {
			delete(s.articles, k)
			n++
		}
	}
	return n, nil
}
