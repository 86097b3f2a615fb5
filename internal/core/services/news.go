package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// Ensure NewsService implements the interface.
var _ driving.NewsService = (*NewsService)(nil)

const (
	// newsRefreshAllKey marks the last full refresh.
	newsRefreshAllKey = "news_refresh_all"

	// newsQueryWorkers caps concurrent upstream queries during RefreshAll.
	// The rate limiter still paces them per channel.
	newsQueryWorkers = 4

	// recentWindow is the age under which articles count as recent in Stats.
	recentWindow = 24 * time.Hour
)

// NewsService serves localised news from the article store and keeps it
// populated from the news providers.
type NewsService struct {
	providers []driven.NewsProvider
	store     driven.NewsStore
	cache     driven.CacheStore
	refresher *Refresher
	settings  SettingsProvider
	now       func() time.Time
}

// NewNewsService creates a news service.
func NewNewsService(
	providers []driven.NewsProvider,
	store driven.NewsStore,
	cache driven.CacheStore,
	refresher *Refresher,
	settings SettingsProvider,
	opts ...Option,
) *NewsService {
	o := buildOptions(opts)
	return &NewsService{
		providers: providers,
		store:     store,
		cache:     cache,
		refresher: refresher,
		settings:  settings,
		now:       o.now,
	}
}

// cityRefresh is the outcome of refreshing one city.
type cityRefresh struct {
	At       time.Time
	Articles []domain.NewsArticle
}

// Local returns news for the region nearest the query point.
func (s *NewsService) Local(ctx context.Context, q domain.NewsQuery) (*domain.NewsResult, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	loc := domain.LocateRegion(domain.Coordinates{Lat: q.Lat, Lon: q.Lon})
	scope := cityRefreshKey(loc.City)
	state, lastAt := s.lookup(ctx, loc.City)

	refreshed, refreshErr := Resolve(ctx, s.refresher, scope, state, &cityRefresh{At: lastAt},
		func(ctx context.Context) (*cityRefresh, error) {
			return s.refreshCity(ctx, loc)
		})

	articles, listErr := s.store.ListForLocation(ctx, loc, q.Category, q.Limit)
	switch {
	case refreshErr != nil:
		// Stored articles from earlier refreshes are still real news.
		if listErr != nil || len(articles) == 0 {
			return nil, refreshErr
		}
		logger.Warn("news: refresh of %s failed, serving stored articles: %v", loc.City, refreshErr)
		return &domain.NewsResult{
			Location:  loc,
			Articles:  articles,
			Freshness: domain.FreshnessStale,
			FetchedAt: lastAt,
		}, nil
	case listErr != nil:
		if len(refreshed.Articles) == 0 {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceDegraded, listErr)
		}
		logger.Warn("news: store read for %s failed, serving fetched articles: %v", loc.City, listErr)
		articles = filterArticles(refreshed.Articles, q.Category, q.Limit)
	}

	freshness := state
	if state == domain.FreshnessEmpty {
		freshness = domain.FreshnessFresh
	}
	if articles == nil {
		articles = []domain.NewsArticle{}
	}
	return &domain.NewsResult{
		Location:  loc,
		Articles:  articles,
		Freshness: freshness,
		FetchedAt: refreshed.At,
	}, nil
}

// RefreshAll runs every category query and every per-city query and stores
// the results. Individual query failures are counted, not fatal; the call
// fails only when no query succeeded.
func (s *NewsService) RefreshAll(ctx context.Context) (*domain.NewsRefreshReport, error) {
	start := s.now()
	report := &domain.NewsRefreshReport{}

	var (
		mu   sync.Mutex
		errs = []error{domain.ErrUpstreamUnavailable}
	)
	record := func(fetched, stored int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.FailedQueries++
			errs = append(errs, err)
			return
		}
		report.TotalArticles += fetched
		report.StoredArticles += stored
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(newsQueryWorkers)

	queries := 0
	for _, cat := range domain.NewsCategoryQueries {
		for _, query := range cat.Queries {
			queries++
			g.Go(func() error {
				articles, err := s.search(gctx, query)
				if err != nil {
					record(0, 0, err)
					return nil
				}
				stored := 0
				for _, a := range articles {
					if s.saveForRegions(gctx, a, cat.Category) {
						stored++
					}
				}
				record(len(articles), stored, nil)
				return nil
			})
		}
	}

	for _, region := range domain.Regions() {
		queries++
		loc := domain.Location{Country: domain.NewsCountry, City: region.City, State: region.State, InRegion: true}
		g.Go(func() error {
			articles, err := s.search(gctx, strings.ToLower(region.City))
			if err != nil {
				record(0, 0, err)
				return nil
			}
			record(len(articles), s.saveForCity(gctx, loc, articles), nil)
			return nil
		})
	}

	_ = g.Wait()

	report.CompletedAt = s.now()
	report.Duration = report.CompletedAt.Sub(start)

	if report.FailedQueries == queries {
		return report, errors.Join(errs...)
	}

	settings := s.settings.Current()
	if err := s.cache.Put(ctx, newsRefreshAllKey, report.CompletedAt,
		settings.Freshness.CacheTTL(settings.Freshness.News)); err != nil {
		logger.Warn("news: recording refresh time failed: %v", err)
	}
	logger.Info("news: refreshed %d queries (%d failed), %d articles fetched, %d stored in %s",
		queries, report.FailedQueries, report.TotalArticles, report.StoredArticles, report.Duration)
	return report, nil
}

// Stats summarises stored news.
func (s *NewsService) Stats(ctx context.Context) (*domain.NewsStats, error) {
	return s.store.Stats(ctx, s.now().Add(-recentWindow))
}

// Clean deletes articles older than the retention horizon.
func (s *NewsService) Clean(ctx context.Context) (int, error) {
	retention := s.settings.Current().Retention.News
	if retention <= 0 {
		return 0, nil
	}
	n, err := s.store.PurgeBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("purging news: %w", err)
	}
	if n > 0 {
		logger.Info("news: removed %d articles older than %s", n, retention)
	}
	return n, nil
}

// lookup returns the freshness of a city's news and when it was last
// refreshed, either on its own or as part of a full refresh.
func (s *NewsService) lookup(ctx context.Context, city string) (domain.Freshness, time.Time) {
	var cityAt, allAt time.Time
	s.cache.Get(ctx, cityRefreshKey(city), &cityAt)
	s.cache.Get(ctx, newsRefreshAllKey, &allAt)

	last := cityAt
	if allAt.After(last) {
		last = allAt
	}
	policy := domain.FreshnessPolicy{MaxAge: s.settings.Current().Freshness.News}
	return policy.Evaluate(last, s.now()), last
}

func (s *NewsService) refreshCity(ctx context.Context, loc domain.Location) (*cityRefresh, error) {
	if state, at := s.lookup(ctx, loc.City); state == domain.FreshnessFresh {
		return &cityRefresh{At: at}, nil
	}

	articles, err := s.search(ctx, strings.ToLower(loc.City))
	if err != nil {
		return nil, err
	}

	stored := s.saveForCity(ctx, loc, articles)
	at := s.now()

	settings := s.settings.Current()
	if err := s.cache.Put(ctx, cityRefreshKey(loc.City), at,
		settings.Freshness.CacheTTL(settings.Freshness.News)); err != nil {
		logger.Warn("news: recording refresh of %s failed: %v", loc.City, err)
	}
	logger.Debug("news: %s refreshed, %d of %d articles stored", loc.City, stored, len(articles))

	tagged := make([]domain.NewsArticle, len(articles))
	for i, a := range articles {
		tagged[i] = localArticle(a, loc)
	}
	return &cityRefresh{At: at, Articles: tagged}, nil
}

func (s *NewsService) search(ctx context.Context, query string) ([]domain.NewsArticle, error) {
	articles, _, err := RunChain(ctx, s.providers, query, nil)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	return articles, nil
}

// saveForCity stores articles from a per-city query against that city.
func (s *NewsService) saveForCity(ctx context.Context, loc domain.Location, articles []domain.NewsArticle) int {
	stored := 0
	for _, a := range articles {
		if s.save(ctx, localArticle(a, loc)) {
			stored++
		}
	}
	return stored
}

// saveForRegions stores an article against every region it mentions.
func (s *NewsService) saveForRegions(ctx context.Context, a domain.NewsArticle, category string) bool {
	stored := false
	for _, r := range domain.AssociateRegions(a) {
		a.Country = domain.NewsCountry
		a.City = r.City
		a.State = r.State
		a.Category = category
		if s.save(ctx, a) {
			stored = true
		}
	}
	return stored
}

func (s *NewsService) save(ctx context.Context, a domain.NewsArticle) bool {
	saved, err := s.store.SaveArticle(ctx, a)
	if err != nil {
		logger.Warn("news: storing %s for %s failed: %v", a.URL, a.City, err)
		return false
	}
	return saved
}

func localArticle(a domain.NewsArticle, loc domain.Location) domain.NewsArticle {
	a.Country = domain.NewsCountry
	a.City = loc.City
	a.State = loc.State
	a.Category = domain.NewsCategoryLocal
	return a
}

// filterArticles applies the category filter and limit to freshly fetched
// articles, newest first.
func filterArticles(articles []domain.NewsArticle, category string, limit int) []domain.NewsArticle {
	out := make([]domain.NewsArticle, 0, len(articles))
	seen := make(map[string]bool)
	for _, a := range articles {
		if category != "" && category != "all" && a.Category != category {
			continue
		}
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func cityRefreshKey(city string) string {
	return "news_refresh_" + strings.ToLower(city)
}
