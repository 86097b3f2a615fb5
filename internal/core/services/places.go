package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// Ensure PlacesService implements the interface.
var _ driving.PlacesService = (*PlacesService)(nil)

// PlacesService serves nearby places from the place index.
//
// The index holds places from every past search. A scope marker in the
// cache records when a query area was last fetched from upstream, which
// decides whether the indexed places are fresh.
type PlacesService struct {
	providers []driven.PlacesProvider
	store     driven.PlaceStore
	cache     driven.CacheStore
	refresher *Refresher
	settings  SettingsProvider
	now       func() time.Time
}

// NewPlacesService creates a places service. Providers are tried in order
// until enough places are collected.
func NewPlacesService(
	providers []driven.PlacesProvider,
	store driven.PlaceStore,
	cache driven.CacheStore,
	refresher *Refresher,
	settings SettingsProvider,
	opts ...Option,
) *PlacesService {
	o := buildOptions(opts)
	return &PlacesService{
		providers: providers,
		store:     store,
		cache:     cache,
		refresher: refresher,
		settings:  settings,
		now:       o.now,
	}
}

// Nearby returns places around the query point, nearest first.
func (s *PlacesService) Nearby(ctx context.Context, q domain.PlacesQuery) (*domain.PlacesResult, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	key := q.ScopeKey()
	state, cached := s.lookup(ctx, q, key)

	result, err := Resolve(ctx, s.refresher, key, state, cached, func(ctx context.Context) (*domain.PlacesResult, error) {
		return s.fetch(ctx, q, key, true)
	})
	if err != nil {
		return nil, err
	}

	out := *result
	out.Freshness = state
	if state == domain.FreshnessEmpty {
		out.Freshness = domain.FreshnessFresh
	}
	return &out, nil
}

// Refresh fetches the query area from upstream regardless of freshness.
func (s *PlacesService) Refresh(ctx context.Context, q domain.PlacesQuery) (*domain.PlacesResult, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	key := q.ScopeKey()
	v, err := s.refresher.Shared(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetch(ctx, q, key, false)
	})
	if err != nil {
		return nil, err
	}
	result, ok := v.(*domain.PlacesResult)
	if !ok {
		return nil, fmt.Errorf("places: refresh of %s produced %T", key, v)
	}

	out := *result
	out.Freshness = domain.FreshnessFresh
	return &out, nil
}

// lookup classifies the scope and loads indexed places for it. An index
// failure is treated as nothing cached so the request goes upstream.
func (s *PlacesService) lookup(ctx context.Context, q domain.PlacesQuery, key string) (domain.Freshness, *domain.PlacesResult) {
	var fetchedAt time.Time
	if !s.cache.Get(ctx, key, &fetchedAt) {
		return domain.FreshnessEmpty, nil
	}

	settings := s.settings.Current()
	places, err := s.store.Near(ctx, s.nearQuery(q, settings))
	if err != nil {
		logger.Warn("places: index read for %s failed: %v", key, err)
		return domain.FreshnessEmpty, nil
	}

	policy := domain.FreshnessPolicy{MaxAge: settings.Freshness.Places}
	state := policy.Evaluate(fetchedAt, s.now())
	return state, &domain.PlacesResult{
		Places:    domain.DedupePlaces(places),
		Freshness: state,
		FetchedAt: fetchedAt,
	}
}

func (s *PlacesService) nearQuery(q domain.PlacesQuery, settings domain.AppSettings) driven.NearQuery {
	nq := driven.NearQuery{
		Center:   q.Center(),
		Radius:   q.Radius,
		Category: q.Category,
		Limit:    settings.Places.Limit,
	}
	if settings.Retention.Places > 0 {
		nq.Since = s.now().Add(-settings.Retention.Places)
	}
	return nq
}

func (s *PlacesService) fetch(ctx context.Context, q domain.PlacesQuery, key string, recheck bool) (*domain.PlacesResult, error) {
	if recheck {
		if state, cached := s.lookup(ctx, q, key); state == domain.FreshnessFresh {
			return cached, nil
		}
	}

	settings := s.settings.Current()
	places, err := Gather(ctx, s.providers, q, settings.Places.MinResults, domain.DedupePlaces)
	if err != nil {
		return nil, err
	}

	center := q.Center()
	for i := range places {
		p := &places[i]
		if q.Category != domain.CategoryAll {
			p.Category = q.Category
		}
		p.SearchCenter = center
		p.SearchRadius = q.Radius
	}

	stored, err := s.store.UpsertPlaces(ctx, places)
	indexedOK := err == nil
	if indexedOK {
		places = stored
	} else {
		logger.Warn("places: indexing %d places for %s failed: %v", len(places), key, err)
	}

	fetchedAt := s.now()
	result := &domain.PlacesResult{
		Places:    nearest(center, q.Radius, places, settings.Places.Limit),
		Freshness: domain.FreshnessFresh,
		FetchedAt: fetchedAt,
	}

	// The marker vouches for the index, so it only exists while the index
	// holds this fetch.
	if indexedOK {
		if err := s.cache.Put(ctx, key, fetchedAt, settings.Freshness.CacheTTL(settings.Freshness.Places)); err != nil {
			logger.Warn("places: caching scope %s failed: %v", key, err)
		}
	} else if err := s.cache.Delete(ctx, key); err != nil {
		logger.Warn("places: clearing scope %s failed: %v", key, err)
	}
	logger.Debug("places: %s fetched %d places", key, len(result.Places))
	return result, nil
}

// nearest keeps places inside the radius, sorted by distance, capped at limit.
func nearest(center domain.Coordinates, radius float64, places []domain.Place, limit int) []domain.Place {
	if limit <= 0 {
		limit = domain.DefaultPlacesLimit
	}

	out := make([]domain.Place, 0, len(places))
	for _, p := range places {
		p.Distance = domain.Distance(center, p.Coordinates())
		if p.Distance <= radius {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
