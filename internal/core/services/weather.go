package services

import (
	"context"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// Ensure WeatherService implements the interface.
var _ driving.WeatherService = (*WeatherService)(nil)

// WeatherService serves current weather from cache, falling back through
// the configured providers.
type WeatherService struct {
	providers []driven.WeatherProvider
	cache     driven.CacheStore
	refresher *Refresher
	settings  SettingsProvider
	now       func() time.Time
}

// NewWeatherService creates a weather service. Providers are tried in order.
func NewWeatherService(
	providers []driven.WeatherProvider,
	cache driven.CacheStore,
	refresher *Refresher,
	settings SettingsProvider,
	opts ...Option,
) *WeatherService {
	o := buildOptions(opts)
	return &WeatherService{
		providers: providers,
		cache:     cache,
		refresher: refresher,
		settings:  settings,
		now:       o.now,
	}
}

// Resolve returns the weather at lat, lon.
func (s *WeatherService) Resolve(ctx context.Context, lat, lon float64) (*domain.Weather, error) {
	c, err := domain.ValidateCoordinates(lat, lon)
	if err != nil {
		return nil, err
	}

	key := domain.WeatherKey(c)
	state, cached := s.lookup(ctx, key)

	w, err := Resolve(ctx, s.refresher, key, state, cached, func(ctx context.Context) (*domain.Weather, error) {
		return s.fetch(ctx, c, key)
	})
	if err != nil {
		return nil, err
	}

	// The fetched value may be shared with other callers; never mutate it.
	out := *w
	out.Freshness = state
	if state == domain.FreshnessEmpty {
		out.Freshness = domain.FreshnessFresh
	}
	return &out, nil
}

func (s *WeatherService) lookup(ctx context.Context, key string) (domain.Freshness, *domain.Weather) {
	var cached domain.Weather
	if !s.cache.Get(ctx, key, &cached) {
		return domain.FreshnessEmpty, nil
	}
	policy := domain.FreshnessPolicy{MaxAge: s.settings.Current().Freshness.Weather}
	return policy.Evaluate(cached.FetchedAt, s.now()), &cached
}

func (s *WeatherService) fetch(ctx context.Context, c domain.Coordinates, key string) (*domain.Weather, error) {
	// A caller that queued behind a finished fetch finds it here.
	if state, cached := s.lookup(ctx, key); state == domain.FreshnessFresh {
		return cached, nil
	}

	w, source, err := RunChain(ctx, s.providers, c, func(w *domain.Weather) bool { return w != nil })
	if err != nil {
		return nil, err
	}
	if w.Source == "" {
		w.Source = source
	}
	w.FetchedAt = s.now()

	freshness := s.settings.Current().Freshness
	if err := s.cache.Put(ctx, key, w, freshness.CacheTTL(freshness.Weather)); err != nil {
		logger.Warn("weather: caching %s failed: %v", key, err)
	}
	return w, nil
}
