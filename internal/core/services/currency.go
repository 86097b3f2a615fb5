package services

import (
	"context"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// Ensure CurrencyService implements the interface.
var _ driving.CurrencyService = (*CurrencyService)(nil)

// IdentitySource names rates for a currency converted to itself.
const IdentitySource = "identity"

// CurrencyService serves exchange rates. When every live provider fails and
// no live rate is cached it answers from the fixed fallback table.
type CurrencyService struct {
	providers []driven.CurrencyProvider
	cache     driven.CacheStore
	refresher *Refresher
	settings  SettingsProvider
	now       func() time.Time
}

// NewCurrencyService creates a currency service. Providers are tried in order.
func NewCurrencyService(
	providers []driven.CurrencyProvider,
	cache driven.CacheStore,
	refresher *Refresher,
	settings SettingsProvider,
	opts ...Option,
) *CurrencyService {
	o := buildOptions(opts)
	return &CurrencyService{
		providers: providers,
		cache:     cache,
		refresher: refresher,
		settings:  settings,
		now:       o.now,
	}
}

// Rate returns how much one unit of base buys in target.
func (s *CurrencyService) Rate(ctx context.Context, base, target string) (*domain.ExchangeRate, error) {
	pair, err := domain.NewCurrencyPair(base, target)
	if err != nil {
		return nil, err
	}
	if pair.Base == pair.Target {
		return &domain.ExchangeRate{
			Base:      pair.Base,
			Target:    pair.Target,
			Rate:      1,
			Source:    IdentitySource,
			FetchedAt: s.now(),
			Freshness: domain.FreshnessFresh,
		}, nil
	}

	key := pair.CacheKey()
	state, cached := s.lookup(ctx, key)

	rate, err := Resolve(ctx, s.refresher, key, state, cached, func(ctx context.Context) (*domain.ExchangeRate, error) {
		return s.fetch(ctx, pair, key)
	})
	if err != nil {
		return nil, err
	}

	out := *rate
	out.Freshness = state
	if state == domain.FreshnessEmpty {
		out.Freshness = domain.FreshnessFresh
	}
	return &out, nil
}

func (s *CurrencyService) lookup(ctx context.Context, key string) (domain.Freshness, *domain.ExchangeRate) {
	var cached domain.ExchangeRate
	if !s.cache.Get(ctx, key, &cached) {
		return domain.FreshnessEmpty, nil
	}
	policy := domain.FreshnessPolicy{MaxAge: s.settings.Current().Freshness.Currency}
	return policy.Evaluate(cached.FetchedAt, s.now()), &cached
}

func (s *CurrencyService) fetch(ctx context.Context, pair domain.CurrencyPair, key string) (*domain.ExchangeRate, error) {
	state, cached := s.lookup(ctx, key)
	if state == domain.FreshnessFresh {
		return cached, nil
	}

	freshness := s.settings.Current().Freshness
	usable := func(r *domain.ExchangeRate) bool { return r != nil && r.Rate > 0 }

	rate, source, err := RunChain(ctx, s.providers, pair, usable)
	ttl := freshness.CacheTTL(freshness.Currency)
	if err != nil {
		// A cached live rate, even stale, beats the fixed table.
		if cached != nil && !cached.IsFallback() {
			return nil, err
		}
		fixed, ok := domain.FallbackRate(pair)
		if !ok {
			return nil, err
		}
		logger.Warn("currency: %s served from fallback table: %v", pair, err)
		rate = &domain.ExchangeRate{
			Base:   pair.Base,
			Target: pair.Target,
			Rate:   fixed,
			Source: domain.FallbackSource,
		}
		ttl = freshness.FallbackTTL
	}
	if rate.Source == "" {
		rate.Source = source
	}
	rate.Base = pair.Base
	rate.Target = pair.Target
	rate.FetchedAt = s.now()

	if err := s.cache.Put(ctx, key, rate, ttl); err != nil {
		logger.Warn("currency: caching %s failed: %v", key, err)
	}
	return rate, nil
}
