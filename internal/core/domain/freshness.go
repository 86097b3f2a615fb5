package domain

import "time"

// Freshness classifies cached data relative to its threshold.
type Freshness string

// Freshness states.
const (
	// FreshnessFresh means the data is younger than the threshold.
	FreshnessFresh Freshness = "fresh"

	// FreshnessStale means the data is older than the threshold but still
	// servable while a background refresh runs.
	FreshnessStale Freshness = "stale"

	// FreshnessEmpty means nothing usable is cached.
	FreshnessEmpty Freshness = "empty"
)

// String returns the string representation.
func (f Freshness) String() string {
	return string(f)
}

// FreshnessPolicy evaluates data age against a threshold.
type FreshnessPolicy struct {
	// MaxAge is the age beyond which data is stale.
	MaxAge time.Duration
}

// Evaluate classifies data fetched at fetchedAt. A zero fetchedAt is Empty.
func (p FreshnessPolicy) Evaluate(fetchedAt, now time.Time) Freshness {
	if fetchedAt.IsZero() {
		return FreshnessEmpty
	}
	if now.Sub(fetchedAt) < p.MaxAge {
		return FreshnessFresh
	}
	return FreshnessStale
}

// FreshnessSettings holds the per-domain staleness thresholds.
type FreshnessSettings struct {
	Weather  time.Duration
	Currency time.Duration
	Places   time.Duration
	News     time.Duration

	// StaleTTLFactor multiplies a threshold to get the cache TTL, so stale
	// entries stay servable for a while after they go stale.
	StaleTTLFactor int

	// FallbackTTL bounds how long fixed-table currency rates are cached.
	FallbackTTL time.Duration
}

// CacheTTL returns how long an entry with the given threshold is kept.
func (s FreshnessSettings) CacheTTL(threshold time.Duration) time.Duration {
	factor := s.StaleTTLFactor
	if factor < 1 {
		factor = 1
	}
	return threshold * time.Duration(factor)
}

// DefaultFreshnessSettings returns the built-in thresholds.
func DefaultFreshnessSettings() FreshnessSettings {
	return FreshnessSettings{
		Weather:        10 * time.Minute,
		Currency:       time.Hour,
		Places:         24 * time.Hour,
		News:           30 * time.Minute,
		StaleTTLFactor: 6,
		FallbackTTL:    5 * time.Minute,
	}
}
