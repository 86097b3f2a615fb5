package driving

import (
	"context"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// WeatherService answers current-weather requests.
type WeatherService interface {
	// Resolve returns weather at the coordinates.
	// Returns domain.ErrInvalidInput for bad coordinates and
	// domain.ErrUpstreamUnavailable when nothing is cached and every
	// provider failed.
	Resolve(ctx context.Context, lat, lon float64) (*domain.Weather, error)
}

// PlacesService answers nearby-places requests.
type PlacesService interface {
	// Nearby returns places around the query point, nearest first.
	Nearby(ctx context.Context, q domain.PlacesQuery) (*domain.PlacesResult, error)

	// Refresh fetches from upstream regardless of freshness.
	Refresh(ctx context.Context, q domain.PlacesQuery) (*domain.PlacesResult, error)
}

// CurrencyService answers exchange-rate requests.
type CurrencyService interface {
	// Rate returns the rate for one unit of base in target.
	Rate(ctx context.Context, base, target string) (*domain.ExchangeRate, error)
}

// NewsService answers local-news requests and manages stored news.
type NewsService interface {
	// Local returns news for the region nearest the query point, newest first.
	Local(ctx context.Context, q domain.NewsQuery) (*domain.NewsResult, error)

	// RefreshAll collects news for every category and region.
	RefreshAll(ctx context.Context) (*domain.NewsRefreshReport, error)

	// Stats summarises stored news.
	Stats(ctx context.Context) (*domain.NewsStats, error)

	// Clean deletes articles older than the retention horizon.
	Clean(ctx context.Context) (int, error)
}

// CleanupService purges expired cache entries and old rows.
type CleanupService interface {
	// Run performs one cleanup pass and returns the number of removed items.
	Run(ctx context.Context) (int, error)
}
