package driven

import (
	"context"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// Provider is a single upstream source answering queries of type Q.
// Fetch returns an error for any failure, including malformed payloads.
type Provider[Q, R any] interface {
	// Name identifies the provider in logs and results.
	Name() string

	// Fetch queries the upstream.
	Fetch(ctx context.Context, q Q) (R, error)
}

// WeatherProvider fetches current weather.
type WeatherProvider = Provider[domain.Coordinates, *domain.Weather]

// CurrencyProvider fetches an exchange rate.
type CurrencyProvider = Provider[domain.CurrencyPair, *domain.ExchangeRate]

// PlacesProvider discovers places around a point.
type PlacesProvider = Provider[domain.PlacesQuery, []domain.Place]

// NewsProvider searches news by free-text query.
type NewsProvider = Provider[string, []domain.NewsArticle]
