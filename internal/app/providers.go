package app

import (
	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/logger"
	"github.com/custodia-labs/geocache/internal/providers/erapi"
	"github.com/custodia-labs/geocache/internal/providers/frankfurter"
	"github.com/custodia-labs/geocache/internal/providers/newsapi"
	"github.com/custodia-labs/geocache/internal/providers/nominatim"
	"github.com/custodia-labs/geocache/internal/providers/openmeteo"
	"github.com/custodia-labs/geocache/internal/providers/openweather"
	"github.com/custodia-labs/geocache/internal/providers/overpass"
)

// Providers holds the ordered provider chain for each domain.
type Providers struct {
	Weather  []driven.WeatherProvider
	Places   []driven.PlacesProvider
	Currency []driven.CurrencyProvider
	News     []driven.NewsProvider
}

// NewProviders builds the provider chains from settings. Keyed providers
// without an API key are left out of their chain.
func NewProviders(s domain.AppSettings, limiter driven.RateLimiter) Providers {
	p := s.Providers
	var out Providers

	if p.OpenWeather.IsConfigured() {
		out.Weather = append(out.Weather, openweather.New(openweather.Config{
			BaseURL:   p.OpenWeather.BaseURL,
			APIKey:    p.OpenWeather.APIKey,
			Timeout:   p.Timeout,
			UserAgent: p.UserAgent,
		}))
	} else {
		logger.Debug("providers: %s skipped, no API key", openweather.Name)
	}
	out.Weather = append(out.Weather, openmeteo.New(openmeteo.Config{
		BaseURL:   p.OpenMeteo.BaseURL,
		Timeout:   p.Timeout,
		UserAgent: p.UserAgent,
	}))

	out.Places = []driven.PlacesProvider{
		overpass.New(overpass.Config{
			BaseURL:   p.Overpass.BaseURL,
			Timeout:   p.PlacesTimeout,
			UserAgent: p.UserAgent,
			Limiter:   limiter,
		}),
		nominatim.New(nominatim.Config{
			BaseURL:   p.Nominatim.BaseURL,
			Timeout:   p.PlacesTimeout,
			UserAgent: p.UserAgent,
			Limiter:   limiter,
			Limit:     s.Places.Limit,
		}),
	}

	out.Currency = []driven.CurrencyProvider{
		frankfurter.New(frankfurter.Config{
			BaseURL:   p.Frankfurter.BaseURL,
			Timeout:   p.Timeout,
			UserAgent: p.UserAgent,
		}),
		erapi.New(erapi.Config{
			BaseURL:   p.ERAPI.BaseURL,
			Timeout:   p.Timeout,
			UserAgent: p.UserAgent,
		}),
	}

	if p.NewsAPI.IsConfigured() {
		out.News = append(out.News, newsapi.New(newsapi.Config{
			BaseURL:   p.NewsAPI.BaseURL,
			APIKey:    p.NewsAPI.APIKey,
			Timeout:   p.Timeout,
			UserAgent: p.UserAgent,
			Limiter:   limiter,
		}))
	} else {
		logger.Warn("providers: %s has no API key, news refresh will serve stored articles only", newsapi.Name)
	}

	return out
}
