package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

var fetchedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestServer_handleWeather(t *testing.T) {
	ctx := context.Background()

	t.Run("returns weather", func(t *testing.T) {
		weather := &mockWeatherService{weather: &domain.Weather{
			Lat: 3.139, Lon: 101.6869, Temp: 31.5, Description: "scattered clouds",
			Humidity: 70, City: "Kuala Lumpur", Country: "MY", Source: "openweather",
			FetchedAt: fetchedAt, Freshness: domain.FreshnessFresh,
		}}
		ports := testPorts()
		ports.Weather = weather
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleWeather(ctx, nil, WeatherInput{Lat: 3.139, Lon: 101.6869})

		require.NoError(t, err)
		assert.Equal(t, 3.139, weather.lat)
		assert.Equal(t, 101.6869, weather.lon)
		assert.Equal(t, 31.5, output.Temp)
		assert.Equal(t, "Kuala Lumpur", output.City)
		assert.Equal(t, "openweather", output.Source)
		assert.Equal(t, "2025-06-01T12:00:00Z", output.FetchedAt)
		assert.Equal(t, "fresh", output.Freshness)
	})

	t.Run("returns error when unavailable", func(t *testing.T) {
		ports := testPorts()
		ports.Weather = &mockWeatherService{err: domain.ErrUpstreamUnavailable}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleWeather(ctx, nil, WeatherInput{Lat: 1, Lon: 1})

		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})
}

func TestServer_handlePlaces(t *testing.T) {
	ctx := context.Background()
	rating := 4.5

	t.Run("maps places and forwards the query", func(t *testing.T) {
		places := &mockPlacesService{result: &domain.PlacesResult{
			Freshness: domain.FreshnessStale,
			Places: []domain.Place{{
				ID: "p1", Name: "Petronas Towers", Category: domain.CategoryTourism,
				Location: domain.NewGeoPoint(3.1579, 101.7116), Distance: 12.5,
				Rating: &rating, Source: "overpass", SourceURL: "https://www.openstreetmap.org/node/1",
			}},
		}}
		ports := testPorts()
		ports.Places = places
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handlePlaces(ctx, nil, PlacesInput{
			Lat: 3.1579, Lon: 101.7116, Radius: 2000, Category: "tourism",
		})

		require.NoError(t, err)
		assert.Equal(t, 2000.0, places.query.Radius)
		assert.Equal(t, domain.CategoryTourism, places.query.Category)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "stale", output.Freshness)
		require.Len(t, output.Places, 1)
		assert.Equal(t, "Petronas Towers", output.Places[0].Name)
		assert.Equal(t, "tourism", output.Places[0].Category)
		assert.Equal(t, 3.1579, output.Places[0].Lat)
		assert.Equal(t, 101.7116, output.Places[0].Lon)
		assert.Equal(t, &rating, output.Places[0].Rating)
	})

	t.Run("returns error on invalid input", func(t *testing.T) {
		ports := testPorts()
		ports.Places = &mockPlacesService{err: fmt.Errorf("%w: radius", domain.ErrInvalidInput)}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handlePlaces(ctx, nil, PlacesInput{Lat: 1, Lon: 1, Radius: -1})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleCurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("flags fallback rates", func(t *testing.T) {
		currency := &mockCurrencyService{rate: &domain.ExchangeRate{
			Base: "JPY", Target: "USD", Rate: 0.0068, Source: domain.FallbackSource,
			FetchedAt: fetchedAt, Freshness: domain.FreshnessFresh,
		}}
		ports := testPorts()
		ports.Currency = currency
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleCurrency(ctx, nil, CurrencyInput{Base: "jpy", Target: "usd"})

		require.NoError(t, err)
		assert.Equal(t, "jpy", currency.base)
		assert.Equal(t, "usd", currency.target)
		assert.Equal(t, 0.0068, output.Rate)
		assert.True(t, output.Fallback)
	})

	t.Run("returns error", func(t *testing.T) {
		ports := testPorts()
		ports.Currency = &mockCurrencyService{err: errors.New("boom")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleCurrency(ctx, nil, CurrencyInput{Base: "USD", Target: "EUR"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestServer_handleNews(t *testing.T) {
	ctx := context.Background()

	t.Run("maps articles and location", func(t *testing.T) {
		news := &mockNewsService{result: &domain.NewsResult{
			Location:  domain.Location{Country: "Malaysia", City: "Ipoh", State: "Perak", InRegion: true},
			Freshness: domain.FreshnessFresh,
			Articles: []domain.NewsArticle{{
				Title: "Ipoh heritage walk", URL: "https://news.example/ipoh",
				PublishedAt: fetchedAt, City: "ipoh", Category: "local",
			}},
		}}
		ports := testPorts()
		ports.News = news
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleNews(ctx, nil, NewsInput{Lat: 4.5975, Lon: 101.0901, Limit: 5})

		require.NoError(t, err)
		assert.Equal(t, 5, news.query.Limit)
		assert.Equal(t, "Ipoh", output.City)
		assert.True(t, output.InRegion)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "https://news.example/ipoh", output.Articles[0].URL)
		assert.Equal(t, "2025-06-01T12:00:00Z", output.Articles[0].PublishedAt)
	})

	t.Run("returns error", func(t *testing.T) {
		ports := testPorts()
		ports.News = &mockNewsService{err: domain.ErrUpstreamUnavailable}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleNews(ctx, nil, NewsInput{Lat: 1, Lon: 1})

		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", formatTime(time.Time{}))
	loc := time.FixedZone("MYT", 8*3600)
	assert.Equal(t, "2025-06-01T12:00:00Z", formatTime(fetchedAt.In(loc)))
}
