package mcp

import (
	"context"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// mockWeatherService is a mock implementation of driving.WeatherService.
type mockWeatherService struct {
	weather *domain.Weather
	err     error
	lat     float64
	lon     float64
}

func (m *mockWeatherService) Resolve(_ context.Context, lat, lon float64) (*domain.Weather, error) {
	m.lat, m.lon = lat, lon
	return m.weather, m.err
}

// mockPlacesService is a mock implementation of driving.PlacesService.
type mockPlacesService struct {
	result *domain.PlacesResult
	err    error
	query  domain.PlacesQuery
}

func (m *mockPlacesService) Nearby(_ context.Context, q domain.PlacesQuery) (*domain.PlacesResult, error) {
	m.query = q
	return m.result, m.err
}

func (m *mockPlacesService) Refresh(_ context.Context, q domain.PlacesQuery) (*domain.PlacesResult, error) {
	m.query = q
	return m.result, m.err
}

// mockCurrencyService is a mock implementation of driving.CurrencyService.
type mockCurrencyService struct {
	rate   *domain.ExchangeRate
	err    error
	base   string
	target string
}

func (m *mockCurrencyService) Rate(_ context.Context, base, target string) (*domain.ExchangeRate, error) {
	m.base, m.target = base, target
	return m.rate, m.err
}

// mockNewsService is a mock implementation of driving.NewsService.
type mockNewsService struct {
	result *domain.NewsResult
	stats  *domain.NewsStats
	err    error
	query  domain.NewsQuery
}

func (m *mockNewsService) Local(_ context.Context, q domain.NewsQuery) (*domain.NewsResult, error) {
	m.query = q
	return m.result, m.err
}

func (m *mockNewsService) RefreshAll(_ context.Context) (*domain.NewsRefreshReport, error) {
	return &domain.NewsRefreshReport{}, m.err
}

func (m *mockNewsService) Stats(_ context.Context) (*domain.NewsStats, error) {
	return m.stats, m.err
}

func (m *mockNewsService) Clean(_ context.Context) (int, error) {
	return 0, m.err
}

// testPorts returns ports backed by empty mocks.
func testPorts() *Ports {
	return &Ports{
		Weather:  &mockWeatherService{},
		Places:   &mockPlacesService{},
		Currency: &mockCurrencyService{},
		News:     &mockNewsService{},
	}
}
