// Package openmeteo fetches current weather from Open-Meteo, which needs no
// API key.
package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/providers/httpclient"
)

// Ensure Provider implements the interface.
var _ driven.WeatherProvider = (*Provider)(nil)

// Default configuration values.
const (
	Name           = "openmeteo"
	DefaultBaseURL = "https://api.open-meteo.com"
)

// Config holds configuration for the Open-Meteo provider.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Provider queries the Open-Meteo forecast endpoint for current values.
type Provider struct {
	client *httpclient.Client
	now    func() time.Time
}

// New creates an Open-Meteo provider.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Provider{
		client: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
		}),
		now: time.Now,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return Name }

type forecastResponse struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		Humidity    float64  `json:"relative_humidity_2m"`
		WeatherCode *int     `json:"weather_code"`
		IsDay       int      `json:"is_day"`
	} `json:"current"`
}

// Fetch returns current conditions at c.
func (p *Provider) Fetch(ctx context.Context, c domain.Coordinates) (*domain.Weather, error) {
	query := url.Values{
		"latitude":  {strconv.FormatFloat(c.Lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(c.Lon, 'f', -1, 64)},
		"current":   {"temperature_2m,relative_humidity_2m,weather_code,is_day"},
	}

	var resp forecastResponse
	if err := p.client.GetJSON(ctx, "/v1/forecast", query, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	if resp.Current == nil || resp.Current.Temperature == nil || resp.Current.WeatherCode == nil {
		return nil, fmt.Errorf("%s: %w: missing current values", Name, domain.ErrMalformedResponse)
	}

	code := *resp.Current.WeatherCode
	return &domain.Weather{
		Lat:         c.Lat,
		Lon:         c.Lon,
		Temp:        *resp.Current.Temperature,
		Description: Describe(code),
		Icon:        Icon(code, resp.Current.IsDay == 1),
		Humidity:    int(resp.Current.Humidity),
		Source:      Name,
		FetchedAt:   p.now().UTC(),
	}, nil
}
