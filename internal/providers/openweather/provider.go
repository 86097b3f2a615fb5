// Package openweather fetches current weather from OpenWeatherMap.
package openweather

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
	Name           = "openweather"
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// Config holds configuration for the OpenWeatherMap provider.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
}

// Provider queries the current weather endpoint in metric units.
type Provider struct {
	client *httpclient.Client
	apiKey string
	now    func() time.Time
}

// New creates an OpenWeatherMap provider.
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
		apiKey: cfg.APIKey,
		now:    time.Now,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return Name }

type currentResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// Fetch returns current conditions at c.
func (p *Provider) Fetch(ctx context.Context, c domain.Coordinates) (*domain.Weather, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", Name, domain.ErrProviderNotConfigured)
	}

	query := url.Values{
		"lat":   {strconv.FormatFloat(c.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(c.Lon, 'f', -1, 64)},
		"units": {"metric"},
		"appid": {p.apiKey},
	}

	var resp currentResponse
	if err := p.client.GetJSON(ctx, "/weather", query, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	if resp.Main == nil || len(resp.Weather) == 0 {
		return nil, fmt.Errorf("%s: %w: missing main or weather", Name, domain.ErrMalformedResponse)
	}

	return &domain.Weather{
		Lat:         c.Lat,
		Lon:         c.Lon,
		Temp:        resp.Main.Temp,
		Description: resp.Weather[0].Description,
		Icon:        resp.Weather[0].Icon,
		Humidity:    resp.Main.Humidity,
		City:        resp.Name,
		Country:     resp.Sys.Country,
		Source:      Name,
		FetchedAt:   p.now().UTC(),
	}, nil
}
