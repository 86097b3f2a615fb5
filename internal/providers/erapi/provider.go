// Package erapi fetches exchange rates from open.er-api.com.
package erapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/providers/httpclient"
)

// Ensure Provider implements the interface.
var _ driven.CurrencyProvider = (*Provider)(nil)

// Default configuration values.
const (
	Name           = "erapi"
	DefaultBaseURL = "https://open.er-api.com"
)

// Config holds configuration for the ExchangeRate-API provider.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Provider queries the open latest-rates endpoint.
type Provider struct {
	client *httpclient.Client
	now    func() time.Time
}

// New creates an ExchangeRate-API provider.
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

type latestResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	Rates     map[string]float64 `json:"rates"`
}

// Fetch returns the rate for the pair.
func (p *Provider) Fetch(ctx context.Context, pair domain.CurrencyPair) (*domain.ExchangeRate, error) {
	var resp latestResponse
	if err := p.client.GetJSON(ctx, "/v6/latest/"+url.PathEscape(pair.Base), nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	if resp.Result != "success" {
		return nil, fmt.Errorf("%s: %w: result %q %s", Name, domain.ErrMalformedResponse, resp.Result, resp.ErrorType)
	}

	rate, ok := resp.Rates[pair.Target]
	if !ok || rate <= 0 {
		return nil, fmt.Errorf("%s: %w: no rate for %s", Name, domain.ErrNotFound, pair)
	}

	return &domain.ExchangeRate{
		Base:      pair.Base,
		Target:    pair.Target,
		Rate:      rate,
		Source:    Name,
		FetchedAt: p.now().UTC(),
	}, nil
}
