// Package frankfurter fetches exchange rates from the Frankfurter API.
package frankfurter

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
	Name           = "frankfurter"
	DefaultBaseURL = "https://api.frankfurter.app"
)

// Config holds configuration for the Frankfurter provider.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Provider queries the latest rates endpoint.
type Provider struct {
	client *httpclient.Client
	now    func() time.Time
}

// New creates a Frankfurter provider.
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
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Fetch returns the rate for the pair.
func (p *Provider) Fetch(ctx context.Context, pair domain.CurrencyPair) (*domain.ExchangeRate, error) {
	query := url.Values{
		"from": {pair.Base},
		"to":   {pair.Target},
	}

	var resp latestResponse
	if err := p.client.GetJSON(ctx, "/latest", query, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
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
