// Package newsapi searches news articles through NewsAPI.org.
package newsapi

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
var _ driven.NewsProvider = (*Provider)(nil)

// Default configuration values.
const (
	Name           = "newsapi"
	DefaultBaseURL = "https://newsapi.org"
	DefaultWindow  = 7 * 24 * time.Hour
	PageSize       = 50
)

// Config holds configuration for the NewsAPI provider.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
	Limiter   driven.RateLimiter

	// Window is how far back articles are searched (default: 7 days).
	Window time.Duration
}

// Provider queries the everything endpoint.
type Provider struct {
	client *httpclient.Client
	apiKey string
	window time.Duration
	now    func() time.Time
}

// New creates a NewsAPI provider. Calls share the newsapi rate limiter
// channel.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Window == 0 {
		cfg.Window = DefaultWindow
	}
	return &Provider{
		client: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			Limiter:   cfg.Limiter,
			Channel:   domain.ChannelNewsAPI,
		}),
		apiKey: cfg.APIKey,
		window: cfg.Window,
		now:    time.Now,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return Name }

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		URLToImage  string    `json:"urlToImage"`
		PublishedAt time.Time `json:"publishedAt"`
		Content     string    `json:"content"`
	} `json:"articles"`
}

// Fetch searches articles matching query. Withdrawn, incomplete and
// off-topic articles are dropped.
func (p *Provider) Fetch(ctx context.Context, query string) ([]domain.NewsArticle, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", Name, domain.ErrProviderNotConfigured)
	}

	params := url.Values{
		"q":        {query},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {strconv.Itoa(PageSize)},
		"from":     {p.now().Add(-p.window).UTC().Format("2006-01-02")},
	}

	resp, err := p.client.Do(ctx, &httpclient.Request{
		Path:    "/v2/everything",
		Query:   params,
		Headers: map[string]string{"X-Api-Key": p.apiKey},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	var body everythingResponse
	if err := resp.JSON(&body); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("%s: %w: %s %s", Name, domain.ErrMalformedResponse, body.Code, body.Message)
	}

	articles := make([]domain.NewsArticle, 0, len(body.Articles))
	for _, a := range body.Articles {
		article := domain.NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: a.PublishedAt.UTC(),
			SourceName:  a.Source.Name,
			Content:     a.Content,
		}
		if !article.IsUsable() || !domain.IsRelevant(article) {
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}
