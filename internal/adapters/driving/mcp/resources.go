package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for geocache resources.
	uriScheme = "geocache://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "places/categories",
		Name:        "place-categories",
		Description: "Place categories accepted by the nearby_places tool",
		MIMEType:    "application/json",
	}, s.handleCategoriesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "news/stats",
		Name:        "news-stats",
		Description: "Stored article counts, last refresh time and per-city totals",
		MIMEType:    "application/json",
	}, s.handleNewsStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "currency/{base}/{target}",
		Name:        "exchange-rate",
		Description: "Exchange rate for a currency pair",
		MIMEType:    "application/json",
	}, s.handleCurrencyResource)
}

// handleCategoriesResource lists the supported place categories.
func (s *Server) handleCategoriesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	categories := domain.AllPlaceCategories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.String()
	}
	return jsonResource(req.Params.URI, names)
}

// handleNewsStatsResource returns stored news statistics.
func (s *Server) handleNewsStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.News.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting news stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

// handleCurrencyResource returns the rate for the pair named in the URI.
func (s *Server) handleCurrencyResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract the pair from URI: geocache://currency/{base}/{target}
	base, target := extractCurrencyPair(req.Params.URI)
	if base == "" || target == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rate, err := s.ports.Currency.Rate(ctx, base, target)
	if err != nil {
		return nil, fmt.Errorf("getting exchange rate: %w", err)
	}
	return jsonResource(req.Params.URI, currencyOutput(rate))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCurrencyPair extracts base and target from a URI like geocache://currency/USD/EUR.
func extractCurrencyPair(uri string) (base, target string) {
	const prefix = uriScheme + "currency/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}

	parts := strings.Split(strings.TrimPrefix(uri, prefix), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return parts[0], parts[1]
}
