package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// WeatherInput is the input schema for the weather tool.
type WeatherInput struct {
	Lat float64 `json:"lat" jsonschema:"latitude in decimal degrees (-90 to 90)"`
	Lon float64 `json:"lon" jsonschema:"longitude in decimal degrees (-180 to 180)"`
}

// WeatherOutput is the output schema for the weather tool.
type WeatherOutput struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	Icon        string  `json:"icon,omitempty"`
	Humidity    int     `json:"humidity"`
	City        string  `json:"city,omitempty"`
	Country     string  `json:"country,omitempty"`
	Source      string  `json:"source"`
	FetchedAt   string  `json:"fetched_at"`
	Freshness   string  `json:"freshness"`
}

// PlacesInput is the input schema for the nearby places tool.
type PlacesInput struct {
	Lat      float64 `json:"lat" jsonschema:"latitude in decimal degrees"`
	Lon      float64 `json:"lon" jsonschema:"longitude in decimal degrees"`
	Radius   float64 `json:"radius,omitempty" jsonschema:"search radius in meters (default 5000, max 50000)"`
	Category string  `json:"category,omitempty" jsonschema:"place category such as restaurant, tourism or healthcare (default all)"`
}

// PlacesOutput is the output schema for the nearby places tool.
type PlacesOutput struct {
	Places    []PlaceOutput `json:"places"`
	Count     int           `json:"count"`
	Freshness string        `json:"freshness"`
}

// PlaceOutput represents a single place.
type PlaceOutput struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	Category  string   `json:"category"`
	Type      string   `json:"type,omitempty"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Distance  float64  `json:"distance"`
	Rating    *float64 `json:"rating,omitempty"`
	Source    string   `json:"source"`
	SourceURL string   `json:"source_url,omitempty"`
}

// CurrencyInput is the input schema for the exchange rate tool.
type CurrencyInput struct {
	Base   string `json:"base" jsonschema:"three-letter ISO 4217 code of the source currency"`
	Target string `json:"target" jsonschema:"three-letter ISO 4217 code of the target currency"`
}

// CurrencyOutput is the output schema for the exchange rate tool.
type CurrencyOutput struct {
	Base      string  `json:"base"`
	Target    string  `json:"target"`
	Rate      float64 `json:"rate"`
	Source    string  `json:"source"`
	Fallback  bool    `json:"fallback"`
	FetchedAt string  `json:"fetched_at"`
	Freshness string  `json:"freshness"`
}

// NewsInput is the input schema for the local news tool.
type NewsInput struct {
	Lat      float64 `json:"lat" jsonschema:"latitude in decimal degrees"`
	Lon      float64 `json:"lon" jsonschema:"longitude in decimal degrees"`
	Category string  `json:"category,omitempty" jsonschema:"news category filter (default all)"`
	Limit    int     `json:"limit,omitempty" jsonschema:"maximum number of articles to return (default 50)"`
}

// NewsOutput is the output schema for the local news tool.
type NewsOutput struct {
	City      string          `json:"city"`
	State     string          `json:"state"`
	Country   string          `json:"country"`
	InRegion  bool            `json:"in_region"`
	Articles  []ArticleOutput `json:"articles"`
	Count     int             `json:"count"`
	Freshness string          `json:"freshness"`
}

// ArticleOutput represents a single news article.
type ArticleOutput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	SourceName  string `json:"source_name,omitempty"`
	PublishedAt string `json:"published_at"`
	City        string `json:"city,omitempty"`
	Category    string `json:"category,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_weather",
		Description: "Current weather at a coordinate, served from cache when fresh",
	}, s.handleWeather)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "nearby_places",
		Description: "Points of interest around a coordinate, nearest first",
	}, s.handlePlaces)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "exchange_rate",
		Description: "Exchange rate for one unit of base currency in target currency",
	}, s.handleCurrency)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "local_news",
		Description: "Recent news for the region nearest a coordinate, newest first",
	}, s.handleNews)
}

func (s *Server) handleWeather(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input WeatherInput,
) (*mcp.CallToolResult, WeatherOutput, error) {
	w, err := s.ports.Weather.Resolve(ctx, input.Lat, input.Lon)
	if err != nil {
		return nil, WeatherOutput{}, err
	}

	return nil, WeatherOutput{
		Lat:         w.Lat,
		Lon:         w.Lon,
		Temp:        w.Temp,
		Description: w.Description,
		Icon:        w.Icon,
		Humidity:    w.Humidity,
		City:        w.City,
		Country:     w.Country,
		Source:      w.Source,
		FetchedAt:   formatTime(w.FetchedAt),
		Freshness:   w.Freshness.String(),
	}, nil
}

func (s *Server) handlePlaces(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PlacesInput,
) (*mcp.CallToolResult, PlacesOutput, error) {
	result, err := s.ports.Places.Nearby(ctx, domain.PlacesQuery{
		Lat:      input.Lat,
		Lon:      input.Lon,
		Radius:   input.Radius,
		Category: domain.PlaceCategory(input.Category),
	})
	if err != nil {
		return nil, PlacesOutput{}, err
	}

	output := PlacesOutput{
		Places:    make([]PlaceOutput, len(result.Places)),
		Count:     len(result.Places),
		Freshness: result.Freshness.String(),
	}
	for i := range result.Places {
		p := &result.Places[i]
		output.Places[i] = PlaceOutput{
			ID:        p.ID,
			Name:      p.Name,
			Address:   p.Address,
			Category:  p.Category.String(),
			Type:      p.Type,
			Lat:       p.Lat(),
			Lon:       p.Lon(),
			Distance:  p.Distance,
			Rating:    p.Rating,
			Source:    p.Source,
			SourceURL: p.SourceURL,
		}
	}

	return nil, output, nil
}

func (s *Server) handleCurrency(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CurrencyInput,
) (*mcp.CallToolResult, CurrencyOutput, error) {
	r, err := s.ports.Currency.Rate(ctx, input.Base, input.Target)
	if err != nil {
		return nil, CurrencyOutput{}, err
	}
	return nil, currencyOutput(r), nil
}

func (s *Server) handleNews(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NewsInput,
) (*mcp.CallToolResult, NewsOutput, error) {
	result, err := s.ports.News.Local(ctx, domain.NewsQuery{
		Lat:      input.Lat,
		Lon:      input.Lon,
		Category: input.Category,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, NewsOutput{}, err
	}

	output := NewsOutput{
		City:      result.Location.City,
		State:     result.Location.State,
		Country:   result.Location.Country,
		InRegion:  result.Location.InRegion,
		Articles:  make([]ArticleOutput, len(result.Articles)),
		Count:     len(result.Articles),
		Freshness: result.Freshness.String(),
	}
	for i := range result.Articles {
		a := &result.Articles[i]
		output.Articles[i] = ArticleOutput{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			SourceName:  a.SourceName,
			PublishedAt: formatTime(a.PublishedAt),
			City:        a.City,
			Category:    a.Category,
		}
	}

	return nil, output, nil
}

func currencyOutput(r *domain.ExchangeRate) CurrencyOutput {
	return CurrencyOutput{
		Base:      r.Base,
		Target:    r.Target,
		Rate:      r.Rate,
		Source:    r.Source,
		Fallback:  r.IsFallback(),
		FetchedAt: formatTime(r.FetchedAt),
		Freshness: r.Freshness.String(),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
