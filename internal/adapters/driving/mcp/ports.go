package mcp

import (
	"fmt"

	"github.com/custodia-labs/geocache/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Weather answers current-weather lookups.
	Weather driving.WeatherService

	// Places answers nearby-places lookups.
	Places driving.PlacesService

	// Currency answers exchange-rate lookups.
	Currency driving.CurrencyService

	// News answers local-news lookups and exposes stats.
	News driving.NewsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Weather == nil:
		return fmt.Errorf("%w: weather", ErrMissingService)
	case p.Places == nil:
		return fmt.Errorf("%w: places", ErrMissingService)
	case p.Currency == nil:
		return fmt.Errorf("%w: currency", ErrMissingService)
	case p.News == nil:
		return fmt.Errorf("%w: news", ErrMissingService)
	}
	return nil
}
