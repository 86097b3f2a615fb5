// Package domain defines the core business entities for geocache.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types and the pure policy that operates on them:
//
//   - Place: a point of interest discovered by a places provider
//   - NewsArticle: a news item associated with a city
//   - Weather: current conditions at a coordinate
//   - ExchangeRate: a currency pair quote
//   - Freshness: the FRESH / STALE / EMPTY classification of cached data
//
// Distance computation, place classification, deduplication, the currency
// fallback table and the news region tables also live here because they are
// deterministic functions of domain values.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, golang.org/x/text
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
