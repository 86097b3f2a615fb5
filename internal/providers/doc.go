// Package providers contains the upstream data sources for geocache.
//
// Each subpackage wraps one public API and implements driven.Provider for a
// single query type:
//
//   - openweather, openmeteo: current weather
//   - frankfurter, erapi: currency exchange rates
//   - overpass, nominatim: points of interest from OpenStreetMap
//   - newsapi: news articles
//
// Shared plumbing lives in httpclient (JSON over HTTP with status
// classification) and ratelimit (per-channel outbound pacing).
//
// Providers never retry and never fall back; ordering and fallback are the
// job of the provider chains in internal/core/services.
package providers
