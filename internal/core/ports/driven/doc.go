// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CacheStore: TTL key/value cache for weather, currency and refresh markers
//   - PlaceStore: Place persistence with radius queries
//   - NewsStore: News article persistence keyed by (url, city)
//   - RateLimiter: Per-channel outbound call pacing
//   - Provider: A single upstream data source
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SchedulerStore: Task state persistence. Without it, scheduled tasks
//     are not run.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or provider package
package driven
