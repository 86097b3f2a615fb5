package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Requests failing validation never reach an upstream provider.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable indicates every provider in a chain failed.
	// Callers surface it as an explicit "unavailable" result.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrPersistenceDegraded indicates a cache or index read/write failed.
	// It is logged and never blocks serving live upstream data.
	ErrPersistenceDegraded = errors.New("persistence degraded")

	// ErrRateLimited indicates an upstream rejected a call with HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates an upstream rejected the configured
	// credentials with HTTP 401 or 403.
	ErrUnauthorized = errors.New("upstream rejected credentials")

	// ErrProviderNotConfigured indicates a provider is missing credentials.
	// The chain treats it as a provider failure and moves on.
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrMalformedResponse indicates a provider payload lacked an expected field.
	ErrMalformedResponse = errors.New("malformed provider response")
)
