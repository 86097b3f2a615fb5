// Package mcp provides an MCP (Model Context Protocol) server adapter for geocache.
// It lets AI assistants query weather, nearby places, exchange rates and local news.
package mcp

import "errors"

// ErrMissingService is returned when a required driving port is not provided.
var ErrMissingService = errors.New("mcp: service is required")
