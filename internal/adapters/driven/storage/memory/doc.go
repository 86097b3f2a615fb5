// Package memory provides in-memory implementations of the driven storage
// ports. They back --ephemeral runs and service tests and share the
// semantics of the sqlite adapter.
package memory
