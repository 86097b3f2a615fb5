package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// --- Shared test doubles ---

// mockProvider implements driven.Provider with a scripted Fetch.
type mockProvider[Q, R any] struct {
	name string
	fn   func(ctx context.Context, q Q) (R, error)

	mu      sync.Mutex
	calls   int
	queries []Q
}

func newMockProvider[Q, R any](name string, fn func(ctx context.Context, q Q) (R, error)) *mockProvider[Q, R] {
	return &mockProvider[Q, R]{name: name, fn: fn}
}

func failingProvider[Q, R any](name string, err error) *mockProvider[Q, R] {
	return newMockProvider(name, func(context.Context, Q) (R, error) {
		var zero R
		return zero, err
	})
}

func (m *mockProvider[Q, R]) Name() string { return m.name }

func (m *mockProvider[Q, R]) Fetch(ctx context.Context, q Q) (R, error) {
	m.mu.Lock()
	m.calls++
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	return m.fn(ctx, q)
}

func (m *mockProvider[Q, R]) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockProvider[Q, R]) Queries() []Q {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Q(nil), m.queries...)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testSettings() StaticSettings {
	return StaticSettings(domain.DefaultAppSettings())
}

func testRefresher() *Refresher {
	return NewRefresher(domain.RefreshSettings{Workers: 2, FetchTimeout: 5 * time.Second})
}
