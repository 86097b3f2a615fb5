package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// Ensure Cleaner implements the interface.
var _ driving.CleanupService = (*Cleaner)(nil)

// Cleaner removes expired cache entries and places and articles older than
// their retention horizon. Cleanup is advisory: a failing step is reported
// but does not stop the others.
type Cleaner struct {
	cache    driven.CacheStore
	places   driven.PlaceStore
	news     driven.NewsStore
	settings SettingsProvider
	now      func() time.Time
}

// NewCleaner creates a cleaner. Any store may be nil to skip it.
func NewCleaner(
	cache driven.CacheStore,
	places driven.PlaceStore,
	news driven.NewsStore,
	settings SettingsProvider,
	opts ...Option,
) *Cleaner {
	o := buildOptions(opts)
	return &Cleaner{
		cache:    cache,
		places:   places,
		news:     news,
		settings: settings,
		now:      o.now,
	}
}

// Run performs one cleanup pass and returns the number of removed items.
func (c *Cleaner) Run(ctx context.Context) (int, error) {
	retention := c.settings.Current().Retention
	now := c.now()

	var (
		total int
		errs  []error
	)

	if c.cache != nil {
		n, err := c.cache.Purge(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("purging cache: %w", err))
		}
		total += n
	}
	if c.places != nil && retention.Places > 0 {
		n, err := c.places.PurgeBefore(ctx, now.Add(-retention.Places))
		if err != nil {
			errs = append(errs, fmt.Errorf("purging places: %w", err))
		}
		total += n
	}
	if c.news != nil && retention.News > 0 {
		n, err := c.news.PurgeBefore(ctx, now.Add(-retention.News))
		if err != nil {
			errs = append(errs, fmt.Errorf("purging news: %w", err))
		}
		total += n
	}

	logger.Debug("cleanup: removed %d items", total)
	return total, errors.Join(errs...)
}
