package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// NewsStore persists news articles.
type NewsStore interface {
	// SaveArticle stores an article for its City. If (URL, City) already
	// exists the row is only replaced when the incoming article was
	// published later. Returns true if a row was inserted or updated.
	SaveArticle(ctx context.Context, article domain.NewsArticle) (bool, error)

	// ListForLocation returns articles for the city, its state, and the
	// national city, deduplicated by URL, newest first.
	ListForLocation(ctx context.Context, loc domain.Location, category string, limit int) ([]domain.NewsArticle, error)

	// Stats summarises stored articles. Recent counts rows created after since.
	Stats(ctx context.Context, since time.Time) (*domain.NewsStats, error)

	// PurgeBefore deletes articles created before t.
	PurgeBefore(ctx context.Context, t time.Time) (int, error)
}
