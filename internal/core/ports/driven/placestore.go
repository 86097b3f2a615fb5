package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// NearQuery selects places within Radius meters of Center.
type NearQuery struct {
	Center   domain.Coordinates
	Radius   float64
	Category domain.PlaceCategory

	// Since excludes places last updated before this time. Zero means no bound.
	Since time.Time

	// Limit caps results. Zero means domain.DefaultPlacesLimit.
	Limit int
}

// PlaceStore persists places and answers radius queries.
type PlaceStore interface {
	// UpsertPlaces inserts or updates places keyed by domain.PlaceKey.
	// Existing rows keep their ID and CreatedAt. Returns the stored places.
	UpsertPlaces(ctx context.Context, places []domain.Place) ([]domain.Place, error)

	// Near returns places within the query radius, nearest first, with
	// Distance set relative to the query center.
	Near(ctx context.Context, q NearQuery) ([]domain.Place, error)

	// PurgeBefore deletes places not updated since t.
	PurgeBefore(ctx context.Context, t time.Time) (int, error)
}
