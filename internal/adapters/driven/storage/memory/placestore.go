package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/geoindex"
)

// Ensure PlaceStore implements the interface.
var _ driven.PlaceStore = (*PlaceStore)(nil)

// PlaceStore is an in-memory implementation of driven.PlaceStore backed by
// a geoindex.Grid.
type PlaceStore struct {
	mu     sync.RWMutex
	places map[string]domain.Place
	keys   map[string]string // place key -> id
	grid   *geoindex.Grid
	now    func() time.Time
}

// NewPlaceStore creates a new in-memory place store.
func NewPlaceStore(opts ...Option) *PlaceStore {
	o := buildOptions(opts)
	return &PlaceStore{
		places: make(map[string]domain.Place),
		keys:   make(map[string]string),
		grid:   geoindex.NewGrid(geoindex.DefaultCellSize),
		now:    o.now,
	}
}

// UpsertPlaces inserts or updates places keyed by domain.PlaceKey.
func (s *PlaceStore) UpsertPlaces(_ context.Context, places []domain.Place) ([]domain.Place, error) {
	if len(places) == 0 {
		return nil, nil
	}
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]domain.Place, 0, len(places))
	for _, p := range places {
		key := domain.PlaceKey(p)
		if id, ok := s.keys[key]; ok {
			p.ID = id
			p.CreatedAt = s.places[id].CreatedAt
		} else {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			p.CreatedAt = now
			s.keys[key] = p.ID
		}
		p.UpdatedAt = now
		p.Distance = 0
		p.Tags = copyTags(p.Tags)

		s.places[p.ID] = p
		s.grid.Insert(p.ID, p.Coordinates())
		stored = append(stored, p)
	}
	return stored, nil
}

// Near returns places within the query radius, nearest first.
func (s *PlaceStore) Near(_ context.Context, q driven.NearQuery) ([]domain.Place, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultPlacesLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Place
	for _, hit := range s.grid.Near(q.Center, q.Radius) {
		p, ok := s.places[hit.ID]
		if !ok {
			continue
		}
		if q.Category != "" && q.Category != domain.CategoryAll && p.Category != q.Category {
			continue
		}
		if !q.Since.IsZero() && p.UpdatedAt.Before(q.Since) {
			continue
		}
		p.Distance = hit.Distance
		p.Tags = copyTags(p.Tags)
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// PurgeBefore deletes places not updated since t.
func (s *PlaceStore) PurgeBefore(_ context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, p := range s.places {
		if p.UpdatedAt.Before(t) {
			delete(s.places, id)
			delete(s.keys, domain.PlaceKey(p))
			s.grid.Remove(id)
			n++
		}
	}
	return n, nil
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
