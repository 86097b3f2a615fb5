package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/geoindex"
	"github.com/custodia-labs/geocache/internal/logger"
)

// placeStore implements driven.PlaceStore. Rows carry their grid cell so
// radius queries only read the cells around the query center.
type placeStore struct {
	store *Store
}

var _ driven.PlaceStore = (*placeStore)(nil)

const placeColumns = `id, name, address, category, type, lat, lon, rating, opening_hours,
	source, source_id, source_url, tags, search_lat, search_lon, search_radius, created_at, updated_at`

// UpsertPlaces writes places in one transaction keyed by domain.PlaceKey.
func (s *placeStore) UpsertPlaces(ctx context.Context, places []domain.Place) ([]domain.Place, error) {
	if len(places) == 0 {
		return nil, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO places (id, place_key, name, address, category, type, lat, lon, cell_x, cell_y,
			rating, opening_hours, source, source_id, source_url, tags,
			search_lat, search_lon, search_radius, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(place_key) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			category = excluded.category,
			type = excluded.type,
			lat = excluded.lat,
			lon = excluded.lon,
			cell_x = excluded.cell_x,
			cell_y = excluded.cell_y,
			rating = excluded.rating,
			opening_hours = excluded.opening_hours,
			source = excluded.source,
			source_id = excluded.source_id,
			source_url = excluded.source_url,
			tags = excluded.tags,
			search_lat = excluded.search_lat,
			search_lon = excluded.search_lon,
			search_radius = excluded.search_radius,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing place upsert: %w", err)
	}
	defer stmt.Close()

	now := s.store.now().UTC()
	stored := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt = now
		p.UpdatedAt = now

		tags, err := encodeTags(p.Tags)
		if err != nil {
			return nil, fmt.Errorf("encoding tags for %s: %w", p.Name, err)
		}
		cell := geoindex.CellOf(p.Coordinates(), geoindex.DefaultCellSize)

		var rating sql.NullFloat64
		if p.Rating != nil {
			rating = sql.NullFloat64{Float64: *p.Rating, Valid: true}
		}

		var createdAt int64
		err = stmt.QueryRowContext(ctx,
			p.ID, domain.PlaceKey(p), p.Name, p.Address, string(p.Category), p.Type,
			p.Lat(), p.Lon(), cell.X, cell.Y,
			rating, nullString(p.OpeningHours), p.Source, nullString(p.SourceID), nullString(p.SourceURL), tags,
			p.SearchCenter.Lat, p.SearchCenter.Lon, p.SearchRadius,
			toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
		).Scan(&p.ID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("upserting place %s: %w", p.Name, err)
		}
		p.CreatedAt = fromMillis(createdAt)
		stored = append(stored, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing places: %w", err)
	}
	return stored, nil
}

// Near returns places inside the radius, nearest first. If the cell query
// fails it falls back to scanning every row.
func (s *placeStore) Near(ctx context.Context, q driven.NearQuery) ([]domain.Place, error) {
	rng := geoindex.CellsAround(q.Center, q.Radius, geoindex.DefaultCellSize)

	var where []string
	var args []any
	where = append(where, "cell_x BETWEEN ? AND ?")
	args = append(args, rng.MinX, rng.MaxX)
	if rng.Wraps {
		where = append(where, "(cell_y >= ? OR cell_y <= ?)")
	} else {
		where = append(where, "cell_y BETWEEN ? AND ?")
	}
	args = append(args, rng.MinY, rng.MaxY)

	filters, filterArgs := placeFilters(q)
	where = append(where, filters...)
	args = append(args, filterArgs...)

	candidates, err := s.query(ctx, where, args)
	if err != nil {
		logger.Warn("places: cell lookup failed, scanning all rows: %v", err)
		filters, filterArgs := placeFilters(q)
		candidates, err = s.query(ctx, filters, filterArgs)
		if err != nil {
			return nil, err
		}
	}

	return refineNear(candidates, q), nil
}

// PurgeBefore deletes places not refreshed since t.
func (s *placeStore) PurgeBefore(ctx context.Context, t time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM places WHERE updated_at < ?`, toMillis(t))
	if err != nil {
		return 0, fmt.Errorf("purging places: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged places: %w", err)
	}
	return int(n), nil
}

func placeFilters(q driven.NearQuery) ([]string, []any) {
	var where []string
	var args []any
	if q.Category != "" && q.Category != domain.CategoryAll {
		where = append(where, "category = ?")
		args = append(args, string(q.Category))
	}
	if !q.Since.IsZero() {
		where = append(where, "updated_at >= ?")
		args = append(args, toMillis(q.Since))
	}
	return where, args
}

func (s *placeStore) query(ctx context.Context, where []string, args []any) ([]domain.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying places: %w", err)
	}
	defer rows.Close()

	var places []domain.Place //nolint:prealloc // size unknown from query
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating places: %w", err)
	}
	return places, nil
}

// refineNear applies the exact radius, orders by distance and caps the result.
func refineNear(candidates []domain.Place, q driven.NearQuery) []domain.Place {
	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultPlacesLimit
	}

	out := make([]domain.Place, 0, len(candidates))
	for _, p := range candidates {
		d := domain.Distance(q.Center, p.Coordinates())
		if d > q.Radius {
			continue
		}
		p.Distance = d
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func scanPlace(row rowScanner) (domain.Place, error) {
	var p domain.Place
	var category string
	var lat, lon float64
	var rating, searchLat, searchLon, searchRadius sql.NullFloat64
	var openingHours, sourceID, sourceURL, tags sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(&p.ID, &p.Name, &p.Address, &category, &p.Type, &lat, &lon,
		&rating, &openingHours, &p.Source, &sourceID, &sourceURL, &tags,
		&searchLat, &searchLon, &searchRadius, &createdAt, &updatedAt); err != nil {
		return domain.Place{}, fmt.Errorf("scanning place: %w", err)
	}

	p.Category = domain.PlaceCategory(category)
	p.Location = domain.NewGeoPoint(lat, lon)
	if rating.Valid {
		v := rating.Float64
		p.Rating = &v
	}
	p.OpeningHours = openingHours.String
	p.SourceID = sourceID.String
	p.SourceURL = sourceURL.String
	p.SearchCenter = domain.Coordinates{Lat: searchLat.Float64, Lon: searchLon.Float64}
	p.SearchRadius = searchRadius.Float64
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)

	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &p.Tags); err != nil {
			return domain.Place{}, fmt.Errorf("decoding tags for %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func encodeTags(tags map[string]string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
