package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
)

// newsStore implements driven.NewsStore.
type newsStore struct {
	store *Store
}

var _ driven.NewsStore = (*newsStore)(nil)

const newsColumns = `id, url, city, state, country, category, title, description, image_url,
	published_at, source_name, content, created_at, updated_at`

// topLocations caps the per-city breakdown in Stats.
const topLocations = 10

// SaveArticle inserts the article or replaces an older copy for the same city.
func (s *newsStore) SaveArticle(ctx context.Context, a domain.NewsArticle) (bool, error) {
	if a.URL == "" || a.City == "" {
		return false, fmt.Errorf("%w: article needs url and city", domain.ErrInvalidInput)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := toMillis(s.store.now())

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO news_articles (`+newsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url, city) DO UPDATE SET
			state = excluded.state,
			country = excluded.country,
			category = excluded.category,
			title = excluded.title,
			description = excluded.description,
			image_url = excluded.image_url,
			published_at = excluded.published_at,
			source_name = excluded.source_name,
			content = excluded.content,
			updated_at = excluded.updated_at
		WHERE excluded.published_at > news_articles.published_at
	`, a.ID, a.URL, a.City, a.State, a.Country, a.Category, a.Title, a.Description,
		nullString(a.ImageURL), toMillis(a.PublishedAt), nullString(a.SourceName), nullString(a.Content),
		now, now)
	if err != nil {
		return false, fmt.Errorf("saving article %s: %w", a.URL, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking saved article: %w", err)
	}
	return n > 0, nil
}

// ListForLocation returns articles for the city, its state and the national
// city, newest first, one per URL.
func (s *newsStore) ListForLocation(ctx context.Context, loc domain.Location, category string, limit int) ([]domain.NewsArticle, error) {
	if limit <= 0 {
		limit = domain.DefaultNewsLimit
	}

	query := `SELECT ` + newsColumns + ` FROM news_articles
		WHERE country = ? AND (city = ? OR state = ? OR city = ?)`
	args := []any{loc.Country, loc.City, loc.State, domain.NationalCity}
	if category != "" && category != "all" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY published_at DESC, id`

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying news: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var articles []domain.NewsArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		articles = append(articles, a)
		if len(articles) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating news: %w", err)
	}
	return articles, nil
}

// Stats summarises stored articles.
func (s *newsStore) Stats(ctx context.Context, since time.Time) (*domain.NewsStats, error) {
	stats := &domain.NewsStats{}

	var lastUpdate sql.NullInt64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN created_at > ? THEN 1 ELSE 0 END), 0),
			MAX(updated_at)
		FROM news_articles
	`, toMillis(since)).Scan(&stats.TotalArticles, &stats.RecentArticles, &lastUpdate)
	if err != nil {
		return nil, fmt.Errorf("counting news: %w", err)
	}
	if lastUpdate.Valid {
		t := fromMillis(lastUpdate.Int64)
		stats.LastRefresh = &t
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT city, state, COUNT(*) AS n, MAX(published_at)
		FROM news_articles
		GROUP BY city, state
		ORDER BY n DESC, city
		LIMIT ?
	`, topLocations)
	if err != nil {
		return nil, fmt.Errorf("grouping news by location: %w", err)
	}
	defer rows.Close()

	stats.Locations = []domain.LocationCount{}
	for rows.Next() {
		var lc domain.LocationCount
		var latest int64
		if err := rows.Scan(&lc.City, &lc.State, &lc.Count, &latest); err != nil {
			return nil, fmt.Errorf("scanning location count: %w", err)
		}
		lc.LatestNews = fromMillis(latest)
		stats.Locations = append(stats.Locations, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location counts: %w", err)
	}
	return stats, nil
}

// PurgeBefore deletes articles created before t.
func (s *newsStore) PurgeBefore(ctx context.Context, t time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM news_articles WHERE created_at < ?`, toMillis(t))
	if err != nil {
		return 0, fmt.Errorf("purging news: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged news: %w", err)
	}
	return int(n), nil
}

func scanArticle(row rowScanner) (domain.NewsArticle, error) {
	var a domain.NewsArticle
	var imageURL, sourceName, content sql.NullString
	var publishedAt, createdAt, updatedAt int64

	if err := row.Scan(&a.ID, &a.URL, &a.City, &a.State, &a.Country, &a.Category, &a.Title,
		&a.Description, &imageURL, &publishedAt, &sourceName, &content, &createdAt, &updatedAt); err != nil {
		return domain.NewsArticle{}, fmt.Errorf("scanning article: %w", err)
	}
	a.ImageURL = imageURL.String
	a.SourceName = sourceName.String
	a.Content = content.String
	a.PublishedAt = fromMillis(publishedAt)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}
