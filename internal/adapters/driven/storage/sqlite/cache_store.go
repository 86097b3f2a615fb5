package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/logger"
)

// cacheStore implements driven.CacheStore on the cache_entries table.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// Get decodes a live entry into dst. Expired rows are ignored and left for Purge.
func (c *cacheStore) Get(ctx context.Context, key string, dst any) bool {
	var value []byte
	err := c.store.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ? AND expires_at > ?`,
		key, toMillis(c.store.now()),
	).Scan(&value)
	if err != nil {
		return false
	}
	if err := msgpack.Unmarshal(value, dst); err != nil {
		logger.Warn("cache: discarding undecodable entry %s: %v", key, err)
		return false
	}
	return true
}

// Put stores value under key until now+ttl.
func (c *cacheStore) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	now := c.store.now()
	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`, key, data, toMillis(now.Add(ttl)), toMillis(now))
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (c *cacheStore) Delete(ctx context.Context, key string) error {
	if _, err := c.store.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

// Purge removes every expired entry.
func (c *cacheStore) Purge(ctx context.Context) (int, error) {
	res, err := c.store.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at <= ?`, toMillis(c.store.now()))
	if err != nil {
		return 0, fmt.Errorf("purging cache entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged cache entries: %w", err)
	}
	return int(n), nil
}
