package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/mise"
)

// Compile-time interface verification.
var _ mise.FetchCacheService = (*FetchCacheService)(nil)

// FetchCacheService implements mise.FetchCacheService using SQLite.
// Bodies are brotli-compressed at rest.
type FetchCacheService struct {
	db *DB
}

// NewFetchCacheService creates a new FetchCacheService.
func NewFetchCacheService(db *DB) *FetchCacheService {
	return &FetchCacheService{db: db}
}

// FindFetchEntry retrieves the cache entry for url.
func (s *FetchCacheService) FindFetchEntry(ctx context.Context, url string) (*mise.FetchCacheEntry, error) {
	var entry mise.FetchCacheEntry
	var fetchedAt string
	var body []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT url, etag, last_modified, status, fetched_at, body
		FROM fetch_cache
		WHERE url = ?
	`, url).Scan(&entry.URL, &entry.ETag, &entry.LastModified, &entry.StatusCode, &fetchedAt, &body)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, mise.Errorf(mise.ENOTFOUND, "fetch cache entry not found")
	}
	if err != nil {
		return nil, err
	}

	if entry.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}
	if entry.Body, err = decompress(body); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveFetchEntry creates or replaces the entry for entry.URL in one statement.
func (s *FetchCacheService) SaveFetchEntry(ctx context.Context, entry *mise.FetchCacheEntry) error {
	if entry.URL == "" {
		return mise.Errorf(mise.EINVALID, "fetch cache entry url required")
	}
	body, err := compress(entry.Body)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fetch_cache (url, etag, last_modified, status, fetched_at, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			status = excluded.status,
			fetched_at = excluded.fetched_at,
			body = excluded.body
	`, entry.URL, entry.ETag, entry.LastModified, entry.StatusCode, formatTime(entry.FetchedAt), body)
	return err
}

// DeleteStale removes entries fetched before cutoff.
func (s *FetchCacheService) DeleteStale(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fetch_cache WHERE fetched_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
