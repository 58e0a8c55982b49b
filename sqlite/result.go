package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/mise"
)

// Compile-time interface verification.
var _ mise.ResultCache = (*ResultCache)(nil)

// ResultCache implements mise.ResultCache using SQLite. Records are keyed
// by the xxhash of the URL; successes store the recipe as JSON, failures
// store the error text.
type ResultCache struct {
	db *DB
}

// NewResultCache creates a new ResultCache.
func NewResultCache(db *DB) *ResultCache {
	return &ResultCache{db: db}
}

// FindResult retrieves the record for url regardless of expiry.
func (s *ResultCache) FindResult(ctx context.Context, url string) (*mise.CacheRecord, error) {
	rec := mise.CacheRecord{}
	var success int
	var payload, storedAt, expiresAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT url, success, payload, stored_at, expires_at
		FROM crawl_results
		WHERE url_hash = ?
	`, hashURL(url)).Scan(&rec.URL, &success, &payload, &storedAt, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, mise.Errorf(mise.ENOTFOUND, "result not found")
	}
	if err != nil {
		return nil, err
	}

	rec.Success = success == 1
	if rec.Success {
		var r mise.Recipe
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
		rec.Recipe = &r
	} else {
		rec.Error = payload
	}
	if rec.StoredAt, err = parseRFC3339(storedAt, "stored_at"); err != nil {
		return nil, err
	}
	if rec.ExpiresAt, err = parseRFC3339(expiresAt, "expires_at"); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveResult creates or replaces the record for rec.URL.
func (s *ResultCache) SaveResult(ctx context.Context, rec *mise.CacheRecord) error {
	if rec.URL == "" {
		return mise.Errorf(mise.EINVALID, "result url required")
	}

	payload := rec.Error
	success := 0
	if rec.Success {
		if rec.Recipe == nil {
			return mise.Errorf(mise.EINVALID, "successful result requires a recipe")
		}
		data, err := json.Marshal(rec.Recipe)
		if err != nil {
			return err
		}
		payload = string(data)
		success = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_results (url_hash, url, success, payload, stored_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url_hash) DO UPDATE SET
			url = excluded.url,
			success = excluded.success,
			payload = excluded.payload,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at
	`, hashURL(rec.URL), rec.URL, success, payload, formatTime(rec.StoredAt), formatTime(rec.ExpiresAt))
	return err
}

// DeleteExpired removes records whose expiry is at or before now.
func (s *ResultCache) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM crawl_results WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
