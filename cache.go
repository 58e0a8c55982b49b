package mise

import (
	"context"
	"time"
)

// Cache lifetimes.
const (
	NegativeFetchTTL = time.Hour
	SuccessTTL       = 7 * 24 * time.Hour
	FailureTTL       = 24 * time.Hour
)

// FetchCacheEntry is the last known response for a URL.
type FetchCacheEntry struct {
	URL          string
	ETag         string
	LastModified string
	StatusCode   int
	FetchedAt    time.Time
	// Body is the decompressed response body; nil for negative entries.
	Body []byte
}

// Negative reports whether the entry records a failed response.
func (e *FetchCacheEntry) Negative() bool {
	return e.StatusCode >= 400
}

// Reusable reports whether a negative entry may still short-circuit a fetch.
func (e *FetchCacheEntry) Reusable(now time.Time) bool {
	return e.Negative() && now.Sub(e.FetchedAt) < NegativeFetchTTL
}

// FetchCacheService persists fetch cache entries keyed by URL.
type FetchCacheService interface {
	// FindFetchEntry returns ENOTFOUND if the URL was never fetched.
	FindFetchEntry(ctx context.Context, url string) (*FetchCacheEntry, error)

	// SaveFetchEntry creates or replaces the entry for entry.URL.
	SaveFetchEntry(ctx context.Context, entry *FetchCacheEntry) error

	// DeleteStale removes entries fetched before cutoff and returns how many were removed.
	DeleteStale(ctx context.Context, cutoff time.Time) (int, error)
}

// CacheRecord is the persisted outcome of a crawl.
type CacheRecord struct {
	URL       string
	Success   bool
	Recipe    *Recipe // set when Success
	Error     string  // set when !Success
	StoredAt  time.Time
	ExpiresAt time.Time
}

// NewSuccessRecord returns a record caching r for SuccessTTL.
func NewSuccessRecord(url string, r *Recipe, now time.Time) *CacheRecord {
	return &CacheRecord{URL: url, Success: true, Recipe: r, StoredAt: now, ExpiresAt: now.Add(SuccessTTL)}
}

// NewFailureRecord returns a record caching a failed crawl for FailureTTL.
func NewFailureRecord(url string, reason string, now time.Time) *CacheRecord {
	return &CacheRecord{URL: url, Error: reason, StoredAt: now, ExpiresAt: now.Add(FailureTTL)}
}

// Expired reports whether the record should no longer be served.
func (r *CacheRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// ResultCache persists crawl outcomes keyed by URL hash.
type ResultCache interface {
	// FindResult returns the stored record, expired or not.
	// Returns ENOTFOUND if the URL has no record.
	FindResult(ctx context.Context, url string) (*CacheRecord, error)

	// SaveResult creates or replaces the record for rec.URL.
	SaveResult(ctx context.Context, rec *CacheRecord) error

	// DeleteExpired removes records that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
