package mock

import (
	"context"
	"time"

	"github.com/fwojciec/mise"
)

var (
	_ mise.FetchCacheService  = (*FetchCacheService)(nil)
	_ mise.ResultCache        = (*ResultCache)(nil)
	_ mise.FingerprintService = (*FingerprintService)(nil)
)

// FetchCacheService is a mock implementation of mise.FetchCacheService.
type FetchCacheService struct {
	FindFetchEntryFn func(ctx context.Context, url string) (*mise.FetchCacheEntry, error)
	SaveFetchEntryFn func(ctx context.Context, entry *mise.FetchCacheEntry) error
	DeleteStaleFn    func(ctx context.Context, cutoff time.Time) (int, error)
}

func (s *FetchCacheService) FindFetchEntry(ctx context.Context, url string) (*mise.FetchCacheEntry, error) {
	return s.FindFetchEntryFn(ctx, url)
}

func (s *FetchCacheService) SaveFetchEntry(ctx context.Context, entry *mise.FetchCacheEntry) error {
	return s.SaveFetchEntryFn(ctx, entry)
}

func (s *FetchCacheService) DeleteStale(ctx context.Context, cutoff time.Time) (int, error) {
	return s.DeleteStaleFn(ctx, cutoff)
}

// ResultCache is a mock implementation of mise.ResultCache.
type ResultCache struct {
	FindResultFn    func(ctx context.Context, url string) (*mise.CacheRecord, error)
	SaveResultFn    func(ctx context.Context, rec *mise.CacheRecord) error
	DeleteExpiredFn func(ctx context.Context, now time.Time) (int, error)
}

func (c *ResultCache) FindResult(ctx context.Context, url string) (*mise.CacheRecord, error) {
	return c.FindResultFn(ctx, url)
}

func (c *ResultCache) SaveResult(ctx context.Context, rec *mise.CacheRecord) error {
	return c.SaveResultFn(ctx, rec)
}

func (c *ResultCache) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return c.DeleteExpiredFn(ctx, now)
}

// FingerprintService is a mock implementation of mise.FingerprintService.
type FingerprintService struct {
	FindFingerprintFn   func(ctx context.Context, domain string) (*mise.DomainFingerprint, error)
	UpsertFingerprintFn func(ctx context.Context, fp *mise.DomainFingerprint) error
}

func (s *FingerprintService) FindFingerprint(ctx context.Context, domain string) (*mise.DomainFingerprint, error) {
	return s.FindFingerprintFn(ctx, domain)
}

func (s *FingerprintService) UpsertFingerprint(ctx context.Context, fp *mise.DomainFingerprint) error {
	return s.UpsertFingerprintFn(ctx, fp)
}
