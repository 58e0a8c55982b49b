package mock

import (
	"context"

	"github.com/fwojciec/mise"
)

var (
	_ mise.Strategy             = (*Strategy)(nil)
	_ mise.FingerprintExtractor = (*FingerprintExtractor)(nil)
	_ mise.RecipeCrawler        = (*RecipeCrawler)(nil)
)

// Strategy is a mock implementation of mise.Strategy.
type Strategy struct {
	SourceFn  func() mise.Source
	ExtractFn func(ctx context.Context, page *mise.Page) (*mise.RecipeDraft, error)
}

func (s *Strategy) Source() mise.Source {
	return s.SourceFn()
}

func (s *Strategy) Extract(ctx context.Context, page *mise.Page) (*mise.RecipeDraft, error) {
	return s.ExtractFn(ctx, page)
}

// FingerprintExtractor is a mock implementation of mise.FingerprintExtractor.
type FingerprintExtractor struct {
	ExtractWithFingerprintFn func(ctx context.Context, page *mise.Page, fp *mise.DomainFingerprint) (*mise.RecipeDraft, error)
}

func (f *FingerprintExtractor) ExtractWithFingerprint(ctx context.Context, page *mise.Page, fp *mise.DomainFingerprint) (*mise.RecipeDraft, error) {
	return f.ExtractWithFingerprintFn(ctx, page, fp)
}

// RecipeCrawler is a mock implementation of mise.RecipeCrawler.
type RecipeCrawler struct {
	CrawlFn func(ctx context.Context, url string) (*mise.Recipe, error)
}

func (c *RecipeCrawler) Crawl(ctx context.Context, url string) (*mise.Recipe, error) {
	return c.CrawlFn(ctx, url)
}
