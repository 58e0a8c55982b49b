package mock

import (
	"context"

	"github.com/fwojciec/mise"
)

var (
	_ mise.Enricher         = (*Enricher)(nil)
	_ mise.ImageStore       = (*ImageStore)(nil)
	_ mise.LanguageDetector = (*LanguageDetector)(nil)
	_ mise.DomainLimiter    = (*DomainLimiter)(nil)
)

// Enricher is a mock implementation of mise.Enricher.
type Enricher struct {
	EnrichFn func(ctx context.Context, draft *mise.RecipeDraft, page *mise.Page) error
}

func (e *Enricher) Enrich(ctx context.Context, draft *mise.RecipeDraft, page *mise.Page) error {
	return e.EnrichFn(ctx, draft, page)
}

// ImageStore is a mock implementation of mise.ImageStore.
type ImageStore struct {
	ScheduleFn func(ctx context.Context, imageURL string) (string, error)
}

func (s *ImageStore) Schedule(ctx context.Context, imageURL string) (string, error) {
	return s.ScheduleFn(ctx, imageURL)
}

// LanguageDetector is a mock implementation of mise.LanguageDetector.
type LanguageDetector struct {
	DetectLanguageFn func(text string) string
}

func (d *LanguageDetector) DetectLanguage(text string) string {
	return d.DetectLanguageFn(text)
}

// DomainLimiter is a mock implementation of mise.DomainLimiter.
type DomainLimiter struct {
	AcquireFn func(ctx context.Context, domain string) (func(), error)
}

func (l *DomainLimiter) Acquire(ctx context.Context, domain string) (func(), error) {
	return l.AcquireFn(ctx, domain)
}
