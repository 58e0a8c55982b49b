package mise

import (
	"context"
	"time"
)

// DomainFingerprint remembers which extraction approach worked for a domain.
type DomainFingerprint struct {
	Domain      string
	Selectors   []string // ordered, most recently successful first
	SchemaKeys  []string // sorted structured-data keys observed
	Source      Source   // strategy that produced the fingerprint
	LastUpdated time.Time
}

// FingerprintService persists domain fingerprints.
type FingerprintService interface {
	// FindFingerprint returns ENOTFOUND if the domain has no fingerprint.
	FindFingerprint(ctx context.Context, domain string) (*DomainFingerprint, error)

	// UpsertFingerprint creates or replaces the fingerprint for fp.Domain.
	UpsertFingerprint(ctx context.Context, fp *DomainFingerprint) error
}
