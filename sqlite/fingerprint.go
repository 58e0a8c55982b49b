package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/fwojciec/mise"
)

// Compile-time interface verification.
var _ mise.FingerprintService = (*FingerprintService)(nil)

// FingerprintService implements mise.FingerprintService using SQLite.
type FingerprintService struct {
	db *DB
}

// NewFingerprintService creates a new FingerprintService.
func NewFingerprintService(db *DB) *FingerprintService {
	return &FingerprintService{db: db}
}

// FindFingerprint retrieves the fingerprint for domain.
func (s *FingerprintService) FindFingerprint(ctx context.Context, domain string) (*mise.DomainFingerprint, error) {
	var fp mise.DomainFingerprint
	var selectors, schemaKeys, source, lastUpdated string

	err := s.db.QueryRowContext(ctx, `
		SELECT domain, selectors, schema_keys, source, last_updated
		FROM domain_fingerprints
		WHERE domain = ?
	`, domain).Scan(&fp.Domain, &selectors, &schemaKeys, &source, &lastUpdated)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, mise.Errorf(mise.ENOTFOUND, "fingerprint for %q not found", domain)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(selectors), &fp.Selectors); err != nil {
		return nil, fmt.Errorf("failed to decode selectors: %w", err)
	}
	if err := json.Unmarshal([]byte(schemaKeys), &fp.SchemaKeys); err != nil {
		return nil, fmt.Errorf("failed to decode schema_keys: %w", err)
	}
	fp.Source = mise.Source(source)
	if fp.LastUpdated, err = parseRFC3339(lastUpdated, "last_updated"); err != nil {
		return nil, err
	}
	return &fp, nil
}

// UpsertFingerprint creates or replaces the fingerprint for fp.Domain.
func (s *FingerprintService) UpsertFingerprint(ctx context.Context, fp *mise.DomainFingerprint) error {
	if fp.Domain == "" {
		return mise.Errorf(mise.EINVALID, "fingerprint domain required")
	}
	if len(fp.Selectors) == 0 && len(fp.SchemaKeys) == 0 {
		return mise.Errorf(mise.EINVALID, "fingerprint needs selectors or schema keys")
	}

	keys := append([]string(nil), fp.SchemaKeys...)
	sort.Strings(keys)
	selectors, err := json.Marshal(nonNil(fp.Selectors))
	if err != nil {
		return err
	}
	schemaKeys, err := json.Marshal(nonNil(keys))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO domain_fingerprints (domain, selectors, schema_keys, source, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			selectors = excluded.selectors,
			schema_keys = excluded.schema_keys,
			source = excluded.source,
			last_updated = excluded.last_updated
	`, fp.Domain, string(selectors), string(schemaKeys), string(fp.Source), formatTime(fp.LastUpdated))
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
