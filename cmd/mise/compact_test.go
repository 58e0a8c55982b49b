package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	main "github.com/fwojciec/mise/cmd/mise"
	"github.com/fwojciec/mise/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactCmd_Run(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("evicts expired results and stale fetches", func(t *testing.T) {
		t.Parallel()

		var gotNow, gotCutoff time.Time
		results := &mock.ResultCache{
			DeleteExpiredFn: func(_ context.Context, n time.Time) (int, error) {
				gotNow = n
				return 3, nil
			},
		}
		fetches := &mock.FetchCacheService{
			DeleteStaleFn: func(_ context.Context, cutoff time.Time) (int, error) {
				gotCutoff = cutoff
				return 7, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     &bytes.Buffer{},
			Results:    results,
			FetchCache: fetches,
			Now:        func() time.Time { return now },
		}

		err := (&main.CompactCmd{OlderThan: 48 * time.Hour}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, now, gotNow)
		assert.Equal(t, now.Add(-48*time.Hour), gotCutoff)
		assert.Contains(t, stdout.String(), "Removed 3 expired results and 7 stale fetch cache entries")
	})

	t.Run("stops when result eviction fails", func(t *testing.T) {
		t.Parallel()

		fetchCalled := false
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Results: &mock.ResultCache{
				DeleteExpiredFn: func(context.Context, time.Time) (int, error) {
					return 0, errors.New("database is locked")
				},
			},
			FetchCache: &mock.FetchCacheService{
				DeleteStaleFn: func(context.Context, time.Time) (int, error) {
					fetchCalled = true
					return 0, nil
				},
			},
			Now: func() time.Time { return now },
		}

		err := (&main.CompactCmd{OlderThan: time.Hour}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
		assert.False(t, fetchCalled)
	})
}
