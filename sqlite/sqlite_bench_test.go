package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkFetchCacheSave compares cache writes, including brotli
// compression, between WAL and rollback journal modes.
func BenchmarkFetchCacheSave(b *testing.B) {
	b.Run("rollback_journal", func(b *testing.B) {
		benchmarkFetchCacheSave(b, "DELETE")
	})

	b.Run("wal_mode", func(b *testing.B) {
		benchmarkFetchCacheSave(b, "WAL")
	})
}

func benchmarkFetchCacheSave(b *testing.B, journalMode string) {
	b.Helper()

	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	_, err := db.ExecContext(ctx, "PRAGMA journal_mode = "+journalMode)
	require.NoError(b, err)

	svc := sqlite.NewFetchCacheService(db)
	body := []byte("<html><body>" + strings.Repeat("<li>2 dl mjölk</li>", 2000) + "</body></html>")
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		entry := &mise.FetchCacheEntry{
			URL:        fmt.Sprintf("https://example.com/recept/%d", i),
			StatusCode: 200,
			FetchedAt:  now,
			Body:       body,
		}
		if err := svc.SaveFetchEntry(ctx, entry); err != nil {
			b.Fatal(err)
		}
	}
}
