package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mise"
)

// Ensure LoggingResultCache implements mise.ResultCache.
var _ mise.ResultCache = (*LoggingResultCache)(nil)

// LoggingResultCache wraps a ResultCache with debug logging.
type LoggingResultCache struct {
	next   mise.ResultCache
	logger *slog.Logger
	now    func() time.Time
}

// NewLoggingResultCache creates a new LoggingResultCache.
func NewLoggingResultCache(next mise.ResultCache, logger *slog.Logger) *LoggingResultCache {
	return &LoggingResultCache{next: next, logger: logger, now: time.Now}
}

// FindResult logs whether the lookup was a hit, a miss or an expired record.
func (c *LoggingResultCache) FindResult(ctx context.Context, url string) (rec *mise.CacheRecord, err error) {
	defer func() {
		outcome, logErr := "hit", err
		switch {
		case mise.ErrorCode(err) == mise.ENOTFOUND:
			outcome, logErr = "miss", nil
		case err != nil:
			outcome = "error"
		case rec.Expired(c.now()):
			outcome = "expired"
		}
		c.logger.Debug("result cache lookup", "url", url, "outcome", outcome, "err", logErr)
	}()
	return c.next.FindResult(ctx, url)
}

// SaveResult logs the stored outcome and its expiry.
func (c *LoggingResultCache) SaveResult(ctx context.Context, rec *mise.CacheRecord) (err error) {
	defer func() {
		c.logger.Debug("result cache save",
			"url", rec.URL,
			"success", rec.Success,
			"expires", rec.ExpiresAt,
			"err", err,
		)
	}()
	return c.next.SaveResult(ctx, rec)
}

// DeleteExpired logs how many records were removed.
func (c *LoggingResultCache) DeleteExpired(ctx context.Context, now time.Time) (n int, err error) {
	defer func() {
		c.logger.Info("result cache compaction", "removed", n, "err", err)
	}()
	return c.next.DeleteExpired(ctx, now)
}
