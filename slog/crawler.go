package slog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/mise"
)

// Ensure LoggingCrawler implements mise.RecipeCrawler.
var _ mise.RecipeCrawler = (*LoggingCrawler)(nil)

// LoggingCrawler wraps a RecipeCrawler with one record per crawl.
type LoggingCrawler struct {
	next   mise.RecipeCrawler
	logger *slog.Logger
}

// NewLoggingCrawler creates a new LoggingCrawler.
func NewLoggingCrawler(next mise.RecipeCrawler, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

// Crawl logs the winning source, or the attempt trail when every step failed.
func (c *LoggingCrawler) Crawl(ctx context.Context, url string) (r *mise.Recipe, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if r != nil {
			attrs = append(attrs,
				"source", r.Source,
				"title", r.Title,
				"ingredients", len(r.Ingredients),
			)
		}
		var xe *mise.ExtractionFailed
		if errors.As(err, &xe) {
			for _, a := range xe.Trail {
				c.logger.Debug("crawl attempt", "url", url, "stage", a.Stage, "source", a.Source, "reason", a.Reason)
			}
			attrs = append(attrs, "attempts", len(xe.Trail))
		}
		if err != nil {
			attrs = append(attrs, "code", mise.ErrorCode(err), "err", err)
			c.logger.Warn("crawl", attrs...)
			return
		}
		c.logger.Info("crawl", attrs...)
	}(time.Now())
	return c.next.Crawl(ctx, url)
}
