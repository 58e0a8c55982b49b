package slog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/mock"
	misslog "github.com/fwojciec/mise/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("logs the winning source", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.RecipeCrawler{
			CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
				return &mise.Recipe{SourceURL: url, RecipeDraft: mise.RecipeDraft{Title: "Pannkakor", Source: mise.SourceStructured}}, nil
			},
		}

		r, err := misslog.NewLoggingCrawler(inner, debugLogger(&buf)).Crawl(context.Background(), "https://example.com/pannkakor")

		require.NoError(t, err)
		assert.Equal(t, "Pannkakor", r.Title)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "source=structured")
		assert.Contains(t, output, "title=Pannkakor")
	})

	t.Run("logs the attempt trail of a failed crawl", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.RecipeCrawler{
			CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
				return nil, &mise.ExtractionFailed{URL: url, Trail: []mise.Attempt{
					{Stage: "static", Source: mise.SourceHeuristic, Reason: "too few ingredients"},
					{Stage: "ai", Reason: "disabled"},
				}}
			},
		}

		_, err := misslog.NewLoggingCrawler(inner, debugLogger(&buf)).Crawl(context.Background(), "https://example.com/om-oss")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "attempts=2")
		assert.Contains(t, output, "code=unprocessable")
		assert.Contains(t, output, `reason="too few ingredients"`)
	})
}
