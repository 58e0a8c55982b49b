package crawl_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/crawl"
	"github.com/fwojciec/mise/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_Run(t *testing.T) {
	t.Parallel()

	t.Run("crawls each distinct URL once and keeps input order", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		calls := map[string]int{}
		b := &crawl.Batch{
			Crawler: &mock.RecipeCrawler{CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
				mu.Lock()
				calls[url]++
				mu.Unlock()
				return &mise.Recipe{SourceURL: url}, nil
			}},
			Concurrency: 2,
		}

		results, err := b.Run(context.Background(), []string{
			"https://example.com/a",
			"",
			"# comment",
			"https://example.com/b",
			"https://www.example.com/a#recipe",
			"https://example.com/c",
		}, nil)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "https://example.com/a", results[0].URL)
		assert.Equal(t, "https://example.com/b", results[1].URL)
		assert.Equal(t, "https://example.com/c", results[2].URL)
		assert.Equal(t, map[string]int{
			"https://example.com/a": 1,
			"https://example.com/b": 1,
			"https://example.com/c": 1,
		}, calls)
	})

	t.Run("reports failures per URL without aborting the batch", func(t *testing.T) {
		t.Parallel()

		b := &crawl.Batch{Crawler: &mock.RecipeCrawler{CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
			if url == "https://example.com/bad" {
				return nil, &mise.ExtractionFailed{URL: url}
			}
			return &mise.Recipe{SourceURL: url}, nil
		}}}

		results, err := b.Run(context.Background(), []string{"https://example.com/bad", "https://example.com/good"}, nil)

		require.NoError(t, err)
		var ef *mise.ExtractionFailed
		assert.True(t, errors.As(results[0].Err, &ef))
		assert.NoError(t, results[1].Err)
		assert.NotNil(t, results[1].Recipe)
	})

	t.Run("never exceeds the concurrency limit", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		release := make(chan struct{})
		b := &crawl.Batch{
			Concurrency: 2,
			Crawler: &mock.RecipeCrawler{CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				<-release
				inFlight.Add(-1)
				return &mise.Recipe{}, nil
			}},
		}

		go func() {
			for range 6 {
				release <- struct{}{}
			}
		}()
		urls := []string{"https://a.com/1", "https://a.com/2", "https://a.com/3", "https://a.com/4", "https://a.com/5", "https://a.com/6"}
		results, err := b.Run(context.Background(), urls, nil)

		require.NoError(t, err)
		assert.Len(t, results, 6)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("emits progress events", func(t *testing.T) {
		t.Parallel()

		b := &crawl.Batch{Crawler: &mock.RecipeCrawler{CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
			if url == "https://example.com/2" {
				return nil, errors.New("boom")
			}
			return &mise.Recipe{}, nil
		}}}

		var mu sync.Mutex
		var events []crawl.ProgressEvent
		_, err := b.Run(context.Background(), []string{"https://example.com/1", "https://example.com/2"}, func(e crawl.ProgressEvent) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		})

		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 2, events[0].Total)
		assert.Equal(t, crawl.ProgressFinished, events[3].Type)

		var failed int
		for _, e := range events[1:3] {
			if e.Type == crawl.ProgressFailed {
				failed++
				assert.Equal(t, "https://example.com/2", e.URL)
			}
		}
		assert.Equal(t, 1, failed)
	})

	t.Run("returns the context error when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		b := &crawl.Batch{Crawler: &mock.RecipeCrawler{CrawlFn: func(ctx context.Context, url string) (*mise.Recipe, error) {
			return nil, ctx.Err()
		}}}

		_, err := b.Run(ctx, []string{"https://example.com/1"}, nil)

		require.ErrorIs(t, err, context.Canceled)
	})
}
