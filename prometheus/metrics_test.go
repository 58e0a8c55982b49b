package prometheus_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/mock"
	misprom "github.com/fwojciec/mise/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	m := misprom.NewMetrics()
	inner := &mock.RecipeCrawler{
		CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
			if url == "https://example.com/om-oss" {
				return nil, &mise.ExtractionFailed{URL: url}
			}
			return &mise.Recipe{SourceURL: url, RecipeDraft: mise.RecipeDraft{Source: mise.SourceHeuristic}}, nil
		},
	}
	c := misprom.NewCrawler(inner, m)

	_, err := c.Crawl(context.Background(), "https://example.com/bullar")
	require.NoError(t, err)
	_, err = c.Crawl(context.Background(), "https://example.com/pannkakor")
	require.NoError(t, err)
	_, err = c.Crawl(context.Background(), "https://example.com/om-oss")
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CrawlsTotal.WithLabelValues("success", "heuristic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CrawlsTotal.WithLabelValues(mise.EUNPROCESSABLE, "")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CrawlsInProgress))
	assert.Equal(t, 2, testutil.CollectAndCount(m.CrawlDuration))
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	m := misprom.NewMetrics()
	inner := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			if url == "https://example.com/gone" {
				return "", &mise.FetchError{URL: url, StatusCode: 404}
			}
			return "<html></html>", nil
		},
		CloseFn: func() error { return nil },
	}
	f := misprom.NewFetcher(inner, "static", m)

	_, err := f.Fetch(context.Background(), "https://example.com/pannkakor")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "https://example.com/gone")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("static", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("static", mise.ENOTFOUND)))
	assert.NoError(t, f.Close())
}

func TestFetchCache_FindFetchEntry(t *testing.T) {
	t.Parallel()

	m := misprom.NewMetrics()
	now := time.Now()
	entries := map[string]*mise.FetchCacheEntry{
		"https://example.com/fresh":  {URL: "https://example.com/fresh", StatusCode: 200, FetchedAt: now, Body: []byte("<html></html>")},
		"https://example.com/failed": {URL: "https://example.com/failed", StatusCode: 503, FetchedAt: now},
	}
	inner := &mock.FetchCacheService{
		FindFetchEntryFn: func(_ context.Context, url string) (*mise.FetchCacheEntry, error) {
			if url == "https://example.com/broken" {
				return nil, errors.New("database is locked")
			}
			if e, ok := entries[url]; ok {
				return e, nil
			}
			return nil, mise.Errorf(mise.ENOTFOUND, "not cached")
		},
	}
	c := misprom.NewFetchCache(inner, m)

	for _, url := range []string{
		"https://example.com/fresh",
		"https://example.com/failed",
		"https://example.com/unknown",
		"https://example.com/broken",
	} {
		_, _ = c.FindFetchEntry(context.Background(), url)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCacheTotal.WithLabelValues("negative")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCacheTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchCacheTotal.WithLabelValues("error")))
}

func TestAIExtractor_ExtractRecipe(t *testing.T) {
	t.Parallel()

	m := misprom.NewMetrics()
	replies := []error{nil, &mise.AIParseError{Reason: "no JSON object"}, errors.New("quota exceeded")}
	var call int
	inner := &mock.AIExtractor{
		ExtractRecipeFn: func(context.Context, mise.AIRequest) (*mise.RecipeDraft, error) {
			err := replies[call]
			call++
			if err != nil {
				return nil, err
			}
			return &mise.RecipeDraft{}, nil
		},
	}
	a := misprom.NewAIExtractor(inner, m)

	for range replies {
		_, _ = a.ExtractRecipe(context.Background(), mise.AIRequest{URL: "https://example.com/pannkakor", Text: "..."})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AICallsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AICallsTotal.WithLabelValues("parse_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AICallsTotal.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AICallDuration))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := misprom.NewMetrics()
	m.AICallsTotal.WithLabelValues("ok").Inc()
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `mise_ai_calls_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
