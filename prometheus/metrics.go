// Package prometheus exposes crawl metrics through Prometheus collectors.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/mise"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mise"

// Metrics holds the collectors of one crawl process on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	CrawlsTotal      *prometheus.CounterVec
	CrawlDuration    *prometheus.HistogramVec
	FetchesTotal     *prometheus.CounterVec
	FetchCacheTotal  *prometheus.CounterVec
	AICallsTotal     *prometheus.CounterVec
	AICallDuration   prometheus.Histogram
	CrawlsInProgress prometheus.Gauge
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CrawlsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawls_total",
			Help:      "Crawls by outcome and winning source.",
		}, []string{"outcome", "source"}),
		CrawlDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crawl_duration_seconds",
			Help:      "Wall time of a crawl.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		FetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Page fetches by layer and outcome.",
		}, []string{"layer", "outcome"}),
		FetchCacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_lookups_total",
			Help:      "Fetch cache lookups by result.",
		}, []string{"result"}),
		AICallsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "AI extraction calls by outcome.",
		}, []string{"outcome"}),
		AICallDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_call_duration_seconds",
			Help:      "Latency of AI extraction calls.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 75},
		}),
		CrawlsInProgress: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "crawls_in_progress",
			Help:      "Crawls currently running.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Ensure Crawler implements mise.RecipeCrawler.
var _ mise.RecipeCrawler = (*Crawler)(nil)

// Crawler counts crawl outcomes.
type Crawler struct {
	next    mise.RecipeCrawler
	metrics *Metrics
}

// NewCrawler creates a new Crawler.
func NewCrawler(next mise.RecipeCrawler, m *Metrics) *Crawler {
	return &Crawler{next: next, metrics: m}
}

// Crawl records the outcome, the winning source and the duration.
func (c *Crawler) Crawl(ctx context.Context, url string) (*mise.Recipe, error) {
	c.metrics.CrawlsInProgress.Inc()
	defer c.metrics.CrawlsInProgress.Dec()

	begin := time.Now()
	r, err := c.next.Crawl(ctx, url)
	outcome, source := "success", ""
	if err != nil {
		outcome = mise.ErrorCode(err)
	} else {
		source = string(r.Source)
	}
	c.metrics.CrawlsTotal.WithLabelValues(outcome, source).Inc()
	c.metrics.CrawlDuration.WithLabelValues(outcome).Observe(time.Since(begin).Seconds())
	return r, err
}

// Ensure Fetcher implements mise.Fetcher.
var _ mise.Fetcher = (*Fetcher)(nil)

// Fetcher counts fetches of one layer.
type Fetcher struct {
	next    mise.Fetcher
	layer   string
	metrics *Metrics
}

// NewFetcher creates a new Fetcher.
func NewFetcher(next mise.Fetcher, layer string, m *Metrics) *Fetcher {
	return &Fetcher{next: next, layer: layer, metrics: m}
}

// Fetch records whether the fetch succeeded.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, err := f.next.Fetch(ctx, url)
	outcome := "ok"
	if err != nil {
		outcome = mise.ErrorCode(err)
	}
	f.metrics.FetchesTotal.WithLabelValues(f.layer, outcome).Inc()
	return html, err
}

// Close delegates to the wrapped fetcher.
func (f *Fetcher) Close() error {
	return f.next.Close()
}

// Ensure FetchCache implements mise.FetchCacheService.
var _ mise.FetchCacheService = (*FetchCache)(nil)

// FetchCache counts fetch cache lookups.
type FetchCache struct {
	next    mise.FetchCacheService
	metrics *Metrics
	now     func() time.Time
}

// NewFetchCache creates a new FetchCache.
func NewFetchCache(next mise.FetchCacheService, m *Metrics) *FetchCache {
	return &FetchCache{next: next, metrics: m, now: time.Now}
}

// FindFetchEntry records a hit, a negative hit or a miss.
func (c *FetchCache) FindFetchEntry(ctx context.Context, url string) (*mise.FetchCacheEntry, error) {
	e, err := c.next.FindFetchEntry(ctx, url)
	switch {
	case mise.ErrorCode(err) == mise.ENOTFOUND:
		c.metrics.FetchCacheTotal.WithLabelValues("miss").Inc()
	case err != nil:
		c.metrics.FetchCacheTotal.WithLabelValues("error").Inc()
	case e.Reusable(c.now()):
		c.metrics.FetchCacheTotal.WithLabelValues("negative").Inc()
	default:
		c.metrics.FetchCacheTotal.WithLabelValues("hit").Inc()
	}
	return e, err
}

// SaveFetchEntry delegates to the wrapped service.
func (c *FetchCache) SaveFetchEntry(ctx context.Context, entry *mise.FetchCacheEntry) error {
	return c.next.SaveFetchEntry(ctx, entry)
}

// DeleteStale delegates to the wrapped service.
func (c *FetchCache) DeleteStale(ctx context.Context, cutoff time.Time) (int, error) {
	return c.next.DeleteStale(ctx, cutoff)
}

// Ensure AIExtractor implements mise.AIExtractor.
var _ mise.AIExtractor = (*AIExtractor)(nil)

// AIExtractor counts AI calls and their latency.
type AIExtractor struct {
	next    mise.AIExtractor
	metrics *Metrics
}

// NewAIExtractor creates a new AIExtractor.
func NewAIExtractor(next mise.AIExtractor, m *Metrics) *AIExtractor {
	return &AIExtractor{next: next, metrics: m}
}

// ExtractRecipe records the call outcome: ok, parse_error or error.
func (a *AIExtractor) ExtractRecipe(ctx context.Context, req mise.AIRequest) (*mise.RecipeDraft, error) {
	begin := time.Now()
	d, err := a.next.ExtractRecipe(ctx, req)
	a.metrics.AICallDuration.Observe(time.Since(begin).Seconds())

	var pe *mise.AIParseError
	switch {
	case err == nil:
		a.metrics.AICallsTotal.WithLabelValues("ok").Inc()
	case errors.As(err, &pe):
		a.metrics.AICallsTotal.WithLabelValues("parse_error").Inc()
	default:
		a.metrics.AICallsTotal.WithLabelValues("error").Inc()
	}
	return d, err
}
