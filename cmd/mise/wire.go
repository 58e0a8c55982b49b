package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/crawl"
	"github.com/fwojciec/mise/fs"
	"github.com/fwojciec/mise/gemini"
	"github.com/fwojciec/mise/goquery"
	"github.com/fwojciec/mise/htmltomarkdown"
	misehttp "github.com/fwojciec/mise/http"
	"github.com/fwojciec/mise/prometheus"
	"github.com/fwojciec/mise/readability"
	"github.com/fwojciec/mise/rod"
	misslog "github.com/fwojciec/mise/slog"
	"github.com/fwojciec/mise/sqlite"
	"github.com/fwojciec/mise/trafilatura"
	"github.com/fwojciec/mise/whatlang"
	"google.golang.org/genai"
)

// tokenizerModel is the model whose local tokenizer bounds AI prompts.
const tokenizerModel = "gemini-2.5-flash"

// buildCrawler wires the extraction ladder. Optional rungs that cannot
// start (no browser, no API key) are skipped with a hint on stderr. The
// returned cleanup func releases the browser and idle connections.
func (m *Main) buildCrawler(ctx context.Context, opts CrawlOptions, deps *Dependencies) (mise.RecipeCrawler, func(), error) {
	log := deps.Logger
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var fetchCache mise.FetchCacheService = deps.FetchCache
	if deps.Metrics != nil {
		fetchCache = prometheus.NewFetchCache(fetchCache, deps.Metrics)
	}
	fetcher := misehttp.NewFetcher(
		misehttp.WithTimeout(opts.FetchTimeout),
		misehttp.WithCache(fetchCache),
		misehttp.WithLimiter(crawl.NewDomainLimiter(opts.PerDomain, opts.RPS)),
	)
	closers = append(closers, func() { _ = fetcher.Close() })

	detector := goquery.NewDetector()
	c := &crawl.Crawler{
		Fetcher: instrumentFetcher(fetcher, "static", deps),
		Strategies: misslog.LogStrategies([]mise.Strategy{
			goquery.NewJSONLD(),
			goquery.NewMicrodata(),
			goquery.NewHeuristic(detector),
		}, log),
		Fingerprint:  goquery.NewFingerprint(),
		Fingerprints: sqlite.NewFingerprintService(m.DB),
		Results:      misslog.NewLoggingResultCache(deps.Results, log),
		Extractors:   []mise.Extractor{trafilatura.NewExtractor(), readability.NewExtractor(nil)},
		Converter:    htmltomarkdown.NewConverter(),
		Logger:       log,
		Timeout:      opts.Timeout,
		AITimeout:    opts.AITimeout,
	}

	if !opts.NoRender {
		renderer, err := rod.NewFetcher(
			rod.WithFetchTimeout(opts.RenderTimeout),
			rod.WithSelectorWait(opts.SelectorWait),
			rod.WithWaitSelectors(detector.ReadySelectors()...),
		)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed; continuing without rendering")
			log.Warn("headless browser unavailable", "err", err)
		} else {
			closers = append(closers, func() { _ = renderer.Close() })
			c.Renderer = instrumentFetcher(renderer, "render", deps)
		}
	}

	if !opts.NoAI {
		ai, err := newAIExtractor(ctx, opts, deps)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if ai != nil {
			c.AI = ai
		}
	}

	var images mise.ImageStore
	if opts.ImageDir != "" {
		store, err := fs.NewImageStore(opts.ImageDir, fs.WithLogger(log))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		images = store
		deps.Images = store
	}
	c.Enricher = goquery.NewEnricher(images, whatlang.NewDetector())

	var crawler mise.RecipeCrawler = misslog.NewLoggingCrawler(c, log)
	if deps.Metrics != nil {
		crawler = prometheus.NewCrawler(crawler, deps.Metrics)
	}
	return crawler, cleanup, nil
}

// newAIExtractor returns nil without an API key.
func newAIExtractor(ctx context.Context, opts CrawlOptions, deps *Dependencies) (mise.AIExtractor, error) {
	if opts.APIKey == "" {
		fmt.Fprintln(deps.Stderr, "Hint: GEMINI_API_KEY is not set; AI fallback disabled. Get a key at https://aistudio.google.com/apikey")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	aiOpts := []gemini.Option{gemini.WithModel(opts.Model)}
	counter, err := gemini.NewTokenCounter(tokenizerModel)
	if err != nil {
		deps.Logger.Warn("prompt token limit disabled", "err", err)
	} else {
		aiOpts = append(aiOpts, gemini.WithTokenLimit(counter, gemini.DefaultMaxPromptTokens))
	}

	var ai mise.AIExtractor = misslog.NewLoggingAIExtractor(gemini.NewAIExtractor(client, aiOpts...), deps.Logger)
	if deps.Metrics != nil {
		ai = prometheus.NewAIExtractor(ai, deps.Metrics)
	}
	return ai, nil
}

func instrumentFetcher(f mise.Fetcher, layer string, deps *Dependencies) mise.Fetcher {
	f = misslog.NewLoggingFetcher(f, layer, deps.Logger)
	if deps.Metrics != nil {
		f = prometheus.NewFetcher(f, layer, deps.Metrics)
	}
	return f
}
