package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Crawler    mise.RecipeCrawler
	Images     Waiter
	Results    mise.ResultCache
	FetchCache mise.FetchCacheService
	Metrics    *prometheus.Metrics
	Now        func() time.Time
}

// Waiter is implemented by services that finish work in the background.
type Waiter interface {
	Wait() error
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every fetch, strategy and AI call to stderr"`

	Crawl   CrawlCmd   `cmd:"" help:"Extract the recipe from one page"`
	Batch   BatchCmd   `cmd:"" help:"Extract recipes from a file of URLs, one JSON record per line"`
	Parse   ParseCmd   `cmd:"" help:"Parse ingredient lines and show how they are read"`
	Compact CompactCmd `cmd:"" help:"Remove expired results and stale fetch cache entries"`
}

// CrawlOptions configures the extraction pipeline.
type CrawlOptions struct {
	NoRender      bool          `name:"no-render" help:"Skip the headless browser fallback"`
	NoAI          bool          `name:"no-ai" help:"Skip the AI fallback"`
	APIKey        string        `name:"api-key" env:"GEMINI_API_KEY" help:"Gemini API key for the AI fallback"`
	Model         string        `env:"MISE_MODEL" default:"gemini-2.5-flash" help:"Gemini model"`
	ImageDir      string        `name:"image-dir" env:"MISE_IMAGE_DIR" help:"Download recipe images into this directory"`
	Timeout       time.Duration `default:"3m" help:"Deadline for one recipe"`
	FetchTimeout  time.Duration `name:"fetch-timeout" default:"15s" help:"Static fetch timeout"`
	RenderTimeout time.Duration `name:"render-timeout" default:"10s" help:"Headless render budget"`
	SelectorWait  time.Duration `name:"selector-wait" default:"2s" help:"How long a render waits for recipe markup"`
	AITimeout     time.Duration `name:"ai-timeout" default:"75s" help:"AI call timeout"`
	PerDomain     int           `name:"per-domain" default:"2" help:"Concurrent requests per domain"`
	RPS           float64       `name:"rps" default:"1" help:"Requests per second per domain (0 disables pacing)"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL     string       `arg:"" help:"Recipe page URL"`
	Options CrawlOptions `embed:""`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string       `arg:"" help:"File with one URL per line, or - for stdin"`
	Concurrency int          `short:"c" default:"4" help:"Recipes crawled at once"`
	MetricsAddr string       `name:"metrics-addr" help:"Serve Prometheus metrics on this address while running"`
	Options     CrawlOptions `embed:""`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	Lines []string `arg:"" help:"Ingredient lines"`
	JSON  bool     `help:"Print the parsed lines as JSON"`
}

// CompactCmd is the "compact" subcommand.
type CompactCmd struct {
	OlderThan time.Duration `name:"older-than" default:"720h" help:"Drop fetch cache entries older than this"`
}
