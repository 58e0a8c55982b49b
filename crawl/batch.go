package crawl

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the number of URLs a batch crawls at once.
const DefaultBatchConcurrency = 4

// ProgressEvent reports progress during a batch crawl.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// BatchResult is the outcome of crawling one URL of a batch.
type BatchResult struct {
	URL    string
	Recipe *mise.Recipe
	Err    error
}

// Batch crawls recipe URLs with bounded concurrency.
type Batch struct {
	Crawler     mise.RecipeCrawler
	Concurrency int
}

// Run crawls each distinct, non-blank URL once and returns the outcomes in
// input order. Duplicates are detected with a Bloom filter. Per-URL
// failures are reported in the results; Run only fails if ctx is done.
func (b *Batch) Run(ctx context.Context, urls []string, progress ProgressFunc) ([]BatchResult, error) {
	seen := bloom.NewFilter(uint(max(len(urls), 1)), 1e-6)
	var queue []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || strings.HasPrefix(u, "#") || seen.Seen(u) {
			continue
		}
		queue = append(queue, u)
	}

	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	total := len(queue)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	type indexed struct {
		position int
		result   BatchResult
	}
	resultCh := make(chan indexed, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	go func() {
		for i, u := range queue {
			g.Go(func() error {
				r, err := b.Crawler.Crawl(gctx, u)
				resultCh <- indexed{position: i, result: BatchResult{URL: u, Recipe: r, Err: err}}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]BatchResult, total)
	for ir := range resultCh {
		n := int(completed.Add(1))
		results[ir.position] = ir.result
		if progress == nil {
			continue
		}
		ev := ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, URL: ir.result.URL}
		if ir.result.Err != nil {
			ev.Type = ProgressFailed
			ev.Error = ir.result.Err
		}
		progress(ev)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
