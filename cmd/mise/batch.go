package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/crawl"
)

// batchRecord is one line of batch output.
type batchRecord struct {
	URL    string       `json:"url"`
	Recipe *mise.Recipe `json:"recipe,omitempty"`
	Error  string       `json:"error,omitempty"`
	Code   string       `json:"code,omitempty"`
}

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls, err := readURLs(c.File)
	if err != nil {
		return err
	}

	if c.MetricsAddr != "" && deps.Metrics != nil {
		stop, err := serveMetrics(c.MetricsAddr, deps)
		if err != nil {
			return err
		}
		defer stop()
	}

	b := &crawl.Batch{Crawler: deps.Crawler, Concurrency: c.Concurrency}
	results, runErr := b.Run(deps.Ctx, urls, progressReporter(deps))

	enc := json.NewEncoder(deps.Stdout)
	enc.SetEscapeHTML(false)
	failed := 0
	for _, r := range results {
		rec := batchRecord{URL: r.URL, Recipe: r.Recipe}
		if r.Err != nil {
			failed++
			rec.Error = r.Err.Error()
			rec.Code = mise.ErrorCode(r.Err)
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}

	if err := waitImages(deps); err != nil {
		deps.Logger.Warn("image download failed", "err", err)
	}
	fmt.Fprintf(deps.Stderr, "%d recipes, %d failed\n", len(results)-failed, failed)
	return runErr
}

func progressReporter(deps *Dependencies) crawl.ProgressFunc {
	return func(ev crawl.ProgressEvent) {
		switch ev.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "Crawling %d URLs\n", ev.Total)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "[%d/%d] failed %s: %s\n", ev.Completed, ev.Total, crawl.TruncateURL(ev.URL, 60), mise.ErrorCode(ev.Error))
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "[%d/%d] %s\n", ev.Completed, ev.Total, crawl.TruncateURL(ev.URL, 60))
		}
	}
}

// readURLs reads one URL per line from path, or from stdin for "-".
func readURLs(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading URL list: %w", err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		urls = append(urls, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	return urls, nil
}

// serveMetrics exposes /metrics until the returned stop func is called.
func serveMetrics(addr string, deps *Dependencies) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", deps.Metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Warn("metrics server stopped", "err", err)
		}
	}()
	fmt.Fprintf(deps.Stderr, "Serving metrics on http://%s/metrics\n", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
