package mise

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter bounds concurrent and per-second requests to one host.
type DomainLimiter interface {
	// Acquire blocks until a request to domain may start. The returned
	// release func must be called once the request completes.
	Acquire(ctx context.Context, domain string) (release func(), err error)
}
