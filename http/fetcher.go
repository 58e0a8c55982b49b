// Package http provides the static fetch layer: a conditional, rate-limited
// HTTP client with positive and negative caching.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/mise"
)

// Defaults for the static fetch layer.
const (
	DefaultFetchTimeout = 15 * time.Second
	DefaultRetries      = 3
	DefaultBaseDelay    = 500 * time.Millisecond
	DefaultMaxDelay     = 8 * time.Second
	DefaultMaxBodyBytes = 5 << 20
	DefaultUserAgent    = "Mozilla/5.0 (compatible; mise/1.0; +https://github.com/fwojciec/mise)"
)

var errNegativeCached = errors.New("negative cache hit")

// Ensure Fetcher implements mise.Fetcher at compile time.
var _ mise.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML over HTTP. It does not execute JavaScript.
//
// With a cache configured, stored ETag/Last-Modified validators turn
// requests into conditional GETs, 2xx bodies replace the entry, and
// 4xx/5xx responses are remembered for mise.NegativeFetchTTL so repeat
// fetches of a failing URL return immediately.
type Fetcher struct {
	client       *http.Client
	cache        mise.FetchCacheService
	limiter      mise.DomainLimiter
	timeout      time.Duration
	retries      int
	baseDelay    time.Duration
	maxDelay     time.Duration
	maxBodyBytes int64
	userAgent    string
	now          func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout. Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithCache enables conditional requests and negative caching.
func WithCache(cache mise.FetchCacheService) Option {
	return func(f *Fetcher) {
		f.cache = cache
	}
}

// WithLimiter bounds concurrent requests per domain.
func WithLimiter(l mise.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithRetry sets how many times 429/503 responses and network errors are
// retried and the initial backoff delay.
func WithRetry(retries int, baseDelay time.Duration) Option {
	return func(f *Fetcher) {
		f.retries = retries
		f.baseDelay = baseDelay
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodyBytes caps the decoded body size.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// WithClock overrides the time source used for cache timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		retries:      DefaultRetries,
		baseDelay:    DefaultBaseDelay,
		maxDelay:     DefaultMaxDelay,
		maxBodyBytes: DefaultMaxBodyBytes,
		userAgent:    DefaultUserAgent,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: newTransport(),
	}

	return f
}

// response is the outcome of one HTTP round trip.
type response struct {
	status       int
	body         []byte
	etag         string
	lastModified string
	retryAfter   time.Duration
}

// Fetch retrieves the HTML content of rawURL. Errors are *mise.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", &mise.FetchError{URL: rawURL, Err: fmt.Errorf("invalid url: %q", rawURL)}
	}

	cached := f.lookup(ctx, rawURL)
	if cached != nil && cached.Reusable(f.now()) {
		return "", &mise.FetchError{URL: rawURL, StatusCode: cached.StatusCode, Transient: cached.StatusCode == http.StatusTooManyRequests || cached.StatusCode >= 500, Err: errNegativeCached}
	}
	validators := cached
	if validators != nil && (validators.Negative() || len(validators.Body) == 0) {
		validators = nil
	}

	for attempt := 0; ; attempt++ {
		resp, err := f.roundTrip(ctx, u, validators)
		if err != nil {
			if ctx.Err() != nil {
				return "", &mise.FetchError{URL: rawURL, Transient: true, Err: ctx.Err()}
			}
			if errors.Is(err, errBadBody) {
				return "", &mise.FetchError{URL: rawURL, Err: err}
			}
			if attempt < f.retries {
				if err := sleep(ctx, backoff(attempt, f.baseDelay, f.maxDelay, 0)); err != nil {
					return "", &mise.FetchError{URL: rawURL, Transient: true, Err: err}
				}
				continue
			}
			return "", &mise.FetchError{URL: rawURL, Transient: true, Err: err}
		}

		switch {
		case resp.status == http.StatusNotModified:
			if validators == nil {
				// Not modified without validators; nothing cached to serve.
				return "", &mise.FetchError{URL: rawURL, StatusCode: resp.status, Err: errors.New("unexpected 304")}
			}
			validators.FetchedAt = f.now()
			f.store(ctx, validators)
			return string(validators.Body), nil

		case resp.status >= 200 && resp.status < 300:
			f.store(ctx, &mise.FetchCacheEntry{
				URL:          rawURL,
				ETag:         resp.etag,
				LastModified: resp.lastModified,
				StatusCode:   resp.status,
				FetchedAt:    f.now(),
				Body:         resp.body,
			})
			return string(resp.body), nil

		case resp.status == http.StatusTooManyRequests || resp.status == http.StatusServiceUnavailable:
			if attempt < f.retries {
				if err := sleep(ctx, backoff(attempt, f.baseDelay, f.maxDelay, resp.retryAfter)); err != nil {
					return "", &mise.FetchError{URL: rawURL, StatusCode: resp.status, Transient: true, Err: err}
				}
				continue
			}
			f.storeNegative(ctx, rawURL, resp.status)
			return "", &mise.FetchError{URL: rawURL, StatusCode: resp.status, Transient: true}

		default:
			f.storeNegative(ctx, rawURL, resp.status)
			return "", &mise.FetchError{URL: rawURL, StatusCode: resp.status, Transient: resp.status >= 500}
		}
	}
}

// roundTrip performs one GET under the domain limiter.
func (f *Fetcher) roundTrip(ctx context.Context, u *url.URL, validators *mise.FetchCacheEntry) (*response, error) {
	if f.limiter != nil {
		release, err := f.limiter.Acquire(ctx, mise.Domain(u.String()))
		if err != nil {
			return nil, err
		}
		defer release()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	if validators != nil {
		if validators.ETag != "" {
			req.Header.Set("If-None-Match", validators.ETag)
		}
		if validators.LastModified != "" {
			req.Header.Set("If-Modified-Since", validators.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &response{
		status:       resp.StatusCode,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		retryAfter:   parseRetryAfter(resp.Header),
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out.body, err = readBody(resp, f.maxBodyBytes); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *Fetcher) lookup(ctx context.Context, rawURL string) *mise.FetchCacheEntry {
	if f.cache == nil {
		return nil
	}
	entry, err := f.cache.FindFetchEntry(ctx, rawURL)
	if err != nil {
		return nil
	}
	return entry
}

// store writes entry; cache write failures never fail the fetch.
func (f *Fetcher) store(ctx context.Context, entry *mise.FetchCacheEntry) {
	if f.cache == nil {
		return
	}
	_ = f.cache.SaveFetchEntry(context.WithoutCancel(ctx), entry)
}

func (f *Fetcher) storeNegative(ctx context.Context, rawURL string, status int) {
	f.store(ctx, &mise.FetchCacheEntry{URL: rawURL, StatusCode: status, FetchedAt: f.now()})
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
