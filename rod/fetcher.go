package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/mise"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements mise.Fetcher at compile time.
var _ mise.Fetcher = (*Fetcher)(nil)

// Render budgets.
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultSelectorWait = 2 * time.Second

	// htmlReadTimeout bounds reading the DOM after the render budget expired.
	htmlReadTimeout = 2 * time.Second
)

// Fetcher renders pages in headless Chrome. Every fetch runs in its own
// incognito context with images, media, fonts and analytics beacons
// blocked. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager       *BrowserManager
	fetchTimeout  time.Duration
	selectorWait  time.Duration
	waitSelectors []string
	maxPages      int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the overall render budget. When it runs out the
// DOM rendered so far is returned.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithSelectorWait bounds how long to wait for a wait selector to appear.
func WithSelectorWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.selectorWait = d
	}
}

// WithWaitSelectors sets the selectors whose appearance means the recipe
// has rendered. The first to appear ends the wait.
func WithWaitSelectors(selectors ...string) Option {
	return func(f *Fetcher) {
		f.waitSelectors = selectors
	}
}

// WithMaxPages sets how many renders a browser process serves before it is
// recycled.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless browser. Close must be called when the
// Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout: DefaultFetchTimeout,
		selectorWait: DefaultSelectorWait,
	}
	for _, opt := range opts {
		opt(f)
	}
	manager, err := NewBrowserManager(f.maxPages)
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// Fetch renders the URL and returns its DOM. Failures are *mise.RenderError
// except for cancellation of ctx, which is returned as is.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := f.render(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var me *mise.Error
		if errors.As(err, &me) {
			return "", err
		}
		return "", &mise.RenderError{URL: url, Err: err}
	}
	return html, nil
}

func (f *Fetcher) render(ctx context.Context, url string) (string, error) {
	browser, release, err := f.manager.Incognito()
	if err != nil {
		return "", err
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer func() { _ = page.Close() }()

	router := page.HijackRequests()
	if err := router.Add("*", "", blockHeavy); err != nil {
		return "", fmt.Errorf("installing request filter: %w", err)
	}
	go router.Run()
	defer func() { _ = router.Stop() }()

	budget, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	p := page.Context(budget)
	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating: %w", err)
	}
	if err := p.WaitLoad(); err != nil && budget.Err() == nil {
		return "", fmt.Errorf("waiting for load: %w", err)
	}
	f.waitForRecipe(budget, page)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := page.Context(ctx).Timeout(htmlReadTimeout).HTML()
	if err != nil {
		return "", fmt.Errorf("reading DOM: %w", err)
	}
	return html, nil
}

// waitForRecipe waits, bounded by selectorWait, for the first wait
// selector to match. Running out of time is not an error.
func (f *Fetcher) waitForRecipe(ctx context.Context, page *rod.Page) {
	if len(f.waitSelectors) == 0 || f.selectorWait <= 0 || ctx.Err() != nil {
		return
	}
	wait, cancel := context.WithTimeout(ctx, f.selectorWait)
	defer cancel()

	race := page.Context(wait).Race()
	for _, sel := range f.waitSelectors {
		race = race.Element(sel)
	}
	_, _ = race.Do()
}

// Close shuts the browser down. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

var blockedTypes = map[proto.NetworkResourceType]bool{
	proto.NetworkResourceTypeImage: true,
	proto.NetworkResourceTypeMedia: true,
	proto.NetworkResourceTypeFont:  true,
	proto.NetworkResourceTypePing:  true,
}

var beaconHosts = []string{
	"google-analytics.com",
	"googletagmanager.com",
	"doubleclick.net",
	"facebook.net",
	"hotjar.com",
	"scorecardresearch.com",
	"segment.io",
}

// Blocked reports whether a request of resource type t to host is skipped
// during rendering.
func Blocked(t proto.NetworkResourceType, host string) bool {
	if blockedTypes[t] {
		return true
	}
	host = strings.ToLower(host)
	for _, b := range beaconHosts {
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}

func blockHeavy(h *rod.Hijack) {
	if Blocked(h.Request.Type(), h.Request.URL().Hostname()) {
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	h.ContinueRequest(&proto.FetchContinueRequest{})
}
