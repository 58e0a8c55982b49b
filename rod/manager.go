package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/mise"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of renders before browser recycling.
const DefaultMaxPages = 75

// BrowserManager owns one headless Chrome process and hands out isolated
// incognito contexts on it. Chrome's memory baseline grows with use, so the
// process is replaced after maxPages contexts once none is in flight.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	opened   int // contexts opened on the current browser
	active   int // contexts not yet released
	maxPages int
	closed   bool
}

// NewBrowserManager launches a headless browser. A maxPages of zero or less
// uses DefaultMaxPages. Close must be called when the manager is no longer
// needed.
func NewBrowserManager(maxPages int) (*BrowserManager, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	bm := &BrowserManager{maxPages: maxPages}
	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}
	return bm, nil
}

// Incognito opens an isolated browser context. The returned release func
// disposes the context with every page in it and may be called more than
// once.
func (bm *BrowserManager) Incognito() (*rod.Browser, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, mise.Errorf(mise.EINVALID, "browser manager is closed")
	}
	if bm.opened >= bm.maxPages && bm.active == 0 {
		bm.recycleBrowser()
	}

	b, err := bm.browser.Incognito()
	if err != nil {
		return nil, nil, fmt.Errorf("opening incognito context: %w", err)
	}
	bm.opened++
	bm.active++

	var once sync.Once
	release := func() {
		once.Do(func() {
			_ = b.Close()
			bm.mu.Lock()
			bm.active--
			bm.mu.Unlock()
		})
	}
	return b, release, nil
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.closeBrowser()
}

// launchBrowser starts a browser with flags that keep background tabs from
// being throttled. Must be called with mu held or before bm is shared.
func (bm *BrowserManager) launchBrowser() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("blink-settings", "imagesEnabled=false").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = l
	bm.opened = 0
	return nil
}

// closeBrowser must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycleBrowser swaps in a fresh browser, keeping the old one if the
// launch fails. Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser, oldLauncher := bm.browser, bm.launcher
	if err := bm.launchBrowser(); err != nil {
		bm.browser, bm.launcher = oldBrowser, oldLauncher
		return
	}
	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
}

// LauncherPID returns the process ID of the current browser launcher, or 0
// after Close.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
