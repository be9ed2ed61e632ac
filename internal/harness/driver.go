package harness

import "time"

// Driver is the browser surface a scenario drives. The production
// implementation wraps a Playwright page (internal/driver); tests substitute
// an in-memory fake.
type Driver interface {
	// Navigate loads a URL and waits for the load event.
	Navigate(url string) error
	// WaitForNetworkIdle blocks until no network activity has been observed
	// for a quiet window, or the timeout elapses.
	WaitForNetworkIdle(timeout time.Duration) error
	// WaitForSelector blocks until an element matching selector is visible,
	// or the timeout elapses.
	WaitForSelector(selector string, timeout time.Duration) error
	// IsVisible probes for a visible element within timeout. A timeout is a
	// normal "not present" outcome, reported as (false, nil).
	IsVisible(selector string, timeout time.Duration) (bool, error)
	// Click clicks the first element matching selector.
	Click(selector string) error
	// PressKey injects a key combo such as "Escape" or "Meta+k".
	PressKey(combo string) error
	// EvaluateInPage runs a JavaScript function in the page.
	EvaluateInPage(js string) error
	// Screenshot persists a PNG of the current page state to path.
	Screenshot(path string, fullPage bool) error
	// URL reports the page's current URL.
	URL() string
}

// Session is a per-scenario isolated browser resource: its own storage state
// and viewport. It is acquired at scenario start and must be released at
// scenario end regardless of outcome.
type Session interface {
	Driver() Driver
	Close() error
}
