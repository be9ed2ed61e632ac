// Package driver adapts Playwright to the harness Driver interface. It owns
// the browser connection and hands out one isolated context per scenario.
package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/clockzen/evidence-harness/internal/harness"
	"github.com/clockzen/evidence-harness/pkg/logger"
)

// Options configures how the browser is obtained and how sessions look.
type Options struct {
	// WSEndpoint connects to a remote Playwright server when set; otherwise
	// a local Chromium is launched.
	WSEndpoint     string
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	ConnectTimeout time.Duration
}

// Browser wraps the shared Playwright browser. Contexts created from it are
// isolated from one another (distinct storage state, distinct viewport).
type Browser struct {
	pw       *playwright.Playwright
	instance playwright.Browser
	opts     Options
	log      *logger.Logger
}

const (
	connectAttempts = 3
	connectBackoff  = 4 * time.Second
)

// isRetryableConnectError reports whether a remote connect failure is worth
// retrying, e.g. the browser server is still starting up.
func isRetryableConnectError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "socket hang up") ||
		strings.Contains(msg, "websocket: bad handshake") ||
		strings.Contains(msg, "reset by peer") ||
		strings.Contains(msg, "network is unreachable")
}

// New starts Playwright and obtains a browser per opts.
func New(opts Options, log *logger.Logger) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	var instance playwright.Browser
	if opts.WSEndpoint != "" {
		instance, err = connectRemote(pw, opts, log)
	} else {
		log.Debug("Launching local Chromium (headless=%v)", opts.Headless)
		instance, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(opts.Headless),
		})
	}
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			log.Warn("Failed to stop playwright after browser error: %v", stopErr)
		}
		return nil, err
	}

	return &Browser{pw: pw, instance: instance, opts: opts, log: log}, nil
}

// connectRemote dials a Playwright server with bounded retries for errors
// that typically clear once the server finishes starting.
func connectRemote(pw *playwright.Playwright, opts Options, log *logger.Logger) (playwright.Browser, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var instance playwright.Browser
	var connectErr error
	for attempt := 0; attempt < connectAttempts; attempt++ {
		instance, connectErr = pw.Chromium.Connect(opts.WSEndpoint, playwright.BrowserTypeConnectOptions{
			Timeout: playwright.Float(float64(timeout.Milliseconds())),
		})
		if connectErr == nil {
			log.Debug("Connected to browser server %s on attempt %d", opts.WSEndpoint, attempt+1)
			return instance, nil
		}
		if !isRetryableConnectError(connectErr) || attempt == connectAttempts-1 {
			break
		}
		log.Info("Connection attempt %d/%d to %s failed: %v. Retrying in %v...",
			attempt+1, connectAttempts, opts.WSEndpoint, connectErr, connectBackoff)
		time.Sleep(connectBackoff)
	}
	return nil, fmt.Errorf("failed to connect to browser server %s after %d attempts: %w",
		opts.WSEndpoint, connectAttempts, connectErr)
}

// NewSession creates an isolated browser context and page for one scenario.
func (b *Browser) NewSession(ctx context.Context) (harness.Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	opts := playwright.BrowserNewContextOptions{}
	if b.opts.ViewportWidth > 0 && b.opts.ViewportHeight > 0 {
		opts.Viewport = &playwright.Size{
			Width:  b.opts.ViewportWidth,
			Height: b.opts.ViewportHeight,
		}
	}
	browserCtx, err := b.instance.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		if closeErr := browserCtx.Close(); closeErr != nil {
			b.log.Warn("Failed to close context after page error: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &session{context: browserCtx, page: page}, nil
}

// Close releases the browser connection and stops Playwright.
func (b *Browser) Close() error {
	var closeErr error
	if b.instance != nil && b.instance.IsConnected() {
		if err := b.instance.Close(); err != nil {
			closeErr = fmt.Errorf("failed closing browser: %w", err)
		}
	}
	if err := b.pw.Stop(); err != nil {
		if closeErr == nil {
			closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		} else {
			closeErr = fmt.Errorf("%v; failed to stop playwright: %w", closeErr, err)
		}
	}
	return closeErr
}

// session is the scoped per-scenario resource: one context, one page.
type session struct {
	context playwright.BrowserContext
	page    playwright.Page
}

func (s *session) Driver() harness.Driver {
	return &pageDriver{page: s.page}
}

// Close releases the context. Closing the context also closes its pages.
func (s *session) Close() error {
	if err := s.context.Close(); err != nil {
		return fmt.Errorf("failed to close browser context: %w", err)
	}
	return nil
}
