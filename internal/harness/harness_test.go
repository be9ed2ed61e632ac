package harness_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/clockzen/evidence-harness/internal/harness"
)

// pngStub is a minimal payload that sniffs as image/png.
var pngStub = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

// fakeDriver records every call and serves scripted outcomes. It stands in
// for a Playwright page in harness tests.
type fakeDriver struct {
	mu    sync.Mutex
	calls []string

	visible        map[string]bool
	navigateErr    error
	navigateErrFor map[string]error
	networkIdleErr error
	selectorErr    map[string]error
	clickErr       map[string]error
	pressErr       error
	screenshotFn   func(path string, fullPage bool) error

	currentURL string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		visible:        map[string]bool{},
		navigateErrFor: map[string]error{},
		selectorErr:    map[string]error{},
		clickErr:       map[string]error{},
	}
}

func (d *fakeDriver) record(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDriver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDriver) Navigate(url string) error {
	d.record("navigate %s", url)
	if d.navigateErr != nil {
		return d.navigateErr
	}
	if err := d.navigateErrFor[url]; err != nil {
		return err
	}
	d.currentURL = url
	return nil
}

func (d *fakeDriver) WaitForNetworkIdle(timeout time.Duration) error {
	d.record("network-idle")
	return d.networkIdleErr
}

func (d *fakeDriver) WaitForSelector(selector string, timeout time.Duration) error {
	d.record("wait-selector %s", selector)
	return d.selectorErr[selector]
}

func (d *fakeDriver) IsVisible(selector string, timeout time.Duration) (bool, error) {
	d.record("probe %s", selector)
	return d.visible[selector], nil
}

func (d *fakeDriver) Click(selector string) error {
	d.record("click %s", selector)
	return d.clickErr[selector]
}

func (d *fakeDriver) PressKey(combo string) error {
	d.record("press %s", combo)
	return d.pressErr
}

func (d *fakeDriver) EvaluateInPage(js string) error {
	d.record("evaluate %s", js)
	return nil
}

func (d *fakeDriver) Screenshot(path string, fullPage bool) error {
	d.record("screenshot %s full=%v", path, fullPage)
	if d.screenshotFn != nil {
		return d.screenshotFn(path, fullPage)
	}
	return nil
}

func (d *fakeDriver) URL() string {
	return d.currentURL
}

// writePNG makes the fake persist a valid PNG stub for every capture.
func (d *fakeDriver) writePNG() {
	d.screenshotFn = func(path string, fullPage bool) error {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		return os.WriteFile(path, pngStub, 0644)
	}
}

// fakeSession wraps a fakeDriver as a harness.Session.
type fakeSession struct {
	drv    *fakeDriver
	closed bool
}

func (s *fakeSession) Driver() harness.Driver { return s.drv }
func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func sessionFactory(drv *fakeDriver) (harness.SessionFactory, *fakeSession) {
	session := &fakeSession{drv: drv}
	return func(ctx context.Context) (harness.Session, error) {
		return session, nil
	}, session
}
