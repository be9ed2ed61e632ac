package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// pageDriver implements harness.Driver on top of a Playwright page.
type pageDriver struct {
	page playwright.Page
}

func (d *pageDriver) Navigate(url string) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (d *pageDriver) WaitForNetworkIdle(timeout time.Duration) error {
	return d.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (d *pageDriver) WaitForSelector(selector string, timeout time.Duration) error {
	return d.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

// IsVisible waits up to timeout for a visible match. A timeout is the normal
// "not present" outcome, not an error.
func (d *pageDriver) IsVisible(selector string, timeout time.Duration) (bool, error) {
	err := d.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	return false, err
}

func (d *pageDriver) Click(selector string) error {
	return d.page.Locator(selector).Click()
}

func (d *pageDriver) PressKey(combo string) error {
	return d.page.Keyboard().Press(combo)
}

func (d *pageDriver) EvaluateInPage(js string) error {
	_, err := d.page.Evaluate(js)
	return err
}

func (d *pageDriver) Screenshot(path string, fullPage bool) error {
	_, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
		Type:     playwright.ScreenshotTypePng,
	})
	return err
}

func (d *pageDriver) URL() string {
	return d.page.URL()
}
