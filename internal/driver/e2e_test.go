//go:build e2e
// +build e2e

package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockzen/evidence-harness/internal/driver"
	"github.com/clockzen/evidence-harness/pkg/logger"
)

// TestDriverSmoke exercises the real Playwright adapter end to end against a
// data: URL. Requires browsers installed via `playwright install chromium`.
func TestDriverSmoke(t *testing.T) {
	headless := os.Getenv("HEADLESS") != "false"
	browser, err := driver.New(driver.Options{
		Headless:       headless,
		ViewportWidth:  1280,
		ViewportHeight: 720,
	}, logger.New())
	require.NoError(t, err, "failed to start browser")
	defer browser.Close()

	session, err := browser.NewSession(context.Background())
	require.NoError(t, err)
	defer session.Close()

	drv := session.Driver()
	require.NoError(t, drv.Navigate(`data:text/html,<main class="app-shell"><h1>ok</h1></main>`))
	require.NoError(t, drv.WaitForSelector(".app-shell", 5*time.Second))

	visible, err := drv.IsVisible(".does-not-exist", 500*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, visible, "a probe timeout must be a normal not-present outcome")

	path := filepath.Join(t.TempDir(), "smoke.png")
	require.NoError(t, drv.Screenshot(path, true))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
