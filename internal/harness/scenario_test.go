package harness_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockzen/evidence-harness/internal/harness"
	"github.com/clockzen/evidence-harness/pkg/logger"
)

var testOpts = harness.Options{
	BaseURL:      "http://localhost:3000",
	EvidenceRoot: "test-results/evidence",
}

func runScenario(t *testing.T, sc harness.Scenario, drv *fakeDriver) ([]string, error) {
	t.Helper()
	return sc.Run(context.Background(), drv, testOpts, logger.New())
}

func TestScenarioHappyPath(t *testing.T) {
	drv := newFakeDriver()
	sc := harness.Scenario{
		Name:       "settings page renders",
		FeatureTag: "SETTINGS-001",
		Route:      "/settings",
		Steps: []harness.Step{
			harness.Navigate("/settings"),
			harness.WaitFor(harness.NetworkIdle(), 10*time.Second),
			harness.WaitFor(harness.FixedDelay(time.Millisecond), 10*time.Second),
			harness.Capture("evidence", true),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "test-results/evidence/SETTINGS-001-evidence.png", artifacts[0])

	calls := drv.Calls()
	assert.Equal(t, "navigate http://localhost:3000/settings", calls[0])
	assert.Contains(t, calls, "screenshot test-results/evidence/SETTINGS-001-evidence.png full=true")
}

func TestCaptureWithoutReadinessIsDefect(t *testing.T) {
	sc := harness.Scenario{
		Name:       "broken",
		FeatureTag: "BROKEN-001",
		Steps: []harness.Step{
			harness.Navigate("/dashboard"),
			harness.Capture("evidence", false),
		},
	}

	require.ErrorIs(t, sc.Validate(), harness.ErrScenarioDefect)

	drv := newFakeDriver()
	artifacts, err := runScenario(t, sc, drv)
	require.ErrorIs(t, err, harness.ErrScenarioDefect)
	assert.Empty(t, artifacts)
	assert.NotContains(t, drv.Calls(), "navigate http://localhost:3000/dashboard",
		"a defective scenario must be rejected before any step runs")
}

func TestNavigationResetsReadiness(t *testing.T) {
	// A wait on the first page does not carry over to the second.
	sc := harness.Scenario{
		Name:       "stale readiness",
		FeatureTag: "BROKEN-002",
		Steps: []harness.Step{
			harness.Navigate("/"),
			harness.WaitFor(harness.NetworkIdle(), time.Second),
			harness.Navigate("/documents"),
			harness.Capture("evidence", false),
		},
	}
	require.ErrorIs(t, sc.Validate(), harness.ErrScenarioDefect)
}

func TestReadinessTimeoutAbortsBeforeCapture(t *testing.T) {
	drv := newFakeDriver()
	drv.selectorErr[".app-shell"] = fmt.Errorf("timeout 10000ms exceeded")

	sc := harness.Scenario{
		Name:       "command palette opens over documents",
		FeatureTag: "COMMENT-003",
		Steps: []harness.Step{
			harness.Navigate("/documents"),
			harness.WaitFor(harness.SelectorPresent(".app-shell"), 10*time.Second),
			harness.PressKey("Meta+k"),
			harness.Capture("evidence", false),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.ErrorIs(t, err, harness.ErrReadinessTimeout)
	assert.Contains(t, err.Error(), `selector ".app-shell" present`)
	assert.Empty(t, artifacts)
	for _, call := range drv.Calls() {
		assert.NotContains(t, call, "screenshot", "no capture may run after a readiness timeout")
		assert.NotContains(t, call, "press", "no interaction may run after a readiness timeout")
	}
}

func TestNavigationFailureIsFatal(t *testing.T) {
	drv := newFakeDriver()
	drv.navigateErr = fmt.Errorf("net::ERR_CONNECTION_REFUSED")

	sc := harness.Scenario{
		Name:       "dashboard",
		FeatureTag: "DASHBOARD-001",
		Steps: []harness.Step{
			harness.Navigate("/dashboard"),
			harness.WaitFor(harness.NetworkIdle(), time.Second),
			harness.Capture("evidence", true),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.ErrorIs(t, err, harness.ErrNavigationFailure)
	assert.Empty(t, artifacts)
}

func TestGuardAbsenceIsNotFatal(t *testing.T) {
	drv := newFakeDriver() // overlay never visible

	sc := harness.Scenario{
		Name:       "dashboard",
		FeatureTag: "DASHBOARD-001",
		Steps: []harness.Step{
			harness.Navigate("/dashboard"),
			harness.WaitFor(harness.NetworkIdle(), time.Second),
			harness.GuardOptional(harness.Guard{
				Selector: "[data-tour-overlay]",
				Timeout:  2 * time.Second,
				Dismiss:  harness.DismissEscape(),
			}),
			harness.Capture("evidence", true),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	calls := drv.Calls()
	assert.Contains(t, calls, "probe [data-tour-overlay]")
	assert.NotContains(t, calls, "press Escape", "absence must not trigger the dismiss side effect")
}

func TestGuardDismissesWhenPresent(t *testing.T) {
	tests := []struct {
		name     string
		dismiss  harness.Dismiss
		wantCall string
	}{
		{"escape", harness.DismissEscape(), "press Escape"},
		{"click", harness.DismissClick(`[data-testid="modal-close"]`), `click [data-testid="modal-close"]`},
		{"click defaults to probed selector", harness.DismissClick(""), "click .onboarding-modal"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			drv := newFakeDriver()
			drv.visible[".onboarding-modal"] = true

			sc := harness.Scenario{
				Name:       "retirement",
				FeatureTag: "RETIRE-004",
				Steps: []harness.Step{
					harness.Navigate("/retirement"),
					harness.WaitFor(harness.NetworkIdle(), time.Second),
					harness.GuardOptional(harness.Guard{
						Selector: ".onboarding-modal",
						Timeout:  100 * time.Millisecond,
						Dismiss:  tc.dismiss,
					}),
					harness.Capture("evidence", true),
				},
			}

			_, err := runScenario(t, sc, drv)
			require.NoError(t, err)
			assert.Contains(t, drv.Calls(), tc.wantCall)
		})
	}
}

func TestGuardDismissFailurePropagates(t *testing.T) {
	drv := newFakeDriver()
	drv.visible[".onboarding-modal"] = true
	drv.clickErr[`[data-testid="modal-close"]`] = fmt.Errorf("element is not attached to the DOM")

	sc := harness.Scenario{
		Name:       "retirement",
		FeatureTag: "RETIRE-004",
		Steps: []harness.Step{
			harness.Navigate("/retirement"),
			harness.WaitFor(harness.NetworkIdle(), time.Second),
			harness.GuardOptional(harness.Guard{
				Selector: ".onboarding-modal",
				Timeout:  100 * time.Millisecond,
				Dismiss:  harness.DismissClick(`[data-testid="modal-close"]`),
			}),
			harness.Capture("evidence", true),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.ErrorIs(t, err, harness.ErrInteractionFailure)
	assert.Empty(t, artifacts)
}

func TestClickIfVisibleSkipsWhenAbsent(t *testing.T) {
	drv := newFakeDriver()

	sc := harness.Scenario{
		Name:       "rules",
		FeatureTag: "RULES-001",
		Steps: []harness.Step{
			harness.Navigate("/rules"),
			harness.WaitFor(harness.SelectorPresent(".rules-table"), time.Second),
			harness.ClickIfVisible(`[data-testid="rules-export"]`, 2*time.Second),
			harness.Capture("evidence", true),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.NoError(t, err)
	require.Len(t, artifacts, 1, "the capture does not depend solely on the conditional click")
	assert.NotContains(t, drv.Calls(), `click [data-testid="rules-export"]`)
}

func TestClickIfVisibleClicksWhenPresent(t *testing.T) {
	drv := newFakeDriver()
	drv.visible[`[data-testid="rules-export"]`] = true

	sc := harness.Scenario{
		Name:       "rules",
		FeatureTag: "RULES-001",
		Steps: []harness.Step{
			harness.Navigate("/rules"),
			harness.WaitFor(harness.SelectorPresent(".rules-table"), time.Second),
			harness.ClickIfVisible(`[data-testid="rules-export"]`, 2*time.Second),
			harness.Capture("evidence", true),
		},
	}

	_, err := runScenario(t, sc, drv)
	require.NoError(t, err)
	assert.Contains(t, drv.Calls(), `click [data-testid="rules-export"]`)
}

func TestRequiredClickFailureIsFatal(t *testing.T) {
	drv := newFakeDriver()
	drv.clickErr[`[data-testid="preview-open"]`] = fmt.Errorf("no element matches selector")

	sc := harness.Scenario{
		Name:       "document preview dialog",
		FeatureTag: "DOCS-002",
		Steps: []harness.Step{
			harness.Navigate("/documents"),
			harness.WaitFor(harness.SelectorPresent(".app-shell"), time.Second),
			harness.Capture("evidence", true),
			harness.Click(`[data-testid="preview-open"]`),
			harness.WaitFor(harness.SelectorPresent(".preview-dialog"), time.Second),
			harness.Capture("preview-dialog", false),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.ErrorIs(t, err, harness.ErrInteractionFailure)
	// The artifact captured before the failure stays on disk.
	assert.Len(t, artifacts, 1)
}

func TestTwoCapturesProduceDistinctPaths(t *testing.T) {
	drv := newFakeDriver()

	sc := harness.Scenario{
		Name:       "document preview dialog",
		FeatureTag: "DOCS-002",
		Steps: []harness.Step{
			harness.Navigate("/documents"),
			harness.WaitFor(harness.SelectorPresent(".app-shell"), time.Second),
			harness.Capture("evidence", true),
			harness.Click(`[data-testid="preview-open"]`),
			harness.WaitFor(harness.SelectorPresent(".preview-dialog"), time.Second),
			harness.Capture("preview-dialog", false),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "test-results/evidence/DOCS-002-evidence.png", artifacts[0])
	assert.Equal(t, "test-results/evidence/DOCS-002-preview-dialog.png", artifacts[1])
	assert.NotEqual(t, artifacts[0], artifacts[1])
}

func TestDuplicateCaptureSuffixIsDefect(t *testing.T) {
	sc := harness.Scenario{
		Name:       "broken",
		FeatureTag: "BROKEN-003",
		Steps: []harness.Step{
			harness.Navigate("/"),
			harness.WaitFor(harness.NetworkIdle(), time.Second),
			harness.Capture("evidence", true),
			harness.Capture("evidence", false),
		},
	}
	require.ErrorIs(t, sc.Validate(), harness.ErrScenarioDefect)
}

func TestClearLocalStorageEvaluatesInPage(t *testing.T) {
	drv := newFakeDriver()

	sc := harness.Scenario{
		Name:       "command palette opens over documents",
		FeatureTag: "COMMENT-003",
		Steps: []harness.Step{
			harness.Navigate("/"),
			harness.WaitFor(harness.NetworkIdle(), time.Second),
			harness.ClearLocalStorage("clockzen.onboarding"),
			harness.Navigate("/documents"),
			harness.WaitFor(harness.SelectorPresent(".app-shell"), time.Second),
			harness.PressKey("Meta+k"),
			harness.Capture("evidence", false),
		},
	}

	artifacts, err := runScenario(t, sc, drv)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	calls := drv.Calls()
	assert.Contains(t, calls, `evaluate () => localStorage.removeItem("clockzen.onboarding")`)
	assert.Contains(t, calls, "press Meta+k")
}

func TestCancellationAbortsBetweenSteps(t *testing.T) {
	drv := newFakeDriver()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := harness.Scenario{
		Name:       "settings",
		FeatureTag: "SETTINGS-001",
		Steps: []harness.Step{
			harness.Navigate("/settings"),
			harness.WaitFor(harness.NetworkIdle(), time.Second),
			harness.Capture("evidence", true),
		},
	}

	_, err := sc.Run(ctx, drv, testOpts, logger.New())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, drv.Calls())
}

func TestAbsoluteRoutePassesThrough(t *testing.T) {
	drv := newFakeDriver()

	sc := harness.Scenario{
		Name:       "external",
		FeatureTag: "EXT-001",
		Steps: []harness.Step{
			harness.Navigate("https://status.clockzen.dev/"),
			harness.WaitFor(harness.NetworkIdle(), time.Second),
			harness.Capture("evidence", false),
		},
	}

	_, err := runScenario(t, sc, drv)
	require.NoError(t, err)
	assert.Equal(t, "navigate https://status.clockzen.dev/", drv.Calls()[0])
}
