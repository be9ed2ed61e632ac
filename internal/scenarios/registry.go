// Package scenarios defines the evidence-capture flows for Clockzen
// features. Routes, test IDs, and class names used here are a contract with
// the application; renaming any of them breaks the harness.
package scenarios

import (
	"fmt"
	"time"

	"github.com/clockzen/evidence-harness/config"
	"github.com/clockzen/evidence-harness/internal/harness"
)

// appShell is the root selector that signals the client application has
// mounted.
const appShell = ".app-shell"

// All returns every registered scenario, probe and readiness bounds taken
// from configuration.
func All() []harness.Scenario {
	readiness := config.ReadinessTimeout()
	probe := config.ProbeTimeout()
	settle := config.SettleDelay()

	return []harness.Scenario{
		{
			Name:       "settings page renders",
			FeatureTag: "SETTINGS-001",
			Route:      "/settings",
			Steps: []harness.Step{
				harness.Navigate("/settings"),
				harness.WaitFor(harness.NetworkIdle(), readiness),
				// The settings panels animate in with no terminal signal;
				// a fixed settle delay is the only usable readiness here.
				harness.WaitFor(harness.FixedDelay(2*time.Second), readiness),
				harness.Capture("evidence", true),
			},
		},
		{
			Name:       "command palette opens over documents",
			FeatureTag: "COMMENT-003",
			Route:      "/documents",
			Steps: []harness.Step{
				harness.Navigate("/"),
				harness.WaitFor(harness.NetworkIdle(), readiness),
				harness.ClearLocalStorage("clockzen.onboarding"),
				harness.Navigate("/documents"),
				harness.WaitFor(harness.SelectorPresent(appShell), 10*time.Second),
				harness.PressKey("Meta+k"),
				harness.Capture("evidence", false),
			},
		},
		{
			Name:       "dashboard renders past the welcome tour",
			FeatureTag: "DASHBOARD-001",
			Route:      "/dashboard",
			Steps: []harness.Step{
				harness.Navigate("/dashboard"),
				harness.WaitFor(harness.NetworkIdle(), readiness),
				harness.GuardOptional(harness.Guard{
					Selector: "[data-tour-overlay]",
					Timeout:  probe,
					Dismiss:  harness.DismissEscape(),
					Settle:   settle,
				}),
				harness.Capture("evidence", true),
			},
		},
		{
			Name:       "document preview dialog",
			FeatureTag: "DOCS-002",
			Route:      "/documents",
			Steps: []harness.Step{
				harness.Navigate("/documents"),
				harness.WaitFor(harness.SelectorPresent(appShell), readiness),
				harness.Capture("evidence", true),
				harness.Click(`[data-testid="preview-open"]`),
				harness.WaitFor(harness.SelectorPresent(".preview-dialog"), readiness),
				harness.Capture("preview-dialog", false),
			},
		},
		{
			Name:       "rules table with optional export control",
			FeatureTag: "RULES-001",
			Route:      "/rules",
			Steps: []harness.Step{
				harness.Navigate("/rules"),
				harness.WaitFor(harness.SelectorPresent(".rules-table"), readiness),
				// Export is feature-flagged; skip it silently where absent.
				harness.ClickIfVisible(`[data-testid="rules-export"]`, probe),
				harness.Capture("evidence", true),
			},
		},
		{
			Name:       "retirement projection chart",
			FeatureTag: "RETIRE-004",
			Route:      "/retirement",
			Steps: []harness.Step{
				harness.Navigate("/retirement"),
				harness.WaitFor(harness.NetworkIdle(), readiness),
				harness.GuardOptional(harness.Guard{
					Selector: ".onboarding-modal",
					Timeout:  probe,
					Dismiss:  harness.DismissClick(`[data-testid="modal-close"]`),
					Settle:   settle,
				}),
				harness.Click(`[data-testid="projection-tab"]`),
				harness.WaitFor(harness.SelectorPresent(".projection-chart"), readiness),
				harness.Capture("evidence", true),
			},
		},
		{
			Name:       "command palette on dashboard",
			FeatureTag: "PALETTE-002",
			Route:      "/dashboard",
			Steps: []harness.Step{
				harness.Navigate("/dashboard"),
				harness.WaitFor(harness.SelectorPresent(appShell), readiness),
				harness.PressKey("Meta+k"),
				harness.WaitFor(harness.SelectorPresent(".command-palette"), readiness),
				harness.Capture("evidence", false),
			},
		},
		{
			Name:       "spending analysis chart",
			FeatureTag: "ANALYSIS-001",
			Route:      "/analysis",
			Steps: []harness.Step{
				harness.Navigate("/analysis"),
				harness.WaitFor(harness.NetworkIdle(), readiness),
				harness.WaitFor(harness.SelectorPresent(".spending-chart"), 10*time.Second),
				harness.Capture("evidence", true),
			},
		},
	}
}

// ByTags filters the registry down to the given feature tags. Unknown tags
// are an error so typos surface instead of silently running nothing.
func ByTags(tags []string) ([]harness.Scenario, error) {
	if len(tags) == 0 {
		return All(), nil
	}
	byTag := make(map[string]harness.Scenario)
	for _, sc := range All() {
		byTag[sc.FeatureTag] = sc
	}
	var selected []harness.Scenario
	for _, tag := range tags {
		sc, ok := byTag[tag]
		if !ok {
			return nil, fmt.Errorf("unknown scenario tag %q", tag)
		}
		selected = append(selected, sc)
	}
	return selected, nil
}
