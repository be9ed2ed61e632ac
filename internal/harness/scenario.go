package harness

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/clockzen/evidence-harness/pkg/evidence"
	"github.com/clockzen/evidence-harness/pkg/logger"
)

// stepKind classifies steps for validation; execution itself runs the step's
// closure.
type stepKind int

const (
	stepNavigate stepKind = iota
	stepWait
	stepGuard
	stepInteract
	stepCapture
)

// Step is one entry in a scenario's ordered sequence. Steps execute strictly
// sequentially; each depends on the DOM state left by the previous one.
type Step struct {
	kind   stepKind
	desc   string
	suffix string // capture steps only
	run    func(x *execution) error
}

// Scenario is one end-to-end evidence-capture flow for a single feature.
// Scenarios are defined statically, never mutated at run time, and are
// independent of one another.
type Scenario struct {
	Name       string
	FeatureTag string
	Route      string
	Steps      []Step
}

// Options carries the per-run parameters a scenario executes against.
type Options struct {
	BaseURL      string
	EvidenceRoot string
}

// execution is the mutable state threaded through one scenario run.
type execution struct {
	drv       Driver
	opts      Options
	log       *logger.Logger
	tag       string
	ready     bool // a readiness wait has resolved since the last navigation
	artifacts []string
}

func (x *execution) artifactPath(suffix string) string {
	return evidence.ArtifactPath(x.opts.EvidenceRoot, x.tag, suffix)
}

// resolveURL joins a scenario route against the configured base URL.
// Absolute URLs pass through unchanged.
func resolveURL(baseURL, route string) (string, error) {
	if strings.Contains(route, "://") {
		return route, nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	ref, err := url.Parse(route)
	if err != nil {
		return "", fmt.Errorf("invalid route %q: %w", route, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Navigate loads a route of the application under test. It resets the
// readiness state: a capture is not allowed again until a wait resolves.
func Navigate(route string) Step {
	return Step{
		kind: stepNavigate,
		desc: fmt.Sprintf("navigate %s", route),
		run: func(x *execution) error {
			target, err := resolveURL(x.opts.BaseURL, route)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrNavigationFailure, err)
			}
			if err := x.drv.Navigate(target); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrNavigationFailure, target, err)
			}
			x.ready = false
			return nil
		},
	}
}

// WaitFor blocks until the readiness signal is satisfied or timeout elapses.
func WaitFor(r Readiness, timeout time.Duration) Step {
	return Step{
		kind: stepWait,
		desc: fmt.Sprintf("wait for %s", r),
		run: func(x *execution) error {
			if r.Kind == KindFixedDelay {
				x.log.Debug("[%s] settling on fixed delay %v, last-resort readiness", x.tag, r.Delay)
			}
			if err := awaitReadiness(x.drv, r, timeout); err != nil {
				return err
			}
			x.ready = true
			return nil
		},
	}
}

// GuardOptional probes for a transient overlay and dismisses it if present.
// Absence has no effect on the scenario.
func GuardOptional(g Guard) Step {
	return Step{
		kind: stepGuard,
		desc: fmt.Sprintf("guard optional %q", g.Selector),
		run: func(x *execution) error {
			dismissed, err := g.apply(x.drv)
			if err != nil {
				return err
			}
			if dismissed {
				x.log.Debug("[%s] dismissed transient overlay %q", x.tag, g.Selector)
			} else {
				x.log.Debug("[%s] overlay %q not present, continuing", x.tag, g.Selector)
			}
			return nil
		},
	}
}

// Interact performs a feature-specific action through the driver. A failure
// is fatal to the scenario.
func Interact(desc string, fn func(drv Driver) error) Step {
	return Step{
		kind: stepInteract,
		desc: desc,
		run: func(x *execution) error {
			if err := fn(x.drv); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInteractionFailure, desc, err)
			}
			return nil
		},
	}
}

// Click clicks a required control. The target must be actionable.
func Click(selector string) Step {
	return Interact(fmt.Sprintf("click %q", selector), func(drv Driver) error {
		return drv.Click(selector)
	})
}

// ClickIfVisible clicks selector only if it becomes visible within timeout.
// Not every conditional UI affordance is guaranteed present in every
// environment; absence skips the click without failing the scenario.
func ClickIfVisible(selector string, timeout time.Duration) Step {
	return Step{
		kind: stepInteract,
		desc: fmt.Sprintf("click %q if visible", selector),
		run: func(x *execution) error {
			visible, err := x.drv.IsVisible(selector, timeout)
			if err != nil {
				return fmt.Errorf("%w: probing %q: %v", ErrInteractionFailure, selector, err)
			}
			if !visible {
				x.log.Debug("[%s] %q not visible within %v, skipping click", x.tag, selector, timeout)
				return nil
			}
			if err := x.drv.Click(selector); err != nil {
				return fmt.Errorf("%w: clicking %q: %v", ErrInteractionFailure, selector, err)
			}
			return nil
		},
	}
}

// PressKey injects a keyboard combo such as "Meta+k".
func PressKey(combo string) Step {
	return Interact(fmt.Sprintf("press %q", combo), func(drv Driver) error {
		return drv.PressKey(combo)
	})
}

// ClearLocalStorage removes a client-side storage key, used by scenarios
// that must not inherit prior state such as dismissed onboarding.
func ClearLocalStorage(key string) Step {
	return Interact(fmt.Sprintf("clear local storage key %q", key), func(drv Driver) error {
		return drv.EvaluateInPage(fmt.Sprintf("() => localStorage.removeItem(%q)", key))
	})
}

// Capture persists a named screenshot artifact. It must follow at least one
// readiness wait since the last navigation; capturing an unsettled page is a
// scenario defect.
func Capture(suffix string, fullPage bool) Step {
	return Step{
		kind:   stepCapture,
		desc:   fmt.Sprintf("capture %q", suffix),
		suffix: suffix,
		run: func(x *execution) error {
			if !x.ready {
				return fmt.Errorf("%w: capture %q before any readiness wait since last navigation", ErrScenarioDefect, suffix)
			}
			path := x.artifactPath(suffix)
			if err := x.drv.Screenshot(path, fullPage); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrCaptureFailure, path, err)
			}
			x.artifacts = append(x.artifacts, path)
			return nil
		},
	}
}

// Validate statically checks a scenario's shape: it must start with a
// navigation, every capture must be preceded by a readiness wait since the
// last navigation, and capture suffixes must be distinct.
func (s Scenario) Validate() error {
	if s.FeatureTag == "" {
		return fmt.Errorf("%w: scenario %q has no feature tag", ErrScenarioDefect, s.Name)
	}
	if len(s.Steps) == 0 || s.Steps[0].kind != stepNavigate {
		return fmt.Errorf("%w: scenario %s must begin with a navigation", ErrScenarioDefect, s.FeatureTag)
	}
	ready := false
	suffixes := make(map[string]bool)
	for _, st := range s.Steps {
		switch st.kind {
		case stepNavigate:
			ready = false
		case stepWait:
			ready = true
		case stepCapture:
			if !ready {
				return fmt.Errorf("%w: scenario %s: %s has no readiness wait since last navigation", ErrScenarioDefect, s.FeatureTag, st.desc)
			}
			if suffixes[st.suffix] {
				return fmt.Errorf("%w: scenario %s: duplicate capture suffix %q", ErrScenarioDefect, s.FeatureTag, st.suffix)
			}
			suffixes[st.suffix] = true
		}
	}
	return nil
}

// ArtifactPaths returns the paths this scenario's captures will write under
// root, in step order.
func (s Scenario) ArtifactPaths(root string) []string {
	var paths []string
	for _, st := range s.Steps {
		if st.kind == stepCapture {
			paths = append(paths, evidence.ArtifactPath(root, s.FeatureTag, st.suffix))
		}
	}
	return paths
}

// Run executes the scenario's steps in order against drv. It returns the
// artifacts captured so far along with the first fatal error; partial
// artifacts are kept on disk, not rolled back. Cancellation is honored
// between steps.
func (s Scenario) Run(ctx context.Context, drv Driver, opts Options, log *logger.Logger) ([]string, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	x := &execution{drv: drv, opts: opts, log: log, tag: s.FeatureTag}
	for i, st := range s.Steps {
		select {
		case <-ctx.Done():
			return x.artifacts, fmt.Errorf("scenario %s aborted at step %d (%s): %w", s.FeatureTag, i+1, st.desc, ctx.Err())
		default:
		}
		x.log.Debug("[%s] step %d/%d: %s", s.FeatureTag, i+1, len(s.Steps), st.desc)
		if err := st.run(x); err != nil {
			return x.artifacts, fmt.Errorf("scenario %s step %d (%s): %w", s.FeatureTag, i+1, st.desc, err)
		}
	}
	return x.artifacts, nil
}
