package harness

import (
	"fmt"
	"time"
)

// DismissKind enumerates how a transient overlay is dismissed once found.
type DismissKind int

const (
	DismissByClick DismissKind = iota
	DismissByEscape
)

// Dismiss is the single action a guard performs when its element is present.
type Dismiss struct {
	Kind     DismissKind
	Selector string
}

// DismissClick dismisses by clicking selector, e.g. a modal close button.
func DismissClick(selector string) Dismiss {
	return Dismiss{Kind: DismissByClick, Selector: selector}
}

// DismissEscape dismisses by injecting an Escape key press.
func DismissEscape() Dismiss {
	return Dismiss{Kind: DismissByEscape}
}

// Guard probes for a transient UI element, a first-run tour or onboarding
// modal, that may or may not be present depending on prior state. Absence is
// never an error; presence followed by a failed dismiss is.
type Guard struct {
	Selector string
	Timeout  time.Duration
	Dismiss  Dismiss
	Settle   time.Duration
}

// apply runs the probe-then-branch. The probe timeout is short since the
// element's absence is an expected outcome, not an error.
func (g Guard) apply(drv Driver) (dismissed bool, err error) {
	visible, err := drv.IsVisible(g.Selector, g.Timeout)
	if err != nil {
		return false, fmt.Errorf("%w: probing %q: %v", ErrInteractionFailure, g.Selector, err)
	}
	if !visible {
		return false, nil
	}

	switch g.Dismiss.Kind {
	case DismissByClick:
		target := g.Dismiss.Selector
		if target == "" {
			target = g.Selector
		}
		if err := drv.Click(target); err != nil {
			return false, fmt.Errorf("%w: dismissing %q via click on %q: %v", ErrInteractionFailure, g.Selector, target, err)
		}
	case DismissByEscape:
		if err := drv.PressKey("Escape"); err != nil {
			return false, fmt.Errorf("%w: dismissing %q via Escape: %v", ErrInteractionFailure, g.Selector, err)
		}
	default:
		return false, fmt.Errorf("%w: unknown dismiss kind %d", ErrScenarioDefect, g.Dismiss.Kind)
	}

	if g.Settle > 0 {
		time.Sleep(g.Settle)
	}
	return true, nil
}
