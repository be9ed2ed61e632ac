package harness

import (
	"fmt"
	"time"
)

// ReadinessKind enumerates the signals that tell the harness a page is
// settled enough to interact with or capture.
type ReadinessKind int

const (
	KindNetworkIdle ReadinessKind = iota
	KindSelectorPresent
	KindFixedDelay
)

// Readiness is a condition a wait step satisfies before the scenario
// proceeds.
type Readiness struct {
	Kind     ReadinessKind
	Selector string
	Delay    time.Duration
}

// NetworkIdle succeeds once no network activity has been observed for a
// quiet window after navigation.
func NetworkIdle() Readiness {
	return Readiness{Kind: KindNetworkIdle}
}

// SelectorPresent succeeds when an element matching selector appears.
func SelectorPresent(selector string) Readiness {
	return Readiness{Kind: KindSelectorPresent, Selector: selector}
}

// FixedDelay always succeeds after the given duration. Last-resort policy
// for routes with no reliable readiness signal; acceptable for artifact
// capture, never for correctness assertions.
func FixedDelay(d time.Duration) Readiness {
	return Readiness{Kind: KindFixedDelay, Delay: d}
}

func (r Readiness) String() string {
	switch r.Kind {
	case KindNetworkIdle:
		return "network idle"
	case KindSelectorPresent:
		return fmt.Sprintf("selector %q present", r.Selector)
	case KindFixedDelay:
		return fmt.Sprintf("fixed delay %v", r.Delay)
	default:
		return "unknown readiness"
	}
}

// awaitReadiness blocks until r is satisfied or timeout elapses. On timeout
// the failing condition is reported wrapped in ErrReadinessTimeout rather
// than silently proceeding.
func awaitReadiness(drv Driver, r Readiness, timeout time.Duration) error {
	switch r.Kind {
	case KindNetworkIdle:
		if err := drv.WaitForNetworkIdle(timeout); err != nil {
			return fmt.Errorf("%w: %s within %v: %v", ErrReadinessTimeout, r, timeout, err)
		}
	case KindSelectorPresent:
		if err := drv.WaitForSelector(r.Selector, timeout); err != nil {
			return fmt.Errorf("%w: %s within %v: %v", ErrReadinessTimeout, r, timeout, err)
		}
	case KindFixedDelay:
		time.Sleep(r.Delay)
	default:
		return fmt.Errorf("%w: unknown readiness kind %d", ErrScenarioDefect, r.Kind)
	}
	return nil
}
