package harness

import "fmt"

// Fatal conditions a scenario can report. Each aborts only the scenario it
// occurred in; sibling scenarios keep running. Absence of an optional element
// is a normal outcome, not an error, and has no sentinel here.
var (
	ErrNavigationFailure  = fmt.Errorf("navigation failure")
	ErrReadinessTimeout   = fmt.Errorf("readiness timeout")
	ErrInteractionFailure = fmt.Errorf("interaction failure")
	ErrCaptureFailure     = fmt.Errorf("capture failure")

	// ErrScenarioDefect marks a malformed scenario, e.g. a capture step with
	// no readiness wait since the last navigation.
	ErrScenarioDefect = fmt.Errorf("scenario defect")
)
