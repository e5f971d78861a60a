package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// depthTolerance absorbs float rounding in accumulated ritual weights.
const depthTolerance = 1e-9

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(state FinalState, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertPhase:
			err = expectEqual(a.Type, a.Phase, string(state.Phase))
		case AssertDepth:
			err = assertDepth(state, a)
		case AssertAnchor:
			err = expectEqual(a.Type, a.Anchor, state.Anchor)
		case AssertLevel:
			err = expectEqual(a.Type, derefInt(a.Level), state.Level)
		case AssertCapabilities:
			err = assertCapabilities(state, a)
		case AssertUnlockCount:
			err = expectEqual(a.Type, derefInt(a.Count), state.Unlocks)
		case AssertShatterCount:
			err = expectEqual(a.Type, derefInt(a.Count), len(state.ActiveSequences))
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertDepth(state FinalState, a Assertion) error {
	if a.Depth == nil {
		return &AssertionError{Type: a.Type, Expected: "a depth value", Actual: "none given"}
	}
	if math.Abs(state.Depth-*a.Depth) > depthTolerance {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%g", *a.Depth),
			Actual:   fmt.Sprintf("%g", state.Depth),
		}
	}
	return nil
}

func assertCapabilities(state FinalState, a Assertion) error {
	var missing []string
	for _, c := range a.Capabilities {
		if !slices.Contains(state.Capabilities, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("granted %v", a.Capabilities),
			Actual:   fmt.Sprintf("granted %v, missing %v", state.Capabilities, missing),
		}
	}
	return nil
}

func expectEqual[T comparable](typ string, want, got T) error {
	if want != got {
		return &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
