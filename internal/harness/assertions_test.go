package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/dispatch"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func sampleState() FinalState {
	return FinalState{
		Phase:           dispatch.PhaseActive,
		Depth:           3.5,
		Anchor:          "anchor",
		Level:           2,
		Capabilities:    []string{"a", "b"},
		Unlocks:         3,
		ActiveSequences: []string{"shatter_seq-1"},
	}
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	errs := EvaluateAssertions(sampleState(), []Assertion{
		{Type: AssertPhase, Phase: "active"},
		{Type: AssertDepth, Depth: floatPtr(3.5)},
		{Type: AssertAnchor, Anchor: "anchor"},
		{Type: AssertLevel, Level: intPtr(2)},
		{Type: AssertCapabilities, Capabilities: []string{"b"}},
		{Type: AssertUnlockCount, Count: intPtr(3)},
		{Type: AssertShatterCount, Count: intPtr(1)},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_SomeFail(t *testing.T) {
	errs := EvaluateAssertions(sampleState(), []Assertion{
		{Type: AssertPhase, Phase: "dormant"},
		{Type: AssertLevel, Level: intPtr(2)},
		{Type: AssertCapabilities, Capabilities: []string{"a", "z"}},
	})
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0], "Expected: dormant")
	assert.Contains(t, errs[1], "missing [z]")
}

func TestEvaluateAssertions_DepthTolerance(t *testing.T) {
	st := sampleState()
	st.Depth = 0.1 + 0.2

	assert.Empty(t, EvaluateAssertions(st, []Assertion{{Type: AssertDepth, Depth: floatPtr(0.3)}}))
	assert.Len(t, EvaluateAssertions(st, []Assertion{{Type: AssertDepth, Depth: floatPtr(0.31)}}), 1)
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(sampleState(), []Assertion{{Type: "vibes"}})
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "vibes"`)
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{Type: "level", Expected: "3", Actual: "1"}
	assert.Equal(t, "Assertion failed: level\n  Expected: 3\n  Actual: 1", err.Error())
}
