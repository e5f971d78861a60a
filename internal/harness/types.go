package harness

import (
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/dispatch"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/effect"
)

// Step outcomes recorded in the trace.
const (
	OutcomeDelivery = "delivery"
	OutcomeShatter  = "shatter"
	OutcomeError    = "error"
	OutcomeUnlocked = "unlocked"
	OutcomeDenied   = "denied"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Type    string `json:"type"` // "dispatch" or "unlock"
	Input   string `json:"input"`
	Outcome string `json:"outcome"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FinalState is the observable state after the last step.
type FinalState struct {
	Phase           dispatch.Phase `json:"phase"`
	Depth           float64        `json:"depth"`
	Anchor          string         `json:"anchor"`
	Level           int            `json:"level"`
	Capabilities    []string       `json:"capabilities"`
	Unlocks         int            `json:"unlocks"`
	ActiveSequences []string       `json:"active_sequences"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds expect and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	State   FinalState     `json:"state"`
	Effects []effect.Event `json:"effects"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Effects: []effect.Event{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
