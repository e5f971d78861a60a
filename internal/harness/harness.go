package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/clock"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/compiler"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/dispatch"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/effect"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/gate"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/testutil"
)

// Harness holds the components a scenario runs against.
type Harness struct {
	dispatcher *dispatch.Dispatcher
	gate       *gate.Gate
	effects    *effect.Recorder
	seq        *clock.Seq
}

// New builds fresh components for s with deterministic collaborators.
// The codex directory is loaded when set, otherwise the defaults are
// registered.
func New(s *Scenario) (*Harness, error) {
	var cx *compiler.Codex
	if s.Codex != "" {
		var err error
		cx, err = compiler.LoadCodexDir(s.Codex)
		if err != nil {
			return nil, fmt.Errorf("failed to load codex: %w", err)
		}
	}

	wall := testutil.NewStepClock()
	effects := &effect.Recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in scenarios

	dopts := []dispatch.Option{
		dispatch.WithClock(wall),
		dispatch.WithIDGenerator(testutil.NewSequentialIDs("seq")),
		dispatch.WithSink(effects),
		dispatch.WithLogger(logger),
	}
	if cx != nil {
		dopts = append(dopts, dispatch.WithMatcher(cx.Matcher()))
	}

	h := &Harness{
		dispatcher: dispatch.New(dopts...),
		gate: gate.New(
			gate.WithClock(wall),
			gate.WithSeed(s.Seed),
			gate.WithSink(effects),
			gate.WithLogger(logger),
		),
		effects: effects,
		seq:     clock.NewSeq(),
	}

	if cx != nil {
		cx.Apply(h.dispatcher, h.gate)
	} else {
		h.dispatcher.RegisterDefaults()
		h.gate.RegisterDefaults()
	}
	return h, nil
}

// Run executes a scenario and returns its result.
//
// Execution flow:
// 1. Build fresh components (codex or defaults)
// 2. Execute steps with expect validation
// 3. Capture final state and effects
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	h, err := New(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.execute(i, step, result)
	}

	result.State = h.FinalState()
	result.Effects = h.effects.Events()

	for _, msg := range EvaluateAssertions(result.State, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) execute(i int, step Step, result *Result) {
	if step.Kind() == StepDispatch {
		ev := h.dispatch(step)
		result.Trace = append(result.Trace, ev)
		if step.Expect != nil {
			for _, msg := range checkDispatch(ev, step.Expect) {
				result.AddError(fmt.Sprintf("steps[%d] dispatch %s: %s", i, step.Dispatch, msg))
			}
		}
		return
	}

	res := h.gate.AttemptUnlock(step.Unlock, step.Meta)
	outcome := OutcomeDenied
	if res.Success {
		outcome = OutcomeUnlocked
	}
	result.Trace = append(result.Trace, TraceEvent{
		Seq:     h.seq.Next(),
		Type:    StepUnlock,
		Input:   step.Unlock,
		Outcome: outcome,
		Result:  res,
	})
	if step.Expect != nil {
		for _, msg := range checkUnlock(res, step.Expect) {
			result.AddError(fmt.Sprintf("steps[%d] unlock %s: %s", i, step.Unlock, msg))
		}
	}
}

func (h *Harness) dispatch(step Step) TraceEvent {
	ev := TraceEvent{Seq: h.seq.Next(), Type: StepDispatch, Input: step.Dispatch}

	res, err := h.dispatcher.Dispatch(step.Dispatch, step.Meta)
	if err != nil {
		ev.Outcome = OutcomeError
		ev.Error = err.Error()
		return ev
	}
	ev.Outcome = res.Kind()
	ev.Result = res
	return ev
}

func checkDispatch(ev TraceEvent, want *Expect) []string {
	var errs []string
	if want.Kind != "" && ev.Outcome != want.Kind {
		errs = append(errs, fmt.Sprintf("expected kind %q, got %q", want.Kind, ev.Outcome))
	}
	if want.DecoratedText != "" {
		rec, ok := ev.Result.(*dispatch.DeliveryRecord)
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("expected decorated_text %q, got %s", want.DecoratedText, ev.Outcome))
		case rec.DecoratedText != want.DecoratedText:
			errs = append(errs, fmt.Sprintf("expected decorated_text %q, got %q", want.DecoratedText, rec.DecoratedText))
		}
	}
	if want.Error != "" && !strings.Contains(ev.Error, want.Error) {
		errs = append(errs, fmt.Sprintf("expected error containing %q, got %q", want.Error, ev.Error))
	}
	return errs
}

func checkUnlock(res gate.Result, want *Expect) []string {
	var errs []string
	if want.Success != nil && res.Success != *want.Success {
		errs = append(errs, fmt.Sprintf("expected success %v, got %v", *want.Success, res.Success))
	}
	if want.Level != nil && res.Level != *want.Level {
		errs = append(errs, fmt.Sprintf("expected level %d, got %d", *want.Level, res.Level))
	}
	if want.Category != "" && res.Category != want.Category {
		errs = append(errs, fmt.Sprintf("expected category %q, got %q", want.Category, res.Category))
	}
	return errs
}

// FinalState captures the observable state of both components.
func (h *Harness) FinalState() FinalState {
	st := h.dispatcher.State()
	history := h.gate.History()

	caps := []string{}
	seen := make(map[string]bool)
	for _, ev := range history {
		for _, c := range ev.Record.Capabilities() {
			if !seen[c] {
				seen[c] = true
				caps = append(caps, c)
			}
		}
	}

	return FinalState{
		Phase:           st.Phase,
		Depth:           st.Depth,
		Anchor:          st.Anchor,
		Level:           h.gate.Level(),
		Capabilities:    caps,
		Unlocks:         len(history),
		ActiveSequences: h.dispatcher.ActiveSequences(),
	}
}
