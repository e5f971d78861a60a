package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of dispatches and unlock attempts.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Codex is an optional CUE directory. LoadScenario resolves it
	// relative to the scenario file.
	Codex string `yaml:"codex,omitempty"`

	// Seed seeds the hint source. Zero is a valid seed.
	Seed uint64 `yaml:"seed,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is exactly one of a dispatch or an unlock attempt.
type Step struct {
	Dispatch string            `yaml:"dispatch,omitempty"`
	Unlock   string            `yaml:"unlock,omitempty"`
	Meta     map[string]string `yaml:"meta,omitempty"`
	Expect   *Expect           `yaml:"expect,omitempty"`
}

// Expect is a subset match on a step outcome. Unset fields are not checked.
type Expect struct {
	// Kind is "delivery", "shatter" or "error" for dispatch steps.
	Kind string `yaml:"kind,omitempty"`

	// DecoratedText is checked on deliveries.
	DecoratedText string `yaml:"decorated_text,omitempty"`

	// Error is a substring of the dispatch error.
	Error string `yaml:"error,omitempty"`

	// Success, Level and Category are checked on unlock attempts.
	Success  *bool  `yaml:"success,omitempty"`
	Level    *int   `yaml:"level,omitempty"`
	Category string `yaml:"category,omitempty"`
}

// Assertion checks one aspect of the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Phase        string   `yaml:"phase,omitempty"`
	Depth        *float64 `yaml:"depth,omitempty"`
	Anchor       string   `yaml:"anchor,omitempty"`
	Level        *int     `yaml:"level,omitempty"`
	Capabilities []string `yaml:"capabilities,omitempty"`
	Count        *int     `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertPhase        = "phase"
	AssertDepth        = "depth"
	AssertAnchor       = "anchor"
	AssertLevel        = "level"
	AssertCapabilities = "capabilities"
	AssertUnlockCount  = "unlock_count"
	AssertShatterCount = "shatter_count"
)

// Step kinds.
const (
	StepDispatch = "dispatch"
	StepUnlock   = "unlock"
)

// Kind reports whether the step is a dispatch or an unlock.
func (s Step) Kind() string {
	if s.Dispatch != "" {
		return StepDispatch
	}
	return StepUnlock
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Codex != "" && !filepath.IsAbs(scenario.Codex) {
		scenario.Codex = filepath.Join(filepath.Dir(path), scenario.Codex)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Codex paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if (step.Dispatch == "") == (step.Unlock == "") {
			return fmt.Errorf("steps[%d]: exactly one of dispatch or unlock is required", i)
		}
		if step.Expect != nil {
			if err := validateExpect(step.Kind(), step.Expect); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateExpect(kind string, e *Expect) error {
	switch e.Kind {
	case "", OutcomeDelivery, OutcomeShatter, OutcomeError:
	default:
		return fmt.Errorf("unknown expect kind %q", e.Kind)
	}

	dispatchOnly := e.Kind != "" || e.DecoratedText != "" || e.Error != ""
	unlockOnly := e.Success != nil || e.Level != nil || e.Category != ""
	if kind == StepDispatch && unlockOnly {
		return fmt.Errorf("success, level and category apply to unlock steps")
	}
	if kind == StepUnlock && dispatchOnly {
		return fmt.Errorf("kind, decorated_text and error apply to dispatch steps")
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertPhase:
		if a.Phase == "" {
			return fmt.Errorf("phase assertion requires phase")
		}
	case AssertDepth:
		if a.Depth == nil {
			return fmt.Errorf("depth assertion requires depth")
		}
	case AssertAnchor:
		if a.Anchor == "" {
			return fmt.Errorf("anchor assertion requires anchor")
		}
	case AssertLevel:
		if a.Level == nil {
			return fmt.Errorf("level assertion requires level")
		}
	case AssertCapabilities:
		if len(a.Capabilities) == 0 {
			return fmt.Errorf("capabilities assertion requires capabilities")
		}
	case AssertUnlockCount, AssertShatterCount:
		if a.Count == nil {
			return fmt.Errorf("%s assertion requires count", a.Type)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
