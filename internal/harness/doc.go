// Package harness runs codex scenarios against fresh dispatcher and gate
// instances and checks the outcome.
//
// Every run uses a step clock, sequential shatter ids and a seeded hint
// source, so the same scenario always produces the same trace.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: ritual_depth
//	description: "Ritual items deepen the sequence until reset"
//	codex: ../codex        # optional CUE directory, relative to this file
//	seed: 42               # optional hint seed
//	steps:
//	  - dispatch: chant
//	    expect:
//	      kind: delivery
//	      decorated_text: "🜁 chant"
//	  - unlock: MIRROR
//	    expect:
//	      success: true
//	      level: 1
//	assertions:
//	  - type: phase
//	    phase: active
//	  - type: depth
//	    depth: 3.5
//	  - type: capabilities
//	    capabilities: [shatter_protocol]
//
// Without a codex directory the built-in defaults are registered.
//
// # Assertions
//
//   - phase: dispatcher phase equals phase
//   - depth: dispatcher depth equals depth
//   - anchor: dispatcher anchor equals anchor
//   - level: gate level equals level
//   - capabilities: every listed capability has been granted
//   - unlock_count: number of successful unlocks equals count
//   - shatter_count: number of shatter sequences equals count
//
// # Golden Files
//
// RunWithGolden and AssertGolden compare the JSON snapshot of a run against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
