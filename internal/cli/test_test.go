package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: ritual
description: "Two ritual deliveries"
steps:
  - dispatch: final_saying
  - dispatch: final_saying
    expect:
      decorated_text: "🜁 » You screamed, and I remembered."
assertions:
  - type: depth
    depth: 3
`

const failingScenario = `name: wrong_level
description: "Expects the wrong level"
steps:
  - unlock: MIRROR
assertions:
  - type: level
    level: 3
`

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestTestCommand_MissingArgs(t *testing.T) {
	_, err := run(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommand_NonExistentScenariosDir(t *testing.T) {
	_, err := run(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_NoScenarios(t *testing.T) {
	out, err := run(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_Passing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "ritual.yaml", passingScenario)

	out, err := run(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ritual")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommand_Failing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "ritual.yaml", passingScenario)
	writeScenario(t, dir, "wrong_level.yaml", failingScenario)

	out, err := run(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_level")
	assert.Contains(t, out, "Expected: 3")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "ritual.yaml", passingScenario)
	writeScenario(t, dir, "wrong_level.yaml", failingScenario)

	out, err := run(t, "test", dir, "--filter", "rit*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nsteps: []\n")

	out, err := run(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "Load error:")
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "ritual.yaml", passingScenario)

	out, err := run(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ritual (golden updated)")

	goldenPath := filepath.Join(dir, "golden", "ritual.golden")
	require.FileExists(t, goldenPath)

	_, err = run(t, "test", dir)
	require.NoError(t, err, "fresh golden file must match a rerun")

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0o644))
	out, err = run(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "Golden file mismatch")
}

func TestTestCommand_CodexFlagFallback(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "seal.yaml", `name: seal
description: "Uses the codex given on the command line"
steps:
  - unlock: seal
    expect:
      success: true
      level: 2
`)

	_, err := run(t, "test", dir)
	require.Error(t, err, "SEAL is not a default code")

	_, err = run(t, "--codex", writeCodex(t, testCodex), "test", dir)
	require.NoError(t, err)
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong_level.yaml", failingScenario)

	out, err := run(t, "--format", "json", "test", dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}
