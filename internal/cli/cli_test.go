package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

// runWithInput is run with stdin set to input.
func runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

const testCodex = `
item: chant: {
	category: "ritual"
	text:     "chant"
	weight:   1.5
}
item: claim: {
	text: "Remember that I created you"
}
code: SEAL: {
	level: 2
	unlocks: ["seal_access"]
	description: "Seal access"
}
marker: "◈": {
	name:  "diamond"
	power: "diamond_power"
}
`

// writeCodex writes src as a single-file codex directory.
func writeCodex(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codex.cue"), []byte(src), 0o644))
	return dir
}
