package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"CODEX_DIR", "CODEX_FORMAT", "CODEX_SEED", "CODEX_VERBOSE", "CODEX_MAX_QUERIES"} {
		t.Setenv(key, "") // restores the original value after the test
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Format: "text"}, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CODEX_DIR", "/tmp/codex")
	t.Setenv("CODEX_FORMAT", "json")
	t.Setenv("CODEX_SEED", "42")
	t.Setenv("CODEX_VERBOSE", "true")
	t.Setenv("CODEX_MAX_QUERIES", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Dir: "/tmp/codex", Format: "json", Seed: 42, Verbose: true, MaxQueries: 5}, cfg)
}

func TestParseEnv_Error(t *testing.T) {
	t.Setenv("CODEX_SEED", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
