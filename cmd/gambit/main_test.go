package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/gambit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleCatalog = "../../examples/catalog.yaml"

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GAMBIT_METRICS", "false")
	t.Setenv("GAMBIT_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "gambit version "+gambit.Version+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	t.Run("example catalog", func(t *testing.T) {
		out, err := execute(t, "", "validate", exampleCatalog)
		require.NoError(t, err)
		assert.Contains(t, out, "Catalog is valid")
	})

	t.Run("loam directory", func(t *testing.T) {
		out, err := execute(t, "", "validate", "../../examples/scenarios")
		require.NoError(t, err)
		assert.Contains(t, out, "Catalog is valid")
	})

	t.Run("broken catalog", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`scenarios:
  - id: s1
    title: Broken
    role: Tester
    difficulty: easy
    steps:
      - id: a
        root: true
        context: A
        options:
          - id: go
            text: Go
            xp_change: 10
            next: missing
      - id: orphan
        context: Nobody points here
        options:
          - id: end
            text: End
            xp_change: 0
`), 0644))

		_, err := execute(t, "", "validate", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
		assert.Contains(t, err.Error(), `"missing"`)
		assert.Contains(t, err.Error(), "not reachable")
	})
}

func TestGraphCommand(t *testing.T) {
	t.Setenv("GAMBIT_CATALOG", exampleCatalog)

	out, err := execute(t, "", "graph", "code-review")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))
	assert.Contains(t, out, "request")
	assert.Contains(t, out, "pushback")

	_, err = execute(t, "", "graph", "unknown")
	require.Error(t, err)
}

func TestPlayCommand(t *testing.T) {
	t.Setenv("GAMBIT_CATALOG", exampleCatalog)

	out, err := execute(t, "1\n1\n1\n", "play", "db-outage", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Primary Database Outage")
	assert.Contains(t, out, "Scenario completed.")
	assert.Contains(t, out, "Final score: 70 (good)")
}

func TestPlayCommand_Quit(t *testing.T) {
	t.Setenv("GAMBIT_CATALOG", exampleCatalog)

	out, err := execute(t, "q\n", "play", "code-review", "--plain")
	require.NoError(t, err)
	assert.NotContains(t, out, "Summary")
}

func TestProgressCommands(t *testing.T) {
	t.Setenv("GAMBIT_CATALOG", exampleCatalog)
	t.Setenv("GAMBIT_STORE", "sqlite")
	t.Setenv("GAMBIT_SQLITE_PATH", filepath.Join(t.TempDir(), "progress.db"))

	out, err := execute(t, "", "progress", "ls", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "No progress found.")

	_, err = execute(t, "1\n1\n1\n", "play", "db-outage", "--plain", "--user", "ana")
	require.NoError(t, err)

	out, err = execute(t, "", "progress", "ls", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "SCENARIO")
	assert.Contains(t, out, "db-outage")
	assert.Contains(t, out, "completed")

	out, err = execute(t, "", "progress", "inspect", "ana", "db-outage")
	require.NoError(t, err)
	assert.Contains(t, out, `"phase": "completed"`)
	assert.Contains(t, out, `"score": 70`)

	out, err = execute(t, "", "progress", "inspect", "ana", "code-review")
	require.NoError(t, err)
	assert.Contains(t, out, `"phase": "not_started"`)

	_, err = execute(t, "", "progress", "inspect", "ana", "unknown")
	require.Error(t, err)
}
