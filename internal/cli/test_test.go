package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const growScenario = `name: grow_once
description: One plus on a text join
flow_token: test-flow-grow
blocks:
  - id: j
    type: text_join
steps:
  - block: j
    action: plus
    expect:
      items: %d
`

// writeScenario writes a scenario into <env>/suite/scenarios and returns
// that directory.
func writeScenario(t *testing.T, env *testEnv, name, content string) string {
	t.Helper()
	dir := filepath.Join(env.dir, "suite", "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	return dir
}

func TestRunHarnessScenarios(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "test", harnessScenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ list_minus_to_empty")
	assert.Contains(t, out, "✓ text_join_quotes")
	assert.Contains(t, out, "✓ custom_definition")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestRunFilter(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "--format", "json", "test", harnessScenarios, "--filter", "text_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "text_join_quotes", resp.Data.Scenarios[0].Name)
}

func TestRunFailingScenario(t *testing.T) {
	env := newTestEnv(t)
	dir := writeScenario(t, env, "grow_once.yaml", fmt.Sprintf(growScenario, 7))

	out, _, err := env.run(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ grow_once")
	assert.Contains(t, out, "steps[0]: items: expected 7, got 3")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestRunUpdateWritesGolden(t *testing.T) {
	env := newTestEnv(t)
	dir := writeScenario(t, env, "grow_once.yaml", fmt.Sprintf(growScenario, 3))

	out, _, err := env.run(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ grow_once (golden updated)")

	golden := filepath.Join(env.dir, "suite", "golden", "grow_once.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"flow_token":"test-flow-grow"`)

	_, _, err = env.run(t, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{}`), 0644))
	out, _, err = env.run(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestRunWithSharedDefinitions(t *testing.T) {
	env := newTestEnv(t)
	defs := env.writeDefs(t, map[string]string{"math.cue": mathDefs})
	dir := writeScenario(t, env, "max.yaml", `name: max
description: Custom definitions from --defs are available
blocks:
  - id: m
    type: math_max
    expect:
      items: 2
      top: [PLUS, MINUS, max of]
steps:
  - block: m
    action: minus
    expect:
      items: 1
`)

	out, _, err := env.run(t, "--defs", defs, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ max")
}

func TestRunMissingDirectory(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "test", filepath.Join(env.dir, "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunEmptyDirectory(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "empty")
	require.NoError(t, os.MkdirAll(dir, 0755))

	out, _, err := env.run(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestGoldenFilePath(t *testing.T) {
	got := goldenFilePath(filepath.Join("suite", "scenarios", "a.yaml"))
	assert.Equal(t, filepath.Join("suite", "golden", "a.golden"), got)
}
