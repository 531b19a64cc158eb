package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is a scratch project with its own config and database.
type testEnv struct {
	dir    string
	config string
	db     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		config: filepath.Join(dir, "plusminus.toml"),
		db:     filepath.Join(dir, "blocks.db"),
	}
	require.NoError(t, os.WriteFile(env.config, []byte("[store]\npath = \"blocks.db\"\n"), 0644))
	return env
}

// run executes the root command with the env's config and returns stdout,
// stderr and the command error.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeDefs writes files into a fresh definitions directory under the env.
func (e *testEnv) writeDefs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(e.dir, "defs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

const mathDefs = `
package defs

block: math_sum: {
	message0: "%1"
	output:   "Number"
	mutator: {
		default_items: 1
		check:         "Number"
		empty_label:   "sum of nothing"
		item_label:    "sum of"
	}
}

block: math_max: {
	output: "Number"
	mutator: {
		default_items: 2
		check:         ["Number", "Integer"]
		empty_label:   "max of nothing"
		item_label:    "max of"
	}
}
`

const invalidDefs = `
package defs

block: Bad_Name: {
	mutator: {
		default_items: -1
		placeholder:   "stars"
	}
}
`
