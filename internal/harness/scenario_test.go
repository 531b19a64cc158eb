package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: minimal
description: one list, one plus
blocks:
  - id: list
    type: lists_create_with
steps:
  - block: list
    action: plus
`

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Blocks, 1)
	assert.Equal(t, "lists_create_with", s.Blocks[0].Type)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, "plus", s.Steps[0].Action)
	assert.False(t, s.Steps[0].Click)
	assert.Empty(t, s.Locale)
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(validScenario + "step: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nblocks: [{id: a, type: t}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nblocks: [{id: a, type: t}]\n",
			want: "description is required",
		},
		{
			name: "no blocks",
			yaml: "name: n\ndescription: d\n",
			want: "blocks list is required",
		},
		{
			name: "block without type",
			yaml: "name: n\ndescription: d\nblocks: [{id: a}]\n",
			want: "blocks[0]: type is required",
		},
		{
			name: "duplicate block id",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}, {id: a, type: t}]\n",
			want: `blocks[1]: duplicate id "a"`,
		},
		{
			name: "step on unknown block",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nsteps: [{block: b, action: plus}]\n",
			want: `steps[0]: unknown block "b"`,
		},
		{
			name: "unknown action",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nsteps: [{block: a, action: create}]\n",
			want: `steps[0]: unknown action "create"`,
		},
		{
			name: "load without payload",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nsteps: [{block: a, action: load}]\n",
			want: "load requires exactly one of items or state",
		},
		{
			name: "load with both payloads",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nsteps: [{block: a, action: load, items: 1, state: x}]\n",
			want: "load requires exactly one of items or state",
		},
		{
			name: "negative load",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nsteps: [{block: a, action: load, items: -1}]\n",
			want: "items must be non-negative",
		},
		{
			name: "items on plus",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nsteps: [{block: a, action: plus, items: 2}]\n",
			want: "items and state only apply to load",
		},
		{
			name: "click on save",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nsteps: [{block: a, action: save, click: true}]\n",
			want: "click only applies to plus and minus",
		},
		{
			name: "assertion without type",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nassertions: [{block: a}]\n",
			want: "assertions[0]: type is required",
		},
		{
			name: "unknown assertion type",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nassertions: [{type: nope}]\n",
			want: `unknown assertion type "nope"`,
		},
		{
			name: "trace_count bad kind",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nassertions: [{type: trace_count, kind: grow, count: 1}]\n",
			want: "valid kind is required for trace_count",
		},
		{
			name: "trace_order without kinds",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nassertions: [{type: trace_order}]\n",
			want: "kinds list is required",
		},
		{
			name: "final_items unknown block",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nassertions: [{type: final_items, block: z, items: 1}]\n",
			want: "known block is required for final_items",
		},
		{
			name: "final_inputs without inputs",
			yaml: "name: n\ndescription: d\nblocks: [{id: a, type: t}]\nassertions: [{type: final_inputs, block: a}]\n",
			want: "inputs list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingDefinition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	content := validScenario + "definitions: [defs/missing.cue]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definition file not found")
	assert.Contains(t, err.Error(), filepath.Join(dir, "defs", "missing.cue"))
}
