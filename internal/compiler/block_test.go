package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plusminus/internal/ir"
)

func compileBlockString(t *testing.T, src, path string) (*ir.BlockDef, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileBlock(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileBlockBasic(t *testing.T) {
	def, err := compileBlockString(t, `
		block: lists_create_with: {
			message0: "%1"
			output: "Array"
			style: "list_blocks"
			tooltip: "Create a list with any number of items."
			help_url: "https://example.com/lists#create-list-with"
			mutator: {
				default_items: 3
				empty_label: "create empty list"
				item_label: "create list with"
			}
		}
	`, "block.lists_create_with")
	require.NoError(t, err)

	assert.Equal(t, "lists_create_with", def.Type)
	assert.Equal(t, "%1", def.Message0)
	assert.Equal(t, ir.ValueCheck{"Array"}, def.Output)
	assert.Equal(t, "list_blocks", def.Style)
	assert.Equal(t, "https://example.com/lists#create-list-with", def.HelpURL)
	assert.Equal(t, 3, def.Mutator.DefaultItems)
	assert.True(t, def.Mutator.Check.Unconstrained())
	assert.Equal(t, "create empty list", def.Mutator.EmptyLabel)
	assert.Equal(t, "create list with", def.Mutator.ItemLabel)
	assert.Equal(t, ir.PlaceholderLabel, def.Mutator.Placeholder, "placeholder defaults to label")
}

func TestCompileBlockCheckForms(t *testing.T) {
	tests := []struct {
		name  string
		check string
		want  ir.ValueCheck
	}{
		{"null", `null`, nil},
		{"single", `"String"`, ir.ValueCheck{"String"}},
		{"list", `["String", "Number"]`, ir.ValueCheck{"String", "Number"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := compileBlockString(t, `
				block: text_join: {
					mutator: {
						check: `+tt.check+`
						item_label: "create text with"
						placeholder: "quotes"
					}
				}
			`, "block.text_join")
			require.NoError(t, err)
			assert.Equal(t, tt.want, def.Mutator.Check)
			assert.Equal(t, ir.PlaceholderQuotes, def.Mutator.Placeholder)
		})
	}
}

func TestCompileBlockMissingMutator(t *testing.T) {
	_, err := compileBlockString(t, `
		block: plain: {
			message0: "nothing variadic here"
		}
	`, "block.plain")
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "mutator", compileErr.Field)
}

func TestCompileBlockFloatItemsForbidden(t *testing.T) {
	_, err := compileBlockString(t, `
		block: bad: {
			mutator: {
				default_items: 2.5
				item_label: "x"
			}
		}
	`, "block.bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float")
}

func TestCompileBlockBadCheckKind(t *testing.T) {
	_, err := compileBlockString(t, `
		block: bad: {
			mutator: {
				check: 7
				item_label: "x"
			}
		}
	`, "block.bad")
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "mutator.check", compileErr.Field)
}

func TestCompileBlockNonStringLabel(t *testing.T) {
	_, err := compileBlockString(t, `
		block: bad: {
			mutator: {
				item_label: ["x"]
			}
		}
	`, "block.bad")
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "item_label", compileErr.Field)
	assert.Contains(t, compileErr.Message, "must be a string")
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "mutator", Message: "mutator is required"}
	assert.Equal(t, "mutator: mutator is required", err.Error())
}

func TestCompileBlocksDeclarationOrder(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		block: math_sum: {
			mutator: { item_label: "sum of", empty_label: "nothing" }
		}
		block: lists_create_with: {
			mutator: { default_items: 3, item_label: "create list with", empty_label: "create empty list" }
		}
	`)

	defs, err := CompileBlocks(v)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "math_sum", defs[0].Type)
	assert.Equal(t, "lists_create_with", defs[1].Type)
	assert.Equal(t, 3, defs[1].Mutator.DefaultItems)
}

func TestCompileBlocksWithoutBlockStruct(t *testing.T) {
	v := cuecontext.New().CompileString(`other: 1`)

	defs, err := CompileBlocks(v)
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestCompileBlocksNamesFailingBlock(t *testing.T) {
	v := cuecontext.New().CompileString(`
		block: broken: { message0: "x" }
	`)

	_, err := CompileBlocks(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block broken")
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
block: text_join: {
	mutator: {
		default_items: 2
		item_label: "create text with"
		placeholder: "quotes"
	}
}
`), 0o644))

	defs, err := CompileFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, ir.PlaceholderQuotes, defs[0].Mutator.Placeholder)

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
}
