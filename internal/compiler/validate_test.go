package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plusminus/internal/ir"
)

func validDef() ir.BlockDef {
	return ir.BlockDef{
		Type:   "lists_create_with",
		Output: ir.ValueCheck{"Array"},
		Mutator: ir.MutatorDef{
			DefaultItems: 3,
			EmptyLabel:   "create empty list",
			ItemLabel:    "create list with",
			Placeholder:  ir.PlaceholderLabel,
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateBlockDefValid(t *testing.T) {
	def := validDef()
	assert.Empty(t, Validate(&def))
	assert.Empty(t, Validate(def), "value and pointer forms both validate")
}

func TestValidateQuotesNeedsNoEmptyLabel(t *testing.T) {
	def := validDef()
	def.Mutator.Placeholder = ir.PlaceholderQuotes
	def.Mutator.EmptyLabel = ""
	assert.Empty(t, Validate(&def))
}

func TestValidateBlockDefErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ir.BlockDef)
		code   string
		field  string
	}{
		{"bad type", func(d *ir.BlockDef) { d.Type = "Lists-Create" }, ErrBlockTypeInvalid, "type"},
		{"negative items", func(d *ir.BlockDef) { d.Mutator.DefaultItems = -1 }, ErrDefaultItemsNegative, "mutator.default_items"},
		{"unknown placeholder", func(d *ir.BlockDef) { d.Mutator.Placeholder = "icon" }, ErrInvalidPlaceholder, "mutator.placeholder"},
		{"missing item label", func(d *ir.BlockDef) { d.Mutator.ItemLabel = "  " }, ErrBlockNoItemLabel, "mutator.item_label"},
		{"missing empty label", func(d *ir.BlockDef) { d.Mutator.EmptyLabel = "" }, ErrMissingEmptyLabel, "mutator.empty_label"},
		{"blank check entry", func(d *ir.BlockDef) { d.Mutator.Check = ir.ValueCheck{"Number", ""} }, ErrEmptyCheckType, "mutator.check[1]"},
		{"duplicate check entry", func(d *ir.BlockDef) { d.Mutator.Check = ir.ValueCheck{"Number", "Number"} }, ErrDuplicateCheckType, "mutator.check[1]"},
		{"blank output entry", func(d *ir.BlockDef) { d.Output = ir.ValueCheck{""} }, ErrEmptyCheckType, "output[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDef()
			tt.mutate(&def)

			errs := Validate(&def)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	def := validDef()
	def.Type = ""
	def.Mutator.DefaultItems = -2
	def.Mutator.Placeholder = "nope"

	errs := Validate(&def)
	assert.Equal(t, []string{ErrBlockTypeInvalid, ErrDefaultItemsNegative, ErrInvalidPlaceholder}, codes(errs))
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("not a block")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedIRType, errs[0].Code)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "type", Message: "bad", Code: "E101"}
	assert.Equal(t, "[E101] type: bad", e.Error())

	e.Line = 4
	assert.Equal(t, "[E101] line 4: type: bad", e.Error())
}
