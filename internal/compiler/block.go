package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/plusminus/internal/ir"
)

// CompileBlocks compiles every definition under the top-level "block"
// struct of v, in declaration order. A value without "block" yields none.
func CompileBlocks(v cue.Value) ([]*ir.BlockDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	blocksVal := v.LookupPath(cue.ParsePath("block"))
	if !blocksVal.Exists() {
		return nil, nil
	}

	iter, err := blocksVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []*ir.BlockDef
	for iter.Next() {
		def, err := CompileBlock(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", iter.Selector().String(), err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// CompileFile compiles the block definitions in a single CUE file.
func CompileFile(path string) ([]*ir.BlockDef, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v := cuecontext.New().CompileBytes(src, cue.Filename(path))
	return CompileBlocks(v)
}

// CompileBlock parses a CUE value into a BlockDef.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the block struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`block: text_join: { ... }`)
//	def, err := CompileBlock(v.LookupPath(cue.ParsePath("block.text_join")))
func CompileBlock(v cue.Value) (*ir.BlockDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &ir.BlockDef{}

	// Block type comes from the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.Type = labels[len(labels)-1].String()
	}

	var err error
	if def.Message0, err = optionalString(v, "message0"); err != nil {
		return nil, err
	}
	if def.Style, err = optionalString(v, "style"); err != nil {
		return nil, err
	}
	if def.Tooltip, err = optionalString(v, "tooltip"); err != nil {
		return nil, err
	}
	if def.HelpURL, err = optionalString(v, "help_url"); err != nil {
		return nil, err
	}

	outputVal := v.LookupPath(cue.ParsePath("output"))
	if outputVal.Exists() {
		def.Output, err = parseCheck(outputVal, "output")
		if err != nil {
			return nil, err
		}
	}

	// Mutator (required)
	mutVal := v.LookupPath(cue.ParsePath("mutator"))
	if !mutVal.Exists() {
		return nil, &CompileError{
			Field:   "mutator",
			Message: "mutator is required",
			Pos:     v.Pos(),
		}
	}
	def.Mutator, err = parseMutator(mutVal)
	if err != nil {
		return nil, err
	}

	return def, nil
}

// parseMutator extracts the plus/minus configuration.
func parseMutator(v cue.Value) (ir.MutatorDef, error) {
	m := ir.MutatorDef{Placeholder: ir.PlaceholderLabel}

	itemsVal := v.LookupPath(cue.ParsePath("default_items"))
	if itemsVal.Exists() {
		switch itemsVal.IncompleteKind() {
		case cue.IntKind:
			n, err := itemsVal.Int64()
			if err != nil {
				return m, formatCUEError(err)
			}
			m.DefaultItems = int(n)
		case cue.FloatKind, cue.NumberKind:
			return m, &CompileError{
				Field:   "mutator.default_items",
				Message: "float types are forbidden - use int instead",
				Pos:     itemsVal.Pos(),
			}
		default:
			return m, &CompileError{
				Field:   "mutator.default_items",
				Message: fmt.Sprintf("default_items must be an int, got %v", itemsVal.IncompleteKind()),
				Pos:     itemsVal.Pos(),
			}
		}
	}

	checkVal := v.LookupPath(cue.ParsePath("check"))
	if checkVal.Exists() {
		check, err := parseCheck(checkVal, "mutator.check")
		if err != nil {
			return m, err
		}
		m.Check = check
	}

	var err error
	if m.EmptyLabel, err = optionalString(v, "empty_label"); err != nil {
		return m, err
	}
	if m.ItemLabel, err = optionalString(v, "item_label"); err != nil {
		return m, err
	}
	placeholder, err := optionalString(v, "placeholder")
	if err != nil {
		return m, err
	}
	if placeholder != "" {
		m.Placeholder = placeholder
	}

	return m, nil
}

// parseCheck accepts null, a type name, or a list of type names.
func parseCheck(v cue.Value, field string) (ir.ValueCheck, error) {
	switch v.IncompleteKind() {
	case cue.NullKind:
		return nil, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.ValueCheck{s}, nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var check ir.ValueCheck
		for iter.Next() {
			s, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			check = append(check, s)
		}
		return check, nil
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be null, a string, or a list of strings, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// optionalString reads a string field, returning "" when absent.
func optionalString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", nil
	}
	if k := fv.IncompleteKind(); k != cue.StringKind {
		return "", &CompileError{
			Field:   path,
			Message: fmt.Sprintf("%s must be a string, got %v", path, k),
			Pos:     fv.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
