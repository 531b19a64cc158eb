package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/plusminus/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// BlockDef errors (E101-E109)
	ErrBlockTypeInvalid = "E101" // type name must be snake_case
	ErrBlockNoItemLabel = "E102" // item_label is required

	// MutatorDef errors (E110-E119)
	ErrDefaultItemsNegative = "E110" // default_items must be >= 0
	ErrInvalidPlaceholder   = "E111" // placeholder must be label or quotes
	ErrEmptyCheckType       = "E112" // check entries must be non-empty
	ErrDuplicateCheckType   = "E113" // check entries must be unique
	ErrMissingEmptyLabel    = "E114" // label placeholder needs empty_label
)

var blockTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled block definition.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch def := v.(type) {
	case *ir.BlockDef:
		return validateBlockDef(def)
	case ir.BlockDef:
		return validateBlockDef(&def)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateBlockDef(def *ir.BlockDef) []ValidationError {
	var errs []ValidationError

	// E101: type name
	if !blockTypePattern.MatchString(def.Type) {
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("block type %q must be lower snake_case", def.Type),
			Code:    ErrBlockTypeInvalid,
		})
	}

	errs = append(errs, validateCheck(def.Output, "output")...)
	errs = append(errs, validateMutator(&def.Mutator)...)

	return errs
}

func validateMutator(m *ir.MutatorDef) []ValidationError {
	var errs []ValidationError

	// E110: default_items must be non-negative
	if m.DefaultItems < 0 {
		errs = append(errs, ValidationError{
			Field:   "mutator.default_items",
			Message: fmt.Sprintf("default_items must be >= 0, got %d", m.DefaultItems),
			Code:    ErrDefaultItemsNegative,
		})
	}

	// E111: placeholder strategy
	if !ir.ValidPlaceholders[m.Placeholder] {
		errs = append(errs, ValidationError{
			Field:   "mutator.placeholder",
			Message: fmt.Sprintf("placeholder must be %q or %q, got %q", ir.PlaceholderLabel, ir.PlaceholderQuotes, m.Placeholder),
			Code:    ErrInvalidPlaceholder,
		})
	}

	// E102: the first slot always carries a label
	if strings.TrimSpace(m.ItemLabel) == "" {
		errs = append(errs, ValidationError{
			Field:   "mutator.item_label",
			Message: "item_label is required and must be non-empty",
			Code:    ErrBlockNoItemLabel,
		})
	}

	// E114: label placeholder needs text to show
	if m.Placeholder == ir.PlaceholderLabel && strings.TrimSpace(m.EmptyLabel) == "" {
		errs = append(errs, ValidationError{
			Field:   "mutator.empty_label",
			Message: "empty_label is required when placeholder is \"label\"",
			Code:    ErrMissingEmptyLabel,
		})
	}

	errs = append(errs, validateCheck(m.Check, "mutator.check")...)

	return errs
}

// validateCheck reports blank and duplicate type names.
func validateCheck(check ir.ValueCheck, field string) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, typ := range check {
		if strings.TrimSpace(typ) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "type name must be non-empty",
				Code:    ErrEmptyCheckType,
			})
			continue
		}
		if seen[typ] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("duplicate type name: %q", typ),
				Code:    ErrDuplicateCheckType,
			})
		}
		seen[typ] = true
	}

	return errs
}
