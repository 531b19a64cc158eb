package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/plusminus/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Blocks int                        `json:"blocks"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate block definitions without compiling",
		Long: `Validate CUE block definitions without writing IR.

Reports every problem in every block rather than stopping at the first,
which makes it the faster feedback loop while editing definitions.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	// The loader is only used for its CUE value; validateAll walks the blocks itself.
	loadResult, loadErrors := LoadDefinitions(defsDir, LoadModeFailFast)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	count, validationErrors := validateAll(loadResult.CUEValue, formatter)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, count, validationErrors)
	}

	return outputValidateSuccess(formatter, count)
}

// validateAll compiles and validates every block in the CUE value.
// Returns the number of blocks seen and all errors found.
func validateAll(value cue.Value, formatter *OutputFormatter) (int, []compiler.ValidationError) {
	var allErrors []compiler.ValidationError
	count := 0

	blocksVal := value.LookupPath(cue.ParsePath("block"))
	if blocksVal.Exists() {
		iter, err := blocksVal.Fields()
		if err == nil {
			for iter.Next() {
				count++
				name := iter.Selector().String()
				formatter.VerboseLog("Validating block: %s", name)

				def, compileErr := compiler.CompileBlock(iter.Value())
				if compileErr != nil {
					var cErr *compiler.CompileError
					if errors.As(compileErr, &cErr) {
						allErrors = append(allErrors, compiler.ValidationError{
							Field:   "block." + name + "." + cErr.Field,
							Message: cErr.Message,
							Code:    MapFieldToErrorCode(cErr.Field),
							Line:    getLineFromCuePos(cErr.Pos),
						})
					} else {
						allErrors = append(allErrors, compiler.ValidationError{
							Field:   "block." + name,
							Message: compileErr.Error(),
							Code:    ErrCodeGeneric,
						})
					}
					continue
				}

				// Run schema validation on the compiled definition
				line := getLineFromCuePos(iter.Value().Pos())
				for _, verr := range compiler.Validate(def) {
					verr.Field = "block." + name + "." + verr.Field
					if verr.Line == 0 {
						verr.Line = line
					}
					allErrors = append(allErrors, verr)
				}
			}
		}
	}

	if count == 0 && len(allErrors) == 0 {
		allErrors = append(allErrors, compiler.ValidationError{
			Field:   "block",
			Message: "no block definitions found",
			Code:    ErrCodeGeneric,
		})
	}

	return count, allErrors
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, count int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Blocks: count})
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d block definition(s) valid\n", count)
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, count int, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Blocks: count,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateDefsDir validates all block definitions in a directory.
// This is a helper function for external callers.
func ValidateDefsDir(defsDir string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadDefinitions(defsDir, LoadModeFailFast)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	silentFormatter := &OutputFormatter{Format: "text", Verbose: false, Writer: io.Discard}
	_, validationErrs := validateAll(loadResult.CUEValue, silentFormatter)

	return validationErrs, nil
}
