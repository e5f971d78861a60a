package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Items   int                        `json:"items"`
	Codes   int                        `json:"codes"`
	Markers int                        `json:"markers"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <codex-dir>",
		Short: "Validate a codex directory",
		Long: `Validate CUE codex definitions without running them.

Reports every problem found rather than stopping at the first: items
without text, unknown categories, code levels below 1, marker patterns
that can never match, and malformed sections.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	loadResult, err := LoadCUE(dir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(f, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(f, ErrCodeGeneric, err.Error(), nil)
	}

	f.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	validationErrors := compiler.ValidateCodex(loadResult.CUEValue)
	if len(validationErrors) > 0 {
		return outputValidationErrors(f, validationErrors)
	}

	// A valid codex always compiles; the counts come from the compiled form.
	cx, err := compiler.CompileCodex(loadResult.CUEValue)
	if err != nil {
		return outputValidateError(f, ErrCodeInvalidCodex, err.Error(), nil)
	}

	result := ValidationResult{
		Valid:   true,
		Items:   len(cx.Items),
		Codes:   len(cx.Codes),
		Markers: len(cx.Markers),
	}
	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "✓ Codex valid (%d item(s), %d code(s), %d marker(s))\n", result.Items, result.Codes, result.Markers)
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(f *OutputFormatter, code, message string, details any) error {
	_ = f.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(f *OutputFormatter, errs []compiler.ValidationError) error {
	if f.Format == "json" {
		result := ValidationResult{Valid: false, Errors: errs}
		if err := f.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
