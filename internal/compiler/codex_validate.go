package compiler

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// Validation error codes.
const (
	CodeGeneric         = "E001"
	CodeItemText        = "E101" // item without text
	CodeItemCategory    = "E102" // unknown item category
	CodeLevel           = "E103" // code level below 1
	CodeMarkerPattern   = "E104" // empty marker pattern
	CodeStructure       = "E105" // top-level field is the wrong shape
	CodeDuplicateMarker = "E106" // marker pattern shadowed by an earlier one
)

// ValidationError is a single codex problem.
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

// ValidateCodex checks every definition in v and collects all problems,
// unlike CompileCodex which stops at the first.
func ValidateCodex(v cue.Value) []ValidationError {
	if err := v.Err(); err != nil {
		return []ValidationError{toValidationError(formatCUEError(err), "cue")}
	}

	var out []ValidationError
	collect := func(path string, compile func(label string, fv cue.Value) error) {
		err := eachField(v, path, func(label string, fv cue.Value) error {
			if err := compile(label, fv); err != nil {
				out = append(out, toValidationError(err, path+"."+label))
			}
			return nil
		})
		if err != nil {
			out = append(out, toValidationError(err, path))
		}
	}

	collect("item", func(label string, fv cue.Value) error {
		_, err := compileItem(label, fv)
		return err
	})
	collect("code", func(label string, fv cue.Value) error {
		_, err := compileCode(label, fv)
		return err
	})

	// Marker iteration order decides which of two overlapping patterns wins;
	// flag patterns that can never match because an earlier one is contained
	// in them.
	var seen []string
	collect("marker", func(label string, fv cue.Value) error {
		if _, err := compileMarker(label, fv); err != nil {
			return err
		}
		for _, earlier := range seen {
			if strings.Contains(label, earlier) {
				return &CompileError{
					Field:   "marker." + label,
					Message: fmt.Sprintf("always shadowed by earlier marker %q", earlier),
					Pos:     fv.Pos(),
				}
			}
		}
		seen = append(seen, label)
		return nil
	})

	denyVal := v.LookupPath(cue.ParsePath("denylist"))
	if denyVal.Exists() {
		if _, err := stringList(denyVal, "denylist"); err != nil {
			out = append(out, toValidationError(err, "denylist"))
		}
	}

	return out
}

func toValidationError(err error, field string) ValidationError {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ValidationError{
			Field:   ce.Field,
			Message: ce.Message,
			Code:    codeForField(ce),
			Line:    lineOf(ce.Pos),
		}
	}
	return ValidationError{Field: field, Message: err.Error(), Code: CodeGeneric}
}

func codeForField(ce *CompileError) string {
	switch {
	case ce.Message == "must be a struct":
		return CodeStructure
	case strings.HasSuffix(ce.Field, ".text"):
		return CodeItemText
	case strings.HasSuffix(ce.Field, ".category"):
		return CodeItemCategory
	case strings.HasSuffix(ce.Field, ".level"):
		return CodeLevel
	case ce.Field == "marker":
		return CodeMarkerPattern
	case strings.HasPrefix(ce.Field, "marker."):
		return CodeDuplicateMarker
	default:
		return CodeGeneric
	}
}

func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}
