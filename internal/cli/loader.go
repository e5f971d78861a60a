package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/compiler"
)

// LoadResult contains the results of loading a codex directory.
type LoadResult struct {
	Codex     *compiler.Codex
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during codex loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCUE checks dir and builds its CUE value without compiling it.
func LoadCUE(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("codex directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing codex directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	value, err := compiler.LoadDir(dir)
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			return nil, &LoadError{Code: ErrCodeBuildFailed, Message: ce.Message, Pos: ce.Pos}
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}

	return &LoadResult{CUEValue: value, FileCount: len(cueFiles)}, nil
}

// LoadCodex loads and compiles the codex in dir, stopping at the first
// error.
func LoadCodex(dir string) (*LoadResult, error) {
	res, err := LoadCUE(dir)
	if err != nil {
		return nil, err
	}

	cx, err := compiler.CompileCodex(res.CUEValue)
	if err != nil {
		return nil, convertCompileError(err)
	}
	res.Codex = cx
	return res, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeInvalidCodex,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeInvalidCodex = "E100" // Codex failed to compile

	ErrCodeItemNotFound  = "E201" // Dispatch of an unregistered item
	ErrCodeMirrorClaim   = "E202" // check found a mirror claim
	ErrCodeUnlockFailed  = "E203" // At least one unlock attempt failed
	ErrCodeInvalidFormat = "E204" // Unknown --format value
	ErrCodeQuotaExceeded = "E205" // reflect refused by the daily quota
	ErrCodeBadFragments  = "E206" // shard input failed to parse
)
