package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/fprecon/internal/compiler"
	"github.com/roach88/fprecon/internal/ir"
)

// LoadError represents an error that occurred while loading a profile.
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

// LoadProfile resolves the search profile for a command: the built-in
// default when path is empty, otherwise the profile called name compiled
// from the CUE file or directory at path.
func LoadProfile(path, name string) (ir.Profile, error) {
	p, err := compiler.ResolveProfile(path, name)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ir.Profile{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("profile path not found: %s", path)}
	}
	return ir.Profile{}, convertCompileError(err)
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := compileErr.Code
		if code == "" {
			code = MapFieldToErrorCode(compileErr.Field)
		}
		return &LoadError{
			Code:    code,
			Message: err.Error(),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeProfile, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeInvalidInput = "E002" // Input document unreadable or malformed
	ErrCodeLoadFailed   = "E004" // CUE load failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeWriteFailed  = "E007" // Journal write error
	ErrCodeDatabase     = "E008" // Journal open or read error
	ErrCodeProfile      = "E009" // Profile selection failed

	// Profile schema errors, reported by CUE before profile checks run.
	// Profile checks report the compiler's own E2xx codes.
	ErrCodeMissingKnownKeys = "E210" // known_keys absent
	ErrCodeInvalidField     = "E211" // field fails its schema constraint
)

// MapFieldToErrorCode maps a CUE schema error field to an error code.
func MapFieldToErrorCode(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	switch field {
	case "known_keys":
		return ErrCodeMissingKnownKeys
	case "name", "error_candidates", "seeds",
		"max_undefined_combos", "max_undefined_bits",
		"max_error_combos", "max_error_keys", "max_evaluations":
		return ErrCodeInvalidField
	case "cue":
		return ErrCodeLoadFailed
	default:
		return ErrCodeGeneric
	}
}
