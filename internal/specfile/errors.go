package specfile

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for spec loading. Structural validation of loaded statements
// uses the E1xx codes of package viewspec.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No spec files found
	ErrCodeParseFailed = "E004" // CUE or YAML syntax error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeUnknownKey  = "E010" // Unknown statement kind
	ErrCodeWrongType   = "E011" // Field has the wrong type
)

// LoadError is an error in a spec file, with source position if available.
type LoadError struct {
	Code    string
	Field   string
	Message string
	File    string
	Line    int // 1-based, 0 when unknown
	Column  int
}

func (e *LoadError) Error() string {
	prefix := e.Code
	if e.Field != "" {
		prefix += " " + e.Field
	}
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, prefix, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, prefix, e.Message)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
}

// atPos returns a LoadError positioned at a CUE source position.
func atPos(code, field, msg string, pos token.Pos) *LoadError {
	e := &LoadError{Code: code, Field: field, Message: msg}
	if pos.IsValid() {
		e.File = pos.Filename()
		e.Line = pos.Line()
		e.Column = pos.Column()
	}
	return e
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, code string) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return atPos(code, "", firstErr.Error(), positions[0])
	}
	return &LoadError{Code: code, Message: firstErr.Error()}
}
