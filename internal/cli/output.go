package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure
	ExitCommandError = 2 // Command error (invalid paths, unreadable specs, compile errors)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload, or all errors
	Error  *CLIError   `json:"error,omitempty"` // first error
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E101", etc.
	Message string `json:"message"`           // human-readable message
	Field   string `json:"field,omitempty"`   // offending field path
	File    string `json:"file,omitempty"`    // spec file
	Line    int    `json:"line,omitempty"`    // 1-based line, when known
	Name    string `json:"name,omitempty"`    // statement name
	Details string `json:"details,omitempty"` // additional context
}

// Location returns "file:line", "file" or "".
func (e CLIError) Location() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d", e.File, e.Line)
	default:
		return e.File
	}
}

// JSON reports whether output is JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs a single error in the configured format.
func (f *OutputFormatter) Error(e CLIError) error {
	return f.Errors("", []CLIError{e})
}

// Errors outputs a list of errors under a headline. In JSON the first
// error is the response error and the full list is the data.
func (f *OutputFormatter) Errors(headline string, errs []CLIError) error {
	if len(errs) == 0 {
		return nil
	}

	if f.JSON() {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "error",
			Error:  &errs[0],
			Data:   errs,
		})
	}

	if headline != "" {
		fmt.Fprintln(f.Writer, headline)
		fmt.Fprintln(f.Writer)
	}
	for _, e := range errs {
		if loc := e.Location(); loc != "" {
			fmt.Fprintln(f.Writer, loc)
		}
		subject := e.Code
		if e.Name != "" {
			subject += " " + e.Name
		}
		if e.Field != "" {
			subject += " " + e.Field
		}
		fmt.Fprintf(f.Writer, "  Error [%s]: %s\n", subject, e.Message)
		if e.Details != "" {
			fmt.Fprintf(f.Writer, "  Details: %s\n", e.Details)
		}
	}
	return nil
}
