package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/weave/internal/graph"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain failure (entity missing, precondition violated, commit divergence)
	ExitCommandError = 2 // Command error (file not found, parse error, bad recipe)
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// GetExitCode extracts the exit code from an error. Classified graph
// errors map load/parse failures to ExitCommandError and everything else
// to ExitFailure; unclassified errors default to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch graph.CodeOf(err) {
	case graph.ErrCodeDocumentNotFound, graph.ErrCodeDocumentParse:
		return ExitCommandError
	default:
		return ExitFailure
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Response is the standard JSON response shape of CLI output.
type Response struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *ErrorOut `json:"error,omitempty"` // error details
}

// ErrorOut is the error structure for JSON responses.
type ErrorOut struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format. In text
// mode, data is printed with a trailing newline.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs a classified error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ErrorOut{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// reportError prints err through the formatter (classified errors get
// their code, everything else passes through with full detail) and
// returns an ExitError carrying the right exit code.
func (f *OutputFormatter) reportError(err error) error {
	code := graph.CodeOf(err)
	if code == "" {
		// Unexpected error: keep the full diagnostic chain.
		_ = f.Error("UNEXPECTED", err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
	}
	var ge *graph.Error
	var details any
	if errors.As(err, &ge) && ge.Details != nil {
		details = ge.Details
	}
	_ = f.Error(string(code), err.Error(), details)
	return &ExitError{Code: GetExitCode(err), Message: err.Error(), Err: err}
}
