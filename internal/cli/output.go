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
	ExitFailure      = 1 // Rejected input: invalid import batch, constraint violation
	ExitCommandError = 2 // Bad flags, unreadable file, database not ready
)

// ExitError carries the process exit code of a failed command. Commands
// print the error through the formatter before returning it, so main only
// needs the code.
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

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope of every --format json result.
type CLIResponse struct {
	Status  string      `json:"status"` // "ok" or "error"
	BatchID string      `json:"batch_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *CLIError   `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string      `json:"code"` // VALIDATION, CONSTRAINT, NOT_READY, BAD_REQUEST, INTERNAL
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// textRenderer is implemented by command results that have a human form.
type textRenderer interface {
	WriteText(w io.Writer) error
}

// OutputFormatter writes command results as text or as a JSON CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output; falls back to Writer
	Verbose   bool
}

func (f *OutputFormatter) wantsJSON() bool {
	return f.Format == "json"
}

// Success writes a command result. In text mode a textRenderer draws
// itself; anything else is printed with fmt.
func (f *OutputFormatter) Success(data interface{}) error {
	return f.SuccessBatch("", data)
}

// SuccessBatch is Success for results produced by an import batch. The
// batch id goes on the JSON envelope.
func (f *OutputFormatter) SuccessBatch(batchID string, data interface{}) error {
	if f.wantsJSON() {
		return f.encode(CLIResponse{Status: "ok", BatchID: batchID, Data: data})
	}
	if r, ok := data.(textRenderer); ok {
		return r.WriteText(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a failure. Details are printed in text mode only with
// --verbose.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.wantsJSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog prints a diagnostic line when --verbose is set. It goes to
// ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}
