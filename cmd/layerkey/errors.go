package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbaliyan/layerkey"
	"github.com/rbaliyan/layerkey/internal/config"
	"github.com/rbaliyan/layerkey/internal/input"
)

// Exit codes.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitUsage indicates invalid flags, settings or wordlist
	ExitUsage = 2
	// ExitAborted indicates the user declined to continue
	ExitAborted = 3
)

// CLIError is an error with an exit code.
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a CLIError around err.
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Cause: err}
}

// NewCLIError creates a CLIError without a cause.
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// HandleError prints err to the command's error output and returns the
// exit code for it.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, input.ErrAborted) || errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Aborted.")
		return ExitAborted
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Error())
		return cliErr.Code
	}

	cmd.PrintErrln("Error:", err)
	if errors.Is(err, config.ErrInvalidSettings) || layerkey.IsInvalidParams(err) {
		return ExitUsage
	}
	return ExitError
}
