package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to wrapped command errors; callers match on these
// instead of message text.
const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

// wrapCommandError tags err with the command category and a text code,
// leaving errors that were already wrapped upstream untouched.
func wrapCommandError(err error, msg, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, msg).WithTextCode(code)
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return wrapCommandError(err, "command execution cancelled", commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return wrapCommandError(err, "command execution deadline exceeded", commandContextTimeout)
	default:
		return wrapCommandError(err, "command context error", commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	return wrapCommandError(err, "command execution failed", commandExecuteFailed)
}
