package scm

import (
	"errors"
	"fmt"
	"regexp"
)

// ConflictError reports a commit rejected because the change was modified
// concurrently. The caller should retry with fresh review state.
type ConflictError struct {
	ChangeID string
	Err      error
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("change %s rejected due to concurrent modification: %v", e.ChangeID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConflictError) Unwrap() error {
	return e.Err
}

// CommandError reports a mechanically failed version-control command, such
// as a bad job id or invalid fix status. The message is user-actionable.
type CommandError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Patterns for the actionable fragment of known command failures. The first
// capture (or the full match) becomes the user-facing message.
var commandMessagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Job '[^']+' doesn't exist\.`),
	regexp.MustCompile(`Job fix status must be one of [^.]*\.`),
}

// Translate rewrites known command errors into their actionable fragment
// while preserving the error kind. Conflict and unknown errors pass through
// unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return err
	}

	for _, pattern := range commandMessagePatterns {
		if fragment := pattern.FindString(cmdErr.Message); fragment != "" {
			return &CommandError{Message: fragment, Err: cmdErr}
		}
	}
	return err
}
