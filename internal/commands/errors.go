package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to preprocess command failures that reach the caller
// untagged.
const (
	RequestInvalidCode = "PREPROCESS_REQUEST_INVALID"
	RunCanceledCode    = "PREPROCESS_CANCELED"
	RunDeadlineCode    = "PREPROCESS_DEADLINE_EXCEEDED"
	RunFailedCode      = "PREPROCESS_FAILED"
)

// ErrDeclined marks an answer rather than a failure, such as a renderer the
// preprocessor does not handle. Declined errors reach the caller as returned.
var ErrDeclined = errors.New("preprocess declined")

// outcome classifies the result of one execution. Failures are tagged with
// a category and text code unless the markdown or book layer already tagged
// them.
func outcome(err error) (Status, error) {
	switch {
	case err == nil:
		return StatusDone, nil
	case errors.Is(err, ErrDeclined):
		return StatusDeclined, err
	case errors.Is(err, context.Canceled):
		return StatusInterrupted, tag(err, goerrors.CategoryCommand, "preprocess run canceled", RunCanceledCode)
	case errors.Is(err, context.DeadlineExceeded):
		return StatusInterrupted, tag(err, goerrors.CategoryCommand, "preprocess run exceeded its deadline", RunDeadlineCode)
	default:
		return StatusFailed, tag(err, goerrors.CategoryCommand, "preprocess run failed", RunFailedCode)
	}
}

func invalidRequest(err error) error {
	return tag(err, goerrors.CategoryValidation, "preprocess request rejected", RequestInvalidCode)
}

func tag(err error, category goerrors.Category, message, code string) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

// ErrorCode returns the text code carried by err, or "" when it has none.
func ErrorCode(err error) string {
	var tagged *goerrors.Error
	if errors.As(err, &tagged) {
		return tagged.TextCode
	}
	return ""
}
