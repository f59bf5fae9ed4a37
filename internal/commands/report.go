package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cjkspacing/internal/logging"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

// Status is the outcome of one preprocess command.
type Status string

const (
	StatusDone        Status = "done"
	StatusDeclined    Status = "declined"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// Report describes a finished command execution.
type Report struct {
	Command   string
	Operation string
	Fields    map[string]any
	Elapsed   time.Duration
	Err       error
	Code      string
	Status    Status
	Logger    interfaces.Logger
}

// Reporter is invoked once per execution, after the outcome is known.
type Reporter[T command.Message] func(ctx context.Context, msg T, report Report)

// LogReporter logs each report. mdBook relays preprocessor stderr to the
// user, so completed and declined runs log at debug level.
func LogReporter[T command.Message](logger interfaces.Logger) Reporter[T] {
	logger = logging.OrNoOp(logger)
	return func(_ context.Context, _ T, report Report) {
		entry := report.Logger
		if entry == nil {
			entry = logging.WithFields(logger, report.Fields)
		}
		args := []any{"elapsed_ms", report.Elapsed.Milliseconds()}
		switch report.Status {
		case StatusDone:
			entry.Debug("preprocess.command.done", args...)
		case StatusDeclined:
			entry.Debug("preprocess.command.declined", append(args, "reason", report.Err)...)
		case StatusInterrupted:
			entry.Warn("preprocess.command.interrupted", append(args, "error_code", report.Code, "error", report.Err)...)
		default:
			entry.Error("preprocess.command.failed", append(args, "error_code", report.Code, "error", report.Err)...)
		}
	}
}
