package commands

import (
	"context"
	"maps"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cjkspacing/internal/logging"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler runs one preprocess command: it validates the message, applies
// the optional deadline, reports the outcome and tags failures.
type Handler[T command.Message] struct {
	exec          command.CommandFunc[T]
	logger        interfaces.Logger
	timeout       time.Duration
	operation     string
	messageFields func(T) map[string]any
	reporter      Reporter[T]
	now           func() time.Time
}

// NewHandler creates a handler that satisfies go-command's Commander
// interface. Without WithTimeout the caller's context is the only deadline:
// chapter count and size are unbounded.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:   fn,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.reporter == nil {
		h.reporter = LogReporter[T](h.logger)
	}
	return h
}

// Execute conforms to command.Commander[T].Execute.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return invalidRequest(err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		_, tagged := outcome(err)
		return tagged
	}

	fields := map[string]any{"command": command.GetMessageType(msg)}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.messageFields != nil {
		maps.Copy(fields, h.messageFields(msg))
	}
	logger := logging.WithFields(h.logger, fields)

	started := h.now()
	err := h.exec(ctx, msg)
	if err == nil {
		err = ctx.Err()
	}
	status, tagged := outcome(err)

	h.reporter(ctx, msg, Report{
		Command:   command.GetMessageType(msg),
		Operation: h.operation,
		Fields:    fields,
		Elapsed:   h.now().Sub(started),
		Err:       err,
		Code:      ErrorCode(tagged),
		Status:    status,
		Logger:    logger,
	})
	return tagged
}

// WithTimeout bounds each execution. Zero or negative leaves the deadline to
// the caller.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

// WithLogger injects the logger used during execution. Defaults to a no-op logger.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = logging.OrNoOp(logger)
	}
}

// WithOperation names the operation in every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields derives extra log fields from each message.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.messageFields = fn
	}
}

// WithReporter replaces the outcome callback. Defaults to LogReporter over
// the handler logger.
func WithReporter[T command.Message](reporter Reporter[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.reporter = reporter
	}
}
