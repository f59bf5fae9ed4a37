package preprocesscmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cjkspacing/internal/book"
	"github.com/goliatone/go-cjkspacing/internal/commands"
	"github.com/goliatone/go-cjkspacing/internal/logging"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

const (
	supportsOperation = "preprocess.supports_renderer"
	joinOperation     = "preprocess.join_document"
	bookOperation     = "preprocess.book"
)

// RawInputInvalidUTF8Code tags raw input that is not valid UTF-8.
const RawInputInvalidUTF8Code = "RAW_INPUT_INVALID_UTF8"

var (
	// ErrRendererUnsupported is returned when the preprocessor declines a
	// renderer. It is a commands.ErrDeclined answer, not a failure.
	ErrRendererUnsupported = fmt.Errorf("%w: renderer not supported", commands.ErrDeclined)
	// ErrInvalidUTF8 is the cause of RAW_INPUT_INVALID_UTF8 errors.
	ErrInvalidUTF8 = errors.New("preprocess command: input is not valid UTF-8")
)

var (
	_ command.Commander[SupportsRendererCommand] = (*SupportsRendererHandler)(nil)
	_ command.Commander[JoinDocumentCommand]     = (*JoinDocumentHandler)(nil)
	_ command.Commander[PreprocessBookCommand]   = (*PreprocessBookHandler)(nil)
)

// BookPreprocessor is the preprocessor surface the handlers drive.
type BookPreprocessor interface {
	Name() string
	SupportsRenderer(renderer string) bool
	Run(ctx context.Context, bctx *book.Context, b *book.Book) (*book.Book, book.Summary, error)
}

// PreprocessorFactory builds the preprocessor for one book run. The context
// carries the book's configuration so settings from book.toml apply.
type PreprocessorFactory func(bctx *book.Context) (BookPreprocessor, error)

// SupportsRendererHandler answers renderer support queries.
type SupportsRendererHandler struct {
	inner *commands.Handler[SupportsRendererCommand]
}

// NewSupportsRendererHandler creates a handler bound to pre.
func NewSupportsRendererHandler(pre BookPreprocessor, logger interfaces.Logger, opts ...commands.HandlerOption[SupportsRendererCommand]) *SupportsRendererHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg SupportsRendererCommand) error {
		if pre.SupportsRenderer(msg.Renderer) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrRendererUnsupported, msg.Renderer)
	}

	handlerOpts := []commands.HandlerOption[SupportsRendererCommand]{
		commands.WithLogger[SupportsRendererCommand](baseLogger),
		commands.WithOperation[SupportsRendererCommand](supportsOperation),
		commands.WithMessageFields(func(msg SupportsRendererCommand) map[string]any {
			return map[string]any{"renderer": msg.Renderer}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SupportsRendererHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SupportsRendererCommand].
func (h *SupportsRendererHandler) Execute(ctx context.Context, msg SupportsRendererCommand) error {
	return h.inner.Execute(ctx, msg)
}

// JoinDocumentHandler joins a raw markdown document.
type JoinDocumentHandler struct {
	inner *commands.Handler[JoinDocumentCommand]
}

// NewJoinDocumentHandler creates a handler bound to joiner.
func NewJoinDocumentHandler(joiner interfaces.MarkdownJoiner, logger interfaces.Logger, opts ...commands.HandlerOption[JoinDocumentCommand]) *JoinDocumentHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg JoinDocumentCommand) error {
		data, err := io.ReadAll(msg.Input)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if !utf8.Valid(data) {
			return goerrors.Wrap(ErrInvalidUTF8, goerrors.CategoryValidation, "raw input must be UTF-8").
				WithTextCode(RawInputInvalidUTF8Code)
		}

		result, err := joiner.Join(ctx, string(data))
		if err != nil {
			return err
		}
		if _, err := io.WriteString(msg.Output, result.Content); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		logging.WithFields(baseLogger, map[string]any{
			"soft_breaks": result.SoftBreaks,
			"removed":     result.Removed,
			"cached":      result.Cached,
		}).Debug("preprocess.command.join_document.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[JoinDocumentCommand]{
		commands.WithLogger[JoinDocumentCommand](baseLogger),
		commands.WithOperation[JoinDocumentCommand](joinOperation),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &JoinDocumentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[JoinDocumentCommand].
func (h *JoinDocumentHandler) Execute(ctx context.Context, msg JoinDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PreprocessBookHandler runs one mdBook preprocessing round trip.
type PreprocessBookHandler struct {
	inner *commands.Handler[PreprocessBookCommand]
}

// NewPreprocessBookHandler creates a handler that builds its preprocessor
// through factory once the book context is known. A non-empty
// expectedVersion enables the mdBook version check.
func NewPreprocessBookHandler(factory PreprocessorFactory, expectedVersion string, logger interfaces.Logger, opts ...commands.HandlerOption[PreprocessBookCommand]) *PreprocessBookHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg PreprocessBookCommand) error {
		bctx, input, err := book.ParseInput(msg.Input)
		if err != nil {
			return err
		}

		pre, err := factory(bctx)
		if err != nil {
			return err
		}

		if warning := book.VersionWarning(pre.Name(), expectedVersion, bctx.MDBookVersion); warning != "" {
			baseLogger.Warn("preprocess.command.book.version_mismatch",
				"expected", expectedVersion,
				"actual", bctx.MDBookVersion,
			)
			if msg.Diagnostics != nil {
				_, _ = fmt.Fprintf(msg.Diagnostics, "Warning: %s\n", warning)
			}
		}

		output, summary, err := pre.Run(ctx, bctx, input)
		if err != nil {
			return err
		}
		if err := book.WriteBook(msg.Output, output); err != nil {
			return fmt.Errorf("write book: %w", err)
		}

		logging.WithFields(baseLogger, map[string]any{
			"run_id":   summary.RunID,
			"chapters": summary.Chapters,
			"changed":  summary.Changed,
			"failed":   summary.Failed,
		}).Debug("preprocess.command.book.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[PreprocessBookCommand]{
		commands.WithLogger[PreprocessBookCommand](baseLogger),
		commands.WithOperation[PreprocessBookCommand](bookOperation),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PreprocessBookHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PreprocessBookCommand].
func (h *PreprocessBookHandler) Execute(ctx context.Context, msg PreprocessBookCommand) error {
	return h.inner.Execute(ctx, msg)
}
