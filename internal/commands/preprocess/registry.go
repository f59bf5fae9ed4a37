package preprocesscmd

import (
	"errors"

	"github.com/goliatone/go-cjkspacing/internal/commands"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Dependencies are the services the preprocess handlers drive.
type Dependencies struct {
	// Joiner serves raw mode.
	Joiner interfaces.MarkdownJoiner
	// Preprocessor answers renderer support queries.
	Preprocessor BookPreprocessor
	// Factory builds the preprocessor for book mode.
	Factory PreprocessorFactory
	// ExpectedVersion is the mdBook version the protocol was written against.
	ExpectedVersion string
}

// HandlerSet groups the handlers produced by RegisterPreprocessCommands.
type HandlerSet struct {
	Supports *SupportsRendererHandler
	Join     *JoinDocumentHandler
	Book     *PreprocessBookHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	supportsHandlerOpts []commands.HandlerOption[SupportsRendererCommand]
	joinHandlerOpts     []commands.HandlerOption[JoinDocumentCommand]
	bookHandlerOpts     []commands.HandlerOption[PreprocessBookCommand]
}

// WithSupportsHandlerOptions forwards options to the SupportsRendererHandler constructor.
func WithSupportsHandlerOptions(opts ...commands.HandlerOption[SupportsRendererCommand]) Option {
	return func(cfg *options) {
		cfg.supportsHandlerOpts = append(cfg.supportsHandlerOpts, opts...)
	}
}

// WithJoinHandlerOptions forwards options to the JoinDocumentHandler constructor.
func WithJoinHandlerOptions(opts ...commands.HandlerOption[JoinDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.joinHandlerOpts = append(cfg.joinHandlerOpts, opts...)
	}
}

// WithBookHandlerOptions forwards options to the PreprocessBookHandler constructor.
func WithBookHandlerOptions(opts ...commands.HandlerOption[PreprocessBookCommand]) Option {
	return func(cfg *options) {
		cfg.bookHandlerOpts = append(cfg.bookHandlerOpts, opts...)
	}
}

// RegisterPreprocessCommands builds the preprocess command handlers and registers them with
// the provided registry. A nil registry only builds the handlers.
func RegisterPreprocessCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	switch {
	case deps.Joiner == nil:
		return nil, errors.New("preprocess command registration: joiner is nil")
	case deps.Preprocessor == nil:
		return nil, errors.New("preprocess command registration: preprocessor is nil")
	case deps.Factory == nil:
		return nil, errors.New("preprocess command registration: preprocessor factory is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		Supports: NewSupportsRendererHandler(deps.Preprocessor, commands.ModeLogger(provider, commands.ModeSupports), cfg.supportsHandlerOpts...),
		Join:     NewJoinDocumentHandler(deps.Joiner, commands.ModeLogger(provider, commands.ModeRaw), cfg.joinHandlerOpts...),
		Book:     NewPreprocessBookHandler(deps.Factory, deps.ExpectedVersion, commands.ModeLogger(provider, commands.ModeBook), cfg.bookHandlerOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Supports, set.Join, set.Book} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
