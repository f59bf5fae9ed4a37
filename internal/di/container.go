// Package di wires the join engine, cache, logging and command handlers from
// a runtime configuration.
package di

import (
	"errors"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goliatone/go-cjkspacing/internal/book"
	"github.com/goliatone/go-cjkspacing/internal/cache"
	preprocesscmd "github.com/goliatone/go-cjkspacing/internal/commands/preprocess"
	"github.com/goliatone/go-cjkspacing/internal/logging"
	"github.com/goliatone/go-cjkspacing/internal/logging/console"
	"github.com/goliatone/go-cjkspacing/internal/logging/gologger"
	"github.com/goliatone/go-cjkspacing/internal/markdown"
	"github.com/goliatone/go-cjkspacing/internal/runtimeconfig"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

// Container wires module dependencies for one configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider   interfaces.LoggerProvider
	externalProvider bool
	logWriter        io.Writer

	cache    interfaces.CacheProvider
	closers  []io.Closer
	registry preprocesscmd.CommandRegistry

	joiner       *markdown.Service
	preprocessor *book.Preprocessor
	handlers     *preprocesscmd.HandlerSet

	derived []*Container
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
			c.externalProvider = true
		}
	}
}

// WithLogWriter sets where the console provider writes. Defaults to stderr.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		if w != nil {
			c.logWriter = w
		}
	}
}

// WithCache supplies the join cache. The container does not close it.
func WithCache(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cache = provider
	}
}

// WithCommandRegistry registers the preprocess command handlers with reg.
func WithCommandRegistry(reg preprocesscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// NewContainer validates cfg and builds every service it describes.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:    cfg,
		logWriter: os.Stderr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureCache(); err != nil {
		return nil, err
	}

	serviceOpts := []markdown.ServiceOption{
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	}
	if c.cache != nil {
		serviceOpts = append(serviceOpts, markdown.WithCache(c.cache))
	}
	c.joiner = markdown.NewService(markdown.Config{
		Extensions:  cfg.Markdown.Extensions,
		FrontMatter: cfg.Markdown.FrontMatter,
	}, serviceOpts...)

	c.preprocessor = book.NewPreprocessor(c.joiner,
		book.WithLogger(logging.BookLogger(c.loggerProvider)),
		book.WithSkipDrafts(cfg.Book.SkipDrafts),
	)

	handlers, err := preprocesscmd.RegisterPreprocessCommands(c.registry, preprocesscmd.Dependencies{
		Joiner:          c.joiner,
		Preprocessor:    c.preprocessor,
		Factory:         c.PreprocessorFor,
		ExpectedVersion: cfg.Book.ExpectedVersion,
	}, c.loggerProvider)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.handlers = handlers

	logging.ModuleLogger(c.loggerProvider, "").Debug("container.configured",
		"logging_provider", c.Config.Logging.Provider,
		"cache_enabled", c.cache != nil,
		"extensions", strings.Join(cfg.Markdown.Extensions, ","),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{
			Writer:   c.logWriter,
			MinLevel: &level,
		})
	}
	return nil
}

func (c *Container) configureCache() error {
	if c.cache != nil || !c.Config.Cache.Enabled {
		return nil
	}
	store, err := cache.Open(c.Config.Cache.Path)
	if err != nil {
		return err
	}
	c.cache = store
	c.closers = append(c.closers, store)
	logging.CacheLogger(c.loggerProvider).Debug("cache.opened", "path", store.Path())
	return nil
}

// PreprocessorFor returns the preprocessor for a book run, honouring the
// [preprocessor.fix-cjk-spacing] table carried in the book context. When the
// table changes nothing the container's own preprocessor is returned.
func (c *Container) PreprocessorFor(bctx *book.Context) (preprocesscmd.BookPreprocessor, error) {
	if bctx == nil {
		return c.preprocessor, nil
	}
	settings, err := runtimeconfig.PreprocessorFromContext(bctx.Config)
	if err != nil {
		return nil, err
	}
	cfg := c.Config
	settings.Apply(&cfg)
	if reflect.DeepEqual(cfg, c.Config) {
		return c.preprocessor, nil
	}

	opts := []Option{WithLogWriter(c.logWriter)}
	if c.externalProvider {
		opts = append(opts, WithLoggerProvider(c.loggerProvider))
	}
	if c.cache != nil && cfg.Cache.Enabled && cfg.Cache.Path == c.Config.Cache.Path {
		opts = append(opts, WithCache(c.cache))
	}
	derived, err := NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	c.derived = append(c.derived, derived)
	return derived.preprocessor, nil
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Joiner exposes the markdown join service.
func (c *Container) Joiner() interfaces.MarkdownJoiner {
	return c.joiner
}

// Preprocessor exposes the book preprocessor.
func (c *Container) Preprocessor() *book.Preprocessor {
	return c.preprocessor
}

// Handlers exposes the preprocess command handlers.
func (c *Container) Handlers() *preprocesscmd.HandlerSet {
	return c.handlers
}

// Close releases resources opened by the container, including those of
// containers derived through PreprocessorFor.
func (c *Container) Close() error {
	var errs []error
	for _, derived := range c.derived {
		errs = append(errs, derived.Close())
	}
	c.derived = nil
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i].Close())
	}
	c.closers = nil
	return errors.Join(errs...)
}
