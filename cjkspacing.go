// Package cjkspacing removes the soft line breaks markdown authors leave
// between two CJK characters, which renderers would otherwise show as a
// stray space. It backs the mdbook-fix-cjk-spacing preprocessor.
package cjkspacing

import (
	"github.com/goliatone/go-cjkspacing/internal/book"
	"github.com/goliatone/go-cjkspacing/internal/di"
	"github.com/goliatone/go-cjkspacing/internal/markdown"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

// PreprocessorName is the name mdBook knows the preprocessor by.
const PreprocessorName = book.PreprocessorName

// JoinResult describes the outcome of joining one document.
type JoinResult = interfaces.JoinResult

// Book and Context are the mdBook preprocessor protocol types.
type (
	Book    = book.Book
	Context = book.Context
	Summary = book.Summary
)

// JoinCJKSpacing removes every soft break whose neighbouring visible text
// ends and starts with a CJK character, using the default extensions.
func JoinCJKSpacing(markdownText string) (string, error) {
	return markdown.JoinCJKSpacing(markdownText)
}

// Module is the top level façade over the configured services.
type Module struct {
	container *di.Container
}

// New constructs a Module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Joiner returns the markdown join service.
func (m *Module) Joiner() interfaces.MarkdownJoiner {
	return m.container.Joiner()
}

// Preprocessor returns the mdBook preprocessor.
func (m *Module) Preprocessor() *book.Preprocessor {
	return m.container.Preprocessor()
}

// Close releases the cache and any other resources held by the module.
func (m *Module) Close() error {
	return m.container.Close()
}
