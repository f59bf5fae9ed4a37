package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

const (
	rootModule     = "cjk"
	markdownModule = "cjk.markdown"
	bookModule     = "cjk.book"
	cacheModule    = "cjk.cache"
)

const (
	fieldChapterName = "chapter"
	fieldChapterPath = "chapter_path"
	fieldRunID       = "run_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

// WithFields returns logger with fields attached when it implements
// interfaces.FieldsLogger. Nil values and blank strings are dropped, so a
// draft chapter logs no path instead of an empty one.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	kept := make(map[string]any, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
		}
		kept[key] = value
	}
	if len(kept) == 0 {
		return logger
	}
	return fieldsLogger.WithFields(kept)
}

// OrNoOp returns logger, or the no-op logger when it is nil.
func OrNoOp(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

// MarkdownLogger returns the logger namespace reserved for the join engine.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// BookLogger returns the logger namespace reserved for the book preprocessor.
func BookLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, bookModule)
}

// CacheLogger returns the logger namespace reserved for the join cache.
func CacheLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cacheModule)
}

// WithChapterContext enriches logger with the trimmed chapter name and
// source path.
func WithChapterContext(logger interfaces.Logger, name, path string) interfaces.Logger {
	return WithFields(logger, map[string]any{
		fieldChapterName: strings.TrimSpace(name),
		fieldChapterPath: strings.TrimSpace(path),
	})
}

// WithRunID tags every entry of a preprocessing run with its correlation id.
func WithRunID(logger interfaces.Logger, runID string) interfaces.Logger {
	return WithFields(logger, map[string]any{fieldRunID: runID})
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
