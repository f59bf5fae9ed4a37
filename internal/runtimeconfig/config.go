package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-cjkspacing/internal/book"
	"github.com/goliatone/go-cjkspacing/internal/markdown"
)

// ErrLoggingProviderRequired reports an empty logging provider.
var ErrLoggingProviderRequired = errors.New("cjk config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("cjk config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("cjk config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("cjk config: logging format is invalid")

// ErrCachePathRequired ensures an enabled cache has somewhere to live.
var ErrCachePathRequired = errors.New("cjk config: cache path is required when cache is enabled")

// ErrMarkdownExtensionUnknown reports an extension name the engine does not know.
var ErrMarkdownExtensionUnknown = errors.New("cjk config: markdown extension is invalid")

// PreprocessorName is the table name under [preprocessor] in book.toml.
const PreprocessorName = book.PreprocessorName

// DefaultMDBookVersion is the mdBook release the preprocessor protocol was
// written against.
const DefaultMDBookVersion = "0.4.40"

// Config aggregates every runtime setting of the preprocessor.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Cache    CacheConfig    `yaml:"cache"`
	Book     BookConfig     `yaml:"book"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// MarkdownConfig controls the join engine.
type MarkdownConfig struct {
	// Extensions names the goldmark extensions to enable. Empty selects the
	// engine defaults.
	Extensions  []string `yaml:"extensions"`
	FrontMatter bool     `yaml:"front_matter"`
}

// CacheConfig controls the persistent join cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// BookConfig controls book mode.
type BookConfig struct {
	ExpectedVersion string `yaml:"expected_version"`
	SkipDrafts      bool   `yaml:"skip_drafts"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Markdown: MarkdownConfig{
			FrontMatter: true,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".mdbook-fix-cjk-spacing/cache.db",
		},
		Book: BookConfig{
			ExpectedVersion: DefaultMDBookVersion,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	if cfg.Cache.Enabled && strings.TrimSpace(cfg.Cache.Path) == "" {
		return ErrCachePathRequired
	}
	for _, name := range cfg.Markdown.Extensions {
		if !markdown.KnownExtension(name) {
			return fmt.Errorf("%w: %s", ErrMarkdownExtensionUnknown, name)
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
