package cjkspacing

import "github.com/goliatone/go-cjkspacing/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrCachePathRequired        = runtimeconfig.ErrCachePathRequired
	ErrMarkdownExtensionUnknown = runtimeconfig.ErrMarkdownExtensionUnknown
)

type (
	Config               = runtimeconfig.Config
	LoggingConfig        = runtimeconfig.LoggingConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	CacheConfig          = runtimeconfig.CacheConfig
	BookConfig           = runtimeconfig.BookConfig
	PreprocessorSettings = runtimeconfig.PreprocessorSettings
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
