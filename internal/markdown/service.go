package markdown

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-cjkspacing/internal/cache"
	"github.com/goliatone/go-cjkspacing/internal/logging"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

// EngineVersion is mixed into cache keys. Bump it whenever join output for
// the same input can change.
const EngineVersion = "1"

// Config controls how the Service joins documents.
type Config struct {
	// Extensions selects the markdown syntax extensions. Empty means
	// DefaultExtensions.
	Extensions []string
	// FrontMatter keeps a leading YAML or TOML front matter block verbatim.
	FrontMatter bool
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithCache stores join results in cache keyed by a digest of the input.
func WithCache(cache interfaces.CacheProvider) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLogger sets the logger used for cache failures and join diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger == nil {
			s.logger = logging.NoOp()
			return
		}
		s.logger = logger
	}
}

// Service implements interfaces.MarkdownJoiner on top of a Joiner, adding
// front matter handling and an optional cache.
type Service struct {
	cfg    Config
	joiner *Joiner
	cache  interfaces.CacheProvider
	logger interfaces.Logger
	salt   string
}

var _ interfaces.MarkdownJoiner = (*Service)(nil)

// NewService constructs a Service for cfg.
func NewService(cfg Config, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:    cfg,
		joiner: NewJoiner(Options{Extensions: cfg.Extensions}),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.salt = cacheSalt(cfg)
	return s
}

// Join removes qualifying soft breaks from doc. Cache failures are logged and
// fall through to a fresh join.
func (s *Service) Join(ctx context.Context, doc string) (*interfaces.JoinResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := s.logger.WithContext(ctx)

	var key string
	if s.cache != nil {
		key = cache.Key(s.salt, doc)
		value, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("markdown.cache.get_failed", "error", err)
		case ok:
			return &interfaces.JoinResult{Content: value, Changed: value != doc, Cached: true}, nil
		}
	}

	front, body := "", doc
	if s.cfg.FrontMatter {
		front, body = SplitFrontMatter(doc)
	}

	out, stats, err := s.joiner.JoinWithStats(body)
	if err != nil {
		return nil, err
	}
	if front != "" && stats.Removed > 0 {
		// Serialization drops the blank lines that usually follow front matter.
		lead := body[:len(body)-len(strings.TrimLeft(body, "\r\n"))]
		out = ensureTrailingNewline(front) + lead + out
	} else {
		out = front + out
	}

	result := &interfaces.JoinResult{
		Content:    out,
		Changed:    out != doc,
		SoftBreaks: stats.SoftBreaks,
		Removed:    stats.Removed,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			logger.Warn("markdown.cache.set_failed", "error", err)
		}
	}

	logger.Debug("markdown.join.completed",
		"soft_breaks", stats.SoftBreaks,
		"removed", stats.Removed,
		"front_matter", front != "",
	)
	return result, nil
}

func ensureTrailingNewline(value string) string {
	if strings.HasSuffix(value, "\n") {
		return value
	}
	return value + "\n"
}

func cacheSalt(cfg Config) string {
	names := cfg.Extensions
	if len(names) == 0 {
		names = DefaultExtensions
	}
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if key := normalizeExtension(name); key != "" {
			normalized = append(normalized, key)
		}
	}
	sort.Strings(normalized)
	return "engine=" + EngineVersion +
		";front_matter=" + strconv.FormatBool(cfg.FrontMatter) +
		";extensions=" + strings.Join(normalized, ",")
}
