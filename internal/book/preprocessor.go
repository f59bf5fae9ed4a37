package book

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-cjkspacing/internal/identity"
	"github.com/goliatone/go-cjkspacing/internal/logging"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

// PreprocessorName is the name mdBook knows the preprocessor by.
const PreprocessorName = "fix-cjk-spacing"

// Summary reports what a Run did.
type Summary struct {
	RunID    string
	Chapters int
	Changed  int
	Cached   int
	Failed   int
	Skipped  int
	Removed  int
}

// Option customises a Preprocessor.
type Option func(*Preprocessor)

// WithLogger sets the logger used for per-chapter diagnostics and the run
// summary.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Preprocessor) {
		if logger == nil {
			p.logger = logging.NoOp()
			return
		}
		p.logger = logger
	}
}

// WithSkipDrafts leaves chapters without a source path untouched.
func WithSkipDrafts(skip bool) Option {
	return func(p *Preprocessor) {
		p.skipDrafts = skip
	}
}

// WithRunIDGenerator overrides how run ids are produced.
func WithRunIDGenerator(gen func() string) Option {
	return func(p *Preprocessor) {
		if gen != nil {
			p.runID = gen
		}
	}
}

// Preprocessor joins CJK soft breaks in every chapter of a book.
type Preprocessor struct {
	joiner     interfaces.MarkdownJoiner
	logger     interfaces.Logger
	skipDrafts bool
	runID      func() string
}

// NewPreprocessor wraps joiner as an mdBook preprocessor.
func NewPreprocessor(joiner interfaces.MarkdownJoiner, opts ...Option) *Preprocessor {
	p := &Preprocessor{
		joiner: joiner,
		logger: logging.NoOp(),
		runID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Name returns the preprocessor name.
func (p *Preprocessor) Name() string {
	return PreprocessorName
}

// SupportsRenderer reports whether output for renderer can be preprocessed.
// Joining is renderer independent.
func (p *Preprocessor) SupportsRenderer(renderer string) bool {
	return true
}

// Run rewrites the content of every chapter in book, recursing into
// sub-items. A chapter that fails to join keeps its original content. Run
// only returns an error when ctx is done.
func (p *Preprocessor) Run(ctx context.Context, bctx *Context, book *Book) (*Book, Summary, error) {
	summary := Summary{RunID: p.runID()}
	if book == nil {
		return nil, summary, fmt.Errorf("book: nil book")
	}
	logger := logging.WithRunID(p.logger, summary.RunID)
	ctx = logging.ContextWithFields(ctx, map[string]any{"run_id": summary.RunID})
	if bctx != nil {
		logger = logging.WithFields(logger, map[string]any{"renderer": bctx.Renderer})
	}

	if err := p.walk(ctx, logger, book.Sections, &summary); err != nil {
		return nil, summary, err
	}

	logger.Info("book.preprocess.completed",
		"chapters", summary.Chapters,
		"changed", summary.Changed,
		"cached", summary.Cached,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"removed", summary.Removed,
	)
	return book, summary, nil
}

func (p *Preprocessor) walk(ctx context.Context, logger interfaces.Logger, items []BookItem, summary *Summary) error {
	for i := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if items[i].Kind != ItemChapter || items[i].Chapter == nil {
			continue
		}
		chapter := items[i].Chapter
		p.processChapter(ctx, logger, chapter, summary)
		if err := p.walk(ctx, logger, chapter.SubItems, summary); err != nil {
			return err
		}
	}
	return nil
}

func (p *Preprocessor) processChapter(ctx context.Context, logger interfaces.Logger, chapter *Chapter, summary *Summary) {
	summary.Chapters++
	path := ""
	if chapter.Path != nil {
		path = *chapter.Path
	}
	chapterLogger := logging.WithFields(logging.WithChapterContext(logger, chapter.Name, path), map[string]any{
		"chapter_id": identity.ChapterUUID(path, chapter.Name).String(),
	})

	if p.skipDrafts && chapter.IsDraft() {
		summary.Skipped++
		chapterLogger.Debug("book.chapter.skipped", "reason", "draft")
		return
	}

	result, err := p.join(ctx, chapter.Content)
	if err != nil {
		summary.Failed++
		chapterLogger.Warn("book.chapter.join_failed", "error", err)
		return
	}
	if result.Cached {
		summary.Cached++
	}
	if result.Changed {
		summary.Changed++
		chapter.Content = result.Content
	}
	summary.Removed += result.Removed
	chapterLogger.Debug("book.chapter.joined",
		"removed", result.Removed,
		"cached", result.Cached,
	)
}

func (p *Preprocessor) join(ctx context.Context, content string) (result *interfaces.JoinResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("join panic: %v", r)
		}
	}()
	if p.joiner == nil {
		return nil, fmt.Errorf("book: no markdown joiner configured")
	}
	result, err = p.joiner.Join(ctx, content)
	if err == nil && result == nil {
		err = fmt.Errorf("book: joiner returned no result")
	}
	return result, err
}
