package interfaces

import "context"

// JoinResult describes the outcome of joining one markdown document.
type JoinResult struct {
	// Content is the document with qualifying soft breaks removed.
	Content string
	// Changed reports whether Content differs from the input.
	Changed bool
	// Cached reports whether Content was served from the join cache.
	Cached bool
	// SoftBreaks counts the soft breaks seen. Zero when Cached.
	SoftBreaks int
	// Removed counts the soft breaks dropped. Zero when Cached.
	Removed int
}

// MarkdownJoiner removes line breaks between CJK text runs in a markdown
// document.
type MarkdownJoiner interface {
	Join(ctx context.Context, markdown string) (*JoinResult, error)
}
