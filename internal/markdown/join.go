package markdown

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-cjkspacing/internal/cjk"
	goerrors "github.com/goliatone/go-errors"
)

const (
	// ParseFailedCode tags errors raised while parsing a document.
	ParseFailedCode = "MARKDOWN_PARSE_FAILED"
	// SerializeFailedCode tags errors raised while writing a document back.
	SerializeFailedCode = "MARKDOWN_SERIALIZE_FAILED"
)

// Options configures a Joiner.
type Options struct {
	// Extensions selects the markdown syntax extensions by name. Empty means
	// DefaultExtensions.
	Extensions []string
}

// Stats describes what a join did.
type Stats struct {
	SoftBreaks int
	Removed    int
}

// Joiner removes soft line breaks between CJK text runs. A Joiner is
// immutable and safe for concurrent use.
type Joiner struct {
	engine goldmark.Markdown
}

// NewJoiner builds a Joiner with the given options.
func NewJoiner(opts Options) *Joiner {
	return &Joiner{engine: newGoldmarkEngine(opts.Extensions)}
}

var defaultJoiner = NewJoiner(Options{})

// JoinCJKSpacing joins lines split between two CJK characters using the
// default extensions.
func JoinCJKSpacing(input string) (string, error) {
	return defaultJoiner.Join(input)
}

// Join returns input with every qualifying soft break removed.
func (j *Joiner) Join(input string) (string, error) {
	out, _, err := j.JoinWithStats(input)
	return out, err
}

// JoinWithStats is Join plus counts of the soft breaks seen and removed.
// Documents without a removable break are returned unchanged.
func (j *Joiner) JoinWithStats(input string) (string, Stats, error) {
	events, err := j.Events(input)
	if err != nil {
		return "", Stats{}, err
	}

	keep := RetentionMask(events)
	stats := Stats{}
	for i, ev := range events {
		if ev.Kind != KindSoftBreak {
			continue
		}
		stats.SoftBreaks++
		if !keep[i] {
			stats.Removed++
		}
	}
	if stats.Removed == 0 {
		return input, stats, nil
	}

	out, err := Serialize(Filter(events, keep))
	if err != nil {
		return "", stats, goerrors.Wrap(err, goerrors.CategoryInternal, "markdown serialization failed").
			WithTextCode(SerializeFailedCode)
	}
	return out, stats, nil
}

// Events parses input and flattens it into an event sequence.
func (j *Joiner) Events(input string) (events []Event, err error) {
	source := []byte(input)
	defer func() {
		if r := recover(); r != nil {
			events = nil
			err = goerrors.Wrap(fmt.Errorf("parser panic: %v", r), goerrors.CategoryInternal, "markdown parse failed").
				WithTextCode(ParseFailedCode)
		}
	}()
	doc := j.engine.Parser().Parse(text.NewReader(source))
	return Collect(doc, source), nil
}

// RetentionMask decides, for every event, whether it survives. Only soft
// breaks can be dropped: one is dropped when the nearest visible text before
// it ends with a CJK character and the nearest visible text after it starts
// with one. The mask is computed over the unmodified sequence.
func RetentionMask(events []Event) []bool {
	keep := make([]bool, len(events))
	for i, ev := range events {
		keep[i] = true
		if ev.Kind != KindSoftBreak {
			continue
		}
		if cjk.EndsWith(precedingText(events, i)) && cjk.StartsWith(followingText(events, i)) {
			keep[i] = false
		}
	}
	return keep
}

// Filter returns the events whose mask entry is true, in order.
func Filter(events []Event, keep []bool) []Event {
	out := make([]Event, 0, len(events))
	for i, ev := range events {
		if i < len(keep) && !keep[i] {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// precedingText returns the literal of the nearest non-empty text-like event
// before i, or "" when there is none.
func precedingText(events []Event, i int) string {
	for k := i - 1; k >= 0; k-- {
		if events[k].IsTextLike() && events[k].Literal != "" {
			return events[k].Literal
		}
	}
	return ""
}

// followingText returns the literal of the nearest non-empty text-like event
// after i, or "" when there is none.
func followingText(events []Event, i int) string {
	for k := i + 1; k < len(events); k++ {
		if events[k].IsTextLike() && events[k].Literal != "" {
			return events[k].Literal
		}
	}
	return ""
}
