package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Kind tags an Event.
type Kind int

const (
	// KindText is a run of literal text, including code block contents.
	KindText Kind = iota
	// KindCode is the content of an inline code span.
	KindCode
	// KindAutoLink is an autolink such as <https://example.com>.
	KindAutoLink
	// KindSoftBreak is a line break inside a paragraph that renders as a space.
	KindSoftBreak
	// KindHardBreak is a forced line break.
	KindHardBreak
	// KindStart opens a block or inline container.
	KindStart
	// KindEnd closes the container opened by the matching KindStart.
	KindEnd
	// KindHTML is raw inline HTML or an HTML block, kept verbatim.
	KindHTML
	// KindFootnoteReference is a "[^label]" reference.
	KindFootnoteReference
	// KindTaskMarker is the "[ ]" or "[x]" marker of a task list item.
	KindTaskMarker
	// KindRule is a thematic break.
	KindRule
)

var kindNames = map[Kind]string{
	KindText:              "text",
	KindCode:              "code",
	KindAutoLink:          "autolink",
	KindSoftBreak:         "soft_break",
	KindHardBreak:         "hard_break",
	KindStart:             "start",
	KindEnd:               "end",
	KindHTML:              "html",
	KindFootnoteReference: "footnote_reference",
	KindTaskMarker:        "task_marker",
	KindRule:              "rule",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one element of the flattened document. Container events carry the
// goldmark node they open or close. Raw holds the source text with escapes
// intact and is what the serializer writes back; Literal is the text a reader
// would see and is what CJK classification looks at.
type Event struct {
	Kind    Kind
	Node    ast.Node
	Raw     string
	Literal string
}

// IsTextLike reports whether the event contributes visible text.
func (e Event) IsTextLike() bool {
	switch e.Kind {
	case KindText, KindCode, KindAutoLink:
		return true
	}
	return false
}

// Collect flattens a parsed document into events in document order. The
// document node itself is not emitted.
func Collect(doc ast.Node, source []byte) []Event {
	var events []Event
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if n.Kind() == ast.KindDocument {
			return ast.WalkContinue, nil
		}
		if leaf, ok := leafEvents(n, source); ok {
			if entering {
				events = append(events, leaf...)
			}
			return ast.WalkSkipChildren, nil
		}
		if entering {
			start := Event{Kind: KindStart, Node: n}
			if fenced, ok := n.(*ast.FencedCodeBlock); ok && fenced.Info != nil {
				start.Raw = string(fenced.Info.Segment.Value(source))
			}
			events = append(events, start)
			if isCodeBlock(n) {
				content := linesValue(n.Lines(), source)
				events = append(events, Event{Kind: KindText, Node: n, Raw: content, Literal: content})
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		}
		events = append(events, Event{Kind: KindEnd, Node: n})
		return ast.WalkContinue, nil
	})
	return events
}

// leafEvents returns the events for nodes whose children are not walked.
func leafEvents(n ast.Node, source []byte) ([]Event, bool) {
	switch node := n.(type) {
	case *ast.Text:
		raw := string(node.Segment.Value(source))
		literal := raw
		if !node.IsRaw() {
			literal = visibleText(node.Segment.Value(source))
		}
		events := []Event{{Kind: KindText, Node: n, Raw: raw, Literal: literal}}
		switch {
		case node.HardLineBreak():
			events = append(events, Event{Kind: KindHardBreak, Node: n})
		case node.SoftLineBreak():
			events = append(events, Event{Kind: KindSoftBreak, Node: n})
		}
		return events, true
	case *ast.String:
		value := string(node.Value)
		return []Event{{Kind: KindText, Node: n, Raw: value, Literal: value}}, true
	case *ast.CodeSpan:
		content := codeSpanContent(node, source)
		return []Event{{Kind: KindCode, Node: n, Raw: content, Literal: content}}, true
	case *ast.AutoLink:
		label := string(node.Label(source))
		return []Event{{Kind: KindAutoLink, Node: n, Raw: label, Literal: label}}, true
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			b.Write(seg.Value(source))
		}
		return []Event{{Kind: KindHTML, Node: n, Raw: b.String()}}, true
	case *ast.HTMLBlock:
		raw := linesValue(node.Lines(), source)
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(source))
		}
		return []Event{{Kind: KindHTML, Node: n, Raw: strings.TrimRight(raw, "\n")}}, true
	case *ast.ThematicBreak:
		return []Event{{Kind: KindRule, Node: n}}, true
	case *FootnoteReference:
		return []Event{{Kind: KindFootnoteReference, Node: n, Raw: string(node.Label)}}, true
	case *extast.TaskCheckBox:
		return []Event{{Kind: KindTaskMarker, Node: n}}, true
	}
	return nil, false
}

func isCodeBlock(n ast.Node) bool {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return true
	}
	return false
}

func linesValue(lines *text.Segments, source []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

// codeSpanContent joins the lines of a code span. Line endings inside a span
// render as spaces.
func codeSpanContent(n *ast.CodeSpan, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.Text:
			value := child.Segment.Value(source)
			if len(value) > 0 && value[len(value)-1] == '\n' {
				b.Write(value[:len(value)-1])
				b.WriteByte(' ')
				continue
			}
			b.Write(value)
		case *ast.String:
			b.Write(child.Value)
		}
	}
	return b.String()
}

// visibleText resolves backslash escapes and character references.
func visibleText(raw []byte) string {
	value := util.UnescapePunctuations(raw)
	value = util.ResolveNumericReferences(value)
	value = util.ResolveEntityNames(value)
	return string(value)
}
