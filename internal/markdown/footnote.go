package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// NodeKindFootnoteDefinition is the NodeKind of FootnoteDefinition.
var NodeKindFootnoteDefinition = ast.NewNodeKind("FootnoteDefinition")

// NodeKindFootnoteReference is the NodeKind of FootnoteReference.
var NodeKindFootnoteReference = ast.NewNodeKind("FootnoteReference")

// FootnoteDefinition is a "[^label]: ..." block. Unlike goldmark's footnote
// extension the node stays where it was written so the document can be
// serialized back in source order.
type FootnoteDefinition struct {
	ast.BaseBlock
	Label []byte
}

// Kind implements ast.Node.
func (n *FootnoteDefinition) Kind() ast.NodeKind { return NodeKindFootnoteDefinition }

// Dump implements ast.Node.
func (n *FootnoteDefinition) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": string(n.Label)}, nil)
}

// FootnoteReference is an inline "[^label]". References are recognised
// whether or not a matching definition exists.
type FootnoteReference struct {
	ast.BaseInline
	Label []byte
}

// Kind implements ast.Node.
func (n *FootnoteReference) Kind() ast.NodeKind { return NodeKindFootnoteReference }

// Dump implements ast.Node.
func (n *FootnoteReference) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": string(n.Label)}, nil)
}

type footnoteDefinitionParser struct{}

func (p *footnoteDefinitionParser) Trigger() []byte { return []byte{'['} }

func (p *footnoteDefinitionParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos+1 >= len(line) || line[pos] != '[' || line[pos+1] != '^' {
		return nil, parser.NoChildren
	}
	open := pos + 2
	closure := footnoteLabelEnd(line[open:])
	if closure < 0 {
		return nil, parser.NoChildren
	}
	closes := open + closure
	next := closes + 1
	if next >= len(line) || line[next] != ':' {
		return nil, parser.NoChildren
	}
	padding := segment.Padding
	label := reader.Value(text.NewSegment(segment.Start+open-padding, segment.Start+closes-padding))
	if util.IsBlank(label) {
		return nil, parser.NoChildren
	}
	node := &FootnoteDefinition{Label: append([]byte(nil), label...)}

	pos = next + 1 - padding
	if pos >= len(line) {
		reader.Advance(pos)
		return node, parser.NoChildren
	}
	reader.AdvanceAndSetPadding(pos, padding)
	return node, parser.HasChildren
}

func (p *footnoteDefinitionParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, _ := reader.PeekLine()
	if util.IsBlank(line) {
		return parser.Continue | parser.HasChildren
	}
	childpos, padding := util.IndentPosition(line, reader.LineOffset(), 4)
	if childpos < 0 {
		return parser.Close
	}
	reader.AdvanceAndSetPadding(childpos, padding)
	return parser.Continue | parser.HasChildren
}

func (p *footnoteDefinitionParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *footnoteDefinitionParser) CanInterruptParagraph() bool { return false }

func (p *footnoteDefinitionParser) CanAcceptIndentedLine() bool { return false }

type footnoteReferenceParser struct{}

func (p *footnoteReferenceParser) Trigger() []byte { return []byte{'['} }

func (p *footnoteReferenceParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 4 || line[0] != '[' || line[1] != '^' {
		return nil
	}
	closure := footnoteLabelEnd(line[2:])
	if closure < 0 {
		return nil
	}
	label := line[2 : 2+closure]
	if util.IsBlank(label) {
		return nil
	}
	block.Advance(2 + closure + 1)
	return &FootnoteReference{Label: append([]byte(nil), label...)}
}

// footnoteLabelEnd returns the index of the ']' closing a footnote label, or
// -1 when the label is unterminated or contains an unescaped '['.
func footnoteLabelEnd(bs []byte) int {
	for i := 0; i < len(bs); i++ {
		switch bs[i] {
		case '\\':
			i++
		case '[', '\n':
			return -1
		case ']':
			return i
		}
	}
	return -1
}

type footnotes struct{}

// Footnotes is a goldmark extension that parses footnote definitions and
// references without relocating definitions or dropping unresolved
// references.
var Footnotes goldmark.Extender = &footnotes{}

func (e *footnotes) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(&footnoteDefinitionParser{}, 999),
		),
		parser.WithInlineParsers(
			util.Prioritized(&footnoteReferenceParser{}, 101),
		),
	)
}
