package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// SerializeError reports an event sequence that cannot be written back as
// markdown.
type SerializeError struct {
	Index  int
	Kind   Kind
	Reason string
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("markdown serialize: event %d (%s): %s", e.Index, e.Kind, e.Reason)
}

type frame struct {
	node   ast.Node
	info   string
	blocks []string
	inline strings.Builder
	items  int
}

type serializer struct {
	stack     []*frame
	lineStart bool
}

// Serialize writes an event sequence back to markdown. Blocks are separated
// by a single blank line and the output carries no trailing newline.
func Serialize(events []Event) (string, error) {
	s := &serializer{stack: []*frame{{}}}
	for i, ev := range events {
		if err := s.handle(ev); err != nil {
			return "", &SerializeError{Index: i, Kind: ev.Kind, Reason: err.Error()}
		}
	}
	if len(s.stack) != 1 {
		top := s.top()
		return "", &SerializeError{
			Index:  len(events),
			Kind:   KindEnd,
			Reason: fmt.Sprintf("unclosed %s", top.node.Kind()),
		}
	}
	root := s.stack[0]
	if root.inline.Len() > 0 {
		root.blocks = append(root.blocks, root.inline.String())
	}
	return strings.Join(root.blocks, "\n\n"), nil
}

func (s *serializer) top() *frame {
	return s.stack[len(s.stack)-1]
}

func (s *serializer) write(value string) {
	s.top().inline.WriteString(value)
	s.lineStart = false
}

func (s *serializer) handle(ev Event) error {
	switch ev.Kind {
	case KindStart:
		if ev.Node == nil {
			return fmt.Errorf("start event without node")
		}
		if !supported(ev.Node) {
			return fmt.Errorf("unsupported node kind %s", ev.Node.Kind())
		}
		s.stack = append(s.stack, &frame{node: ev.Node, info: strings.TrimSpace(ev.Raw)})
		if ev.Node.Type() == ast.TypeBlock {
			s.lineStart = false
		}
		return nil
	case KindEnd:
		if len(s.stack) == 1 {
			return fmt.Errorf("end event without matching start")
		}
		f := s.top()
		if ev.Node != nil && ev.Node != f.node {
			return fmt.Errorf("end of %s does not close %s", ev.Node.Kind(), f.node.Kind())
		}
		s.stack = s.stack[:len(s.stack)-1]
		return s.close(f)
	case KindText:
		if isCodeBlock(s.top().node) {
			s.top().inline.WriteString(ev.Raw)
			return nil
		}
		raw := ev.Raw
		if s.lineStart {
			raw = escapeLineStart(raw)
		}
		if s.inTableCell() {
			raw = escapeBarePipes(raw)
		}
		if raw != "" {
			s.write(raw)
		}
	case KindCode:
		content := ev.Raw
		if s.inTableCell() {
			content = strings.ReplaceAll(content, "|", "\\|")
		}
		s.write(codeSpan(content))
	case KindAutoLink:
		label := ev.Raw
		if s.inTableCell() {
			label = escapeBarePipes(label)
		}
		s.write("<" + label + ">")
	case KindSoftBreak:
		s.write("\n")
		s.lineStart = true
	case KindHardBreak:
		s.write("\\\n")
		s.lineStart = true
	case KindHTML:
		if _, ok := ev.Node.(*ast.HTMLBlock); ok {
			s.addBlock(ev.Raw)
			return nil
		}
		s.write(ev.Raw)
	case KindFootnoteReference:
		s.write("[^" + ev.Raw + "]")
	case KindTaskMarker:
		if box, ok := ev.Node.(*extast.TaskCheckBox); ok && box.IsChecked {
			s.write("[x] ")
		} else {
			s.write("[ ] ")
		}
	case KindRule:
		s.addBlock(s.rule())
	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
	return nil
}

// inTableCell reports whether output is being written inside a table cell,
// where a bare '|' would end the cell.
func (s *serializer) inTableCell() bool {
	for i := len(s.stack) - 1; i >= 0; i-- {
		switch s.stack[i].node.(type) {
		case *extast.TableCell:
			return true
		case *extast.Table:
			return false
		}
	}
	return false
}

func (s *serializer) addBlock(block string) {
	f := s.top()
	f.blocks = append(f.blocks, block)
}

func supported(n ast.Node) bool {
	switch n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading, *ast.Blockquote,
		*ast.List, *ast.ListItem, *ast.FencedCodeBlock, *ast.CodeBlock,
		*ast.Emphasis, *ast.Link, *ast.Image,
		*FootnoteDefinition,
		*extast.Table, *extast.TableHeader, *extast.TableRow, *extast.TableCell,
		*extast.Strikethrough:
		return true
	}
	return false
}

func (s *serializer) close(f *frame) error {
	content := f.inline.String()
	switch node := f.node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		// Link reference definitions leave an empty paragraph behind.
		if content == "" {
			return nil
		}
		s.addBlock(content)
	case *ast.Heading:
		s.addBlock(heading(node.Level, content))
	case *ast.FencedCodeBlock:
		s.addBlock(fence(content, f.info))
	case *ast.CodeBlock:
		s.addBlock(fence(content, ""))
	case *ast.Blockquote:
		s.addBlock(quote(strings.Join(f.blocks, "\n\n")))
	case *ast.List:
		sep := "\n\n"
		if node.IsTight {
			sep = "\n"
		}
		s.addBlock(strings.Join(f.blocks, sep))
	case *ast.ListItem:
		parent := s.top()
		list, ok := parent.node.(*ast.List)
		if !ok {
			return fmt.Errorf("list item outside list")
		}
		marker := string(list.Marker) + " "
		if list.IsOrdered() {
			marker = strconv.Itoa(list.Start+parent.items) + string(list.Marker) + " "
		}
		parent.items++
		sep := "\n\n"
		if list.IsTight {
			sep = "\n"
		}
		body := strings.Join(f.blocks, sep)
		if body == "" {
			s.addBlock(strings.TrimSpace(marker))
			return nil
		}
		s.addBlock(marker + indent(body, len(marker)))
	case *FootnoteDefinition:
		label := "[^" + string(node.Label) + "]:"
		body := strings.Join(f.blocks, "\n\n")
		if body == "" {
			s.addBlock(label)
			return nil
		}
		s.addBlock(label + " " + indent(body, 4))
	case *extast.Table:
		s.addBlock(strings.Join(f.blocks, "\n"))
	case *extast.TableHeader:
		s.addBlock(tableRow(f.blocks))
		table, ok := s.top().node.(*extast.Table)
		if !ok {
			return fmt.Errorf("table header outside table")
		}
		s.addBlock(alignmentRow(table.Alignments, len(f.blocks)))
	case *extast.TableRow:
		s.addBlock(tableRow(f.blocks))
	case *extast.TableCell:
		s.addBlock(strings.TrimSpace(content))
	case *ast.Emphasis:
		delim := strings.Repeat("*", node.Level)
		s.write(delim + content + delim)
	case *extast.Strikethrough:
		s.write("~~" + content + "~~")
	case *ast.Link:
		s.write("[" + content + "](" + s.cellSafe(destination(node.Destination, node.Title)) + ")")
	case *ast.Image:
		s.write("![" + content + "](" + s.cellSafe(destination(node.Destination, node.Title)) + ")")
	default:
		return fmt.Errorf("unsupported node kind %s", f.node.Kind())
	}
	return nil
}

// rule picks a thematic break that cannot be confused with the marker of an
// enclosing list item.
func (s *serializer) rule() string {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if list, ok := s.stack[i].node.(*ast.List); ok {
			if list.Marker == '*' {
				return "---"
			}
			return "***"
		}
	}
	return "***"
}

func heading(level int, content string) string {
	if strings.Contains(content, "\n") && level <= 2 {
		underline := "==="
		if level == 2 {
			underline = "---"
		}
		return content + "\n" + underline
	}
	marker := strings.Repeat("#", level)
	if content == "" {
		return marker
	}
	return marker + " " + content
}

func fence(content, info string) string {
	content = strings.TrimSuffix(content, "\n")
	char := "`"
	if strings.Contains(info, "`") {
		char = "~"
	}
	width := longestRun(content, char[0]) + 1
	if width < 3 {
		width = 3
	}
	delim := strings.Repeat(char, width)
	if content == "" {
		return delim + info + "\n" + delim
	}
	return delim + info + "\n" + content + "\n" + delim
}

func quote(body string) string {
	if body == "" {
		return ">"
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

// indent prefixes every line after the first with width spaces. Blank lines
// stay empty.
func indent(body string, width int) string {
	lines := strings.Split(body, "\n")
	pad := strings.Repeat(" ", width)
	for i := 1; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (s *serializer) cellSafe(value string) string {
	if s.inTableCell() {
		return escapeBarePipes(value)
	}
	return value
}

// escapeBarePipes backslash-escapes every '|' not already escaped.
func escapeBarePipes(value string) string {
	if !strings.Contains(value, "|") {
		return value
	}
	var b strings.Builder
	escaped := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '|' && !escaped {
			b.WriteByte('\\')
		}
		escaped = c == '\\' && !escaped
		b.WriteByte(c)
	}
	return b.String()
}

func tableRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func alignmentRow(alignments []extast.Alignment, columns int) string {
	cells := make([]string, columns)
	for i := range cells {
		align := extast.AlignNone
		if i < len(alignments) {
			align = alignments[i]
		}
		switch align {
		case extast.AlignLeft:
			cells[i] = ":---"
		case extast.AlignRight:
			cells[i] = "---:"
		case extast.AlignCenter:
			cells[i] = ":---:"
		default:
			cells[i] = "---"
		}
	}
	return tableRow(cells)
}

func codeSpan(content string) string {
	width := 1
	for hasRun(content, '`', width) {
		width++
	}
	delim := strings.Repeat("`", width)
	pad := strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`")
	if !pad && len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' && strings.Trim(content, " ") != "" {
		pad = true
	}
	if pad {
		return delim + " " + content + " " + delim
	}
	return delim + content + delim
}

func destination(dest, title []byte) string {
	d := string(dest)
	if d == "" || strings.ContainsAny(d, " \t\n<>") || !balancedParens(d) {
		d = "<" + strings.NewReplacer("<", "\\<", ">", "\\>").Replace(d) + ">"
	}
	if len(title) == 0 {
		return d
	}
	return d + " \"" + escapeQuotes(string(title)) + "\""
}

func balancedParens(value string) bool {
	depth := 0
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func escapeQuotes(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\\' && i+1 < len(value) {
			b.WriteByte(c)
			b.WriteByte(value[i+1])
			i++
			continue
		}
		if c == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// longestRun returns the length of the longest run of c in value.
func longestRun(value string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(value); i++ {
		if value[i] != c {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

// hasRun reports whether value contains a run of exactly n copies of c.
func hasRun(value string, c byte, n int) bool {
	run := 0
	for i := 0; i <= len(value); i++ {
		if i < len(value) && value[i] == c {
			run++
			continue
		}
		if run == n {
			return true
		}
		run = 0
	}
	return false
}

// escapeLineStart backslash-escapes text that would open a block when it
// lands at the start of a line.
func escapeLineStart(raw string) string {
	trimmed := strings.TrimLeft(raw, " ")
	lead := raw[:len(raw)-len(trimmed)]
	if trimmed == "" {
		return raw
	}
	switch trimmed[0] {
	case '#', '>', '=', '<':
		return lead + "\\" + trimmed
	case '-', '+', '*':
		if len(trimmed) == 1 || trimmed[1] == ' ' || trimmed[1] == '\t' {
			return lead + "\\" + trimmed
		}
		if trimmed[0] == '-' && strings.HasPrefix(trimmed, "---") {
			return lead + "\\" + trimmed
		}
	case '`', '~':
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			return lead + "\\" + trimmed
		}
	}
	digits := 0
	for digits < len(trimmed) && digits < 9 && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(trimmed) && (trimmed[digits] == '.' || trimmed[digits] == ')') {
		rest := trimmed[digits+1:]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return lead + trimmed[:digits] + "\\" + trimmed[digits:]
		}
	}
	return raw
}
