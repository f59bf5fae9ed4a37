package markdown

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var frontMatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// SplitFrontMatter separates a leading YAML ("---") or TOML ("+++") front
// matter block from the markdown body. The returned front matter is the exact
// source prefix, delimiters included, so front+body == source. Blocks that do
// not decode to a mapping are treated as ordinary markdown and left in body.
func SplitFrontMatter(source string) (front string, body string) {
	split := frontMatterEnd(source)
	if split < 0 {
		return "", source
	}

	var meta map[string]any
	if _, err := frontmatter.Parse(strings.NewReader(source[:split]), &meta, frontMatterFormats...); err != nil || len(meta) == 0 {
		return "", source
	}
	return source[:split], source[split:]
}

// frontMatterEnd returns the offset just past the closing delimiter line, or
// -1 when source does not open with a delimiter line that is later closed.
func frontMatterEnd(source string) int {
	var delim string
	switch {
	case strings.HasPrefix(source, "---"):
		delim = "---"
	case strings.HasPrefix(source, "+++"):
		delim = "+++"
	default:
		return -1
	}

	offset := 0
	for line := 0; offset < len(source); line++ {
		end := strings.IndexByte(source[offset:], '\n')
		next := len(source)
		if end >= 0 {
			next = offset + end + 1
		}
		text := strings.TrimRight(source[offset:next], " \t\r\n")
		if line == 0 {
			if text != delim {
				return -1
			}
		} else if text == delim {
			return next
		}
		offset = next
	}
	return -1
}
