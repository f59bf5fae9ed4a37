package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultExtensions lists the syntax extensions enabled when none are
// configured.
var DefaultExtensions = []string{"table", "footnote", "strikethrough", "tasklist"}

// Linkify and heading attributes have no serialized form and are not
// registered.
var extensionRegistry = map[string][]goldmark.Extender{
	"gfm":           {extension.Table, extension.Strikethrough, extension.TaskList},
	"table":         {extension.Table},
	"tables":        {extension.Table},
	"strikethrough": {extension.Strikethrough},
	"tasklist":      {extension.TaskList},
	"tasklists":     {extension.TaskList},
	"footnote":      {Footnotes},
	"footnotes":     {Footnotes},
}

// KnownExtension reports whether name maps to a registered extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[normalizeExtension(name)]
	return ok
}

func normalizeExtension(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// newGoldmarkEngine builds the parser used by a Joiner. Unsupported extension
// names are ignored.
func newGoldmarkEngine(names []string) goldmark.Markdown {
	exts := collectExtensions(names)
	if len(exts) == 0 {
		return goldmark.New()
	}
	return goldmark.New(goldmark.WithExtensions(exts...))
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		names = DefaultExtensions
	}

	var extenders []goldmark.Extender
	seen := map[goldmark.Extender]struct{}{}

	for _, name := range names {
		key := normalizeExtension(name)
		if key == "" {
			continue
		}

		exts, ok := extensionRegistry[key]
		if !ok {
			continue
		}

		for _, ext := range exts {
			if _, dup := seen[ext]; dup {
				continue
			}
			extenders = append(extenders, ext)
			seen[ext] = struct{}{}
		}
	}

	return extenders
}
