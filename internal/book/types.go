package book

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context is the first element of the preprocessor input. Only the fields the
// preprocessor reads are decoded; Config stays raw.
type Context struct {
	Root          string          `json:"root"`
	Config        json.RawMessage `json:"config"`
	Renderer      string          `json:"renderer"`
	MDBookVersion string          `json:"mdbook_version"`
}

// Book is the second element of the preprocessor input and the whole of its
// output. Fields other than sections are carried through untouched.
type Book struct {
	Sections []BookItem
	fields   map[string]json.RawMessage
}

func (b *Book) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var sections []BookItem
	if raw, ok := fields["sections"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &sections); err != nil {
			return fmt.Errorf("sections: %w", err)
		}
	}
	b.Sections = sections
	b.fields = fields
	return nil
}

func (b Book) MarshalJSON() ([]byte, error) {
	out := cloneFields(b.fields)
	sections := b.Sections
	if sections == nil {
		sections = []BookItem{}
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}
	out["sections"] = raw
	if _, ok := out["__non_exhaustive"]; !ok {
		out["__non_exhaustive"] = json.RawMessage("null")
	}
	return json.Marshal(out)
}

// ItemKind distinguishes the variants of a BookItem.
type ItemKind int

const (
	ItemUnknown ItemKind = iota
	ItemChapter
	ItemSeparator
	ItemPartTitle
)

func (k ItemKind) String() string {
	switch k {
	case ItemChapter:
		return "chapter"
	case ItemSeparator:
		return "separator"
	case ItemPartTitle:
		return "part_title"
	default:
		return "unknown"
	}
}

// BookItem is one entry of a book's table of contents. Variants this package
// does not know are re-emitted verbatim.
type BookItem struct {
	Kind      ItemKind
	Chapter   *Chapter
	PartTitle string
	raw       json.RawMessage
}

const separatorTag = "Separator"

func (it *BookItem) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*it = BookItem{raw: append(json.RawMessage(nil), trimmed...)}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return err
		}
		if tag == separatorTag {
			it.Kind = ItemSeparator
		}
		return nil
	}

	var variant map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &variant); err != nil {
		return err
	}
	if len(variant) != 1 {
		return nil
	}
	if raw, ok := variant["Chapter"]; ok {
		chapter := &Chapter{}
		if err := json.Unmarshal(raw, chapter); err != nil {
			return fmt.Errorf("chapter: %w", err)
		}
		it.Kind = ItemChapter
		it.Chapter = chapter
		return nil
	}
	if raw, ok := variant["PartTitle"]; ok {
		if err := json.Unmarshal(raw, &it.PartTitle); err != nil {
			return fmt.Errorf("part title: %w", err)
		}
		it.Kind = ItemPartTitle
	}
	return nil
}

func (it BookItem) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case ItemChapter:
		if it.Chapter == nil {
			return nil, fmt.Errorf("book: chapter item without chapter")
		}
		return json.Marshal(map[string]*Chapter{"Chapter": it.Chapter})
	case ItemSeparator:
		return json.Marshal(separatorTag)
	case ItemPartTitle:
		return json.Marshal(map[string]string{"PartTitle": it.PartTitle})
	default:
		if len(it.raw) == 0 {
			return []byte("null"), nil
		}
		return it.raw, nil
	}
}

// Chapter is a single markdown page. Name, Content, Path and SubItems are
// decoded; every other field (number, source_path, parent_names, ...) is
// kept raw.
type Chapter struct {
	Name     string
	Content  string
	Path     *string
	SubItems []BookItem
	fields   map[string]json.RawMessage
}

// IsDraft reports whether the chapter has no backing file.
func (c *Chapter) IsDraft() bool {
	return c.Path == nil
}

func (c *Chapter) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = Chapter{fields: fields}
	if err := decodeField(fields, "name", &c.Name); err != nil {
		return err
	}
	if err := decodeField(fields, "content", &c.Content); err != nil {
		return err
	}
	if err := decodeField(fields, "path", &c.Path); err != nil {
		return err
	}
	return decodeField(fields, "sub_items", &c.SubItems)
}

func (c Chapter) MarshalJSON() ([]byte, error) {
	out := cloneFields(c.fields)
	subItems := c.SubItems
	if subItems == nil {
		subItems = []BookItem{}
	}
	for key, value := range map[string]any{
		"name":      c.Name,
		"content":   c.Content,
		"path":      c.Path,
		"sub_items": subItems,
	} {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = raw
	}
	return json.Marshal(out)
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func cloneFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields)+4)
	for key, value := range fields {
		out[key] = value
	}
	return out
}
