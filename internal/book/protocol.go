package book

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cjkspacing/internal/validation"
)

// ProtocolInvalidCode tags input that is not a valid [context, book] pair.
const ProtocolInvalidCode = "BOOK_PROTOCOL_INVALID"

//go:embed schema/protocol.json
var protocolSchemaJSON []byte

var protocolSchema = validation.MustCompile("book-protocol.json", protocolSchemaJSON)

// ParseInput reads the [context, book] pair mdBook writes to a
// preprocessor's stdin.
func ParseInput(r io.Reader) (*Context, *Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, protocolError(fmt.Errorf("read input: %w", err))
	}
	if err := protocolSchema.ValidateJSON(data); err != nil {
		return nil, nil, protocolError(err)
	}

	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, nil, protocolError(err)
	}
	var ctx Context
	if err := json.Unmarshal(pair[0], &ctx); err != nil {
		return nil, nil, protocolError(fmt.Errorf("context: %w", err))
	}
	var book Book
	if err := json.Unmarshal(pair[1], &book); err != nil {
		return nil, nil, protocolError(fmt.Errorf("book: %w", err))
	}
	return &ctx, &book, nil
}

// WriteBook writes book as a single JSON document.
func WriteBook(w io.Writer, book *Book) error {
	if book == nil {
		book = &Book{}
	}
	return json.NewEncoder(w).Encode(book)
}

// VersionWarning returns the warning printed when mdBook's version differs
// from expected, or "" when they match or expected is empty.
func VersionWarning(name, expected, actual string) string {
	expected = strings.TrimSpace(expected)
	if expected == "" || expected == strings.TrimSpace(actual) {
		return ""
	}
	return fmt.Sprintf(
		"The %s plugin was built against version %s of mdbook, but we're being called from version %s",
		name, expected, actual,
	)
}

func protocolError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid mdbook preprocessor input").
		WithTextCode(ProtocolInvalidCode)
}
