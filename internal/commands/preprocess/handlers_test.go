package preprocesscmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cjkspacing/internal/book"
	"github.com/goliatone/go-cjkspacing/internal/commands"
	"github.com/goliatone/go-cjkspacing/internal/markdown"
	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

type stubPreprocessor struct {
	supported bool
	runs      int
	runErr    error
}

func (s *stubPreprocessor) Name() string { return book.PreprocessorName }

func (s *stubPreprocessor) SupportsRenderer(string) bool { return s.supported }

func (s *stubPreprocessor) Run(_ context.Context, _ *book.Context, b *book.Book) (*book.Book, book.Summary, error) {
	s.runs++
	if s.runErr != nil {
		return nil, book.Summary{}, s.runErr
	}
	return b, book.Summary{RunID: "stub"}, nil
}

type failingJoiner struct{ err error }

func (f failingJoiner) Join(context.Context, string) (*interfaces.JoinResult, error) {
	return nil, f.err
}

const bookInput = `[
	{"root": "/b", "config": {}, "renderer": "html", "mdbook_version": "0.4.21"},
	{"sections": [{"Chapter": {"name": "一", "content": "中文\n测试", "number": [1], "sub_items": [], "path": "a.md", "source_path": "a.md", "parent_names": []}}], "__non_exhaustive": null}
]`

func TestSupportsRendererHandler(t *testing.T) {
	ctx := context.Background()
	if err := NewSupportsRendererHandler(&stubPreprocessor{supported: true}, nil).Execute(ctx, SupportsRendererCommand{Renderer: "html"}); err != nil {
		t.Fatalf("expected supported renderer, got %v", err)
	}

	err := NewSupportsRendererHandler(&stubPreprocessor{}, nil).Execute(ctx, SupportsRendererCommand{Renderer: "pdf"})
	if !errors.Is(err, ErrRendererUnsupported) {
		t.Fatalf("expected ErrRendererUnsupported, got %v", err)
	}
	if !errors.Is(err, commands.ErrDeclined) || goerrors.IsWrapped(err) {
		t.Fatalf("expected an untagged declined answer, got %v", err)
	}
}

func TestJoinDocumentHandlerWritesJoinedMarkdown(t *testing.T) {
	var out bytes.Buffer
	h := NewJoinDocumentHandler(markdown.NewService(markdown.Config{}), nil)

	err := h.Execute(context.Background(), JoinDocumentCommand{
		Input:  strings.NewReader("中文\n测试"),
		Output: &out,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := out.String(); got != "中文测试" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestJoinDocumentHandlerRejectsInvalidUTF8(t *testing.T) {
	var out bytes.Buffer
	h := NewJoinDocumentHandler(markdown.NewService(markdown.Config{}), nil)

	err := h.Execute(context.Background(), JoinDocumentCommand{
		Input:  bytes.NewReader([]byte{0xff, 0xfe, '\n'}),
		Output: &out,
	})
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestJoinDocumentHandlerPropagatesJoinErrors(t *testing.T) {
	joinErr := errors.New("join failed")
	h := NewJoinDocumentHandler(failingJoiner{err: joinErr}, nil)

	err := h.Execute(context.Background(), JoinDocumentCommand{
		Input:  strings.NewReader("x"),
		Output: &bytes.Buffer{},
	})
	if !errors.Is(err, joinErr) {
		t.Fatalf("expected join error, got %v", err)
	}
}

func TestPreprocessBookHandlerRoundTrip(t *testing.T) {
	var out, diagnostics bytes.Buffer
	var seen *book.Context
	factory := func(bctx *book.Context) (BookPreprocessor, error) {
		seen = bctx
		return book.NewPreprocessor(markdown.NewService(markdown.Config{})), nil
	}
	h := NewPreprocessBookHandler(factory, "0.4.40", nil)

	err := h.Execute(context.Background(), PreprocessBookCommand{
		Input:       strings.NewReader(bookInput),
		Output:      &out,
		Diagnostics: &diagnostics,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if seen == nil || seen.Renderer != "html" {
		t.Fatalf("factory did not receive the book context: %+v", seen)
	}

	var got struct {
		Sections []struct {
			Chapter struct {
				Content string `json:"content"`
				Number  []int  `json:"number"`
			} `json:"Chapter"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if got.Sections[0].Chapter.Content != "中文测试" {
		t.Fatalf("unexpected chapter content %q", got.Sections[0].Chapter.Content)
	}
	if diff := cmp.Diff([]int{1}, got.Sections[0].Chapter.Number); diff != "" {
		t.Fatalf("chapter number changed (-want +got):\n%s", diff)
	}

	want := "Warning: The fix-cjk-spacing plugin was built against version 0.4.40 of mdbook, but we're being called from version 0.4.21\n"
	if diff := cmp.Diff(want, diagnostics.String()); diff != "" {
		t.Fatalf("unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestPreprocessBookHandlerRejectsMalformedInput(t *testing.T) {
	pre := &stubPreprocessor{}
	factory := func(*book.Context) (BookPreprocessor, error) { return pre, nil }
	var out bytes.Buffer

	err := NewPreprocessBookHandler(factory, "", nil).Execute(context.Background(), PreprocessBookCommand{
		Input:  strings.NewReader(`[{}]`),
		Output: &out,
	})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if pre.runs != 0 || out.Len() != 0 {
		t.Fatalf("expected no run and no output, got runs=%d output=%q", pre.runs, out.String())
	}
}

func TestPreprocessBookHandlerPropagatesFactoryErrors(t *testing.T) {
	factoryErr := errors.New("bad settings")
	factory := func(*book.Context) (BookPreprocessor, error) { return nil, factoryErr }

	err := NewPreprocessBookHandler(factory, "", nil).Execute(context.Background(), PreprocessBookCommand{
		Input:  strings.NewReader(bookInput),
		Output: &bytes.Buffer{},
	})
	if !errors.Is(err, factoryErr) {
		t.Fatalf("expected factory error, got %v", err)
	}
}

func TestPreprocessBookHandlerFixture(t *testing.T) {
	input, err := os.ReadFile("../../book/testdata/input.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	pre := &stubPreprocessor{}
	factory := func(*book.Context) (BookPreprocessor, error) { return pre, nil }
	var out bytes.Buffer

	err = NewPreprocessBookHandler(factory, "0.4.40", nil).Execute(context.Background(), PreprocessBookCommand{
		Input:  bytes.NewReader(input),
		Output: &out,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if pre.runs != 1 {
		t.Fatalf("expected one run, got %d", pre.runs)
	}
	if !strings.Contains(out.String(), `"PartTitle":"第二部分"`) {
		t.Fatalf("expected part title preserved, got %s", out.String())
	}
}
