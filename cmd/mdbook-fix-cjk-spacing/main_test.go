package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const bookInput = `[
	{"root": "/b", "config": {"preprocessor": {"fix-cjk-spacing": {}}}, "renderer": "html", "mdbook_version": "0.4.40"},
	{"sections": [
		{"Chapter": {"name": "一", "content": "中文\n测试", "number": [1], "sub_items": [], "path": "a.md", "source_path": "a.md", "parent_names": []}},
		"Separator"
	], "__non_exhaustive": null}
]`

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSupportsExitsZeroWithoutOutput(t *testing.T) {
	for _, renderer := range []string{"html", "markdown", "epub"} {
		code, stdout, _ := execute(t, "", "supports", renderer)
		if code != 0 {
			t.Fatalf("supports %s: expected exit 0, got %d", renderer, code)
		}
		if stdout != "" {
			t.Fatalf("supports %s: expected no stdout, got %q", renderer, stdout)
		}
	}
}

func TestSupportsRequiresRenderer(t *testing.T) {
	if code, _, _ := execute(t, "", "supports"); code == 0 {
		t.Fatal("expected non-zero exit without renderer")
	}
}

func TestRawJoinsStdin(t *testing.T) {
	code, stdout, stderr := execute(t, "中文\n测试", "raw")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	if stdout != "中文测试" {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestRawLeavesLatinUntouched(t *testing.T) {
	code, stdout, _ := execute(t, "Hello\nworld\n", "raw")
	if code != 0 || stdout != "Hello\nworld\n" {
		t.Fatalf("expected unchanged output, got code=%d stdout=%q", code, stdout)
	}
}

func TestRawRejectsInvalidUTF8(t *testing.T) {
	code, stdout, stderr := execute(t, string([]byte{0xff, 0xfe}), "raw")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if stdout != "" {
		t.Fatalf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, name) {
		t.Fatalf("expected diagnostic on stderr, got %q", stderr)
	}
}

func TestRawReadsBookTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.toml")
	body := "[preprocessor.fix-cjk-spacing]\nfront-matter = false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write book.toml: %v", err)
	}

	code, stdout, stderr := execute(t, "中文\n测试", "--book", path, "raw")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	if stdout != "中文测试" {
		t.Fatalf("unexpected stdout %q", stdout)
	}

	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[preprocessor.fix-cjk-spacing]\nfront-matter = \"yes\"\n"), 0o644); err != nil {
		t.Fatalf("write broken book.toml: %v", err)
	}
	if code, _, _ := execute(t, "中文\n测试", "--book", broken, "raw"); code != 1 {
		t.Fatalf("expected exit 1 for invalid table, got %d", code)
	}
}

func TestRawReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: verbose\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if code, _, _ := execute(t, "中文\n测试", "--config", path, "raw"); code != 1 {
		t.Fatalf("expected exit 1 for invalid config, got %d", code)
	}
}

func TestBookModeIsDefault(t *testing.T) {
	code, stdout, stderr := execute(t, bookInput)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}

	var out struct {
		Sections []json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode stdout: %v\n%s", err, stdout)
	}
	if len(out.Sections) != 2 {
		t.Fatalf("expected two sections, got %d", len(out.Sections))
	}
	var chapter struct {
		Chapter struct {
			Content string `json:"content"`
		} `json:"Chapter"`
	}
	if err := json.Unmarshal(out.Sections[0], &chapter); err != nil {
		t.Fatalf("decode chapter: %v", err)
	}
	if chapter.Chapter.Content != "中文测试" {
		t.Fatalf("unexpected chapter content %q", chapter.Chapter.Content)
	}
	if string(out.Sections[1]) != `"Separator"` {
		t.Fatalf("expected separator preserved, got %s", out.Sections[1])
	}
}

func TestBookModeWarnsOnVersionMismatch(t *testing.T) {
	input := strings.Replace(bookInput, `"0.4.40"`, `"0.4.21"`, 1)
	code, _, stderr := execute(t, input, "book")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
	}
	want := "Warning: The fix-cjk-spacing plugin was built against version 0.4.40 of mdbook, but we're being called from version 0.4.21"
	if !strings.Contains(stderr, want) {
		t.Fatalf("expected version warning on stderr, got %q", stderr)
	}
}

func TestBookModeRejectsMalformedInput(t *testing.T) {
	code, stdout, stderr := execute(t, `{"not": "a pair"}`)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if stdout != "" {
		t.Fatalf("expected no stdout, got %q", stdout)
	}
	if stderr == "" {
		t.Fatal("expected a diagnostic on stderr")
	}
}

func TestInvalidLogLevelFails(t *testing.T) {
	if code, _, _ := execute(t, "x", "--log-level", "loud", "raw"); code != 1 {
		t.Fatalf("expected exit 1 for invalid log level, got %d", code)
	}
}

func TestVersionFlag(t *testing.T) {
	code, stdout, _ := execute(t, "", "--version")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout, version) {
		t.Fatalf("expected version in output, got %q", stdout)
	}
}
