package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := UUID("fix-cjk-spacing:chapter:intro.md")
	second := UUID("  fix-cjk-spacing:chapter:intro.md ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected trimmed keys to match, got %s and %s", first, second)
	}
	if UUID("") != uuid.Nil {
		t.Fatal("expected nil uuid for empty key")
	}
}

func TestChapterUUIDPrefersPath(t *testing.T) {
	byPath := ChapterUUID("intro.md", "简介")
	if byPath != ChapterUUID("intro.md", "Introduction") {
		t.Fatal("expected path to determine the chapter id")
	}
	draft := ChapterUUID("", "简介")
	if draft == uuid.Nil || draft == byPath {
		t.Fatalf("expected distinct draft id, got %s", draft)
	}
	if ChapterUUID(" ", "") != uuid.Nil {
		t.Fatal("expected nil uuid without path or name")
	}
}
