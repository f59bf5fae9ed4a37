package cjk

import "testing"

func TestIsRangeBoundaries(t *testing.T) {
	bounds := [][2]rune{
		{0x2000, 0x206F},
		{0x2E80, 0x2EDF},
		{0x3000, 0x9FFF},
		{0xAC00, 0xD7FF},
		{0xF900, 0xFAFF},
		{0xFE30, 0xFE6F},
		{0xFF00, 0xFFEE},
	}
	for _, b := range bounds {
		if !Is(b[0]) {
			t.Fatalf("expected lower bound %U to be CJK", b[0])
		}
		if !Is(b[1]) {
			t.Fatalf("expected upper bound %U to be CJK", b[1])
		}
		if Is(b[0] - 1) {
			t.Fatalf("expected %U (below range) not to be CJK", b[0]-1)
		}
		if Is(b[1] + 1) {
			t.Fatalf("expected %U (above range) not to be CJK", b[1]+1)
		}
	}
}

func TestIsScripts(t *testing.T) {
	cases := []struct {
		r    rune
		want bool
	}{
		{'中', true},
		{'あ', true},
		{'カ', true},
		{'한', true},
		{'。', true},
		{'，', true},
		{'Ａ', true},
		{'…', true},
		{'a', false},
		{'Z', false},
		{'1', false},
		{' ', false},
		{'é', false},
		{'ก', false},
		{0x20000, false}, // Extension B lies outside the table
		{0x1F600, false},
		{0xFFFD, false},
	}
	for _, tc := range cases {
		if got := Is(tc.r); got != tc.want {
			t.Fatalf("Is(%U) = %v, want %v", tc.r, got, tc.want)
		}
	}
}

func TestStartsAndEndsWith(t *testing.T) {
	cases := []struct {
		text       string
		starts     bool
		ends       bool
		descriptor string
	}{
		{"", false, false, "empty"},
		{"中文", true, true, "all cjk"},
		{"中a", true, false, "cjk then latin"},
		{"a中", false, true, "latin then cjk"},
		{"text", false, false, "latin"},
		{"\xff", false, false, "invalid utf-8"},
		{"한국어", true, true, "hangul"},
	}
	for _, tc := range cases {
		if got := StartsWith(tc.text); got != tc.starts {
			t.Fatalf("%s: StartsWith(%q) = %v, want %v", tc.descriptor, tc.text, got, tc.starts)
		}
		if got := EndsWith(tc.text); got != tc.ends {
			t.Fatalf("%s: EndsWith(%q) = %v, want %v", tc.descriptor, tc.text, got, tc.ends)
		}
	}
}
