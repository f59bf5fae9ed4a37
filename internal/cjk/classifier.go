// Package cjk classifies runes that belong to scripts conventionally written
// without inter-word spacing (Chinese, Japanese, Korean and their
// punctuation). A line break between two such runes carries no semantic space.
package cjk

import (
	"unicode"
	"unicode/utf8"
)

// Ranges is the fixed table of inclusive code point ranges treated as CJK.
// Supplementary-plane blocks (emoji, ideograph extensions B and later) are
// not included, which keeps every range inside R16.
var Ranges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2000, Hi: 0x206F, Stride: 1}, // General Punctuation
		{Lo: 0x2E80, Hi: 0x2EDF, Stride: 1}, // CJK Radicals Supplement, Kangxi Radicals
		// CJK Symbols and Punctuation, Hiragana, Katakana, Bopomofo, Hangul
		// Compatibility Jamo, Kanbun, CJK Strokes, Enclosed CJK Letters,
		// CJK Compatibility, Extension A, Yijing Hexagrams, Unified Ideographs.
		{Lo: 0x3000, Hi: 0x9FFF, Stride: 1},
		{Lo: 0xAC00, Hi: 0xD7FF, Stride: 1}, // Hangul Syllables, Hangul Jamo Extended-B
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1}, // CJK Compatibility Ideographs
		{Lo: 0xFE30, Hi: 0xFE6F, Stride: 1}, // CJK Compatibility Forms, Small Form Variants
		{Lo: 0xFF00, Hi: 0xFFEE, Stride: 1}, // Halfwidth and Fullwidth Forms
	},
}

// Is reports whether r falls inside one of the CJK ranges.
func Is(r rune) bool {
	return unicode.Is(Ranges, r)
}

// StartsWith reports whether the first rune of text is CJK. Empty text is
// never CJK.
func StartsWith(text string) bool {
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text)
	return Is(r)
}

// EndsWith reports whether the last rune of text is CJK. Empty text is never
// CJK.
func EndsWith(text string) bool {
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	return Is(r)
}
