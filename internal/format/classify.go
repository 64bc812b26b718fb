package format

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommentMarker starts a comment line when it is the first non-space character.
const CommentMarker = "#"

const (
	kwDo   = "do"
	kwThen = "then"
	kwEnd  = "end"
	kwElse = "else"
)

// LineKind classifies a trimmed source line.
type LineKind uint8

const (
	// Blank is an empty line after trimming.
	Blank LineKind = iota
	// Comment is a line whose first token is the comment marker.
	Comment
	// Code is every other line; only code lines move the indent level.
	Code
)

// String returns the string representation of LineKind.
func (k LineKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case Code:
		return "code"
	default:
		return "unknown"
	}
}

// Classify reports the kind of an already trimmed line.
func Classify(trimmed string) LineKind {
	switch {
	case trimmed == "":
		return Blank
	case strings.HasPrefix(trimmed, CommentMarker):
		return Comment
	default:
		return Code
	}
}

// PreAdjust applies closer keywords before the line is emitted: a leading
// `end` or `else` moves the line one level out. The result is never negative.
func PreAdjust(level int, trimmed string) int {
	if isCloser(trimmed) {
		level--
	}
	if level < 0 {
		return 0
	}
	return level
}

// PostAdjust applies opener keywords after the line is emitted. A trailing
// `do` or `then` opens a block; otherwise a leading `else` reopens the branch
// that PreAdjust closed. At most one increment applies per line.
func PostAdjust(level int, trimmed string) int {
	if level < 0 {
		level = 0
	}
	switch {
	case isOpener(trimmed):
		return level + 1
	case hasLeadingWord(trimmed, kwElse):
		return level + 1
	default:
		return level
	}
}

func isCloser(trimmed string) bool {
	return hasLeadingWord(trimmed, kwEnd) || hasLeadingWord(trimmed, kwElse)
}

func isOpener(trimmed string) bool {
	return hasTrailingWord(trimmed, kwDo) || hasTrailingWord(trimmed, kwThen)
}

// hasLeadingWord reports whether s starts with kw as a whole word.
func hasLeadingWord(s, kw string) bool {
	if !strings.HasPrefix(s, kw) {
		return false
	}
	if len(s) == len(kw) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[len(kw):])
	return !isWordRune(r)
}

// hasTrailingWord reports whether s ends with kw as a whole word.
func hasTrailingWord(s, kw string) bool {
	if !strings.HasSuffix(s, kw) {
		return false
	}
	rest := s[:len(s)-len(kw)]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(rest)
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
