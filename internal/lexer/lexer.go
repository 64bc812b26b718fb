// Package lexer splits a single FlowLang line into tokens with the whitespace
// gaps between them preserved, so callers can rebuild the line byte for byte.
package lexer

import (
	"strings"
	"unicode"

	"flowfmt/internal/token"
)

// ScanLine tokenizes one line. Concatenating Gap+Text of every token followed
// by trailing reproduces line exactly. Scanning never fails: unknown
// characters become token.Invalid and an unterminated string runs to the end
// of the line.
func ScanLine(line string) (toks []token.Token, trailing string) {
	c := cursor{src: line}
	for {
		gapStart := c.off
		c.eatWhile(unicode.IsSpace)
		gap := line[gapStart:c.off]
		if c.eof() {
			return toks, gap
		}
		start := c.off
		kind := scanOne(&c)
		toks = append(toks, token.Token{Kind: kind, Text: line[start:c.off], Gap: gap})
	}
}

func scanOne(c *cursor) token.Kind {
	r := c.peek()
	switch {
	case r == '#':
		c.off = len(c.src)
		return token.Comment
	case r == '"':
		scanString(c)
		return token.String
	case isDigit(r):
		scanNumber(c)
		return token.Number
	case isIdentStart(r):
		start := c.off
		c.eatWhile(isIdentContinue)
		if token.LookupKeyword(c.src[start:c.off]) {
			return token.Keyword
		}
		return token.Ident
	}

	if op, ok := token.LookupOperator(c.rest()); ok {
		c.off += len(op)
		return token.Operator
	}
	if strings.HasPrefix(c.rest(), "...") {
		c.off += 3
		return token.Punct
	}
	switch c.bump() {
	case '(', ')', '[', ']', '{', '}', ',', '.', ':':
		return token.Punct
	default:
		return token.Invalid
	}
}

// scanString consumes a quoted literal; a backslash escapes the next rune.
func scanString(c *cursor) {
	c.bump() // opening quote
	for !c.eof() {
		switch c.bump() {
		case '\\':
			c.bump()
		case '"':
			return
		}
	}
}

// scanNumber consumes digits with at most one dot; a second dot ends the literal.
func scanNumber(c *cursor) {
	seenDot := false
	for !c.eof() {
		r := c.peek()
		switch {
		case isDigit(r):
			c.bump()
		case r == '.' && !seenDot && !strings.HasPrefix(c.rest(), "..."):
			seenDot = true
			c.bump()
		default:
			return
		}
	}
}
