package lexer

import (
	"unicode"
	"unicode/utf8"
)

// cursor is a byte offset into a single line.
type cursor struct {
	src string
	off int
}

// EOF проверяет, достигнут ли конец строки
func (c *cursor) eof() bool { return c.off >= len(c.src) }

func (c *cursor) peek() rune {
	if c.eof() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(c.src[c.off:])
	return r
}

func (c *cursor) bump() rune {
	if c.eof() {
		return utf8.RuneError
	}
	r, size := utf8.DecodeRuneInString(c.src[c.off:])
	c.off += size
	return r
}

func (c *cursor) rest() string { return c.src[c.off:] }

func (c *cursor) eatWhile(pred func(rune) bool) {
	for !c.eof() && pred(c.peek()) {
		c.bump()
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinue(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
