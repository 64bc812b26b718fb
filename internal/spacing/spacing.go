// Package spacing normalizes whitespace around binary operators on FlowLang
// lines. It works on lexer tokens, so operators inside string literals and
// comments are never touched. It is independent of indentation: leading
// whitespace of a line is preserved as is.
package spacing

import (
	"strings"

	"flowfmt/internal/lexer"
	"flowfmt/internal/token"
)

// Text applies Line to every '\n'-separated line of src.
func Text(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = Line(line)
	}
	return strings.Join(lines, "\n")
}

// Line puts exactly one space on each side of every binary operator.
// Unary '+' and '-' stay attached to their operand.
func Line(line string) string {
	toks, trailing := lexer.ScanLine(line)
	if len(toks) == 0 {
		return line
	}

	for i := 1; i < len(toks); i++ {
		if toks[i].Kind != token.Operator || !isBinary(toks[i-1], toks[i]) {
			continue
		}
		toks[i].Gap = " "
		if i+1 < len(toks) && toks[i+1].Kind != token.Comment {
			toks[i+1].Gap = " "
		}
	}

	var b strings.Builder
	b.Grow(len(line) + 8)
	for _, tok := range toks {
		b.WriteString(tok.Gap)
		b.WriteString(tok.Text)
	}
	b.WriteString(trailing)
	return b.String()
}

// isBinary decides whether op is used as a binary operator given the token
// before it. Only '+' and '-' have a unary form in FlowLang.
func isBinary(prev, op token.Token) bool {
	switch op.Text {
	case "+", "-":
		return prev.EndsOperand()
	default:
		return true
	}
}
