// Package token defines the lexical token kinds of FlowLang as seen by the
// line-level tools (operator spacing).
// Invariants:
//   - Token.Text is a slice of the original line (no copies).
//   - Token.Gap is the exact whitespace that preceded Text on the line.
//   - Comments run to end of line and are a single Comment token.
package token
