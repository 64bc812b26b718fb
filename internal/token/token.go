package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid is a character the language does not define.
	Invalid Kind = iota
	// Ident represents an identifier token.
	Ident
	// Keyword represents a reserved word (see LookupKeyword).
	Keyword
	// Number represents an integer or float literal.
	Number
	// String represents a double-quoted string literal, possibly unterminated.
	String
	// Comment represents a '#' comment up to end of line.
	Comment
	// Operator represents an arithmetic, comparison or assignment operator.
	Operator
	// Punct represents brackets, separators and dots.
	Punct
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Ident:
		return "ident"
	case Keyword:
		return "keyword"
	case Number:
		return "number"
	case String:
		return "string"
	case Comment:
		return "comment"
	case Operator:
		return "operator"
	case Punct:
		return "punct"
	default:
		return "unknown"
	}
}

// Token is a single token of a line together with the whitespace before it.
type Token struct {
	Kind Kind
	Text string
	Gap  string
}

// IsLiteral reports whether the token is a number, string, or boolean literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Number, String:
		return true
	case Keyword:
		return t.Text == "true" || t.Text == "false"
	default:
		return false
	}
}

// EndsOperand reports whether an operator following this token is binary.
func (t Token) EndsOperand() bool {
	switch t.Kind {
	case Ident, Number, String:
		return true
	case Keyword:
		return t.IsLiteral()
	case Punct:
		return t.Text == ")" || t.Text == "]" || t.Text == "}"
	default:
		return false
	}
}
