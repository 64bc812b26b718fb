package token

var keywords = map[string]struct{}{
	"let":    {},
	"be":     {},
	"def":    {},
	"with":   {},
	"do":     {},
	"end":    {},
	"if":     {},
	"then":   {},
	"else":   {},
	"while":  {},
	"for":    {},
	"from":   {},
	"to":     {},
	"show":   {},
	"return": {},
	"import": {},
	"export": {},
	"as":     {},
	"try":    {},
	"catch":  {},
	"true":   {},
	"false":  {},
	"and":    {},
	"or":     {},
	"not":    {},
}

// LookupKeyword reports whether ident is a reserved word.
// Ключевые слова регистрозависимые: только lowercase версии распознаются.
func LookupKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}

// operators is ordered longest first so a prefix scan is greedy.
var operators = []string{"==", "!=", "<=", ">=", "=>", "<", ">", "+", "-", "*", "/", "%", "="}

// LookupOperator returns the longest operator that prefixes s.
func LookupOperator(s string) (string, bool) {
	for _, op := range operators {
		if len(s) >= len(op) && s[:len(op)] == op {
			return op, true
		}
	}
	return "", false
}
