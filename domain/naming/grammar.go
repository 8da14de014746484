package naming

import "unicode"

// DefaultMinDepth is the minimum number of components a guest name must have:
// three namespace components plus one terminal identifier.
const DefaultMinDepth = 4

// Grammar describes the lexical rules of the names the execution substrate accepts.
type Grammar struct {
	// Keywords are reserved words no component may equal.
	Keywords map[string]struct{}

	// IsIdentifierStart reports whether r may begin a component.
	IsIdentifierStart func(r rune) bool

	// IsIdentifierPart reports whether r may follow the first rune of a component.
	IsIdentifierPart func(r rune) bool
}

// IsKeyword returns true if s is a reserved word of the grammar.
func (g Grammar) IsKeyword(s string) bool {
	_, ok := g.Keywords[s]
	return ok
}

// keywords are the reserved words of JVM-style qualified names, which published
// guest units use for their reverse-DNS namespaces.
var keywords = []string{
	"_", "abstract", "assert", "boolean", "break", "byte", "case", "catch",
	"char", "class", "const", "continue", "default", "do", "double", "else",
	"enum", "extends", "final", "finally", "float", "for", "goto", "if",
	"implements", "import", "instanceof", "int", "interface", "long", "native",
	"new", "package", "private", "protected", "public", "return", "short",
	"static", "strictfp", "super", "switch", "synchronized", "this", "throw",
	"throws", "transient", "try", "void", "volatile", "while",
	"true", "false", "null",
}

// DefaultGrammar returns the grammar used for guest unit names.
func DefaultGrammar() Grammar {
	kw := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		kw[k] = struct{}{}
	}
	return Grammar{
		Keywords:          kw,
		IsIdentifierStart: isIdentifierStart,
		IsIdentifierPart:  isIdentifierPart,
	}
}

// Keywords returns a copy of the default keyword list.
func Keywords() []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

func isIdentifierStart(r rune) bool {
	switch {
	case r == '_' || r == '$':
		return true
	case unicode.IsLetter(r):
		return true
	case unicode.Is(unicode.Sc, r), unicode.Is(unicode.Pc, r), unicode.Is(unicode.Nl, r):
		return true
	}
	return false
}

func isIdentifierPart(r rune) bool {
	if isIdentifierStart(r) {
		return true
	}
	return unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) ||
		unicode.Is(unicode.Mc, r) ||
		unicode.Is(unicode.Cf, r)
}
