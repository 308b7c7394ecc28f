package cxx

import (
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// TokenKind is the lexical category of a token, the first axis TagSpeller
// dispatches on (the second being the associated Cursor's Kind).
type TokenKind int

const (
	TokenOther TokenKind = iota
	TokenPunctuation
	TokenComment
	TokenLiteralString
	TokenLiteralChar
	TokenLiteralFloat
	TokenLiteralInt
	TokenLiteralImaginary
	TokenLiteralOther
	TokenKeyword
	TokenIdentifier
)

// Token is one lexical token of the syntax tree paired with the cursor
// innermostCursor picks for it (used by TagSpeller for kind dispatch and by
// the annotator for declaration/definition/link bookkeeping).
type Token struct {
	Kind   TokenKind
	Text   string
	Start  uint
	End    uint
	Cursor *Cursor
}

// Tokens walks the translation unit in source order, yielding one Token
// per leaf node (named or anonymous) that has nonzero width. String, raw
// string and character literals are yielded whole, as one Token each,
// rather than as their quote and content leaves. Comments are leaves
// tree-sitter attaches directly under their syntactic parent, same as any
// other token.
func (tu *TranslationUnit) Tokens() []Token {
	var out []Token
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "string_literal", "raw_string_literal", "char_literal":
			out = append(out, tu.makeToken(n))
			return
		}
		if n.ChildCount() == 0 {
			if n.StartByte() == n.EndByte() {
				return
			}
			out = append(out, tu.makeToken(n))
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(tu.tree.RootNode())
	return out
}

func (tu *TranslationUnit) makeToken(n *sitter.Node) Token {
	text := nodeText(n, tu.Content)
	kind := classifyToken(n, text)
	cursor := tu.innermostCursor(n)
	return Token{Kind: kind, Text: text, Start: n.StartByte(), End: n.EndByte(), Cursor: cursor}
}

// innermostCursor picks a token's cursor. The name of a declaration (a
// node reached from the declaration through its "name"/"declarator" field
// chain) gets the declaration's own cursor. Any other token gets the
// nearest ancestor (including n itself) that classify() recognizes; the
// walk stops at an enclosing statement, which yields a KindInvalid cursor
// for that statement, and falls back to the translation-unit cursor when
// it runs out of parents.
func (tu *TranslationUnit) innermostCursor(n *sitter.Node) *Cursor {
	child := n
	for p := n.Parent(); p != nil; child, p = p, p.Parent() {
		nm, d := p.ChildByFieldName("name"), p.ChildByFieldName("declarator")
		if (nm == nil || nm.Id() != child.Id()) && (d == nil || d.Id() != child.Id()) {
			break
		}
		if k := classify(p); k.IsDeclarationKind() {
			return tu.wrap(p, k)
		}
	}
	cur := n
	for cur != nil {
		if k := classify(cur); k != KindInvalid {
			return tu.wrap(cur, k)
		}
		if strings.HasSuffix(cur.Kind(), "_statement") {
			return tu.wrap(cur, KindInvalid)
		}
		cur = cur.Parent()
	}
	return tu.Root()
}

func classifyToken(n *sitter.Node, text string) TokenKind {
	switch n.Kind() {
	case "comment":
		return TokenComment
	case "string_literal", "raw_string_literal", "concatenated_string", "system_lib_string":
		return TokenLiteralString
	case "char_literal":
		return TokenLiteralChar
	case "number_literal":
		return classifyNumber(text)
	case "identifier", "field_identifier", "type_identifier", "namespace_identifier",
		"statement_identifier", "destructor_name":
		return TokenIdentifier
	case "primitive_type", "this", "true", "false", "nullptr":
		return TokenKeyword
	}
	if n.IsNamed() {
		return TokenOther
	}
	if text == "" {
		return TokenPunctuation
	}
	r := rune(text[0])
	if unicode.IsLetter(r) || r == '_' {
		return TokenKeyword
	}
	return TokenPunctuation
}

// classifyNumber refines a number_literal token by spelling into
// imaginary, floating or integer. Every integer spelling (hex, binary,
// octal, long or plain) yields TokenLiteralInt; TagSpeller tells those
// apart from the spelling.
func classifyNumber(spelling string) TokenKind {
	s := spelling
	lower := toLowerASCII(s)
	for _, suf := range []string{"i", "j"} {
		if len(lower) > 0 && lower[len(lower)-1:] == suf {
			return TokenLiteralImaginary
		}
	}
	if containsAny(lower, ".eEpP") && !hasHexPrefix(lower) {
		return TokenLiteralFloat
	}
	if hasHexPrefix(lower) {
		if containsAny(lower[2:], ".p") {
			return TokenLiteralFloat
		}
		return TokenLiteralInt
	}
	if len(lower) > 1 && (lower[:2] == "0b") {
		return TokenLiteralInt
	}
	if len(lower) > 1 && lower[0] == '0' && isAllDigits(lower[1:]) {
		return TokenLiteralInt
	}
	return TokenLiteralInt
}

func hasHexPrefix(s string) bool {
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x')
}

func containsAny(s, chars string) bool {
	for _, c := range s {
		for _, want := range chars {
			if c == want {
				return true
			}
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
