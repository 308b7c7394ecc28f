// Package tagspeller classifies a lexical token plus its enclosing cursor
// into a single semantic TokenAttributes kind. The function is pure and
// safe to call from any number of goroutines concurrently.
package tagspeller

import (
	"strings"

	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/types"
)

var builtinTypeWords = map[string]bool{
	"void": true, "bool": true, "char": true, "char16_t": true, "char32_t": true,
	"wchar_t": true, "int": true, "float": true, "double": true,
	"signed": true, "unsigned": true, "short": true, "long": true,
}

var builtinTypePrefixes = []string{"signed ", "unsigned ", "short ", "long "}

// Classify maps (tokenKind, cursorKind, spelling) to a TokenAttributes
// kind, following the ordered rule set: preprocessor constructs first, then
// dispatch by lexical token kind.
func Classify(tok cxx.Token, cursor *cxx.Cursor) types.TokenAttributes {
	if cursor.Valid() && cursor.Kind() == cxx.KindInclusionDirective {
		if tok.Text != "include" && !strings.HasPrefix(tok.Text, "#") {
			return types.PreIncludeFile
		}
		return types.Pre
	}
	if cursor.Valid() && isPreprocessorKind(cursor.Kind()) {
		return types.Pre
	}

	switch tok.Kind {
	case cxx.TokenPunctuation:
		if cursor.Valid() && cursor.Kind() == cxx.KindOperatorExpr {
			return types.Op
		}
		return types.Punct
	case cxx.TokenComment:
		return types.Cmmt
	case cxx.TokenLiteralString:
		return types.LitStr
	case cxx.TokenLiteralChar:
		return types.LitChr
	case cxx.TokenLiteralFloat:
		return types.LitNumFlt
	case cxx.TokenLiteralInt:
		return classifyIntLiteral(tok.Text)
	case cxx.TokenLiteralImaginary:
		return types.LitNum
	case cxx.TokenLiteralOther:
		return types.Lit
	case cxx.TokenKeyword:
		return classifyKeyword(tok.Text, cursor)
	case cxx.TokenIdentifier:
		return classifyIdentifier(cursor, 0)
	}
	return types.None
}

func isPreprocessorKind(k cxx.Kind) bool {
	switch k {
	case cxx.KindMacroDefinition, cxx.KindMacroExpansion, cxx.KindPreprocessorOther:
		return true
	}
	return false
}

func classifyIntLiteral(spelling string) types.TokenAttributes {
	lower := strings.ToLower(spelling)
	switch {
	case strings.HasPrefix(lower, "0x"):
		return types.LitNumIntHex
	case strings.HasPrefix(lower, "0b"):
		return types.LitNumIntBin
	case len(lower) > 1 && lower[0] == '0':
		return types.LitNumIntOct
	case strings.HasSuffix(lower, "l"):
		return types.LitNumIntDecLong
	}
	return types.LitNum
}

func classifyKeyword(spelling string, cursor *cxx.Cursor) types.TokenAttributes {
	if cursor.Valid() && cursor.Kind() == cxx.KindOperatorExpr {
		return types.OpWord
	}
	switch spelling {
	case "nullptr", "true", "false", "YES", "NO":
		return types.LitKw
	case "this":
		return types.LitKw
	case "sizeof", "alignof":
		return types.OpWord
	}
	if isBuiltinTypeKeyword(spelling) {
		return types.TyBuiltin
	}
	if cursor.Valid() && cursor.Kind() == cxx.KindTypeRef {
		return types.TyBuiltin
	}
	if cursor.Valid() && cursor.IsDeclaration() {
		return types.KwDecl
	}
	return types.Kw
}

func isBuiltinTypeKeyword(spelling string) bool {
	if builtinTypeWords[spelling] {
		return true
	}
	for _, p := range builtinTypePrefixes {
		if strings.HasPrefix(spelling, p) {
			return true
		}
	}
	return false
}

// classifyIdentifier applies the identifier dispatch rules, re-dispatching
// to the referenced cursor for member/decl/template refs and using
// declarations up to depth 16; beyond that it returns none (a malformed or
// pathologically self-referential tree).
func classifyIdentifier(cursor *cxx.Cursor, depth int) types.TokenAttributes {
	if !cursor.Valid() {
		return types.None
	}
	if cursor.Kind().IsTypeLike() {
		return types.Ty
	}
	switch cursor.Kind() {
	case cxx.KindMemberRefExpr, cxx.KindDeclRefExpr, cxx.KindUsingDeclaration:
		if depth >= 16 {
			return types.None
		}
		if ref := cursor.Referenced(); ref != nil {
			return classifyIdentifier(ref, depth+1)
		}
		return types.None
	case cxx.KindEnumConstant, cxx.KindNonTypeTemplateParam:
		return types.Constant
	case cxx.KindOverloadedDeclRef:
		return types.Func
	case cxx.KindParam:
		return types.VarLocal
	case cxx.KindNamespace, cxx.KindNamespaceAlias, cxx.KindUsingDirective:
		return types.Namesp
	case cxx.KindLabelStmt:
		return types.Lbl
	case cxx.KindAttribute:
		return types.Attr
	}
	if cursor.Kind().IsFunctionLike() {
		return types.Func
	}
	if cursor.Kind() == cxx.KindVarDecl || cursor.Kind() == cxx.KindFieldDecl {
		return classifyVariable(cursor)
	}
	return types.None
}

// classifyVariable follows the linkage/access-specifier rule: locals have
// no linkage; a field declaration is a class/struct member (static or
// not); anything else with linkage is a plain global.
func classifyVariable(cursor *cxx.Cursor) types.TokenAttributes {
	if cursor.Linkage() == cxx.LinkageNone {
		return types.VarLocal
	}
	if cursor.Kind() != cxx.KindFieldDecl {
		return types.VarGlobal
	}
	if cursor.IsStatic() {
		return types.VarStaticMember
	}
	return types.VarNonstaticMember
}
