// Package nameresolver computes the stable, file-unique, URL-suitable
// fragment identifiers that anchor symbol definitions and declarations.
package nameresolver

import (
	"strings"

	"github.com/standardbeagle/srcxref/internal/cxx"
)

// SimpleQualifiedName recursively prefixes the cursor's spelling with its
// semantic parent's qualified name, joined by "::", skipping parents with
// empty spelling (anonymous namespaces, the translation unit, invalid
// cursors). Returns "" iff the cursor is invalid, a translation unit, or
// has no named ancestors.
func SimpleQualifiedName(c *cxx.Cursor) string {
	if !c.Valid() || c.Kind() == cxx.KindTranslationUnit {
		return ""
	}
	name := c.Spelling()
	parent := c.SemanticParent()
	parentName := ""
	if parent != nil && parent.Valid() && parent.Kind() != cxx.KindTranslationUnit {
		parentName = SimpleQualifiedName(parent)
	}
	switch {
	case name == "" && parentName == "":
		return ""
	case name == "":
		return parentName
	case parentName == "":
		return name
	default:
		return parentName + "::" + name
	}
}

// IsNamespaceLevelDeclaration reports whether a cursor denotes an entity
// addressable from outside its immediate local scope: anything with
// external, internal, or unique-external linkage, or a type-alias-ish
// declaration whose semantic ancestors never pass through a function
// before terminating at the translation unit.
func IsNamespaceLevelDeclaration(c *cxx.Cursor) bool {
	if !c.Valid() {
		return false
	}
	switch c.Linkage() {
	case cxx.LinkageExternal, cxx.LinkageInternal, cxx.LinkageUniqueExternal:
		return true
	}
	switch c.Kind() {
	case cxx.KindClass, cxx.KindStruct, cxx.KindUnion, cxx.KindEnum,
		cxx.KindTypedef, cxx.KindTypeAlias, cxx.KindNamespace, cxx.KindNamespaceAlias:
		parent := c.SemanticParent()
		for parent != nil && parent.Valid() && parent.Kind() != cxx.KindTranslationUnit {
			if parent.Kind() == cxx.KindFunction {
				return false
			}
			parent = parent.SemanticParent()
		}
		return true
	}
	return false
}

// IsMainCursor reports whether a cursor is the one anchor this file should
// emit for its declaration: either it is the definition itself, or it is
// the canonical (first-seen) declaration and no definition was found in
// this file (the defining occurrence, if any, lives in another
// translation unit and is linked in later via the USR registry).
func IsMainCursor(c *cxx.Cursor) bool {
	if !c.Valid() {
		return false
	}
	if c.IsDefinition() {
		return true
	}
	return c.IsFirstDeclaration() && c.Definition() == nil
}

// FileUniqueName computes the stable anchor text for a cursor, empty
// unless the cursor is both namespace-level and the "main cursor" for its
// declaration (IsMainCursor).
func FileUniqueName(c *cxx.Cursor, isC bool) string {
	if !c.Valid() || !IsNamespaceLevelDeclaration(c) || !IsMainCursor(c) {
		return ""
	}
	switch c.Kind() {
	case cxx.KindVarDecl, cxx.KindFieldDecl, cxx.KindEnumConstant:
		return SimpleQualifiedName(c)
	case cxx.KindClass, cxx.KindStruct, cxx.KindUnion, cxx.KindEnum:
		name := SimpleQualifiedName(c)
		if !isC {
			return name
		}
		return tagPrefix(c.Kind()) + name
	case cxx.KindTypedef, cxx.KindTypeAlias:
		name := SimpleQualifiedName(c)
		if aliasIsSynonym(c, name) {
			return ""
		}
		return name
	case cxx.KindNamespace, cxx.KindNamespaceAlias:
		return SimpleQualifiedName(c)
	}
	if c.Kind().IsFunctionLike() {
		if isC {
			return c.Spelling()
		}
		return SimpleQualifiedName(c) + ":" + canonicalParamList(c)
	}
	return ""
}

func tagPrefix(k cxx.Kind) string {
	switch k {
	case cxx.KindStruct:
		return "s:"
	case cxx.KindEnum:
		return "e:"
	case cxx.KindUnion:
		return "u:"
	}
	return ""
}

// aliasIsSynonym reports whether a typedef/using-alias merely redeclares
// its canonical (aliased) type under the same qualified name, the
// `typedef struct S { } S;` idiom where the alias is not a meaningful
// anchor distinct from the tag itself.
func aliasIsSynonym(c *cxx.Cursor, aliasName string) bool {
	aliased := aliasedTypeDecl(c)
	if aliased == nil {
		return false
	}
	return SimpleQualifiedName(aliased) == aliasName
}

// aliasedTypeDecl finds the struct/union/enum/class cursor a typedef's
// right-hand side names, when it is a direct reference to one (rather than
// a pointer, array, or function type, which can never collide with the
// alias's own name).
func aliasedTypeDecl(c *cxx.Cursor) *cxx.Cursor {
	ref := c.Referenced()
	if ref != nil && ref.Kind().IsTypeLike() {
		return ref
	}
	return nil
}

// canonicalParamList renders a function's parameter type list for overload
// disambiguation: spaces adjacent to a non-word character collapse away,
// remaining spaces become hyphens, and a variadic function gets "..."
// appended.
func canonicalParamList(c *cxx.Cursor) string {
	params := c.ParameterTypes()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = canonicalizeType(p)
	}
	out := strings.Join(parts, ",")
	if c.IsVariadic() {
		out += "..."
	}
	return out
}

// canonicalizeType collapses whitespace adjacent to a non-word character
// and turns any remaining run of spaces into a single hyphen, so
// "const std::vector<int> &" and similar spellings become stable,
// URL-safe fragments.
func canonicalizeType(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	runes := []rune(s)
	isWord := func(r rune) bool {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	}
	isSpace := func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if isSpace(r) {
			prevWord := i > 0 && isWord(runes[i-1])
			for i+1 < len(runes) && isSpace(runes[i+1]) {
				i++
			}
			nextWord := i+1 < len(runes) && isWord(runes[i+1])
			if prevWord && nextWord {
				b.WriteByte('-')
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
