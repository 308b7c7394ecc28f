// Package cxx builds a small Clang-cursor-shaped semantic layer on top of
// tree-sitter's C/C++ grammar: declarations, references, scopes, and
// linkage, computed from the syntax tree rather than a true compiler
// front end.
package cxx

// Kind classifies a Cursor the way a Clang cursor kind would, collapsed to
// the categories the annotation pipeline actually branches on.
type Kind int

const (
	KindInvalid Kind = iota
	KindTranslationUnit
	KindNamespace
	KindNamespaceAlias
	KindUsingDirective
	KindUsingDeclaration
	KindClass
	KindStruct
	KindUnion
	KindEnum
	KindEnumConstant
	KindTypedef
	KindTypeAlias
	KindTypeRef
	KindTemplateTypeParam
	KindNonTypeTemplateParam
	KindBaseSpecifier
	KindFunction
	KindMethod
	KindConstructor
	KindDestructor
	KindOverloadedDeclRef
	KindParam
	KindVarDecl
	KindFieldDecl
	KindMemberRefExpr
	KindDeclRefExpr
	KindCallExpr
	KindOperatorExpr
	KindLabelStmt
	KindAttribute
	KindInclusionDirective
	KindMacroDefinition
	KindMacroExpansion
	KindPreprocessorOther
	KindObjCInterface
	KindObjCImplementation
	KindObjCCategory
	KindObjCProtocol
	KindLiteral
)

// IsTypeLike reports whether the kind denotes a type-introducing or
// type-referencing entity; identifiers of these kinds render as `ty`
// regardless of their surrounding context.
func (k Kind) IsTypeLike() bool {
	switch k {
	case KindClass, KindStruct, KindUnion, KindEnum, KindTypedef, KindTypeAlias,
		KindTypeRef, KindTemplateTypeParam, KindBaseSpecifier,
		KindObjCInterface, KindObjCImplementation, KindObjCCategory, KindObjCProtocol:
		return true
	}
	return false
}

// IsDeclarationKind reports whether the kind is some form of declaration
// (used by the declaration/decl-statement branch of token classification).
func (k Kind) IsDeclarationKind() bool {
	switch k {
	case KindNamespace, KindNamespaceAlias, KindClass, KindStruct, KindUnion,
		KindEnum, KindEnumConstant, KindTypedef, KindTypeAlias,
		KindFunction, KindMethod, KindConstructor, KindDestructor,
		KindParam, KindVarDecl, KindFieldDecl, KindTemplateTypeParam,
		KindNonTypeTemplateParam, KindObjCInterface, KindObjCCategory,
		KindObjCProtocol:
		return true
	}
	return false
}

// IsFunctionLike reports whether the kind is any function/method/
// constructor/destructor declaration, or an overloaded-decl-ref.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunction, KindMethod, KindConstructor, KindDestructor, KindOverloadedDeclRef:
		return true
	}
	return false
}

// Linkage mirrors Clang's linkage classification, used by NameResolver to
// decide namespace-level-ness and by TagSpeller to classify variables.
type Linkage int

const (
	LinkageInvalid Linkage = iota
	LinkageNone
	LinkageInternal
	LinkageUniqueExternal
	LinkageExternal
)
