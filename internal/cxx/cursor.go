package cxx

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Cursor is a semantically-annotated view of a tree-sitter node: enough of
// a Clang cursor's shape (kind, spelling, semantic parent, referenced
// entity, linkage) to drive token classification and name resolution
// without a true preprocessor or type system.
type Cursor struct {
	tu   *TranslationUnit
	node *sitter.Node
	kind Kind

	parentComputed bool
	parent         *Cursor

	refComputed bool
	referenced  *Cursor

	defComputed bool
	definition  *Cursor

	linkageComputed bool
	linkage         Linkage
}

// Valid reports whether the cursor wraps a real node.
func (c *Cursor) Valid() bool { return c != nil && c.node != nil }

// Kind returns the cursor's classification.
func (c *Cursor) Kind() Kind {
	if c == nil {
		return KindInvalid
	}
	return c.kind
}

// Node exposes the underlying syntax node for callers that need raw
// tree-sitter access (token walking, field lookups).
func (c *Cursor) Node() *sitter.Node { return c.node }

// ID uniquely identifies the underlying node within its translation unit,
// for callers that need cursor identity rather than content equality
// (e.g. "is this reference a self-reference").
func (c *Cursor) ID() uintptr {
	if !c.Valid() {
		return 0
	}
	return c.node.Id()
}

// Extent returns the half-open byte range the cursor's node spans.
func (c *Cursor) Extent() (uint, uint) {
	if !c.Valid() {
		return 0, 0
	}
	return c.node.StartByte(), c.node.EndByte()
}

// File returns the translation unit's filename; all cursors produced for a
// single parse share a file since cross-file nodes don't occur in a
// per-file-independent parse model.
func (c *Cursor) File() string {
	if c == nil || c.tu == nil {
		return ""
	}
	return c.tu.Filename
}

// Spelling returns the declared or referenced name, derived from the
// node's "name"/"declarator" field or, for identifier-shaped nodes, its own
// text.
func (c *Cursor) Spelling() string {
	if !c.Valid() {
		return ""
	}
	if name := fieldText(c.node, c.tu.Content, "name"); name != "" {
		return name
	}
	switch c.node.Kind() {
	case "identifier", "field_identifier", "type_identifier", "namespace_identifier", "primitive_type":
		return nodeText(c.node, c.tu.Content)
	case "function_definition", "declaration", "field_declaration":
		if c.node.ChildByFieldName("declarator") != nil {
			return declaratorName(c.node, c.tu.Content)
		}
	}
	return ""
}

// IsDeclaration reports whether this cursor kind is some form of
// declaration.
func (c *Cursor) IsDeclaration() bool { return c.Kind().IsDeclarationKind() }

// IsDefinition reports whether the cursor is itself the defining
// occurrence (function with a body, class/struct/union/enum with a body,
// a variable declaration with an initializer, or a namespace - namespaces
// have no separate declaration form so every occurrence is a definition).
func (c *Cursor) IsDefinition() bool {
	if !c.Valid() {
		return false
	}
	switch c.kind {
	case KindFunction, KindMethod, KindConstructor, KindDestructor:
		return c.node.ChildByFieldName("body") != nil
	case KindClass, KindStruct, KindUnion, KindEnum:
		return c.node.ChildByFieldName("body") != nil
	case KindNamespace:
		return true
	case KindVarDecl, KindFieldDecl:
		if decl := c.node.ChildByFieldName("declarator"); decl != nil {
			return decl.Kind() == "init_declarator"
		}
		return false
	}
	return false
}

// Canonical returns the cursor that should anchor this entity's stable
// name: the definition if one was found in the same file, else the cursor
// itself. Cross-file canonicalization is out of scope for a per-file parse
// model and is instead handled by USR-based deferred resolution at render
// time.
func (c *Cursor) Canonical() *Cursor {
	if def := c.Definition(); def != nil {
		return def
	}
	return c
}

// SemanticParent walks up the tree to the nearest enclosing
// namespace/class/struct/union/function, mirroring Clang's semantic
// parent chain closely enough for simpleQualifiedName construction.
func (c *Cursor) SemanticParent() *Cursor {
	if !c.Valid() {
		return nil
	}
	if c.parentComputed {
		return c.parent
	}
	c.parentComputed = true
	n := c.node.Parent()
	for n != nil {
		if k, ok := semanticContainerKind(n.Kind()); ok {
			c.parent = c.tu.wrap(n, k)
			return c.parent
		}
		n = n.Parent()
	}
	c.parent = c.tu.wrap(c.tu.tree.RootNode(), KindTranslationUnit)
	return c.parent
}

// semanticContainerKind reports whether a tree-sitter node kind can act as
// a semantic-parent boundary, and which Kind to classify it as.
func semanticContainerKind(nodeKind string) (Kind, bool) {
	switch nodeKind {
	case "namespace_definition":
		return KindNamespace, true
	case "class_specifier":
		return KindClass, true
	case "struct_specifier":
		return KindStruct, true
	case "union_specifier":
		return KindUnion, true
	case "enum_specifier":
		return KindEnum, true
	case "function_definition":
		return KindFunction, true
	case "translation_unit":
		return KindTranslationUnit, true
	}
	return KindInvalid, false
}

// Referenced resolves a declaration-reference cursor (identifier,
// field-reference, call target, type-reference) to the declaration it
// names within the current file's scope table. Returns nil when the
// cursor is not a reference, or the name could not be resolved locally
// (the common case for symbols declared in another translation unit,
// which USR-based deferred linking covers instead).
func (c *Cursor) Referenced() *Cursor {
	if !c.Valid() {
		return nil
	}
	if c.refComputed {
		return c.referenced
	}
	c.refComputed = true
	name := c.Spelling()
	if name == "" {
		return nil
	}
	switch c.kind {
	case KindDeclRefExpr, KindMemberRefExpr, KindTypeRef, KindCallExpr, KindOverloadedDeclRef:
		if decl := c.tu.lookup(name, c.node.StartByte()); decl != nil {
			c.referenced = decl
		}
	}
	return c.referenced
}

// Definition returns the defining cursor for this entity if one has been
// seen in the same file (e.g. a method declared in a class and defined
// later at namespace scope). Entities defined in another TU are resolved
// later via the USR registry, not through this accessor.
func (c *Cursor) Definition() *Cursor {
	if !c.Valid() {
		return nil
	}
	if c.defComputed {
		return c.definition
	}
	c.defComputed = true
	if c.IsDefinition() {
		c.definition = c
		return c.definition
	}
	name := c.Spelling()
	if name == "" {
		return nil
	}
	if def := c.tu.definitionOf(name); def != nil {
		c.definition = def
	}
	return c.definition
}

// InclusionTarget returns the raw spelling between an #include
// directive's delimiters and whether it used angle brackets. Valid only
// for a KindInclusionDirective cursor.
func (c *Cursor) InclusionTarget() (spelling string, angled bool) {
	if !c.Valid() {
		return "", false
	}
	path := c.node.ChildByFieldName("path")
	if path == nil {
		return "", false
	}
	text := nodeText(path, c.tu.Content)
	switch path.Kind() {
	case "system_lib_string":
		return trimEnds(text, 1, 1), true
	case "string_literal":
		return trimEnds(text, 1, 1), false
	}
	return text, false
}

func trimEnds(s string, left, right int) string {
	if len(s) < left+right {
		return s
	}
	return s[left : len(s)-right]
}

// IsFirstDeclaration reports whether this is the earliest-recorded
// declaration cursor sharing this entity's spelling in the translation
// unit, the closest a single-file scan can get to Clang's canonical-cursor
// notion without true redeclaration-chain tracking.
func (c *Cursor) IsFirstDeclaration() bool {
	if !c.Valid() {
		return false
	}
	name := c.Spelling()
	if name == "" {
		return false
	}
	candidates := c.tu.decls[name]
	if len(candidates) == 0 {
		return false
	}
	return candidates[0] == c
}

// Linkage approximates Clang's linkage classification from syntactic
// context, for variables, fields and functions (every other kind has no
// linkage): parameters and entities inside a function body, `static`
// locals included, have no linkage; entities inside an unnamed namespace
// are unique-external; any other `static` declaration is internal;
// everything else is external.
func (c *Cursor) Linkage() Linkage {
	if !c.Valid() {
		return LinkageInvalid
	}
	if c.linkageComputed {
		return c.linkage
	}
	c.linkageComputed = true
	c.linkage = computeLinkage(c)
	return c.linkage
}

func computeLinkage(c *Cursor) Linkage {
	switch c.kind {
	case KindParam:
		return LinkageNone
	case KindVarDecl, KindFunction, KindFieldDecl:
	default:
		return LinkageNone
	}
	parent := c.SemanticParent()
	for parent != nil && parent.Kind() != KindTranslationUnit {
		if parent.Kind() == KindFunction {
			return LinkageNone
		}
		if parent.Kind() == KindNamespace && isAnonymousNamespace(parent.node, c.tu.Content) {
			return LinkageUniqueExternal
		}
		parent = parent.SemanticParent()
	}
	if hasStaticSpecifier(c.node, c.tu.Content) {
		return LinkageInternal
	}
	return LinkageExternal
}

// IsStatic reports whether the declaration carries an explicit `static`
// storage-class specifier, used to distinguish static from non-static
// class/struct member variables.
func (c *Cursor) IsStatic() bool {
	if !c.Valid() {
		return false
	}
	return hasStaticSpecifier(c.node, c.tu.Content)
}

func hasStaticSpecifier(n *sitter.Node, content []byte) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		ch := n.Child(i)
		if ch != nil && ch.Kind() == "storage_class_specifier" && nodeText(ch, content) == "static" {
			return true
		}
	}
	return false
}

func isAnonymousNamespace(n *sitter.Node, content []byte) bool {
	return fieldText(n, content, "name") == ""
}

// ParameterTypes returns the source text of each parameter's `type` field
// only (the declarator, i.e. the parameter's name, is dropped) in a
// function-like cursor's parameter list, in order, used by the
// overload-disambiguation name encoding. This mirrors clang_getArgType,
// which likewise reports a parameter's type without its name. Returns nil
// for non-function cursors or parameter-less declarations.
func (c *Cursor) ParameterTypes() []string {
	if !c.Valid() || !c.Kind().IsFunctionLike() {
		return nil
	}
	declarator := innerDeclarator(c.node)
	if declarator == nil {
		return nil
	}
	params := declarator.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < params.ChildCount(); i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "parameter_declaration" || child.Kind() == "optional_parameter_declaration" {
			out = append(out, fieldText(child, c.tu.Content, "type"))
		}
	}
	return out
}

// IsVariadic reports whether a function-like cursor's parameter list ends
// in `...`.
func (c *Cursor) IsVariadic() bool {
	if !c.Valid() || !c.Kind().IsFunctionLike() {
		return false
	}
	declarator := innerDeclarator(c.node)
	if declarator == nil {
		return false
	}
	params := declarator.ChildByFieldName("parameters")
	if params == nil {
		return false
	}
	for i := uint(0); i < params.ChildCount(); i++ {
		child := params.Child(i)
		if child != nil && child.Kind() == "variadic_parameter" {
			return true
		}
	}
	return false
}
