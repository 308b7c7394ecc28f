package cxx

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

var cppLanguage = sitter.NewLanguage(tree_sitter_cpp.Language())

// TranslationUnit holds one file's syntax tree plus the per-file scope
// table used to resolve references and definitions without a real
// preprocessor or linker. Cross-file linking is deferred to the registry's
// USR mechanism.
type TranslationUnit struct {
	Filename string
	Content  []byte
	IsC      bool

	tree    *sitter.Tree
	cursors map[uintptr]*Cursor

	// decls maps a spelling to every declaration cursor seen for it, at
	// any scope (parameters and locals included), in source order; used
	// by lookup/definitionOf as
	// a flat (non-scope-aware) approximation of name resolution, which is
	// sufficient for single-TU linking since the disambiguation that
	// really matters (overloads, shadowing) is resolved by offset-nearest
	// match.
	decls map[string][]*Cursor
}

// Parse builds a TranslationUnit for one source file. isC should reflect
// the file's extension (.c vs .cc/.cpp/.hpp/.mm); it is the only source of
// the C/C++ distinction, which is not re-derived from the parsed tree.
func Parse(filename string, content []byte, isC bool) (*TranslationUnit, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(cppLanguage); err != nil {
		return nil, err
	}
	tree := parser.Parse(content, nil)
	tu := &TranslationUnit{
		Filename: filename,
		Content:  content,
		IsC:      isC,
		tree:     tree,
		cursors:  make(map[uintptr]*Cursor),
		decls:    make(map[string][]*Cursor),
	}
	tu.index()
	return tu, nil
}

// Root returns the translation-unit cursor.
func (tu *TranslationUnit) Root() *Cursor {
	return tu.wrap(tu.tree.RootNode(), KindTranslationUnit)
}

// wrap returns the cached Cursor for a node, classifying it on first
// sight. Passing an explicit kind lets callers that already know the
// semantic role (e.g. SemanticParent's container walk) skip
// reclassification; pass KindInvalid to force a fresh classify().
func (tu *TranslationUnit) wrap(n *sitter.Node, kind Kind) *Cursor {
	if n == nil {
		return nil
	}
	id := n.Id()
	if c, ok := tu.cursors[id]; ok {
		return c
	}
	if kind == KindInvalid {
		kind = classify(n)
	}
	c := &Cursor{tu: tu, node: n, kind: kind}
	tu.cursors[id] = c
	return c
}

// index walks the whole tree once, recording every declaration that has
// a spelling, at any scope, so Referenced/Definition can resolve same-file
// links without re-walking on every query.
func (tu *TranslationUnit) index() {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		k := classify(n)
		if k.IsDeclarationKind() {
			c := tu.wrap(n, k)
			if name := c.Spelling(); name != "" {
				tu.decls[name] = append(tu.decls[name], c)
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(tu.tree.RootNode())
}

// lookup resolves a name reference at byte offset `at` to the
// nearest-preceding same-name declaration recorded by index, which
// approximates normal C/C++ lookup (declare-before-use) well enough for
// linking purposes; falls back to the first declaration of that name if
// none precede the use (forward-declared members, out-of-line bodies).
func (tu *TranslationUnit) lookup(name string, at uint) *Cursor {
	candidates := tu.decls[name]
	if len(candidates) == 0 {
		return nil
	}
	var best *Cursor
	for _, c := range candidates {
		start, _ := c.Extent()
		if start <= at && (best == nil || start > mustStart(best)) {
			best = c
		}
	}
	if best == nil {
		best = candidates[0]
	}
	return best
}

func mustStart(c *Cursor) uint {
	s, _ := c.Extent()
	return s
}

// definitionOf returns the first recorded declaration of `name` that is
// itself a definition.
func (tu *TranslationUnit) definitionOf(name string) *Cursor {
	for _, c := range tu.decls[name] {
		if c.IsDefinition() {
			return c
		}
	}
	return nil
}

// classify maps a tree-sitter-cpp node kind string to a semantic Kind.
// Node kinds not named here classify as KindInvalid, which TagSpeller
// treats as a plain token with no cursor-derived context.
func classify(n *sitter.Node) Kind {
	switch n.Kind() {
	case "translation_unit":
		return KindTranslationUnit
	case "namespace_definition":
		return KindNamespace
	case "namespace_alias_definition":
		return KindNamespaceAlias
	case "using_declaration":
		return KindUsingDeclaration
	case "class_specifier":
		return KindClass
	case "struct_specifier":
		return KindStruct
	case "union_specifier":
		return KindUnion
	case "enum_specifier":
		return KindEnum
	case "enumerator":
		return KindEnumConstant
	case "type_definition":
		return KindTypedef
	case "alias_declaration":
		return KindTypeAlias
	case "type_identifier", "sized_type_specifier", "primitive_type":
		return KindTypeRef
	case "template_type_parameter":
		return KindTemplateTypeParam
	case "type_parameter_declaration":
		return KindNonTypeTemplateParam
	case "base_class_clause":
		return KindBaseSpecifier
	case "function_definition":
		if declarator := innerDeclarator(n); declarator != nil && declaratorIsDestructor(declarator) {
			return KindDestructor
		}
		return KindFunction
	case "parameter_declaration", "optional_parameter_declaration":
		return KindParam
	case "declaration":
		return KindVarDecl
	case "field_declaration":
		if hasFunctionDeclarator(n) {
			return KindMethod
		}
		return KindFieldDecl
	case "field_expression":
		return KindMemberRefExpr
	case "identifier", "field_identifier", "namespace_identifier", "qualified_identifier":
		return KindDeclRefExpr
	case "call_expression":
		return KindCallExpr
	case "binary_expression", "unary_expression", "assignment_expression", "compound_assignment_expression":
		return KindOperatorExpr
	case "labeled_statement":
		return KindLabelStmt
	case "attribute_declaration", "attribute", "ms_declspec_modifier":
		return KindAttribute
	case "preproc_include":
		return KindInclusionDirective
	case "preproc_def", "preproc_function_def":
		return KindMacroDefinition
	case "preproc_if", "preproc_ifdef", "preproc_elif", "preproc_else", "preproc_endif",
		"preproc_call", "preproc_defined":
		return KindPreprocessorOther
	case "destructor_name":
		return KindDestructor
	}
	return KindInvalid
}

func hasFunctionDeclarator(n *sitter.Node) bool {
	return innerDeclarator(n) != nil
}

func declaratorIsDestructor(n *sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		ch := n.Child(i)
		if ch != nil && ch.Kind() == "destructor_name" {
			return true
		}
	}
	return false
}

// innerDeclarator finds the function_declarator nested inside a
// declaration/field_declaration/function_definition's declarator chain
// (pointer/reference declarators wrap it for pointer-returning functions).
func innerDeclarator(n *sitter.Node) *sitter.Node {
	d := n.ChildByFieldName("declarator")
	for d != nil {
		switch d.Kind() {
		case "function_declarator":
			return d
		case "pointer_declarator", "reference_declarator", "init_declarator":
			d = d.ChildByFieldName("declarator")
		default:
			return nil
		}
	}
	return nil
}

func declaratorName(declarator *sitter.Node, content []byte) string {
	d := declarator.ChildByFieldName("declarator")
	if d == nil {
		return nodeText(declarator, content)
	}
	for d != nil {
		switch d.Kind() {
		case "identifier", "field_identifier", "destructor_name", "operator_name", "qualified_identifier":
			return nodeText(d, content)
		}
		next := d.ChildByFieldName("declarator")
		if next == nil {
			return nodeText(d, content)
		}
		d = next
	}
	return ""
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(content)) || start > end {
		return ""
	}
	return string(content[start:end])
}

func fieldText(n *sitter.Node, content []byte, field string) string {
	if n == nil {
		return ""
	}
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return nodeText(child, content)
}
