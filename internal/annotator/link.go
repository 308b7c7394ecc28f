package annotator

import (
	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/markup"
	"github.com/standardbeagle/srcxref/internal/nameresolver"
	"github.com/standardbeagle/srcxref/internal/registry"
)

// linkCursor implements the cross-reference linking rules: resolve an
// in-file reference if one exists (with typedef/type-alias redirection
// for the `typedef struct S {} S;` idiom), otherwise install a deferred
// USR-based resolver for a declaration/definition markup that might be
// linked by a later translation unit, and finally give the external
// reference linker a chance if neither path produced a link.
func (a *Annotator) linkCursor(entry *registry.FileEntry, path string, cursor *cxx.Cursor) {
	if !cursor.Valid() {
		return
	}
	markups := entry.Builder.Markups()
	if len(markups) == 0 {
		return
	}
	last := &markups[len(markups)-1]

	effective := effectiveReferenced(cursor)
	shouldRef := false

	if effective != nil && effective.ID() != cursor.ID() {
		a.linkToInFileCursor(last, path, effective)
		shouldRef = true
	} else if last.Attrs.HasDecl() != last.Attrs.HasDef() {
		a.installDeferredUSRLink(last, path, cursor)
		shouldRef = true
	}

	if shouldRef && last.Ref == nil {
		a.Reg.LinkExternalRef(last, cursor)
	}
}

// linkDeferred resolves the destructor/operator pending-link span: a
// markup covering from the `~`/`operator` token through the end of the
// following token, linked exactly like any other reference.
func (a *Annotator) linkDeferred(entry *registry.FileEntry, path string, begin, end uint, cursor *cxx.Cursor) {
	if !cursor.Valid() {
		return
	}
	m := markup.Markup{BeginOffset: begin, EndOffset: end}
	effective := effectiveReferenced(cursor)
	if effective != nil {
		a.linkToInFileCursor(&m, path, effective)
	} else {
		a.Reg.LinkExternalRef(&m, cursor)
	}
	entry.Builder.Append(m)
}

// effectiveReferenced applies the type-alias redirection: a typedef/
// type-alias whose aliased type's declaration shares the alias's own
// simpleQualifiedName redirects to that declaration, so both the typedef
// token and every use of the type name land on the same anchor (the
// `typedef struct S { } S;` idiom).
func effectiveReferenced(cursor *cxx.Cursor) *cxx.Cursor {
	ref := cursor.Referenced()
	if ref == nil {
		return nil
	}
	if ref.Kind() == cxx.KindTypedef || ref.Kind() == cxx.KindTypeAlias {
		if aliased := ref.Referenced(); aliased != nil && aliased.Kind().IsTypeLike() {
			if nameresolver.SimpleQualifiedName(aliased) == nameresolver.SimpleQualifiedName(ref) {
				return aliased
			}
		}
	}
	return ref
}

func (a *Annotator) linkToInFileCursor(m *markup.Markup, path string, target *cxx.Cursor) {
	begin, _ := target.Extent()
	isC := isCFile(path)
	decl, ok := a.Reg.ReferenceSymbol(path, lineOf(target), uint32(begin), func() string {
		return nameresolver.FileUniqueName(target, isC)
	})
	if !ok {
		return
	}
	isDef := target.IsDefinition()
	m.Ref = func(outPath string, _ markup.LinkContext) string {
		return registry.Href(outPath, decl, isDef)
	}
}

// installDeferredUSRLink handles a markup that is itself a declaration or
// a definition (but not both): at render time, a later translation unit
// may have produced the missing counterpart, discoverable only through
// the USR registry once every TU has finished parsing.
func (a *Annotator) installDeferredUSRLink(m *markup.Markup, path string, cursor *cxx.Cursor) {
	usr := nameresolver.FileUniqueName(cursor, isCFile(path))
	if usr == "" {
		return
	}
	m.Ref = func(outPath string, ctx markup.LinkContext) string {
		if href, ok := ctx.ResolveUSR(usr, outPath); ok {
			return href
		}
		return ""
	}
}
