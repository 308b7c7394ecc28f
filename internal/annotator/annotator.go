// Package annotator orchestrates one translation unit end to end: parsing
// every file it reaches through #include, tokenizing each, classifying
// and linking every token, and recording the result in the shared
// registry.
package annotator

import (
	"os"
	"path/filepath"

	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/debug"
	"github.com/standardbeagle/srcxref/internal/markup"
	"github.com/standardbeagle/srcxref/internal/nameresolver"
	"github.com/standardbeagle/srcxref/internal/registry"
	"github.com/standardbeagle/srcxref/internal/tagspeller"
	"github.com/standardbeagle/srcxref/internal/types"
)

// Annotator runs the per-TU pipeline against a shared registry. A single
// Annotator value may be reused across TUs; all of its per-TU state lives
// on the stack of AnnotateTU, so it is safe for concurrent use by a
// worker pool so long as the registry itself is (it is).
type Annotator struct {
	Reg        *registry.Registry
	SearchDirs []string
	Defines    map[string]bool
}

// New builds an Annotator bound to reg, with the given header search
// directories and preprocessor defines (both typically derived from a
// compilation database command's own -I/-D arguments plus any -e extras).
func New(reg *registry.Registry, searchDirs []string, defines map[string]bool) *Annotator {
	return &Annotator{Reg: reg, SearchDirs: searchDirs, Defines: defines}
}

// AnnotateTU processes one translation unit rooted at mainFile: it walks
// the file's #include closure, and for every file reached that the
// registry has not already claimed for a previous TU, tokenizes it,
// classifies every token, and records markups, declarations, and USR
// definitions.
func (a *Annotator) AnnotateTU(mainFile string) error {
	mainContent, err := os.ReadFile(mainFile)
	if err != nil {
		return err
	}
	isC := isCFile(mainFile)
	closure := cxx.WalkIncludeClosure(mainFile, mainContent, a.SearchDirs)

	for _, path := range closure {
		if !a.Reg.IsFileIncluded(path) {
			continue
		}
		entry, claimed := a.Reg.PrepareToProcess(path)
		if !claimed {
			continue
		}
		content := mainContent
		if path != mainFile {
			data, err := os.ReadFile(path)
			if err != nil {
				debug.LogParse("skipping unreadable include %s: %v", path, err)
				continue
			}
			content = data
		}
		if err := a.annotateFile(path, content, isC, entry); err != nil {
			debug.LogParse("failed to annotate %s: %v", path, err)
		}
	}
	return nil
}

func isCFile(path string) bool {
	switch filepath.Ext(path) {
	case ".c", ".h":
		return true
	}
	return false
}

// annotateFile parses one file and runs the token-emission phase over it,
// single-threaded: only the goroutine that claimed this FileEntry ever
// touches its builder.
func (a *Annotator) annotateFile(path string, content []byte, isC bool, entry *registry.FileEntry) error {
	tu, err := cxx.Parse(path, content, isC)
	if err != nil {
		return err
	}
	entry.Disabled = cxx.ScanDisabledRanges(content, a.Defines)

	tokens := tu.Tokens()
	pendingLinkStart := -1

	for i, tok := range tokens {
		cursor := tok.Cursor

		if pendingLinkStart >= 0 {
			a.linkDeferred(entry, path, uint(pendingLinkStart), tok.End, cursor)
			pendingLinkStart = -1
		}

		attrs := tagspeller.Classify(tok, cursor)
		entry.Builder.Append(markup.Markup{BeginOffset: tok.Start, EndOffset: tok.End, Attrs: attrs})

		switch tok.Kind {
		case cxx.TokenComment, cxx.TokenLiteralString, cxx.TokenLiteralChar,
			cxx.TokenLiteralFloat, cxx.TokenLiteralInt, cxx.TokenLiteralImaginary, cxx.TokenLiteralOther:
			continue
		}

		if cursor.Valid() && cursor.Kind() == cxx.KindInclusionDirective {
			a.annotateInclusion(entry, path, cursor)
			continue
		}

		if tok.Text == "~" && cursor.Valid() && cursor.Kind() == cxx.KindDestructor {
			pendingLinkStart = int(tok.Start)
			continue
		}
		if tok.Text == "operator" && cursor.Valid() && cursor.Kind().IsFunctionLike() {
			if !nextTokenIsCallOrIndexOperator(tokens, i) {
				pendingLinkStart = int(tok.Start)
			}
			continue
		}

		if tok.Kind != cxx.TokenKeyword && tok.Text != "{" && tok.Text != ";" {
			a.recordDeclAndDef(path, entry, cursor)
			a.linkCursor(entry, path, cursor)
		}
	}
	return nil
}

func nextTokenIsCallOrIndexOperator(tokens []cxx.Token, i int) bool {
	if i+1 >= len(tokens) {
		return false
	}
	next := tokens[i+1].Text
	return next == "(" || next == "["
}

// annotateInclusion synthesizes the second, whole-directive markup an
// #include gets on top of its own per-token classification markups,
// pointing at the included file (as a whole-file symbol reference) when
// it resolves inside the corpus.
func (a *Annotator) annotateInclusion(entry *registry.FileEntry, path string, cursor *cxx.Cursor) {
	begin, end := cursor.Extent()
	spelling, angled := cursor.InclusionTarget()
	if spelling == "" {
		return
	}
	dir := filepath.Dir(path)
	resolved, ok := cxx.ResolveInclude(cxx.Include{Spelling: spelling, Angled: angled}, dir, a.SearchDirs)
	if !ok {
		return
	}
	decl, exists := a.Reg.ReferenceSymbol(resolved, 0, registry.WholeFileOffset, nil)
	if !exists {
		return
	}
	entry.Builder.Append(markup.Markup{
		BeginOffset: begin,
		EndOffset:   end,
		Ref: func(outPath string, _ markup.LinkContext) string {
			return registry.Href(outPath, decl, true)
		},
	})
}

// recordDeclAndDef sets flagDecl/flagDef on the most recently appended
// markup (the one annotateFile just appended for this same token) and
// creates/loads the corresponding symbol declaration, registering a USR
// if this is the defining occurrence.
func (a *Annotator) recordDeclAndDef(path string, entry *registry.FileEntry, cursor *cxx.Cursor) {
	if !cursor.Valid() || !cursor.IsDeclaration() {
		return
	}
	markups := entry.Builder.Markups()
	if len(markups) == 0 {
		return
	}
	last := &markups[len(markups)-1]
	last.Attrs |= types.FlagDecl

	name := nameresolver.FileUniqueName(cursor, isCFile(path))
	begin, _ := cursor.Extent()
	sym := a.Reg.CreateSymbol(entry, lineOf(cursor), uint32(begin), name)
	if last.FileUniqueName == "" {
		last.FileUniqueName = sym.FileUniqueName
	}

	if cursor.IsDefinition() {
		last.Attrs |= types.FlagDef
		if name != "" {
			a.Reg.RegisterDef(name, sym)
		}
	}
}

// lineOf approximates a 1-based line number from the cursor's start
// position; tree-sitter exposes this directly via StartPosition, unlike a
// true preprocessor location this never accounts for macro expansion, but
// no #line-directive remapping is in scope here either.
func lineOf(cursor *cxx.Cursor) int {
	node := cursor.Node()
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Row) + 1
}
