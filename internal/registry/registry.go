// Package registry implements the multi-translation-unit coordination
// engine: a concurrent file registry that deduplicates files seen across
// many TUs, enforces at-most-once rendering per physical file, aggregates
// definitions across TUs via USR, and resolves cross-TU references once
// parsing completes.
package registry

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/debug"
	"github.com/standardbeagle/srcxref/internal/markup"
	"github.com/standardbeagle/srcxref/internal/types"
)

// WholeFileOffset is the sentinel offset denoting "the file itself" rather
// than a byte position within it (used for e.g. #include targets).
const WholeFileOffset uint32 = 1<<32 - 1

// SymbolDeclaration is a declaration site: the file it was seen in, a
// 1-based line number (0 meaning "the file itself"), and an optional
// stable fragment name populated once a definition or main declaration is
// visited.
type SymbolDeclaration struct {
	File           *FileEntry
	Line           int
	FileUniqueName string
}

// ExternalRefLinker is the pluggable hook (C9) the registry calls when an
// in-corpus link could not be established; implementations may attach a
// static URL to the markup (e.g. from a Doxygen tag file).
type ExternalRefLinker interface {
	Link(m *markup.Markup, cursor *cxx.Cursor)
}

// Root pairs one configured input directory with the output directory its
// rendered files land under.
type Root struct {
	InputRoot  string
	OutputRoot string
}

type symbolKey struct {
	file   types.FileID
	offset uint32
}

// Registry is the shared, thread-safe coordination state for one indexing
// run.
type Registry struct {
	mu sync.Mutex

	roots          []Root
	rootPrefix     string
	files          map[types.FileID]*FileEntry
	symbols        map[symbolKey]*SymbolDeclaration
	usrDefs        map[string]*SymbolDeclaration
	maxIDSize      int
	externalLinker ExternalRefLinker
	excludes       []string
}

// New builds a Registry for the given input/output root pairs.
// maxIDSize bounds the length of a fileUniqueName stored on a markup;
// names longer than this degrade to line-number anchors (§6). excludes is
// a set of doublestar glob patterns matched against each path's slash-form
// before it is considered part of the corpus (e.g. build-output or VCS
// directories from the project's .srcxref.kdl).
func New(roots []Root, maxIDSize int, linker ExternalRefLinker, excludes []string) *Registry {
	if maxIDSize <= 0 {
		maxIDSize = 128
	}
	return &Registry{
		roots:          roots,
		rootPrefix:     commonPrefix(roots),
		files:          make(map[types.FileID]*FileEntry),
		symbols:        make(map[symbolKey]*SymbolDeclaration),
		usrDefs:        make(map[string]*SymbolDeclaration),
		maxIDSize:      maxIDSize,
		externalLinker: linker,
		excludes:       excludes,
	}
}

func commonPrefix(roots []Root) string {
	if len(roots) == 0 {
		return ""
	}
	prefix := filepath.Clean(roots[0].InputRoot)
	for _, r := range roots[1:] {
		prefix = sharedPrefix(prefix, filepath.Clean(r.InputRoot))
	}
	return prefix
}

func sharedPrefix(a, b string) string {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// IsFileIncluded reports whether path lies within some configured input
// root and matches none of the configured exclusion globs, using the
// cached longest-common-prefix as a fast early reject.
func (r *Registry) IsFileIncluded(path string) bool {
	clean := filepath.Clean(path)
	if r.rootPrefix != "" && !strings.HasPrefix(clean, r.rootPrefix) {
		return false
	}
	for _, root := range r.roots {
		rel, ok := relUnder(filepath.Clean(root.InputRoot), clean)
		if !ok {
			continue
		}
		if r.isExcluded(filepath.ToSlash(rel)) {
			return false
		}
		return true
	}
	return false
}

func (r *Registry) isExcluded(relSlash string) bool {
	for _, pattern := range r.excludes {
		if ok, err := doublestar.Match(pattern, relSlash); err == nil && ok {
			return true
		}
	}
	return false
}

func relUnder(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}

func (r *Registry) rootFor(path string) (Root, string, bool) {
	clean := filepath.Clean(path)
	for _, root := range r.roots {
		if rel, ok := relUnder(filepath.Clean(root.InputRoot), clean); ok {
			return root, rel, true
		}
	}
	return Root{}, "", false
}

// PrepareToProcess returns a mutable FileEntry only to the first caller
// per FileId that passes the root filter; subsequent callers receive
// (nil, false). The entry is created lazily on first reference regardless
// of which caller wins the claim.
func (r *Registry) PrepareToProcess(path string) (*FileEntry, bool) {
	entry, ok := r.entryFor(path)
	if !ok {
		return nil, false
	}
	if !entry.tryClaim() {
		return nil, false
	}
	return entry, true
}

// entryFor looks up or lazily creates the FileEntry for path, returning
// (nil, false) if the path is outside every configured root.
func (r *Registry) entryFor(path string) (*FileEntry, bool) {
	root, rel, ok := r.rootFor(path)
	if !ok {
		return nil, false
	}
	id, err := types.Stat(path)
	if err != nil {
		debug.Log("registry", "stat failed for %s: %v", path, err)
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, exists := r.files[id]; exists {
		return e, true
	}
	e := &FileEntry{
		ID:         id,
		InputRoot:  root.InputRoot,
		OutputRoot: root.OutputRoot,
		RelPath:    filepath.ToSlash(rel),
	}
	r.files[id] = e
	return e, true
}

// ReferenceSymbol obtains the symbol declaration at (FileId(file), offset),
// creating it lazily with the given line and a lazily-computed file-unique
// name (only invoked, and only honored, if the entry is new and the
// resulting name fits within maxIDSize). Returns (nil, false) if the file
// lies outside every root.
func (r *Registry) ReferenceSymbol(path string, lineno int, offset uint32, nameThunk func() string) (*SymbolDeclaration, bool) {
	entry, ok := r.entryFor(path)
	if !ok {
		return nil, false
	}
	id, err := types.Stat(path)
	if err != nil {
		return nil, false
	}
	key := symbolKey{file: id, offset: offset}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sym, exists := r.symbols[key]; exists {
		return sym, true
	}
	name := ""
	if nameThunk != nil {
		if n := nameThunk(); len(n) <= r.maxIDSize {
			name = n
		}
	}
	sym := &SymbolDeclaration{File: entry, Line: lineno, FileUniqueName: name}
	r.symbols[key] = sym
	return sym, true
}

// CreateSymbol force-creates the symbol at a declaration site so the
// declaration's own id attribute can be emitted, bypassing the
// outside-roots check since the caller already holds the FileEntry.
func (r *Registry) CreateSymbol(entry *FileEntry, lineno int, offset uint32, name string) *SymbolDeclaration {
	key := symbolKey{file: entry.ID, offset: offset}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sym, exists := r.symbols[key]; exists {
		if name != "" && len(name) <= r.maxIDSize && sym.FileUniqueName == "" {
			sym.FileUniqueName = name
		}
		return sym
	}
	if len(name) > r.maxIDSize {
		name = ""
	}
	sym := &SymbolDeclaration{File: entry, Line: lineno, FileUniqueName: name}
	r.symbols[key] = sym
	return sym
}

// RegisterDef records a USR to definition mapping; a no-op for an empty
// USR. Duplicate USRs are permitted across TUs; the last writer wins,
// which only matters for the cross-TU fallback path since the first
// writer's own file already linked correctly.
func (r *Registry) RegisterDef(usr string, decl *SymbolDeclaration) {
	if usr == "" || decl == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.usrDefs[usr]; exists {
		debug.Log("registry", "duplicate definition for USR %s", usr)
	}
	r.usrDefs[usr] = decl
}

// ResolveUSR implements markup.LinkContext: render-phase only and
// intentionally not synchronized, since by the time rendering begins
// every TU has finished parsing and no writer remains. Looks up usr and,
// if a later TU produced its definition, returns the href relative to
// outPath.
func (r *Registry) ResolveUSR(usr, outPath string) (string, bool) {
	decl, ok := r.usrDefs[usr]
	if !ok {
		return "", false
	}
	return Href(outPath, decl, true), true
}

// LookupDef exposes the raw definition declaration recorded for a USR,
// read from the same map ResolveUSR uses (the deferred-resolver closures
// go through ResolveUSR, not this accessor).
func (r *Registry) LookupDef(usr string) (*SymbolDeclaration, bool) {
	decl, ok := r.usrDefs[usr]
	return decl, ok
}

// Href computes the relative hyperlink from a rendering file's output
// path to a symbol declaration: a relative path to the destination file
// (empty if they're the same file) plus a fragment, which is the
// declaration's fileUniqueName when it names a definition, else a
// line-number anchor.
func Href(fromOutputPath string, decl *SymbolDeclaration, isDef bool) string {
	if decl == nil || decl.File == nil {
		return ""
	}
	toPath := decl.File.OutputPath()
	url := relativeURL(fromOutputPath, toPath)
	if isDef && decl.FileUniqueName != "" {
		return url + "#" + decl.FileUniqueName
	}
	return url + "#" + strconv.Itoa(decl.Line) + "L"
}

// relativeURL mirrors the original linker's rule: identical paths produce
// no path component at all (fragment-only link within the same page).
func relativeURL(from, to string) string {
	if from == to {
		return ""
	}
	rel, err := filepath.Rel(filepath.Dir(from), to)
	if err != nil {
		return to
	}
	return filepath.ToSlash(rel)
}

// LinkExternalRef delegates to the pluggable ExternalRefLinker, a no-op
// when none was configured.
func (r *Registry) LinkExternalRef(m *markup.Markup, cursor *cxx.Cursor) {
	if r.externalLinker == nil {
		return
	}
	r.externalLinker.Link(m, cursor)
}

// Files returns every FileEntry registered so far, for the render phase
// to iterate.
func (r *Registry) Files() []*FileEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*FileEntry, 0, len(r.files))
	for _, e := range r.files {
		out = append(out, e)
	}
	return out
}

// EnsureOutputDir creates a file's output directory if needed.
func EnsureOutputDir(outputRoot, relPath string) error {
	dir := filepath.Dir(filepath.Join(outputRoot, relPath))
	return os.MkdirAll(dir, 0o755)
}
