// Package extref implements the pluggable external-reference hook (C9):
// when the annotator cannot link an identifier to anything in the corpus,
// a registered linker gets a chance to attach a static URL, most commonly
// by consulting a Doxygen-style tag file for a symbol documented outside
// the indexed sources.
package extref

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/debug"
	"github.com/standardbeagle/srcxref/internal/markup"
	"github.com/standardbeagle/srcxref/internal/nameresolver"
)

// tagFile mirrors the subset of Doxygen's tag-file XML this resolver
// cares about: nested compounds, each possibly owning members, each with a
// name and either a filename or an anchorfile(+anchor).
type tagFile struct {
	XMLName   xml.Name   `xml:"tagfile"`
	Compounds []compound `xml:"compound"`
}

type compound struct {
	Name       string     `xml:"name"`
	Filename   string     `xml:"filename"`
	Anchorfile string     `xml:"anchorfile"`
	Anchor     string     `xml:"anchor"`
	Members    []compound `xml:"member"`
	Compounds  []compound `xml:"compound"`
}

// DoxytagResolver is an ExternalRefLinker backed by one parsed Doxygen tag
// file and its configured base URL.
type DoxytagResolver struct {
	baseURL string
	urls    map[string]string
}

// LoadDoxytag parses a Doxygen tag file and builds the qualified-name to
// URL map. baseURL is prepended to every stored destination so the
// resolver can produce absolute or site-relative links regardless of the
// indexer's own output layout.
func LoadDoxytag(path, baseURL string) (*DoxytagResolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseDoxytag(f, baseURL)
}

func parseDoxytag(r io.Reader, baseURL string) (*DoxytagResolver, error) {
	var tf tagFile
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&tf); err != nil {
		return nil, err
	}
	res := &DoxytagResolver{baseURL: baseURL, urls: make(map[string]string)}
	for _, c := range tf.Compounds {
		res.addCompound(c, "")
	}
	return res, nil
}

// addCompound recursively records a compound (and its nested
// compounds/members) in the url map, building qualified names by joining
// parent compound names with "::" unless the child's own name already
// contains a colon (already-qualified, e.g. a nested-namespace member
// Doxygen emitted pre-qualified).
func (r *DoxytagResolver) addCompound(c compound, parentQualified string) {
	qualified := c.Name
	if parentQualified != "" && !containsColon(c.Name) {
		qualified = parentQualified + "::" + c.Name
	}
	if url := compoundURL(c); url != "" {
		if _, exists := r.urls[qualified]; exists {
			// duplicate name: keep the first occurrence, per the
			// indexer-wide "first wins" diagnostic-only rule.
			debug.Log("extref", "duplicate doxytag name %s; keeping the first occurrence", qualified)
		} else {
			r.urls[qualified] = url
		}
	}
	for _, m := range c.Members {
		r.addCompound(m, qualified)
	}
	for _, nested := range c.Compounds {
		r.addCompound(nested, qualified)
	}
}

func compoundURL(c compound) string {
	file := c.Anchorfile
	if file == "" {
		file = c.Filename
	}
	if file == "" {
		return ""
	}
	if c.Anchor != "" {
		return file + "#" + c.Anchor
	}
	return file
}

func containsColon(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return true
		}
	}
	return false
}

// Link implements registry.ExternalRefLinker: if the referenced cursor is
// namespace-level and its qualified name is in the tag map, attach a
// static closure returning the configured base URL plus the stored
// destination.
func (r *DoxytagResolver) Link(m *markup.Markup, cursor *cxx.Cursor) {
	if !cursor.Valid() || !nameresolver.IsNamespaceLevelDeclaration(cursor) {
		return
	}
	name := nameresolver.SimpleQualifiedName(cursor)
	if name == "" {
		return
	}
	dest, ok := r.urls[name]
	if !ok {
		return
	}
	url := r.baseURL + dest
	m.Ref = func(string, markup.LinkContext) string { return url }
}
