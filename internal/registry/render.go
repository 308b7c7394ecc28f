package registry

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/standardbeagle/srcxref/internal/fallbackhl"
	"github.com/standardbeagle/srcxref/internal/htmlrender"
	"github.com/standardbeagle/srcxref/internal/markup"
	"github.com/standardbeagle/srcxref/internal/template"
)

// WriteOutput renders every claimed FileEntry through tmpl: reads the
// file's content fresh (annotation never retained the bytes), runs the
// fallback highlighter over the whole file, merges in its markups (those
// that duplicate or partially overlap an AST-derived markup are dropped),
// and streams the result through the template to
// OutputRoot/RelPath+".html". Entries that were only referenced, never
// claimed for annotation, are not rendered.
//
// Entries are independent of one another; a per-file failure is recorded
// against that file and does not stop the remaining files from rendering.
func (r *Registry) WriteOutput(tmpl *template.Template) []error {
	if tmpl == nil {
		tmpl = template.Default()
	}
	var errs []error
	for _, entry := range r.Files() {
		if atomic.LoadInt32(&entry.claimed) == 0 {
			continue
		}
		if err := r.renderOne(tmpl, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (r *Registry) renderOne(tmpl *template.Template, entry *FileEntry) error {
	srcPath := filepath.Join(entry.InputRoot, filepath.FromSlash(entry.RelPath))
	content, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	entry.Builder.Sort()
	supplementary := fallbackhl.Scan(content)
	if len(supplementary) > 0 {
		converted := make([]markup.Markup, len(supplementary))
		for i, s := range supplementary {
			converted[i] = markup.Markup{BeginOffset: s.Begin, EndOffset: s.End, Attrs: s.Attrs}
		}
		entry.Builder.MergeSupplementary(converted)
	}

	outPath := entry.OutputPath()
	if err := EnsureOutputDir(entry.OutputRoot, outPath); err != nil {
		return err
	}
	fullOut := filepath.Join(entry.OutputRoot, filepath.FromSlash(outPath))
	f, err := os.Create(fullOut)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	values := map[string]template.Value{
		"filename": template.StringValue(filepath.Base(entry.RelPath)),
		"rootpath": template.StringValue(rootPrefixFor(entry.RelPath)),
		"code": template.StreamValue(func(w *bufio.Writer) error {
			return htmlrender.Render(w, content, entry.Builder.Markups(), entry.Disabled, outPath, r)
		}),
	}
	if err := tmpl.Render(bw, srcPath, values); err != nil {
		return err
	}
	return bw.Flush()
}

// rootPrefixFor returns the "../" run needed for a link from
// OutputRoot/relPath back up to OutputRoot itself, e.g. "a/b/c.h" -> "../../".
func rootPrefixFor(relPath string) string {
	depth := strings.Count(filepath.ToSlash(relPath), "/")
	if depth == 0 {
		return ""
	}
	return strings.Repeat("../", depth)
}
