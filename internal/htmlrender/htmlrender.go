// Package htmlrender streams one source file into syntax-classified,
// hyperlinked HTML: an ordered walk of its markups maintaining a stack of
// currently-open tags, with per-line anchors and disabled-region
// wrapping.
package htmlrender

import (
	"bufio"
	"io"
	"sort"
	"strconv"

	"github.com/standardbeagle/srcxref/internal/cxx"
	xerrors "github.com/standardbeagle/srcxref/internal/errors"
	"github.com/standardbeagle/srcxref/internal/markup"
)

// Render writes src as HTML to w, in markup (syntax-classified,
// hyperlinked) form. markups need not be pre-sorted; Render sorts its own
// copy by (beginOffset asc, endOffset desc). outPath is the rendering
// file's own output-relative path, passed to each markup's deferred Ref
// closure so it can compute a relative hyperlink; ctx resolves
// still-missing USR definitions at render time. A markup that begins or
// ends beyond the end of src yields a RenderError.
func Render(w io.Writer, src []byte, markups []markup.Markup, disabled []cxx.DisabledRange, outPath string, ctx markup.LinkContext) error {
	bw := bufio.NewWriter(w)

	sorted := append([]markup.Markup(nil), markups...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BeginOffset != sorted[j].BeginOffset {
			return sorted[i].BeginOffset < sorted[j].BeginOffset
		}
		return sorted[i].EndOffset > sorted[j].EndOffset
	})
	disabledSorted := append([]cxx.DisabledRange(nil), disabled...)
	sort.SliceStable(disabledSorted, func(i, j int) bool {
		return disabledSorted[i].Begin < disabledSorted[j].Begin
	})

	var stack []activeTag
	mi, di := 0, 0
	disabledOpen := false
	line := 1

	writeLineOpen(bw, line)

	n := uint(len(src))
	for offset := uint(0); offset <= n; offset++ {
		for len(stack) > 0 && stack[len(stack)-1].end == offset {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			top.emitClose(bw)
		}
		if disabledOpen && di > 0 && disabledSorted[di-1].End == offset {
			bw.WriteString("</div>")
			disabledOpen = false
		}
		if offset == n {
			break
		}
		if di < len(disabledSorted) && disabledSorted[di].Begin == offset {
			bw.WriteString(`<div class="disabled-code">`)
			disabledOpen = true
			di++
		}
		for mi < len(sorted) && sorted[mi].BeginOffset == offset {
			tag := newActiveTag(sorted[mi], outPath, ctx)
			tag.emitOpen(bw, false)
			stack = append(stack, tag)
			mi++
		}

		c := src[offset]
		switch c {
		case '\r':
			// discarded entirely
		case '\n':
			for i := len(stack) - 1; i >= 0; i-- {
				stack[i].emitClose(bw)
			}
			bw.WriteString("</span>\n")
			line++
			writeLineOpen(bw, line)
			for i := 0; i < len(stack); i++ {
				stack[i].emitOpen(bw, true)
			}
		default:
			writeEscapedByte(bw, c)
		}
	}
	beyondEOF := mi < len(sorted)
	for _, t := range stack {
		beyondEOF = beyondEOF || t.end > n
	}
	if beyondEOF {
		return &xerrors.RenderError{Path: outPath, Line: line, Err: io.ErrUnexpectedEOF}
	}
	bw.WriteString("</span>")
	return bw.Flush()
}

func writeLineOpen(w *bufio.Writer, line int) {
	n := strconv.Itoa(line)
	w.WriteString(`<span id="`)
	w.WriteString(n)
	w.WriteString(`L" class="L`)
	w.WriteString(n)
	w.WriteString(`">`)
}

// activeTag is the render-time representation of a markup while it is on
// the open-tags stack: its close offset plus the tag shape computed once,
// on first open, so reopen()s after a line break don't recompute the
// (potentially render-time-resolved) href.
type activeTag struct {
	end     uint
	cssCls  string
	href    string
	id      string
	noTag   bool
	isAnchor bool
}

func newActiveTag(m markup.Markup, outPath string, ctx markup.LinkContext) activeTag {
	href := ""
	if m.Ref != nil {
		href = m.Ref(outPath, ctx)
	}
	css := m.Attrs.CSSClass()
	t := activeTag{
		end:      m.EndOffset,
		cssCls:   css,
		href:     href,
		id:       m.FileUniqueName,
		isAnchor: href != "",
	}
	t.noTag = css == "" && href == "" && m.FileUniqueName == ""
	return t
}

func (t activeTag) emitOpen(w *bufio.Writer, reopen bool) {
	if t.noTag {
		return
	}
	if t.isAnchor {
		w.WriteString(`<a`)
		if !reopen && t.id != "" {
			writeIDAttr(w, t.id)
		}
		w.WriteString(` href="`)
		writeEscapedAttr(w, t.href)
		w.WriteString(`">`)
		return
	}
	w.WriteString(`<span`)
	if !reopen && t.id != "" {
		writeIDAttr(w, t.id)
	}
	if t.cssCls != "" {
		w.WriteString(` class="`)
		w.WriteString(t.cssCls)
		w.WriteString(`"`)
	}
	w.WriteString(`>`)
}

func (t activeTag) emitClose(w *bufio.Writer) {
	if t.noTag {
		return
	}
	if t.isAnchor {
		w.WriteString(`</a>`)
		return
	}
	w.WriteString(`</span>`)
}

func writeIDAttr(w *bufio.Writer, id string) {
	w.WriteString(` id="`)
	writeEscapedAttr(w, id)
	w.WriteString(`"`)
}

func writeEscapedByte(w *bufio.Writer, c byte) {
	switch c {
	case '<':
		w.WriteString("&lt;")
	case '>':
		w.WriteString("&gt;")
	case '&':
		w.WriteString("&amp;")
	default:
		w.WriteByte(c)
	}
}

func writeEscapedAttr(w *bufio.Writer, s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			w.WriteString("&lt;")
		case '>':
			w.WriteString("&gt;")
		case '&':
			w.WriteString("&amp;")
		case '"':
			w.WriteString("&quot;")
		default:
			w.WriteByte(s[i])
		}
	}
}
