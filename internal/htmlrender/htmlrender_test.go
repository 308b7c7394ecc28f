package htmlrender

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/markup"
	"github.com/standardbeagle/srcxref/internal/types"
)

type stubCtx struct{}

func (stubCtx) ResolveUSR(string, string) (string, bool) { return "", false }

func TestRenderEscapesAndWrapsLines(t *testing.T) {
	src := []byte("int main(){}\nreturn 0;\n")
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, src, nil, nil, "a.c.html", stubCtx{}))

	out := buf.String()
	assert.Contains(t, out, `id="1L" class="L1"`)
	assert.Contains(t, out, `id="2L" class="L2"`)
	assert.Contains(t, out, `id="3L" class="L3"`)
}

func TestRenderEscapesSpecialBytes(t *testing.T) {
	src := []byte(`a < b && c > "d"`)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, src, nil, nil, "a.c.html", stubCtx{}))
	out := buf.String()
	assert.Contains(t, out, `a &lt; b &amp;&amp; c &gt; "d"`)
}

func TestRenderDiscardsCarriageReturn(t *testing.T) {
	src := []byte("int x;\r\n")
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, src, nil, nil, "a.c.html", stubCtx{}))
	assert.NotContains(t, buf.String(), "\r")
}

func TestRenderNestsAndReopensAcrossLines(t *testing.T) {
	src := []byte("abc\ndef")
	markups := []markup.Markup{
		{BeginOffset: 0, EndOffset: 7, Attrs: types.Func},
		{BeginOffset: 1, EndOffset: 5, Attrs: types.Ty},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, src, markups, nil, "a.c.html", stubCtx{}))

	out := buf.String()
	// the outer span must still be open (reopened, no id) after the line break
	assert.Equal(t, 2, strings.Count(out, `class="nf"`))
	assert.Equal(t, 2, strings.Count(out, `class="nc"`))
}

func TestRenderEmitsAnchorForLinkedMarkup(t *testing.T) {
	src := []byte("foo")
	markups := []markup.Markup{
		{BeginOffset: 0, EndOffset: 3, Attrs: types.Func, Ref: func(outPath string, _ markup.LinkContext) string {
			return "other.c.html#foo"
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, src, markups, nil, "a.c.html", stubCtx{}))
	out := buf.String()
	assert.Contains(t, out, `<a href="other.c.html#foo">foo</a>`)
}

func TestRenderEmitsIDOnlyOnFirstOpen(t *testing.T) {
	src := []byte("ab\ncd")
	markups := []markup.Markup{
		{BeginOffset: 0, EndOffset: 5, Attrs: types.Func, FileUniqueName: "f"},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, src, markups, nil, "a.c.html", stubCtx{}))
	assert.Equal(t, 1, strings.Count(buf.String(), `id="f"`))
}

func TestRenderWrapsDisabledRegion(t *testing.T) {
	src := []byte("a\nb\nc\n")
	disabled := []cxx.DisabledRange{{Begin: 2, End: 4}} // covers line "b"
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, src, nil, disabled, "a.c.html", stubCtx{}))
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, `<div class="disabled-code">`))
	assert.Equal(t, 1, strings.Count(out, `</div>`))
}

func TestRenderEmptyMarkupProducesNoTag(t *testing.T) {
	src := []byte("xyz")
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, src, nil, nil, "a.c.html", stubCtx{}))
	out := buf.String()
	assert.NotContains(t, out, "<span class=")
}
