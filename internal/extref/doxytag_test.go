package extref

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/markup"
)

const sampleTagFile = `<?xml version="1.0" encoding="UTF-8"?>
<tagfile>
  <compound kind="class">
    <name>Widget</name>
    <filename>class_widget.html</filename>
    <member kind="function">
      <name>draw</name>
      <anchorfile>class_widget.html</anchorfile>
      <anchor>a1</anchor>
    </member>
  </compound>
  <compound kind="namespace">
    <name>ui</name>
    <filename>namespaceui.html</filename>
    <compound kind="class">
      <name>Button</name>
      <filename>classui_1_1_button.html</filename>
    </compound>
  </compound>
</tagfile>
`

func TestParseDoxytagTopLevelCompound(t *testing.T) {
	r, err := parseDoxytag(strings.NewReader(sampleTagFile), "https://docs.example/")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example/class_widget.html", r.baseURL+r.urls["Widget"])
}

func TestParseDoxytagMemberQualifiedUnderParent(t *testing.T) {
	r, err := parseDoxytag(strings.NewReader(sampleTagFile), "")
	require.NoError(t, err)
	assert.Equal(t, "class_widget.html#a1", r.urls["Widget::draw"])
}

func TestParseDoxytagNestedCompoundQualifiedUnderNamespace(t *testing.T) {
	r, err := parseDoxytag(strings.NewReader(sampleTagFile), "")
	require.NoError(t, err)
	assert.Equal(t, "classui_1_1_button.html", r.urls["ui::Button"])
}

func TestParseDoxytagInvalidXML(t *testing.T) {
	_, err := parseDoxytag(strings.NewReader("not xml"), "")
	assert.Error(t, err)
}

func TestDoxytagResolverLinkAttachesURL(t *testing.T) {
	r, err := parseDoxytag(strings.NewReader(sampleTagFile), "https://docs.example/")
	require.NoError(t, err)

	tu, err := cxx.Parse("a.cpp", []byte("class Widget { void draw(); };\n"), false)
	require.NoError(t, err)

	var classCursor *cxx.Cursor
	for _, tok := range tu.Tokens() {
		if tok.Text == "Widget" && tok.Cursor.Valid() && tok.Cursor.IsDeclaration() {
			classCursor = tok.Cursor
			break
		}
	}
	require.NotNil(t, classCursor)

	m := &markup.Markup{}
	r.Link(m, classCursor)
	require.NotNil(t, m.Ref)
	assert.Equal(t, "https://docs.example/class_widget.html", m.Ref("out.html", nil))
}

func TestDoxytagResolverLinkNoMatchLeavesRefNil(t *testing.T) {
	r, err := parseDoxytag(strings.NewReader(sampleTagFile), "")
	require.NoError(t, err)

	tu, err := cxx.Parse("a.cpp", []byte("class Unknown {};\n"), false)
	require.NoError(t, err)
	var cursor *cxx.Cursor
	for _, tok := range tu.Tokens() {
		if tok.Text == "Unknown" && tok.Cursor.Valid() && tok.Cursor.IsDeclaration() {
			cursor = tok.Cursor
			break
		}
	}
	require.NotNil(t, cursor)

	m := &markup.Markup{}
	r.Link(m, cursor)
	assert.Nil(t, m.Ref)
}
