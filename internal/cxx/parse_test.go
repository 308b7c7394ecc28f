package cxx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleFunction(t *testing.T) {
	src := []byte("int main() { return 0; }\n")
	tu, err := Parse("a.c", src, true)
	require.NoError(t, err)
	require.NotNil(t, tu.Root())
}

func TestTokensCoverWholeFunction(t *testing.T) {
	src := []byte("int main() { return 0; }\n")
	tu, err := Parse("a.c", src, true)
	require.NoError(t, err)

	tokens := tu.Tokens()
	require.NotEmpty(t, tokens)

	var texts []string
	for _, tok := range tokens {
		texts = append(texts, tok.Text)
	}
	assert.Contains(t, texts, "int")
	assert.Contains(t, texts, "main")
	assert.Contains(t, texts, "return")
	assert.Contains(t, texts, "0")
}

func TestParseFindsFunctionDeclarationCursor(t *testing.T) {
	src := []byte("int add(int a, int b) { return a + b; }\n")
	tu, err := Parse("a.c", src, true)
	require.NoError(t, err)

	var found *Cursor
	for _, tok := range tu.Tokens() {
		if tok.Text == "add" && tok.Cursor.Valid() && tok.Cursor.IsDeclaration() {
			found = tok.Cursor
			break
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.IsDefinition())
}

func TestParseCppOverloadsHaveDistinctParameterTypes(t *testing.T) {
	src := []byte("void g(int x) {}\nvoid g(double x) {}\n")
	tu, err := Parse("a.cpp", src, false)
	require.NoError(t, err)

	var params [][]string
	for _, tok := range tu.Tokens() {
		if tok.Text == "g" && tok.Cursor.Valid() && tok.Cursor.IsDefinition() {
			params = append(params, tok.Cursor.ParameterTypes())
		}
	}
	require.Len(t, params, 2)
	assert.NotEqual(t, params[0], params[1])
	// the declarator (parameter name) must be dropped, leaving only the
	// type, matching clang_getArgType semantics.
	assert.Equal(t, []string{"int"}, params[0])
	assert.Equal(t, []string{"double"}, params[1])
}

func TestScanDisabledRangesSimpleIfZero(t *testing.T) {
	src := []byte("a;\n#if 0\nb;\n#endif\nc;\n")
	ranges := ScanDisabledRanges(src, nil)
	require.Len(t, ranges, 1)
	assert.Equal(t, "b;\n", string(src[ranges[0].Begin:ranges[0].End]))
}

func TestScanDisabledRangesHonorsDefines(t *testing.T) {
	src := []byte("#ifdef FOO\nenabled;\n#endif\n")
	defines := map[string]bool{"FOO": true}
	assert.Empty(t, ScanDisabledRanges(src, defines))
	assert.NotEmpty(t, ScanDisabledRanges(src, nil))
}

func TestScanIncludesFindsQuotedAndAngled(t *testing.T) {
	src := []byte("#include \"a.h\"\n#include <stdio.h>\n")
	incs := ScanIncludes(src)
	require.Len(t, incs, 2)
	assert.Equal(t, "a.h", incs[0].Spelling)
	assert.False(t, incs[0].Angled)
	assert.Equal(t, "stdio.h", incs[1].Spelling)
	assert.True(t, incs[1].Angled)
}
