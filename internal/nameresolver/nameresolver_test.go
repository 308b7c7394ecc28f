package nameresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/srcxref/internal/cxx"
)

func declCursor(t *testing.T, src []byte, isC bool, name string) *cxx.Cursor {
	t.Helper()
	tu, err := cxx.Parse("a.src", src, isC)
	require.NoError(t, err)
	for _, tok := range tu.Tokens() {
		if tok.Text == name && tok.Cursor.Valid() && tok.Cursor.IsDeclaration() {
			return tok.Cursor
		}
	}
	t.Fatalf("no declaration cursor found for %q", name)
	return nil
}

func TestFileUniqueNameCFunction(t *testing.T) {
	c := declCursor(t, []byte("int main() { return 0; }\n"), true, "main")
	assert.Equal(t, "main", FileUniqueName(c, true))
}

func TestFileUniqueNameCppOverloadsDiffer(t *testing.T) {
	src := []byte("void g(int x) {}\nvoid g(double x) {}\n")
	tu, err := cxx.Parse("a.cpp", src, false)
	require.NoError(t, err)

	var names []string
	for _, tok := range tu.Tokens() {
		if tok.Text == "g" && tok.Cursor.Valid() && tok.Cursor.IsDefinition() {
			names = append(names, FileUniqueName(tok.Cursor, false))
		}
	}
	require.Len(t, names, 2)
	assert.NotEqual(t, names[0], names[1])
	assert.Contains(t, names, "g:int")
	assert.Contains(t, names, "g:double")
}

func TestFileUniqueNameCStructGetsTagPrefix(t *testing.T) {
	c := declCursor(t, []byte("struct S { int x; };\n"), true, "S")
	assert.Equal(t, "s:S", FileUniqueName(c, true))
}

func TestFileUniqueNameCppStructNoTagPrefix(t *testing.T) {
	c := declCursor(t, []byte("struct S { int x; };\n"), false, "S")
	assert.Equal(t, "S", FileUniqueName(c, false))
}

func TestIsNamespaceLevelDeclarationLocalVarFalse(t *testing.T) {
	src := []byte("int main() { int local = 1; return local; }\n")
	tu, err := cxx.Parse("a.c", src, true)
	require.NoError(t, err)
	for _, tok := range tu.Tokens() {
		if tok.Text == "local" && tok.Cursor.Valid() && tok.Cursor.IsDeclaration() {
			assert.False(t, IsNamespaceLevelDeclaration(tok.Cursor))
			return
		}
	}
	t.Fatal("did not find local declaration")
}

func TestCanonicalizeTypeCollapsesSpaces(t *testing.T) {
	assert.Equal(t, "const-int", canonicalizeType("const  int"))
	assert.Equal(t, "int*", canonicalizeType("int *"))
}
