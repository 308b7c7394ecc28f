package registry

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestRegistry(t *testing.T, input string) *Registry {
	t.Helper()
	return New([]Root{{InputRoot: input, OutputRoot: filepath.Join(t.TempDir(), "out")}}, 0, nil, nil)
}

func TestIsFileIncluded(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.c", "int main(){}")
	reg := newTestRegistry(t, dir)

	assert.True(t, reg.IsFileIncluded(a))
	assert.False(t, reg.IsFileIncluded("/outside/b.c"))
}

func TestIsFileIncludedRespectsExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.c", "int main(){}")
	vendored := writeTempFile(t, dir, "vendor/lib.c", "int lib(){}")
	reg := New([]Root{{InputRoot: dir, OutputRoot: t.TempDir()}}, 0, nil, []string{"vendor/**"})

	assert.True(t, reg.IsFileIncluded(a))
	assert.False(t, reg.IsFileIncluded(vendored))
}

func TestPrepareToProcessOnceOnlyClaim(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.c", "int main(){}")
	reg := newTestRegistry(t, dir)

	const n = 20
	var wg sync.WaitGroup
	var claims int32
	var mu sync.Mutex
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, ok := reg.PrepareToProcess(a); ok {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, claims)
}

func TestPrepareToProcessOutsideRootFails(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir)
	_, ok := reg.PrepareToProcess("/not/in/roots.c")
	assert.False(t, ok)
}

func TestCreateSymbolAndHref(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.c", "int main(){}")
	reg := newTestRegistry(t, dir)

	entry, ok := reg.PrepareToProcess(a)
	require.True(t, ok)

	sym := reg.CreateSymbol(entry, 1, 4, "main")
	assert.Equal(t, "main", sym.FileUniqueName)

	href := Href("b.c.html", sym, true)
	assert.Equal(t, "a.c.html#main", href)
}

func TestCreateSymbolRespectsMaxIDSize(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.c", "int main(){}")
	reg := New([]Root{{InputRoot: dir, OutputRoot: t.TempDir()}}, 4, nil, nil)

	entry, ok := reg.PrepareToProcess(a)
	require.True(t, ok)

	sym := reg.CreateSymbol(entry, 1, 4, "toolong")
	assert.Equal(t, "", sym.FileUniqueName)
}

func TestRegisterDefAndResolveUSR(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.c", "int f(){}")
	reg := newTestRegistry(t, dir)

	entry, ok := reg.PrepareToProcess(a)
	require.True(t, ok)
	sym := reg.CreateSymbol(entry, 1, 0, "f")
	reg.RegisterDef("f", sym)

	href, ok := reg.ResolveUSR("f", "b.c.html")
	require.True(t, ok)
	assert.Equal(t, "a.c.html#f", href)

	_, ok = reg.ResolveUSR("missing", "b.c.html")
	assert.False(t, ok)
}

func TestReferenceSymbolCreatesLazily(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.c", "int main(){}")
	reg := newTestRegistry(t, dir)

	called := false
	sym1, ok := reg.ReferenceSymbol(a, 3, 10, func() string { called = true; return "thing" })
	require.True(t, ok)
	assert.True(t, called)
	assert.Equal(t, "thing", sym1.FileUniqueName)

	sym2, ok := reg.ReferenceSymbol(a, 3, 10, func() string { t.Fatal("should not be called again"); return "" })
	require.True(t, ok)
	assert.Same(t, sym1, sym2)
}

func TestHrefSameFileIsFragmentOnly(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.c", "int main(){}")
	reg := newTestRegistry(t, dir)
	entry, ok := reg.PrepareToProcess(a)
	require.True(t, ok)
	sym := reg.CreateSymbol(entry, 5, 0, "")

	href := Href(entry.OutputPath(), sym, false)
	assert.Equal(t, "#5L", href)
}
