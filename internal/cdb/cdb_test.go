package cdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArgumentsForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compile_commands.json")
	content := `[{"directory":"` + dir + `","file":"a.c","arguments":["clang","-c","a.c"]}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, dir, entries[0].Directory)
	assert.Equal(t, []string{"clang", "-c", "a.c"}, entries[0].Argv)
	assert.Equal(t, filepath.Join(dir, "a.c"), entries[0].Filename)
}

func TestLoadCommandStringForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compile_commands.json")
	content := `[{"directory":"` + dir + `","file":"a.c","command":"clang -c -DFOO=\"bar baz\" a.c"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"clang", "-c", "-DFOO=bar baz", "a.c"}, entries[0].Argv)
}

func TestLoadSkipsEntriesMissingArgvOrFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compile_commands.json")
	content := `[{"directory":"` + dir + `","file":""},{"directory":"` + dir + `","file":"b.c","arguments":[]}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compile_commands.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSingleCommand(t *testing.T) {
	e := SingleCommand("clang -c a.c", "/tmp", "a.c")
	assert.Equal(t, "/tmp", e.Directory)
	assert.Equal(t, []string{"clang", "-c", "a.c"}, e.Argv)
}

func TestSplitCommandQuotingAndEscapes(t *testing.T) {
	got := splitCommand(`clang -c 'single quoted' "double \"quoted\"" plain\ space`)
	assert.Equal(t, []string{"clang", "-c", "single quoted", `double "quoted"`, "plain space"}, got)
}

func TestLocateDefaultFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compile_commands.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	got, err := LocateDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLocateDefaultNotFound(t *testing.T) {
	_, err := LocateDefault(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}
