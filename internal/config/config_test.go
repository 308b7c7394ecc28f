package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 128, cfg.MaxIDSize)
	assert.Equal(t, 0, cfg.Jobs)
	assert.NotEmpty(t, cfg.Exclude)
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesKDL(t *testing.T) {
	dir := t.TempDir()
	content := `
max-id-size 64
jobs 4
template "custom.html"
exclude "**/vendor/**" "**/third_party/**"
doxytag "tags/qt.tag" {
    base-url "https://doc.qt.io/qt-6/"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".srcxref.kdl"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.MaxIDSize)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, "custom.html", cfg.TemplateRel)
	assert.Equal(t, []string{"**/vendor/**", "**/third_party/**"}, cfg.Exclude)
	require.Len(t, cfg.Doxytags, 1)
	assert.Equal(t, "tags/qt.tag", cfg.Doxytags[0].Path)
	assert.Equal(t, "https://doc.qt.io/qt-6/", cfg.Doxytags[0].BaseURL)
}

func TestLoadInvalidKDLErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".srcxref.kdl"), []byte("not ) valid ( kdl {{{"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestDefaultExclusionsCoverBuildDirs(t *testing.T) {
	ex := defaultExclusions()
	assert.Contains(t, ex, "**/.git/**")
	assert.Contains(t, ex, "**/build/**")
}
