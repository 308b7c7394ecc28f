package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	xerrors "github.com/standardbeagle/srcxref/internal/errors"
)

func TestExitCodeForParserError(t *testing.T) {
	err := &xerrors.ParserError{Argv: []string{"clang"}, Code: 3, Err: fmt.Errorf("boom")}
	assert.Equal(t, 13, exitCodeFor(err))
}

func TestExitCodeForDBError(t *testing.T) {
	err := &xerrors.DBError{Dir: "/tmp", Code: 2, Err: fmt.Errorf("missing")}
	assert.Equal(t, 22, exitCodeFor(err))
}

func TestExitCodeForOtherErrorDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, exitCodeFor(fmt.Errorf("generic")))
}

func TestExitCodeForWrappedParserError(t *testing.T) {
	inner := &xerrors.ParserError{Argv: []string{"clang"}, Code: 5, Err: fmt.Errorf("bad")}
	wrapped := fmt.Errorf("while running command: %w", inner)
	assert.Equal(t, 15, exitCodeFor(wrapped))
}

func TestLastArgReturnsFinalWhitespaceToken(t *testing.T) {
	assert.Equal(t, "a.c", lastArg("clang -c -I/usr/include a.c"))
	assert.Equal(t, "single.c", lastArg("single.c"))
}

func TestParseClangArgsExtractsSearchDirsAndDefines(t *testing.T) {
	argv := []string{"clang", "-c", "-Ifoo", "-I", "bar", "-DFOO", "-DBAR=1", "a.c"}
	extra := []string{"-Ibaz", "-DBAZ"}

	dirs, defines := parseClangArgs(argv, extra)
	assert.Equal(t, []string{"foo", "bar", "baz"}, dirs)
	assert.True(t, defines["FOO"])
	assert.True(t, defines["BAR"])
	assert.True(t, defines["BAZ"])
	assert.Len(t, defines, 3)
}

func TestApplyDefineStripsValue(t *testing.T) {
	defines := map[string]bool{}
	applyDefine(defines, "FOO=bar")
	applyDefine(defines, "BAR")
	applyDefine(defines, "")
	assert.True(t, defines["FOO"])
	assert.True(t, defines["BAR"])
	assert.Len(t, defines, 2)
}
