package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParserErrorExitCode(t *testing.T) {
	e := &ParserError{Argv: []string{"clang", "-c", "a.c"}, Code: 3, Err: stderrors.New("boom")}
	assert.Equal(t, 13, e.ExitCode())
	assert.ErrorIs(t, e, e.Err)
	assert.Contains(t, e.Error(), "boom")
}

func TestDBErrorExitCode(t *testing.T) {
	e := &DBError{Dir: "/tmp/db", Code: 2, Err: stderrors.New("not found")}
	assert.Equal(t, 22, e.ExitCode())
	assert.Contains(t, e.Error(), "/tmp/db")
}

func TestIOErrorUnwraps(t *testing.T) {
	inner := stderrors.New("permission denied")
	e := &IOError{Path: "a.c", Stage: "read", Err: inner}
	assert.Same(t, inner, e.Unwrap())
}

func TestResolveErrorMessage(t *testing.T) {
	e := &ResolveError{Path: "a.c.html", Key: "bogus"}
	assert.Equal(t, `a.c.html: unknown template key "bogus"`, e.Error())
}

func TestNewConfigError(t *testing.T) {
	e := NewConfigError("missing %s", "--db")
	assert.Equal(t, "config error: missing --db", e.Error())
}

func TestNewMultiErrorFiltersNils(t *testing.T) {
	err1 := stderrors.New("one")
	err2 := stderrors.New("two")
	me := NewMultiError([]error{nil, err1, nil, err2})
	assert.Len(t, me.Errors, 2)
	assert.Contains(t, me.Error(), "2 errors")
}

func TestNewMultiErrorAllNilReturnsNil(t *testing.T) {
	assert.Nil(t, NewMultiError([]error{nil, nil}))
}

func TestNewMultiErrorSingleReportsItsOwnMessage(t *testing.T) {
	err1 := stderrors.New("solo")
	me := NewMultiError([]error{err1})
	assert.Equal(t, "solo", me.Error())
}
