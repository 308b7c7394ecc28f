package debug

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// saveAndRestoreState saves the package's mutable globals and returns a
// cleanup function, mirroring the save/restore idiom this package's
// upstream sibling uses for its own global debug switches.
func saveAndRestoreState() func() {
	originalOutput := output
	return func() {
		output = originalOutput
	}
}

func TestSetOutput(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetOutput(&buf)
	assert.True(t, Enabled())

	SetOutput(nil)
	os.Unsetenv("SRCXREF_DEBUG")
	assert.False(t, Enabled())
}

func TestEnabledFromEnv(t *testing.T) {
	defer saveAndRestoreState()()
	SetOutput(nil)

	os.Setenv("SRCXREF_DEBUG", "1")
	defer os.Unsetenv("SRCXREF_DEBUG")

	assert.True(t, Enabled())
}

func TestLogWritesTaggedLine(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetOutput(&buf)

	Log("registry", "claimed %s", "a.c")
	assert.Equal(t, "[registry] claimed a.c\n", buf.String())
}

func TestLogNoopWhenDisabled(t *testing.T) {
	defer saveAndRestoreState()()
	SetOutput(nil)
	os.Unsetenv("SRCXREF_DEBUG")

	Log("registry", "should not appear")
}

func TestLogHelpers(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetOutput(&buf)

	LogParse("parsed %s", "a.c")
	LogWorker("picked up %d", 3)
	LogRender("wrote %s", "a.c.html")

	out := buf.String()
	assert.Contains(t, out, "[parse] parsed a.c")
	assert.Contains(t, out, "[worker] picked up 3")
	assert.Contains(t, out, "[render] wrote a.c.html")
}
