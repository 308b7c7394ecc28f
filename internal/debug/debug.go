// Package debug provides lightweight, opt-in diagnostic logging shared by
// every component of the indexer. Output is disabled unless a writer has
// been configured, so library consumers pay no cost by default.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	output io.Writer
)

// SetOutput configures where debug output goes. Pass nil to disable it.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether debug logging is currently configured, either via
// SetOutput or the SRCXREF_DEBUG environment variable (which defaults
// output to stderr the first time it is checked).
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	if output != nil {
		return true
	}
	if os.Getenv("SRCXREF_DEBUG") == "1" {
		output = os.Stderr
		return true
	}
	return false
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Log writes a component-tagged debug line. A no-op when debug output is
// not configured.
func Log(component, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogParse logs a parser/annotator diagnostic.
func LogParse(format string, args ...interface{}) { Log("parse", format, args...) }

// LogWorker logs a worker-pool diagnostic.
func LogWorker(format string, args ...interface{}) { Log("worker", format, args...) }

// LogRender logs an HTML-rendering diagnostic.
func LogRender(format string, args ...interface{}) { Log("render", format, args...) }
