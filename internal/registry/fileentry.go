package registry

import (
	"sync/atomic"

	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/markup"
	"github.com/standardbeagle/srcxref/internal/types"
)

// FileEntry is the per-physical-file state the registry hands out: the
// file's identity, its input/output location, a once-only claim flag, the
// markup builder an annotator fills in, and the preprocessor-disabled
// ranges discovered while scanning it.
type FileEntry struct {
	ID         types.FileID
	InputRoot  string
	OutputRoot string
	RelPath    string

	claimed int32 // atomic test-and-set; 0 = unclaimed

	Builder  markup.Builder
	Disabled []cxx.DisabledRange
}

// tryClaim implements the once-only claim via atomic compare-and-swap:
// the first caller to observe claimed==0 wins and flips it to 1.
func (e *FileEntry) tryClaim() bool {
	return atomic.CompareAndSwapInt32(&e.claimed, 0, 1)
}

// OutputPath is the rendered file's path relative to its output root.
func (e *FileEntry) OutputPath() string {
	return e.RelPath + ".html"
}
