package extref

import (
	"github.com/standardbeagle/srcxref/internal/cxx"
	"github.com/standardbeagle/srcxref/internal/markup"
)

// Chain combines several ExternalRefLinkers (one per configured
// --doxytags), trying each in registration order and stopping at the
// first that attaches a link.
type Chain struct {
	Linkers []*DoxytagResolver
}

// Link tries each configured resolver in order.
func (c *Chain) Link(m *markup.Markup, cursor *cxx.Cursor) {
	for _, l := range c.Linkers {
		l.Link(m, cursor)
		if m.Ref != nil {
			return
		}
	}
}
