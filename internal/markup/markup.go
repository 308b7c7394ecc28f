// Package markup defines the Markup value that annotators append to a
// file's rendering and the Builder that sorts and merges them ahead of
// HTML rendering.
package markup

import (
	"sort"

	"github.com/standardbeagle/srcxref/internal/types"
)

// LinkContext is the render-time view a deferred Ref closure needs: just
// enough of the registry to resolve a USR that was still missing when the
// markup was created (a forward reference to a definition a later
// translation unit produced), computing the full relative href from the
// rendering file's own output path.
type LinkContext interface {
	ResolveUSR(usr, outPath string) (href string, ok bool)
}

// RefFunc computes a markup's link target lazily, at render time, given
// the rendering file's output path and a link context. An empty return
// value means "no link" and suppresses the anchor tag.
type RefFunc func(outPath string, ctx LinkContext) string

// Markup is a half-open byte interval within one source file, carrying a
// semantic classification and an optional link.
type Markup struct {
	BeginOffset, EndOffset uint
	Attrs                  types.TokenAttributes
	FileUniqueName         string
	Ref                    RefFunc
}

// Empty reports whether a markup carries no attrs, no link, and no
// fileUniqueName, in which case it must be discarded rather than emitted.
func (m Markup) Empty() bool {
	return m.Attrs.Empty() && m.Ref == nil && m.FileUniqueName == ""
}

// Builder accumulates markups for one file during annotation and prepares
// them for rendering.
type Builder struct {
	markups []Markup
}

// Append records a markup, silently dropping it if it is empty or its
// interval is degenerate (beginOffset must be strictly less than
// endOffset).
func (b *Builder) Append(m Markup) {
	if m.Empty() || m.BeginOffset >= m.EndOffset {
		return
	}
	b.markups = append(b.markups, m)
}

// Len reports how many markups have been appended.
func (b *Builder) Len() int { return len(b.markups) }

// Sort orders markups by (beginOffset asc, endOffset desc), the ordering
// the renderer's stack-based nesting walk depends on.
func (b *Builder) Sort() {
	sort.SliceStable(b.markups, func(i, j int) bool {
		a, c := b.markups[i], b.markups[j]
		if a.BeginOffset != c.BeginOffset {
			return a.BeginOffset < c.BeginOffset
		}
		return a.EndOffset > c.EndOffset
	})
}

// Markups returns the builder's own backing slice, in sort order only
// after Sort or MergeSupplementary. Changing an element through it changes
// the stored markup; the annotator relies on this to add flags and links
// to the markup it appended last.
func (b *Builder) Markups() []Markup { return b.markups }

// MergeSupplementary merges fallback-highlighter markups into an already
// sorted builder: a supplementary markup is dropped if it partially
// overlaps any existing markup (begins inside one and ends outside it, or
// vice versa) or covers exactly the same span as one; otherwise it is
// kept. Each supplementary markup is checked against every existing one,
// and the merged list is re-sorted at the end.
func (b *Builder) MergeSupplementary(supplementary []Markup) {
	if len(supplementary) == 0 {
		return
	}
	existing := b.markups
	merged := make([]Markup, 0, len(existing)+len(supplementary))
	ei := 0
	for _, s := range supplementary {
		for ei < len(existing) && existing[ei].BeginOffset < s.BeginOffset {
			merged = append(merged, existing[ei])
			ei++
		}
		if overlapsAny(s, existing) {
			continue
		}
		merged = append(merged, s)
	}
	merged = append(merged, existing[ei:]...)
	b.markups = merged
	b.Sort()
}

// overlapsAny reports whether s partially overlaps or duplicates any
// markup in sorted: disjoint (s.End <= m.Begin or m.End <= s.Begin) and
// strict nesting (either containing the other) are both fine; an identical
// span or anything else is a conflict and must be rejected.
func overlapsAny(s Markup, sorted []Markup) bool {
	for _, m := range sorted {
		if s.EndOffset <= m.BeginOffset || m.EndOffset <= s.BeginOffset {
			continue // disjoint
		}
		if s.BeginOffset == m.BeginOffset && s.EndOffset == m.EndOffset {
			return true // same span: not strictly nested
		}
		nested := (m.BeginOffset <= s.BeginOffset && s.EndOffset <= m.EndOffset) ||
			(s.BeginOffset <= m.BeginOffset && m.EndOffset <= s.EndOffset)
		if !nested {
			return true
		}
	}
	return false
}
