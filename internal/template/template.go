// Package template implements the indexer's minimal output template: a
// string with @@key@@ placeholders resolved against a fixed set of named
// values, some of which stream directly into the output rather than being
// materialized as strings.
package template

import (
	"bufio"
	"strings"

	xerrors "github.com/standardbeagle/srcxref/internal/errors"
)

// Value is either a plain string or a streaming callback; exactly one of
// the two fields should be set.
type Value struct {
	Text   string
	Stream func(w *bufio.Writer) error
}

// StringValue wraps a plain string value.
func StringValue(s string) Value { return Value{Text: s} }

// StreamValue wraps a callback that writes directly to the output.
func StreamValue(fn func(w *bufio.Writer) error) Value { return Value{Stream: fn} }

// Template is a parsed template: literal text interleaved with key
// references, in document order.
type Template struct {
	parts []part
}

type part struct {
	literal string
	key     string // empty for a literal part
}

// defaultTemplate is the built-in HTML shell used when no -t override is
// given.
const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>@@filename@@</title>
<link rel="stylesheet" href="@@rootpath@@style.css">
</head>
<body>
<h1>@@filename@@</h1>
<pre class="code">@@code@@</pre>
</body>
</html>
`

// Default returns the built-in template.
func Default() *Template {
	t, err := Parse(defaultTemplate)
	if err != nil {
		panic(err) // the built-in template is a compile-time invariant
	}
	return t
}

// Parse splits a template string into literal and @@key@@ parts. It does
// not validate keys; unknown keys are caught at render time by Render so a
// single bad key in a custom -t file only fails that file per the
// recoverable ResolveError design.
func Parse(src string) (*Template, error) {
	var parts []part
	i := 0
	for i < len(src) {
		start := strings.Index(src[i:], "@@")
		if start < 0 {
			parts = append(parts, part{literal: src[i:]})
			break
		}
		start += i
		if start > i {
			parts = append(parts, part{literal: src[i:start]})
		}
		end := strings.Index(src[start+2:], "@@")
		if end < 0 {
			parts = append(parts, part{literal: src[start:]})
			break
		}
		end += start + 2
		parts = append(parts, part{key: src[start+2 : end]})
		i = end + 2
	}
	return &Template{parts: parts}, nil
}

// Render writes the template to w, substituting each @@key@@ with the
// matching value. An unknown key produces a ResolveError and stops
// writing immediately; the caller is responsible for treating that as
// fatal for this one file only.
func (t *Template) Render(w *bufio.Writer, path string, values map[string]Value) error {
	for _, p := range t.parts {
		if p.key == "" {
			if _, err := w.WriteString(p.literal); err != nil {
				return err
			}
			continue
		}
		v, ok := values[p.key]
		if !ok {
			return &xerrors.ResolveError{Path: path, Key: p.key}
		}
		if v.Stream != nil {
			if err := v.Stream(w); err != nil {
				return err
			}
			continue
		}
		if _, err := w.WriteString(v.Text); err != nil {
			return err
		}
	}
	return nil
}
