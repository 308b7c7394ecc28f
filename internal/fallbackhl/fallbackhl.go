// Package fallbackhl is a minimal character-stream lexer that recognizes
// just string literals, character literals and comments, for covering
// regions of a file the AST-based
// annotator left unclassified (most commonly a disabled preprocessor
// branch, which never reaches the parser's token stream).
package fallbackhl

import "github.com/standardbeagle/srcxref/internal/types"

// Markup is a byte-offset interval with a fixed kind; fallbackhl only ever
// produces litStr, litChr or cmmt.
type Markup struct {
	Begin, End uint
	Attrs      types.TokenAttributes
}

var stringPrefixes = []string{"u8R", "u8", "LR", "UR", "uR", "L", "U", "u", "R"}

// Scan walks content once, byte by byte, recognizing:
//   - line comments `//...` to end of line
//   - block comments `/*...*/`
//   - string literals, including encoding prefixes L/U/u/u8 and raw-string
//     literals `R"delim(...)delim"`
//   - character literals with the same prefix set
//   - runs of ASCII identifier characters, skipped over whole so an
//     embedded quote inside an identifier-like run is never mistaken for
//     the start of a string
//
// It does not recognize any other syntax; this is a deliberately narrow
// supplementary pass, not a tokenizer.
func Scan(content []byte) []Markup {
	var out []Markup
	i, n := 0, len(content)
	for i < n {
		c := content[i]
		switch {
		case c == '/' && i+1 < n && content[i+1] == '/':
			start := i
			i += 2
			for i < n && content[i] != '\n' {
				i++
			}
			out = append(out, Markup{Begin: uint(start), End: uint(i), Attrs: types.Cmmt})
		case c == '/' && i+1 < n && content[i+1] == '*':
			start := i
			i += 2
			for i+1 < n && !(content[i] == '*' && content[i+1] == '/') {
				i++
			}
			if i+1 < n {
				i += 2
			} else {
				i = n
			}
			out = append(out, Markup{Begin: uint(start), End: uint(i), Attrs: types.Cmmt})
		case isIdentStart(c):
			start := i
			prefix, rawDelim, isRaw, ok := matchStringPrefix(content, i)
			if ok {
				i = start + len(prefix)
				if content[i] == '"' {
					end, consumed := scanString(content, i, isRaw, rawDelim)
					out = append(out, Markup{Begin: uint(start), End: uint(end), Attrs: types.LitStr})
					i = consumed
					continue
				}
				if content[i] == '\'' {
					end := scanChar(content, i)
					out = append(out, Markup{Begin: uint(start), End: uint(end), Attrs: types.LitChr})
					i = end
					continue
				}
			}
			i = start
			for i < n && isIdentCont(content[i]) {
				i++
			}
		case c == '"':
			start := i
			end, consumed := scanString(content, i, false, "")
			out = append(out, Markup{Begin: uint(start), End: uint(end), Attrs: types.LitStr})
			i = consumed
		case c == '\'':
			start := i
			end := scanChar(content, i)
			out = append(out, Markup{Begin: uint(start), End: uint(end), Attrs: types.LitChr})
			i = end
		default:
			i++
		}
	}
	return out
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// matchStringPrefix reports whether content[i:] begins with a known
// string-literal encoding prefix immediately followed by `"` or `'`
// (optionally `R"` for raw strings), returning the prefix text, an always
// empty delimiter (scanString reads a raw string's delimiter itself), and
// whether it is raw.
func matchStringPrefix(content []byte, i int) (prefix string, delim string, isRaw bool, ok bool) {
	n := len(content)
	for _, p := range stringPrefixes {
		l := len(p)
		if i+l >= n {
			continue
		}
		if string(content[i:i+l]) != p {
			continue
		}
		next := content[i+l]
		if next == '"' || next == '\'' {
			return p, "", p[len(p)-1] == 'R', true
		}
	}
	return "", "", false, false
}

// scanString scans a (possibly raw) string literal starting at the
// opening quote index, returning the markup end offset and the index to
// resume scanning from (equal for normal strings; raw strings' delimiter
// parsing needs no backtrack either, kept separate for clarity).
func scanString(content []byte, quoteIdx int, isRaw bool, _ string) (end int, resume int) {
	n := len(content)
	if isRaw {
		// quoteIdx is at '"'; delimiter runs until '('
		j := quoteIdx + 1
		delimStart := j
		for j < n && content[j] != '(' {
			j++
		}
		delim := string(content[delimStart:j])
		closer := ")" + delim + "\""
		idx := indexFrom(content, j, closer)
		if idx < 0 {
			return n, n
		}
		e := idx + len(closer)
		return e, e
	}
	j := quoteIdx + 1
	for j < n {
		if content[j] == '\\' {
			j += 2
			continue
		}
		if content[j] == '"' {
			j++
			break
		}
		if content[j] == '\n' {
			break
		}
		j++
	}
	return j, j
}

func scanChar(content []byte, quoteIdx int) int {
	n := len(content)
	j := quoteIdx + 1
	for j < n {
		if content[j] == '\\' {
			j += 2
			continue
		}
		if content[j] == '\'' {
			j++
			break
		}
		if content[j] == '\n' {
			break
		}
		j++
	}
	return j
}

func indexFrom(content []byte, from int, sub string) int {
	if from >= len(content) {
		return -1
	}
	hay := content[from:]
	for i := 0; i+len(sub) <= len(hay); i++ {
		if string(hay[i:i+len(sub)]) == sub {
			return from + i
		}
	}
	return -1
}
