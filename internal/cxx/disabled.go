package cxx

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// DisabledRange is a byte-offset half-open interval of source text that a
// preprocessor would have excluded from compilation (the inactive branch
// of an #if/#ifdef, or #if 0 blocks). The renderer wraps these in a
// "disabled-code" div instead of attempting to classify their contents.
type DisabledRange struct {
	Begin, End uint
}

// ScanDisabledRanges approximates the preprocessor's inactive-branch
// bookkeeping with a line-oriented conditional-stack scanner: it tracks
// nesting depth and, for each #if/#ifdef/#elif/#else, a simple constant
// evaluation (integer literals, defined(NAME), defined NAME, !defined(NAME)
// and bare identifiers are resolved; anything else is conservatively
// treated as "active" so we
// never hide code that a real preprocessor would keep). This is not a
// replacement for detailed preprocessing records, just the closest a
// textual scan can get without one.
func ScanDisabledRanges(content []byte, defines map[string]bool) []DisabledRange {
	type frame struct {
		active       bool // this branch is selected
		everActive   bool // some branch in this #if chain has already been selected
		parentActive bool // enclosing context was active
		disabledFrom uint
		inDisabled   bool
	}
	var stack []frame
	var out []DisabledRange
	offset := uint(0)

	parentActive := func() bool {
		for i := len(stack) - 1; i >= 0; i-- {
			if !stack[i].active {
				return false
			}
		}
		return true
	}

	openDisabled := func(at uint) {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if !top.inDisabled {
			top.inDisabled = true
			top.disabledFrom = at
		}
	}
	closeDisabled := func(at uint) {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.inDisabled {
			top.inDisabled = false
			if at > top.disabledFrom {
				out = append(out, DisabledRange{Begin: top.disabledFrom, End: at})
			}
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lineBytes := sc.Bytes()
		lineLen := uint(len(lineBytes)) + 1 // account for the newline the scanner stripped
		trimmed := strings.TrimSpace(string(lineBytes))
		wasActiveCtx := parentActive()

		if strings.HasPrefix(trimmed, "#") {
			directive := strings.TrimSpace(trimmed[1:])
			switch {
			case strings.HasPrefix(directive, "ifdef "):
				name := strings.TrimSpace(directive[len("ifdef "):])
				active := wasActiveCtx && defines[name]
				if !wasActiveCtx && stack != nil {
					active = false
				}
				stack = append(stack, frame{active: active, everActive: active, parentActive: wasActiveCtx})
				if wasActiveCtx && !active {
					openDisabled(offset + lineLen)
				}
			case strings.HasPrefix(directive, "ifndef "):
				name := strings.TrimSpace(directive[len("ifndef "):])
				active := wasActiveCtx && !defines[name]
				stack = append(stack, frame{active: active, everActive: active, parentActive: wasActiveCtx})
				if wasActiveCtx && !active {
					openDisabled(offset + lineLen)
				}
			case strings.HasPrefix(directive, "if "), directive == "if":
				cond := strings.TrimSpace(strings.TrimPrefix(directive, "if"))
				active := wasActiveCtx && evalSimpleCond(cond, defines)
				stack = append(stack, frame{active: active, everActive: active, parentActive: wasActiveCtx})
				if wasActiveCtx && !active {
					openDisabled(offset + lineLen)
				}
			case strings.HasPrefix(directive, "elif "), directive == "elif":
				if len(stack) > 0 {
					top := &stack[len(stack)-1]
					wasActive := top.active
					cond := strings.TrimSpace(strings.TrimPrefix(directive, "elif"))
					top.active = top.parentActive && !top.everActive && evalSimpleCond(cond, defines)
					top.everActive = top.everActive || top.active
					if wasActive && !top.active {
						openDisabled(offset + lineLen)
					} else if !wasActive && top.active {
						closeDisabled(offset)
					}
				}
			case strings.HasPrefix(directive, "else"):
				if len(stack) > 0 {
					top := &stack[len(stack)-1]
					wasActive := top.active
					top.active = top.parentActive && !top.everActive
					if wasActive && !top.active {
						openDisabled(offset + lineLen)
					} else if !wasActive && top.active {
						closeDisabled(offset)
					}
				}
			case strings.HasPrefix(directive, "endif"):
				if len(stack) > 0 {
					top := stack[len(stack)-1]
					if top.inDisabled {
						closeDisabled(offset)
					}
					stack = stack[:len(stack)-1]
				}
			}
			offset += lineLen
			if len(stack) > 0 && stack[len(stack)-1].active != wasActiveCtx {
				// directive line itself belongs to the enclosing context, not
				// the branch it just opened/closed; nothing further to do.
			}
			continue
		}

		nowActive := parentActive()
		if wasActiveCtx && !nowActive {
			openDisabled(offset)
		} else if !wasActiveCtx && nowActive {
			closeDisabled(offset)
		}
		offset += lineLen
	}
	if len(stack) > 0 && stack[len(stack)-1].inDisabled {
		out = append(out, DisabledRange{Begin: stack[len(stack)-1].disabledFrom, End: offset})
	}
	return out
}

// evalSimpleCond resolves the handful of #if/#elif conditions a textual
// scanner can judge safely: bare 0/1 literals and single defined(NAME) or
// bare-identifier checks. Anything more complex (arithmetic, version
// comparisons) is treated as true so genuinely live code is never hidden.
func evalSimpleCond(cond string, defines map[string]bool) bool {
	cond = strings.TrimSpace(cond)
	if n, err := strconv.Atoi(cond); err == nil {
		return n != 0
	}
	if strings.HasPrefix(cond, "defined(") && strings.HasSuffix(cond, ")") {
		name := strings.TrimSpace(cond[len("defined(") : len(cond)-1])
		return defines[name]
	}
	if strings.HasPrefix(cond, "defined ") {
		name := strings.TrimSpace(cond[len("defined "):])
		return defines[name]
	}
	if strings.HasPrefix(cond, "!defined(") && strings.HasSuffix(cond, ")") {
		name := strings.TrimSpace(cond[len("!defined(") : len(cond)-1])
		return !defines[name]
	}
	if isIdentifier(cond) {
		return defines[cond]
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}
