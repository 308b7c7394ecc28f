// Package cdb loads a compilation database: the ordered sequence of
// (argv, working directory, filename) triples a build system recorded for
// each translation unit it compiled, in the de facto compile_commands.json
// shape.
package cdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	xerrors "github.com/standardbeagle/srcxref/internal/errors"
)

// Entry is one compilation database record, normalized to always carry an
// argv (a "command" string form is split into one on load).
type Entry struct {
	Directory string
	Filename  string
	Argv      []string
}

// rawEntry mirrors compile_commands.json's documented schema: exactly one
// of Arguments or Command is present per entry.
type rawEntry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	Command   string   `json:"command,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// Load reads a compile_commands.json-style file at path.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &xerrors.DBError{Dir: path, Code: 1, Err: err}
	}
	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &xerrors.DBError{Dir: path, Code: 2, Err: err}
	}
	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		argv := r.Arguments
		if len(argv) == 0 && r.Command != "" {
			argv = splitCommand(r.Command)
		}
		if len(argv) == 0 || r.File == "" {
			continue
		}
		dir := r.Directory
		if dir == "" {
			dir = filepath.Dir(path)
		}
		file := r.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		out = append(out, Entry{Directory: dir, Filename: filepath.Clean(file), Argv: argv})
	}
	return out, nil
}

// SingleCommand builds a one-entry database from a literal "--cmd"
// invocation: the command string, the directory it runs in, and the
// source file it compiles.
func SingleCommand(command, dir, filename string) Entry {
	return Entry{
		Directory: dir,
		Filename:  filepath.Clean(filename),
		Argv:      splitCommand(command),
	}
}

// splitCommand performs POSIX-shell-like word splitting: whitespace
// separated, with single and double quoting and backslash escapes, enough
// to cover the quoting a build system's recorded command line actually
// uses without pulling in a full shell grammar.
func splitCommand(s string) []string {
	var words []string
	var cur strings.Builder
	has := false
	inSingle, inDouble := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			} else {
				cur.WriteByte(c)
			}
		case inDouble:
			if c == '"' {
				inDouble = false
			} else if c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
				i++
				cur.WriteByte(s[i])
			} else {
				cur.WriteByte(c)
			}
		case c == '\'':
			inSingle, has = true, true
		case c == '"':
			inDouble, has = true, true
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
			has = true
		case c == ' ' || c == '\t' || c == '\n':
			if has {
				words = append(words, cur.String())
				cur.Reset()
				has = false
			}
		default:
			cur.WriteByte(c)
			has = true
		}
	}
	if has {
		words = append(words, cur.String())
	}
	return words
}

// ErrNotFound is returned by LocateDefault when no compile_commands.json
// exists under the given directory.
var ErrNotFound = fmt.Errorf("no compile_commands.json found")

// LocateDefault looks for compile_commands.json directly under dir, the
// conventional location CMake and other generators write it to.
func LocateDefault(dir string) (string, error) {
	candidate := filepath.Join(dir, "compile_commands.json")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", ErrNotFound
}
