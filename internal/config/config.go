// Package config loads the optional .srcxref.kdl project file, the
// single place settings that aren't worth a CLI flag on every invocation
// live: default exclusion globs, the external Doxygen tag files to chain,
// and the ambient performance knobs the CLI flags override when given
// explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Config is the resolved project configuration: CLI flags always take
// precedence over any value loaded here.
type Config struct {
	MaxIDSize   int
	Jobs        int
	Doxytags    []DoxytagRef
	Exclude     []string
	TemplateRel string
}

// DoxytagRef names one external tag file and the base URL its links are
// rooted at, in chain order (earlier entries win on a name collision).
type DoxytagRef struct {
	Path    string
	BaseURL string
}

// Default returns the built-in configuration used when no project file is
// present.
func Default() *Config {
	return &Config{
		MaxIDSize: 128,
		Jobs:      0,
		Exclude:   defaultExclusions(),
	}
}

// Load reads projectRoot/.srcxref.kdl if present, returning Default() with
// no error when it does not exist.
func Load(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".srcxref.kdl")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := Default()
	if err := parse(cfg, string(content)); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func parse(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "max-id-size":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxIDSize = v
			}
		case "jobs":
			if v, ok := firstIntArg(n); ok {
				cfg.Jobs = v
			}
		case "template":
			if s, ok := firstStringArg(n); ok {
				cfg.TemplateRel = s
			}
		case "exclude":
			if args := stringArgs(n); len(args) > 0 {
				cfg.Exclude = args
			}
		case "doxytag":
			ref := DoxytagRef{}
			if s, ok := firstStringArg(n); ok {
				ref.Path = s
			}
			for _, cn := range n.Children {
				if nodeName(cn) == "base-url" {
					if s, ok := firstStringArg(cn); ok {
						ref.BaseURL = s
					}
				}
			}
			if ref.Path != "" {
				cfg.Doxytags = append(cfg.Doxytags, ref)
			}
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i, true
		}
	}
	return 0, false
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func stringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// defaultExclusions covers the build-output and VCS directories a source
// tree almost always wants skipped, independent of language.
func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/build/**",
		"**/out/**",
		"**/cmake-build-*/**",
		"**/CMakeFiles/**",
		"**/*.xcodeproj/**",
		"**/DerivedData/**",
	}
}
