// Command srcxref indexes a corpus of C/C++/Objective-C translation units
// and renders each source file as a syntax-classified, cross-referenced
// HTML page.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/srcxref/internal/annotator"
	"github.com/standardbeagle/srcxref/internal/cdb"
	"github.com/standardbeagle/srcxref/internal/config"
	"github.com/standardbeagle/srcxref/internal/debug"
	xerrors "github.com/standardbeagle/srcxref/internal/errors"
	"github.com/standardbeagle/srcxref/internal/extref"
	"github.com/standardbeagle/srcxref/internal/registry"
	"github.com/standardbeagle/srcxref/internal/template"
	"github.com/standardbeagle/srcxref/internal/version"
	"github.com/standardbeagle/srcxref/internal/workerpool"
)

// inputSpec is one positional input directory paired with the output
// directory of the -o occurrence at the same position (or "." if there
// are fewer -o values than input directories).
type inputSpec struct {
	InputDir  string
	OutputDir string
}

func main() {
	app := &cli.App{
		Name:                   "srcxref",
		Usage:                  "cross-referenced HTML source indexer for C/C++/Objective-C",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "o", Usage: "output directory; the i-th -o applies to the i-th input directory"},
			&cli.StringSliceFlag{Name: "e", Usage: "extra clang-style argument (-Ipath or -Dname[=val]), applied to every command"},
			&cli.StringFlag{Name: "t", Usage: "HTML template file (overrides the built-in template)"},
			&cli.IntFlag{Name: "j", Usage: "worker thread count (0 = hardware concurrency)"},
			&cli.IntFlag{Name: "max-id-sz", Usage: "max length of a stored fileUniqueName before degrading to a line anchor"},
			&cli.StringSliceFlag{Name: "doxytags", Usage: "tag file, then its base URL, as two consecutive values (one resolver per pair); may be repeated"},
			&cli.StringFlag{Name: "cmd", Usage: "a single literal compile command to index"},
			&cli.StringFlag{Name: "db", Usage: "directory containing compile_commands.json"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor implements the driver's documented exit-code convention:
// 10+code for a parser failure, 20+code for a DB load failure, 1 for
// everything else.
func exitCodeFor(err error) int {
	var perr *xerrors.ParserError
	var derr *xerrors.DBError
	switch {
	case asError(err, &perr):
		return perr.ExitCode()
	case asError(err, &derr):
		return derr.ExitCode()
	}
	return 1
}

func asError[T error](err error, target *T) bool {
	for err != nil {
		if t, ok := err.(T); ok {
			*target = t
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func run(c *cli.Context) error {
	specs, err := parseInputSpecs(c)
	if err != nil {
		return err
	}
	if c.String("cmd") == "" && c.String("db") == "" {
		return xerrors.NewConfigError("exactly one of --cmd or --db is required")
	}
	if c.String("cmd") != "" && c.String("db") != "" {
		return xerrors.NewConfigError("--cmd and --db are mutually exclusive")
	}

	projectRoot := "."
	if len(specs) > 0 {
		projectRoot = specs[0].InputDir
	}
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return err
	}
	if v := c.Int("max-id-sz"); v > 0 {
		cfg.MaxIDSize = v
	}
	if v := c.Int("j"); v > 0 {
		cfg.Jobs = v
	}

	tmpl := template.Default()
	tf := c.String("t")
	if tf == "" && cfg.TemplateRel != "" {
		tf = filepath.Join(projectRoot, cfg.TemplateRel)
	}
	if tf != "" {
		content, err := os.ReadFile(tf)
		if err != nil {
			return &xerrors.IOError{Path: tf, Stage: "read template", Err: err}
		}
		parsed, err := template.Parse(string(content))
		if err != nil {
			return err
		}
		tmpl = parsed
	}

	linker, err := buildExternalLinker(c, cfg)
	if err != nil {
		return err
	}

	roots := make([]registry.Root, len(specs))
	for i, s := range specs {
		roots[i] = registry.Root{InputRoot: s.InputDir, OutputRoot: s.OutputDir}
	}
	reg := registry.New(roots, cfg.MaxIDSize, linker, cfg.Exclude)

	entries, err := loadCommands(c)
	if err != nil {
		return err
	}
	extraArgs := c.StringSlice("e")

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	src := &cdbSource{entries: entries, reg: reg}
	pool := workerpool.New(jobs, func(ctx context.Context, cmd workerpool.Command) error {
		searchDirs, defines := parseClangArgs(cmd.Argv, extraArgs)
		ann := annotator.New(reg, searchDirs, defines)
		if err := ann.AnnotateTU(cmd.Filename); err != nil {
			return &xerrors.ParserError{Argv: cmd.Argv, Code: 1, Err: err}
		}
		return nil
	})
	if err := pool.Run(context.Background(), src); err != nil {
		return err
	}

	if errs := reg.WriteOutput(tmpl); len(errs) > 0 {
		return xerrors.NewMultiError(errs)
	}
	return nil
}

// cdbSource adapts a loaded compilation database to workerpool.Source.
type cdbSource struct {
	entries []cdb.Entry
	reg     *registry.Registry
}

func (s *cdbSource) Len() int { return len(s.entries) }

func (s *cdbSource) At(i int) workerpool.Command {
	e := s.entries[i]
	return workerpool.Command{Argv: e.Argv, Cwd: e.Directory, Filename: e.Filename}
}

func (s *cdbSource) IsIncluded(filename string) bool {
	return s.reg.IsFileIncluded(filename)
}

func loadCommands(c *cli.Context) ([]cdb.Entry, error) {
	if cmd := c.String("cmd"); cmd != "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		entry := cdb.SingleCommand(cmd, cwd, lastArg(cmd))
		return []cdb.Entry{entry}, nil
	}
	dbDir := c.String("db")
	path, err := cdb.LocateDefault(dbDir)
	if err != nil {
		return nil, &xerrors.DBError{Dir: dbDir, Code: 1, Err: err}
	}
	entries, err := cdb.Load(path)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// lastArg is the filename guess for a literal --cmd invocation: the text
// after the command's last space character, which is the source file for
// the vast majority of single-file compile invocations.
func lastArg(cmd string) string {
	start := len(cmd)
	for start > 0 && cmd[start-1] != ' ' {
		start--
	}
	return cmd[start:]
}

// parseInputSpecs walks the positional arguments and the repeated -o flag,
// pairing them by position (the i-th -o value with the i-th input
// directory), not by where each -o appears on the command line; an input
// directory with no -o at its position defaults its output to ".".
func parseInputSpecs(c *cli.Context) ([]inputSpec, error) {
	args := c.Args().Slice()
	if len(args) == 0 {
		return []inputSpec{{InputDir: ".", OutputDir: "."}}, nil
	}
	outs := c.StringSlice("o")
	specs := make([]inputSpec, len(args))
	for i, dir := range args {
		out := "."
		if i < len(outs) {
			out = outs[i]
		}
		specs[i] = inputSpec{InputDir: filepath.Clean(dir), OutputDir: filepath.Clean(out)}
	}
	return specs, nil
}

func buildExternalLinker(c *cli.Context, cfg *config.Config) (registry.ExternalRefLinker, error) {
	var chain extref.Chain
	pairs := c.StringSlice("doxytags")
	for i := 0; i+1 < len(pairs); i += 2 {
		r, err := extref.LoadDoxytag(pairs[i], pairs[i+1])
		if err != nil {
			return nil, &xerrors.IOError{Path: pairs[i], Stage: "load doxytag", Err: err}
		}
		chain.Linkers = append(chain.Linkers, r)
	}
	for _, d := range cfg.Doxytags {
		r, err := extref.LoadDoxytag(d.Path, d.BaseURL)
		if err != nil {
			debug.Log("config", "skipping unreadable doxytag %s: %v", d.Path, err)
			continue
		}
		chain.Linkers = append(chain.Linkers, r)
	}
	if len(chain.Linkers) == 0 {
		return nil, nil
	}
	return &chain, nil
}

// parseClangArgs extracts -I search directories and -D defines from a
// command's own argv plus the globally configured -e extras, the only two
// families of clang arguments this indexer's approximate semantic layer
// can act on.
func parseClangArgs(argv, extra []string) (searchDirs []string, defines map[string]bool) {
	defines = make(map[string]bool)
	consume := func(args []string) {
		for i := 0; i < len(args); i++ {
			a := args[i]
			switch {
			case a == "-I" && i+1 < len(args):
				searchDirs = append(searchDirs, args[i+1])
				i++
			case len(a) > 2 && a[:2] == "-I":
				searchDirs = append(searchDirs, a[2:])
			case a == "-D" && i+1 < len(args):
				applyDefine(defines, args[i+1])
				i++
			case len(a) > 2 && a[:2] == "-D":
				applyDefine(defines, a[2:])
			}
		}
	}
	consume(argv)
	consume(extra)
	return searchDirs, defines
}

func applyDefine(defines map[string]bool, spec string) {
	name := spec
	for i := 0; i < len(spec); i++ {
		if spec[i] == '=' {
			name = spec[:i]
			break
		}
	}
	if name != "" {
		defines[name] = true
	}
}
