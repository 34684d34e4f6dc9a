// SOL25 CLI - runs SOL25 programs from their XML form or a program image
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/sol/manifest"
	"github.com/chazu/sol/pkg/ast"
	"github.com/chazu/sol/pkg/parser"
	"github.com/chazu/sol/vm"
)

var log = commonlog.GetLogger("sol.cli")

// Process exit codes.
const (
	ExitOK                = 0
	ExitParams            = 10
	ExitInputFile         = 11
	ExitOutputFile        = 12
	ExitMissingEntry      = 31
	ExitHierarchy         = 35
	ExitMalformedXML      = 41
	ExitXMLStructure      = 42
	ExitDoesNotUnderstand = 51
	ExitType              = 52
	ExitValue             = 53
	ExitInternal          = 99
)

// ImageExt marks program image files.
const ImageExt = ".solimg"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options is the merged result of flags, sol.toml and defaults.
type options struct {
	source        string
	input         string
	image         bool
	emitImage     string
	entryClass    string
	entrySelector string
	maxDepth      int
	verbosity     int
	logFile       string
}

// run is main without the process exit, so tests can drive it.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	out := bufio.NewWriter(stdout)
	errOut := bufio.NewWriter(stderr)
	defer out.Flush()
	defer errOut.Flush()

	opts, code := parseOptions(args, errOut)
	if code >= 0 {
		return code
	}
	configureLogging(opts)

	prog, err := loadProgram(opts)
	if err != nil {
		fmt.Fprintf(errOut, "sol: %v\n", err)
		return exitCode(err)
	}

	if opts.emitImage != "" {
		if err := writeImage(prog, opts.emitImage); err != nil {
			fmt.Fprintf(errOut, "sol: %v\n", err)
			return ExitOutputFile
		}
		log.Infof("wrote image %s", opts.emitImage)
		return ExitOK
	}

	in := stdin
	if opts.input != "" {
		f, err := os.Open(opts.input)
		if err != nil {
			fmt.Fprintf(errOut, "sol: cannot open input: %v\n", err)
			return ExitInputFile
		}
		defer f.Close()
		in = f
	}

	machine := vm.NewVM(vm.Config{
		Stdout:        out,
		Stderr:        errOut,
		Stdin:         vm.NewLineReader(in),
		EntryClass:    opts.entryClass,
		EntrySelector: opts.entrySelector,
		MaxDepth:      opts.maxDepth,
	})
	if err := machine.Load(prog); err != nil {
		fmt.Fprintf(errOut, "sol: %v\n", err)
		return exitCode(err)
	}
	if err := machine.Run(); err != nil {
		return exitCode(err)
	}
	if err := out.Flush(); err != nil {
		fmt.Fprintf(errOut, "sol: cannot write output: %v\n", err)
		return ExitOutputFile
	}
	return ExitOK
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// countFlag is a repeatable boolean flag: -v -v counts 2, -v=3 sets 3.
type countFlag int

func (c *countFlag) String() string { return strconv.Itoa(int(*c)) }

func (c *countFlag) Set(s string) error {
	if s == "true" {
		*c++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*c = countFlag(n)
	return nil
}

func (c *countFlag) IsBoolFlag() bool { return true }

// parseOptions returns the merged options, or an exit code >= 0 when the
// process should stop.
func parseOptions(args []string, stderr io.Writer) (*options, int) {
	fs := flag.NewFlagSet("sol", flag.ContinueOnError)
	fs.SetOutput(stderr)

	source := fs.String("source", "", "Program source (SOL25 XML or "+ImageExt+" image)")
	input := fs.String("input", "", "File feeding String read (default stdin)")
	config := fs.String("config", "", "Path to sol.toml (default: search upwards from the working directory)")
	image := fs.Bool("image", false, "Treat the source as a program image")
	emitImage := fs.String("emit-image", "", "Write the parsed program as an image to this path and exit")
	maxDepth := fs.Int("max-depth", 0, "Maximum nested message sends (0 = unlimited)")
	var verbosity countFlag
	fs.Var(&verbosity, "v", "Log verbosity (repeat for more)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: sol [options] [source]\n\n")
		fmt.Fprintf(stderr, "Runs a SOL25 program by sending run to a new instance of Main.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  sol prog.xml < input.txt           # Run a program\n")
		fmt.Fprintf(stderr, "  sol -emit-image prog.solimg prog.xml  # Save a parsed image\n")
		fmt.Fprintf(stderr, "  sol prog.solimg                    # Run from an image\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, ExitOK
		}
		return nil, ExitParams
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "sol: at most one source may be given\n")
		return nil, ExitParams
	}
	if fs.NArg() == 1 {
		if set["source"] {
			fmt.Fprintf(stderr, "sol: source given both as -source and as an argument\n")
			return nil, ExitParams
		}
		*source = fs.Arg(0)
		set["source"] = true
	}

	m, err := loadManifest(*config)
	if err != nil {
		fmt.Fprintf(stderr, "sol: %v\n", err)
		return nil, ExitParams
	}

	opts := &options{
		entryClass:    vm.DefaultEntryClass,
		entrySelector: vm.DefaultEntrySelector,
	}
	if m != nil {
		opts.source = m.SourcePath()
		opts.input = m.InputPath()
		opts.entryClass = m.Run.EntryClass
		opts.entrySelector = m.Run.EntrySelector
		opts.maxDepth = m.Run.MaxDepth
		opts.verbosity = m.Log.Verbosity
		opts.logFile = m.LogFilePath()
	}

	// Flags override sol.toml.
	if set["source"] {
		opts.source = *source
	}
	if set["input"] {
		opts.input = *input
	}
	if set["max-depth"] {
		opts.maxDepth = *maxDepth
	}
	if set["v"] {
		opts.verbosity = int(verbosity)
	}
	if set["emit-image"] {
		opts.emitImage = *emitImage
		if opts.emitImage == "" && m != nil {
			opts.emitImage = m.ImageOutputPath()
		}
	}
	opts.image = *image || filepath.Ext(opts.source) == ImageExt

	if opts.source == "" {
		fmt.Fprintf(stderr, "sol: no source given\n")
		fs.Usage()
		return nil, ExitParams
	}
	if opts.maxDepth < 0 {
		fmt.Fprintf(stderr, "sol: -max-depth must not be negative\n")
		return nil, ExitParams
	}
	if set["emit-image"] && opts.emitImage == "" {
		fmt.Fprintf(stderr, "sol: -emit-image needs a path or [image] output in sol.toml\n")
		return nil, ExitParams
	}
	return opts, -1
}

// loadManifest reads an explicit config file, or searches for sol.toml
// from the working directory. A missing sol.toml is not an error.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path != "" {
		return manifest.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil
	}
	return manifest.FindAndLoad(wd)
}

func configureLogging(opts *options) {
	verbosity := opts.verbosity
	if verbosity == 0 {
		// Quiet unless asked.
		verbosity = -4
	}
	var path *string
	if opts.logFile != "" {
		path = &opts.logFile
	}
	commonlog.Configure(verbosity, path)
}

// ---------------------------------------------------------------------------
// Program loading
// ---------------------------------------------------------------------------

// inputFileError marks failures to read the program or its input.
type inputFileError struct {
	err error
}

func (e *inputFileError) Error() string { return e.err.Error() }
func (e *inputFileError) Unwrap() error { return e.err }

func loadProgram(opts *options) (*ast.Program, error) {
	if !opts.image {
		prog, err := parser.ParseFile(opts.source)
		var perr *parser.Error
		if err != nil && !errors.As(err, &perr) {
			return nil, &inputFileError{err}
		}
		return prog, err
	}

	data, err := os.ReadFile(opts.source)
	if err != nil {
		return nil, &inputFileError{fmt.Errorf("read image: %w", err)}
	}
	prog, err := ast.DecodeImage(data)
	if err != nil {
		return nil, &parser.Error{Kind: parser.FormatError, Message: opts.source, Err: err}
	}
	return prog, nil
}

func writeImage(prog *ast.Program, path string) error {
	data, err := ast.EncodeImage(prog)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create image directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Exit codes
// ---------------------------------------------------------------------------

// exitCode maps an error onto the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var input *inputFileError
	if errors.As(err, &input) {
		return ExitInputFile
	}
	var perr *parser.Error
	if errors.As(err, &perr) {
		if perr.Kind == parser.FormatError {
			return ExitMalformedXML
		}
		return ExitXMLStructure
	}

	switch vm.KindOf(err) {
	case vm.KindMissingEntry:
		return ExitMissingEntry
	case vm.KindHierarchy:
		return ExitHierarchy
	case vm.KindDoesNotUnderstand:
		return ExitDoesNotUnderstand
	case vm.KindType:
		return ExitType
	case vm.KindValue:
		return ExitValue
	default:
		return ExitInternal
	}
}
