package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/lhaig/pybat/internal/ast"
	"github.com/lhaig/pybat/internal/compiler"
	"github.com/lhaig/pybat/internal/config"
	"github.com/lhaig/pybat/internal/ir"
	"github.com/lhaig/pybat/internal/watch"
)

const usage = `pybatc - compile a Python subset to Windows batch scripts

Usage:
  pybatc build [options] <file.py>        Compile to <file>.bat
  pybatc check <file.py>                  Parse and lower only
  pybatc lint <file.py>                   Warn about constructs that misbehave under cmd.exe
  pybatc dump [--ast|--ir] <file.py>      Print the normalized AST or the lowered statements
  pybatc watch [options] <file.py>...     Rebuild each file whenever it is saved
  pybatc fmt [-w] <file.py>               Print the source in canonical layout (-w rewrites the file)

Options:
  -o <path>         Output path (build with a single input only)
  --out-dir <dir>   Directory for generated scripts (default: next to the input)
  --crlf            Write CRLF line endings
  --lf              Write LF line endings (overrides PYBAT_CRLF)
  --indent <n>      Spaces per block level (default 4)
  --verbose         Report lowering statistics on stderr

Environment:
  PYBAT_CRLF, PYBAT_OUT_DIR, PYBAT_VERBOSE, PYBAT_INDENT set the defaults
  for the options above.

Examples:
  pybatc build hello.py                   Build hello.py -> hello.bat
  pybatc build -o dist/run.bat game.py    Build game.py -> dist/run.bat
  pybatc dump --ast hello.py              Show the program after normalization
  pybatc watch --crlf *.py                Rebuild on save
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build":
		handleBuild(os.Args[2:])
	case "check":
		handleCheck(os.Args[2:])
	case "lint":
		handleLint(os.Args[2:])
	case "dump":
		handleDump(os.Args[2:])
	case "watch":
		handleWatch(os.Args[2:])
	case "fmt":
		handleFmt(os.Args[2:])
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// buildArgs holds the result of parsing build and watch arguments.
type buildArgs struct {
	opts    config.Options
	outPath string
	files   []string
}

func parseBuildArgs(args []string) (*buildArgs, error) {
	ba := &buildArgs{opts: config.FromEnv()}

	// value returns the argument following a flag that takes one.
	value := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-o":
			v, err := value(i, arg)
			if err != nil {
				return nil, err
			}
			ba.outPath = v
			i++
		case "--out-dir":
			v, err := value(i, arg)
			if err != nil {
				return nil, err
			}
			ba.opts.OutDir = v
			i++
		case "--indent":
			v, err := value(i, arg)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("--indent: %w", err)
			}
			ba.opts.Indent = n
			i++
		case "--crlf":
			ba.opts.CRLF = true
		case "--lf":
			ba.opts.CRLF = false
		case "--verbose":
			ba.opts.Verbose = true
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			ba.files = append(ba.files, arg)
		}
	}

	if len(ba.files) == 0 {
		return nil, fmt.Errorf("no input file specified")
	}
	if ba.outPath != "" && len(ba.files) > 1 {
		return nil, fmt.Errorf("-o cannot be used with more than one input file")
	}
	if err := ba.opts.Validate(); err != nil {
		return nil, err
	}
	return ba, nil
}

// output returns where the script for filePath is written.
func (ba *buildArgs) output(filePath string) string {
	if ba.outPath != "" {
		return ba.outPath
	}
	return compiler.OutputPath(filePath, ba.opts.OutDir)
}

// buildFile compiles one file and writes its script.
func buildFile(ba *buildArgs, filePath string) error {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	outPath := ba.output(filePath)
	res, err := compiler.Build(string(source), filePath, outPath, ba.opts.Batch())
	if err != nil {
		return err
	}

	for _, d := range res.Diagnostics.All() {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: warning: %s\n", filePath, d.Line, d.Column, d.Message)
	}
	if ba.opts.Verbose {
		fmt.Fprintf(os.Stderr, "%s: %d statements, %d temporaries, %d loop labels\n",
			filePath, res.Stats.Statements, res.Stats.Temporaries, res.Stats.Labels)
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

func handleBuild(args []string) {
	ba, err := parseBuildArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	failed := false
	for _, filePath := range ba.files {
		if err := buildFile(ba, filePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func handleCheck(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	filePath := args[0]

	source, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}
	diag := compiler.Check(string(source))
	if diag.HasErrors() {
		fmt.Fprintf(os.Stderr, "%s\n", diag.Format(filePath))
		os.Exit(1)
	}
	for _, d := range diag.All() {
		fmt.Printf("%s:%d:%d: warning: %s\n", filePath, d.Line, d.Column, d.Message)
	}

	fmt.Println("No errors found.")
}

func handleLint(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	filePath := args[0]

	source, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}

	diag := compiler.Lint(string(source))
	if diag.HasErrors() {
		fmt.Fprintf(os.Stderr, "%s\n", diag.Format(filePath))
		os.Exit(1)
	}

	if diag.Count() == 0 {
		fmt.Println("No lint warnings.")
		return
	}

	fmt.Print(diag.Format(filePath))
	fmt.Println()
	fmt.Printf("%d warning(s) found.\n", diag.Count())
}

func handleDump(args []string) {
	showAST := false
	var filePath string

	for _, arg := range args {
		switch arg {
		case "--ast":
			showAST = true
		case "--ir":
			showAST = false
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				os.Exit(1)
			}
			filePath = arg
		}
	}

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}

	if showAST {
		prog, diag := compiler.ParseAST(string(source))
		if diag.HasErrors() {
			fmt.Fprintf(os.Stderr, "%s\n", diag.Format(filePath))
			os.Exit(1)
		}
		fmt.Print(ast.Print(prog))
		return
	}

	stmts, diag := compiler.LowerIR(string(source))
	if diag.HasErrors() {
		fmt.Fprintf(os.Stderr, "%s\n", diag.Format(filePath))
		os.Exit(1)
	}
	fmt.Print(ir.Dump(stmts))
}

func handleWatch(args []string) {
	ba, err := parseBuildArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	// paths reported by the watcher are absolute
	inputs := make(map[string]string, len(ba.files))
	for _, filePath := range ba.files {
		abs, err := filepath.Abs(filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		inputs[abs] = filePath

		if err := buildFile(ba, filePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
	}

	watcher, err := watch.New(func(path string) {
		filePath, ok := inputs[path]
		if !ok {
			return
		}
		fmt.Printf("File changed: %s\n", filepath.Base(filePath))
		if err := buildFile(ba, filePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
	}, watch.DefaultDelay)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create file watcher: %s\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	for abs := range inputs {
		if err := watcher.Add(abs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to watch file: %s\n", err)
			os.Exit(1)
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		watcher.Close()
	}()

	fmt.Printf("Watching %d file(s); press Ctrl+C to stop.\n", len(inputs))
	if err := watcher.Watch(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func handleFmt(args []string) {
	write := false
	var filePath string

	for _, arg := range args {
		switch arg {
		case "-w":
			write = true
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				os.Exit(1)
			}
			filePath = arg
		}
	}

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}

	formatted, diag := compiler.Format(string(source))
	if diag.HasErrors() {
		fmt.Fprintf(os.Stderr, "%s\n", diag.Format(filePath))
		os.Exit(1)
	}

	if !write {
		fmt.Print(formatted)
		return
	}
	// comments are not kept by the formatter, so never overwrite them
	if strings.Contains(string(source), "#") {
		fmt.Fprintf(os.Stderr, "Error: %s contains comments, which fmt does not preserve; run without -w\n", filePath)
		os.Exit(1)
	}
	if formatted == string(source) {
		return
	}
	if err := compiler.WriteAtomic(filePath, formatted); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Formatted %s\n", filePath)
}
