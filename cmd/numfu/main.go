package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/rphle/numfu"
)

const (
	appName     = "numfu"
	historyFile = ".numfu_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("NumFu %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", numfu.Version)

const helpText = `
REPL commands:
  :quit    Exit the REPL
  :help    Show this help
`

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "parse":
		os.Exit(cmdParse(os.Args[2:]))
	case "ast":
		os.Exit(cmdAst(os.Args[2:]))
	case "version":
		fmt.Println("NumFu, version " + numfu.Version)
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		// bare FILE runs it, matching `numfu prog.nfu`
		os.Exit(cmdRun(os.Args[1:]))
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage: %s <command> [arguments]

Commands:
  run FILE     Parse and run a NumFu source or tree file (also: %s FILE)
  repl         Start an interactive REPL ("repl ast" shows ASTs instead)
  parse FILE   Serialize a parsed file (-p pretty prints it instead)
  ast FILE     Pretty print a file's AST (-max-depth, -indent)
  version      Print the interpreter version
  help         Show this help

Run flags (run, repl):
  -precision N   significant digits shown when printing numbers (default %d)
  -rec-depth N   maximum non-tail recursion depth (default %d)
  -iter-depth N  maximum tail-call iterations, -1 for unlimited (default %d)

Parse flags:
  -p             pretty print the AST instead of saving it
  -o FILE        output path (default: source with a .nfut extension)
  -max-depth N   AST display depth for -p (default 10, 0 for unlimited)
  -indent N      indentation size for -p (default 2)
`, appName, appName, numfu.DefaultPrecision, numfu.DefaultRecDepth, numfu.DefaultIterDepth)
}

// interpFlags registers the evaluation options shared by run and repl.
func interpFlags(fs *flag.FlagSet) *numfu.Options {
	o := &numfu.Options{}
	fs.IntVar(&o.Precision, "precision", numfu.DefaultPrecision, "printing precision")
	fs.IntVar(&o.Precision, "p", numfu.DefaultPrecision, "printing precision (shorthand)")
	fs.IntVar(&o.RecDepth, "rec-depth", numfu.DefaultRecDepth, "maximum recursion depth")
	fs.IntVar(&o.RecDepth, "r", numfu.DefaultRecDepth, "maximum recursion depth (shorthand)")
	fs.IntVar(&o.IterDepth, "iter-depth", numfu.DefaultIterDepth, "maximum tail-call iterations")
	return o
}

/* ===========================
   run
   =========================== */

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	opts := interpFlags(fs)
	fs.Usage = func() { usage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage(os.Stderr)
		return 2
	}
	file := fs.Arg(0)

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("%s: %v", appName, err)))
		return 2
	}

	var prog numfu.S
	src := ""
	if numfu.IsTreeData(data) {
		prog, err = numfu.UnmarshalTree(data)
	} else {
		src = string(data)
		prog, err = numfu.ParseSExpr(src)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, red(numfu.WrapErrorWithSource(err, file, src).Error()))
		return numfu.ExitCode(err)
	}

	opts.Dir = filepath.Dir(file)
	in, err := numfu.New(*opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("%s: %v", appName, err)))
		return 1
	}

	emit := func(v numfu.Value) { fmt.Println(in.FormatTop(v)) }
	if err := in.EvalTop(prog, in.Global, nil, emit); err != nil {
		var req *numfu.ExitRequest
		if errors.As(err, &req) {
			return req.Code
		}
		fmt.Fprintln(os.Stderr, red(numfu.WrapErrorWithSource(err, file, src).Error()))
		return numfu.ExitCode(err)
	}
	return 0
}

/* ===========================
   parse
   =========================== */

func cmdParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	pretty := fs.Bool("p", false, "pretty print the AST instead of saving it")
	out := fs.String("o", "", "output file path")
	maxDepth := fs.Int("max-depth", 10, "maximum AST display depth")
	fs.IntVar(maxDepth, "m", 10, "maximum AST display depth (shorthand)")
	indent := fs.Int("indent", 2, "indentation size")
	fs.IntVar(indent, "n", 2, "indentation size (shorthand)")
	fs.Usage = func() { usage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage(os.Stderr)
		return 2
	}
	file := fs.Arg(0)

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("%s: %v", appName, err)))
		return 2
	}
	src := string(data)
	prog, err := numfu.ParseSExpr(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(numfu.WrapErrorWithSource(err, file, src).Error()))
		return numfu.ExitCode(err)
	}

	if *pretty {
		fmt.Println(numfu.FormatTree(prog, *maxDepth, *indent))
		return 0
	}

	blob, err := numfu.MarshalTree(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("%s: %v", appName, err)))
		return 1
	}
	target := *out
	if target == "" {
		target = strings.TrimSuffix(file, ".nfu") + ".nfut"
	}
	if err := os.WriteFile(target, blob, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("Error saving parsed file: %v", err)))
		return 1
	}
	fmt.Printf("Parsed file saved to %s\n", target)
	return 0
}

/* ===========================
   ast
   =========================== */

// cmdAst pretty prints a file's parse tree, accepting tree files too.
func cmdAst(args []string) int {
	fs := flag.NewFlagSet("ast", flag.ExitOnError)
	maxDepth := fs.Int("max-depth", 10, "maximum AST display depth")
	fs.IntVar(maxDepth, "m", 10, "maximum AST display depth (shorthand)")
	indent := fs.Int("indent", 2, "indentation size")
	fs.IntVar(indent, "n", 2, "indentation size (shorthand)")
	fs.Usage = func() { usage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage(os.Stderr)
		return 2
	}
	file := fs.Arg(0)

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("%s: %v", appName, err)))
		return 2
	}

	var prog numfu.S
	src := ""
	if numfu.IsTreeData(data) {
		prog, err = numfu.UnmarshalTree(data)
	} else {
		src = string(data)
		prog, err = numfu.ParseSExpr(src)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, red(numfu.WrapErrorWithSource(err, file, src).Error()))
		return numfu.ExitCode(err)
	}
	fmt.Println(numfu.FormatTree(prog, *maxDepth, *indent))
	return 0
}

/* ===========================
   repl
   =========================== */

func cmdRepl(args []string) int {
	astMode := false
	if len(args) > 0 && args[0] == "ast" {
		astMode = true
		args = args[1:]
	}
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	opts := interpFlags(fs)
	maxDepth := fs.Int("max-depth", 10, "maximum AST display depth")
	indent := fs.Int("indent", 2, "indentation size")
	fs.Usage = func() { usage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var in *numfu.Interp
	if !astMode {
		var err error
		if in, err = numfu.New(*opts); err != nil {
			fmt.Fprintln(os.Stderr, red(fmt.Sprintf("%s: %v", appName, err)))
			return 1
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	saveHistory := func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	defer saveHistory()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sig
		line.Close()
		os.Exit(130)
	}()

	if astMode {
		fmt.Printf("NumFu v%s AST REPL. Type :quit or press Ctrl+D to exit.\n", numfu.Version)
	} else {
		fmt.Println(banner)
	}

	var buf []string
	for {
		prompt := promptMain
		if len(buf) > 0 {
			prompt = promptCont
		}
		text, err := line.Prompt(prompt)
		switch {
		case err == liner.ErrPromptAborted:
			buf = nil
			continue
		case err == io.EOF:
			fmt.Println()
			return 0
		case err != nil:
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		if len(buf) == 0 {
			switch strings.TrimSpace(text) {
			case "":
				continue
			case ":quit":
				return 0
			case ":help":
				fmt.Print(helpText)
				continue
			}
		}

		buf = append(buf, text)
		src := strings.Join(buf, "\n")
		prog, perr := numfu.ParseSExprInteractive(src)
		if perr != nil {
			if numfu.IsIncomplete(perr) {
				continue
			}
			buf = nil
			fmt.Println(red(numfu.WrapErrorWithSource(perr, "", src).Error()))
			continue
		}
		buf = nil
		line.AppendHistory(src)

		if astMode {
			fmt.Println(blue(numfu.FormatTree(prog, *maxDepth, *indent)))
			continue
		}

		emit := func(v numfu.Value) { fmt.Println(blue(in.FormatTop(v))) }
		if err := in.EvalTop(prog, in.Global, nil, emit); err != nil {
			var req *numfu.ExitRequest
			if errors.As(err, &req) {
				saveHistory()
				line.Close()
				os.Exit(req.Code)
			}
			fmt.Println(red(numfu.WrapErrorWithSource(err, "", src).Error()))
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}
