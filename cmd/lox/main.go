// Command lox is the CLI entry point for the Lox tree-walking interpreter.
//
// Usage:
//
//	bin/run            Start the interactive REPL
//	bin/run script.lox  Run a source file
package main

import (
	"fmt"
	"os"

	"lox/internal/runner"
)

func main() {
	switch len(os.Args) {
	case 1:
		runRepl()
	case 2:
		runFile(os.Args[1])
	default:
		fmt.Fprintln(os.Stderr, "Usage: bin/run [script]")
		os.Exit(64)
	}
}

func runFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", path, err)
		os.Exit(1)
	}

	if os.Getenv("LOX_DUMP_AST") != "" {
		dumpAST(string(source))
	}

	r := runner.New(os.Stdout)
	if ok := r.Run(string(source), os.Stderr); !ok {
		os.Exit(1)
	}
}
