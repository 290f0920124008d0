// Package runner sequences scan→parse→resolve→interpret and renders the
// four error categories spec'd for the CLI boundary.
package runner

import (
	"fmt"
	"io"

	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/parser"
	"lox/internal/resolver"
	"lox/internal/runtime"
	"lox/internal/scanner"
)

// Runner owns one interpreter instance, so its global environment persists
// across repeated calls to Run (as the REPL requires).
type Runner struct {
	interp *runtime.Interpreter
	out    io.Writer
}

// New creates a Runner writing program output to out.
func New(out io.Writer) *Runner {
	return &Runner{
		interp: runtime.NewInterpreter(out, nil),
		out:    out,
	}
}

// Run scans, parses, resolves, and interprets source, printing any errors
// to errOut in the format §7 specifies. It returns true if the program ran
// to completion with no error of any kind.
func (r *Runner) Run(source string, errOut io.Writer) bool {
	tokens, lexDiags := scanner.New(source).ScanTokens()
	if len(lexDiags) > 0 {
		printLexErrors(errOut, lexDiags)
		return false
	}

	stmts, parseDiags := parser.New(tokens).Parse()
	if len(parseDiags) > 0 {
		printSyntaxErrors(errOut, parseDiags)
		return false
	}

	locals, resolveDiags := resolver.New().Resolve(stmts)
	if len(resolveDiags) > 0 {
		d := resolveDiags[0]
		fmt.Fprintf(errOut, "Compiler error on line %d: %s\n", d.Span.Start.Line, d.Message)
		return false
	}

	r.interp.SetLocals(locals)
	if err := r.interp.Interpret(stmts); err != nil {
		printRuntimeError(errOut, err)
		return false
	}

	return true
}

// RunRepl behaves like Run, but when source parses to exactly one bare
// expression statement, it evaluates the expression once and echoes its
// value to the runner's output stream — the REPL convenience Crafting
// Interpreters' own reference implementation offers at the prompt.
func (r *Runner) RunRepl(source string, errOut io.Writer) bool {
	tokens, lexDiags := scanner.New(source).ScanTokens()
	if len(lexDiags) > 0 {
		printLexErrors(errOut, lexDiags)
		return false
	}

	stmts, parseDiags := parser.New(tokens).Parse()
	if len(parseDiags) > 0 {
		printSyntaxErrors(errOut, parseDiags)
		return false
	}

	locals, resolveDiags := resolver.New().Resolve(stmts)
	if len(resolveDiags) > 0 {
		d := resolveDiags[0]
		fmt.Fprintf(errOut, "Compiler error on line %d: %s\n", d.Span.Start.Line, d.Message)
		return false
	}

	r.interp.SetLocals(locals)

	if len(stmts) == 1 {
		if exprStmt, ok := stmts[0].(*ast.Expression); ok {
			value, err := r.interp.EvaluateExpr(exprStmt.Expr)
			if err != nil {
				printRuntimeError(errOut, err)
				return false
			}
			fmt.Fprintln(r.out, runtime.Stringify(value))
			return true
		}
	}

	if err := r.interp.Interpret(stmts); err != nil {
		printRuntimeError(errOut, err)
		return false
	}
	return true
}

// printLexErrors prints each lexical diagnostic's message verbatim — the
// scanner already formats the "on line N" wording per §7's exact table.
func printLexErrors(w io.Writer, diags []diag.Diagnostic) {
	fmt.Fprintln(w, "There were lexical errors:")
	for _, d := range diags {
		fmt.Fprintf(w, "  %s\n", d.Message)
	}
}

func printSyntaxErrors(w io.Writer, diags []diag.Diagnostic) {
	fmt.Fprintln(w, "There were syntax errors:")
	for _, d := range diags {
		fmt.Fprintf(w, "  Error on line %d: %s\n", d.Span.Start.Line, d.Message)
	}
}

func printRuntimeError(w io.Writer, err error) {
	rt, ok := err.(*runtime.RuntimeError)
	if !ok {
		fmt.Fprintf(w, "Runtime error: %s\n", err.Error())
		return
	}
	if rt.Lexeme != "" {
		fmt.Fprintf(w, "Runtime error executing %q on line %d: %s\n", rt.Lexeme, rt.Span.Start.Line, rt.Message)
		return
	}
	fmt.Fprintf(w, "Runtime error: %s\n", rt.Message)
}
