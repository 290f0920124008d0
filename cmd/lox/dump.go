package main

import (
	"encoding/json"
	"fmt"
	"os"

	"lox/internal/ast"
	"lox/internal/parser"
	"lox/internal/scanner"
)

// dumpAST writes the parsed program's AST as JSON to stderr, gated by the
// LOX_DUMP_AST environment variable. Debug-only; never touches stdout so it
// cannot corrupt a program's own output.
func dumpAST(source string) {
	tokens, lexDiags := scanner.New(source).ScanTokens()
	stmts, parseDiags := parser.New(tokens).Parse()

	nodes := make([]map[string]interface{}, len(stmts))
	for i, stmt := range stmts {
		nodes[i] = ast.NodeToMap(stmt)
	}

	output := map[string]interface{}{
		"ast":            nodes,
		"lexDiagCount":   len(lexDiags),
		"parseDiagCount": len(parseDiags),
	}

	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "error: AST dump failed: %v\n", err)
	}
}
