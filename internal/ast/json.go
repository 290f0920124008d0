package ast

import (
	"lox/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
// Used only by the LOX_DUMP_AST debug path in cmd/lox.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *Binary:
		return m("Binary", n.Span, "op", n.Op.Lexeme, "left", NodeToMap(n.Left), "right", NodeToMap(n.Right))
	case *Logical:
		return m("Logical", n.Span, "op", n.Op.Lexeme, "left", NodeToMap(n.Left), "right", NodeToMap(n.Right))
	case *Unary:
		return m("Unary", n.Span, "op", n.Op.Lexeme, "right", NodeToMap(n.Right))
	case *Grouping:
		return m("Grouping", n.Span, "inner", NodeToMap(n.Inner))
	case *Literal:
		return m("Literal", n.Span, "value", n.Value)
	case *Variable:
		return m("Variable", n.Span, "name", n.Name.Lexeme)
	case *Assign:
		return m("Assign", n.Span, "name", n.Name.Lexeme, "value", NodeToMap(n.Value))
	case *Call:
		return m("Call", n.Span, "callee", NodeToMap(n.Callee), "args", exprSlice(n.Args))
	case *Get:
		return m("Get", n.Span, "object", NodeToMap(n.Object), "name", n.Name.Lexeme)
	case *Set:
		return m("Set", n.Span, "object", NodeToMap(n.Object), "name", n.Name.Lexeme, "value", NodeToMap(n.Value))
	case *This:
		return m("This", n.Span)
	case *Super:
		return m("Super", n.Span, "method", n.Method.Lexeme)

	// ---- Statements ----
	case *Expression:
		return m("Expression", n.Span, "expr", NodeToMap(n.Expr))
	case *Print:
		return m("Print", n.Span, "expr", NodeToMap(n.Expr))
	case *VarDecl:
		result := m("VarDecl", n.Span, "name", n.Name.Lexeme)
		if n.Initializer != nil {
			result["initializer"] = NodeToMap(n.Initializer)
		}
		return result
	case *Block:
		return m("Block", n.Span, "stmts", stmtSlice(n.Stmts))
	case *If:
		result := m("If", n.Span, "condition", NodeToMap(n.Condition), "then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *While:
		return m("While", n.Span, "condition", NodeToMap(n.Condition), "body", NodeToMap(n.Body))
	case *Function:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Lexeme
		}
		return m("Function", n.Span, "name", n.Name.Lexeme, "params", params, "body", stmtSlice(n.Body))
	case *Return:
		result := m("Return", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *Class:
		result := m("Class", n.Span, "name", n.Name.Lexeme)
		if n.Superclass != nil {
			result["superclass"] = NodeToMap(n.Superclass)
		}
		methods := make([]interface{}, len(n.Methods))
		for i, md := range n.Methods {
			methods[i] = NodeToMap(md)
		}
		result["methods"] = methods
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}
