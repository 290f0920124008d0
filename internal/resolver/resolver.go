// Package resolver performs static analysis over the parsed AST: it
// annotates every local variable reference with its lexical scope distance
// and enforces the language's static rules (no self-reference in an
// initializer, return-context checks, this/super context checks).
package resolver

import (
	"lox/internal/ast"
	"lox/internal/diag"
)

type functionType int

const (
	fnNone functionType = iota
	fnFunction
	fnInitializer
	fnMethod
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Resolver walks the AST once, producing a Locals map consumed by the
// interpreter.
type Resolver struct {
	scopes []map[string]bool

	currentFunction functionType
	currentClass    classType

	locals map[ast.Expr]int
	diags  []diag.Diagnostic
}

// New creates a Resolver ready to resolve a top-level program.
func New() *Resolver {
	return &Resolver{
		locals: make(map[ast.Expr]int),
	}
}

// Resolve walks the given statements and returns the locals map (keyed by
// Go pointer identity of each resolved expression) plus any diagnostics.
// Resolution does not stop at the first error: every diagnostic found is
// returned.
func (r *Resolver) Resolve(stmts []ast.Stmt) (map[ast.Expr]int, []diag.Diagnostic) {
	r.resolveStmts(stmts)
	return r.locals, r.diags
}

// ---- scope stack ----

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name string, errSpan ast.Node) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name]; ok {
		r.fail(errSpan, "Already a variable with this name in this scope.")
	}
	scope[name] = false
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *Resolver) resolveLocal(expr ast.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any scope: treated as global, no annotation.
}

func (r *Resolver) fail(n ast.Node, msg string) {
	r.diags = append(r.diags, diag.Errorf("RES001", n.GetSpan(), "%s", msg))
}

// ---- statements ----

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	case *ast.VarDecl:
		r.declare(s.Name.Lexeme, s)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name.Lexeme)
	case *ast.Function:
		r.declare(s.Name.Lexeme, s)
		r.define(s.Name.Lexeme)
		r.resolveFunction(s, fnFunction)
	case *ast.Class:
		r.resolveClass(s)
	case *ast.Expression:
		r.resolveExpr(s.Expr)
	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.Print:
		r.resolveExpr(s.Expr)
	case *ast.Return:
		if r.currentFunction == fnNone {
			r.fail(s, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == fnInitializer {
				r.fail(s, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	case *ast.While:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveFunction(fn *ast.Function, typ functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = typ

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param.Lexeme, fn)
		r.define(param.Lexeme)
	}
	r.resolveStmts(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveClass(class *ast.Class) {
	enclosingClass := r.currentClass
	r.currentClass = classClass

	r.declare(class.Name.Lexeme, class)
	r.define(class.Name.Lexeme)

	if class.Superclass != nil {
		if class.Superclass.Name.Lexeme == class.Name.Lexeme {
			r.fail(class.Superclass, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpr(class.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range class.Methods {
		declType := fnMethod
		if method.Name.Lexeme == "init" {
			declType = fnInitializer
		}
		r.resolveFunction(method, declType)
	}

	r.endScope()

	if class.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

// ---- expressions ----

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.fail(e, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name.Lexeme)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.Grouping:
		r.resolveExpr(e.Inner)
	case *ast.Literal:
		// nothing to resolve
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.This:
		if r.currentClass == classNone {
			r.fail(e, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, "this")
	case *ast.Super:
		if r.currentClass == classNone {
			r.fail(e, "Can't use 'super' outside of a class.")
			return
		}
		if r.currentClass != classSubclass {
			r.fail(e, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(e, "super")
	default:
		panic("resolver: unhandled expression type")
	}
}
