package runtime

import (
	"fmt"
	"io"

	"lox/internal/ast"
	"lox/internal/span"
	"lox/internal/token"
)

// ============================================================
// Control flow
// ============================================================

// execSignal represents a control-flow signal from statement execution.
// Lox has no break/continue, so the only non-local exit is return.
type execSignal int

const (
	sigNone execSignal = iota
	sigReturn
)

// execResult carries a control-flow signal and an optional value (for return).
type execResult struct {
	signal execSignal
	value  Value
}

var resultNone = execResult{signal: sigNone}

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation, unwound to the
// top-level runner.
type RuntimeError struct {
	Message string
	Lexeme  string // offending token's lexeme, when available; empty otherwise
	Span    span.Span
}

func (e *RuntimeError) Error() string { return e.Message }

func runtimeErr(s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Span: s}
}

// runtimeErrTok is like runtimeErr but also records the offending token's
// lexeme, for the runner's "executing "LEXEME"" error rendering.
func runtimeErrTok(tok token.Token, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Lexeme: tok.Lexeme, Span: tok.Span}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it, driving the Environment chain
// and hosting function/class/instance runtime objects.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[ast.Expr]int
	output  io.Writer
}

// NewInterpreter creates an interpreter with clock() registered globally.
// locals is the resolver's scope-distance annotation map.
func NewInterpreter(output io.Writer, locals map[ast.Expr]int) *Interpreter {
	globals := NewEnvironment(nil)
	RegisterBuiltins(globals)
	if locals == nil {
		locals = make(map[ast.Expr]int)
	}
	return &Interpreter{
		globals: globals,
		env:     globals,
		locals:  locals,
		output:  output,
	}
}

// Globals returns the global environment (the REPL shares it across lines).
func (i *Interpreter) Globals() *Environment { return i.globals }

// SetLocals adds the resolver's scope-distance annotations for the program
// about to be interpreted. The REPL calls this before each line, since every
// line is resolved independently but shares one interpreter; annotations
// from earlier lines are kept, because functions they declared may still be
// called.
func (i *Interpreter) SetLocals(locals map[ast.Expr]int) {
	for expr, distance := range locals {
		i.locals[expr] = distance
	}
}

// Env returns the environment currently in effect.
func (i *Interpreter) Env() *Environment { return i.env }

// EvaluateExpr evaluates a single expression in the current environment.
// Used by the REPL to echo the value of a bare expression statement.
func (i *Interpreter) EvaluateExpr(expr ast.Expr) (Value, error) {
	return i.evaluate(expr)
}

// Interpret runs a full program (a list of top-level statements).
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if _, err := i.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execute(stmt ast.Stmt) (execResult, error) {
	switch s := stmt.(type) {
	case *ast.Expression:
		_, err := i.evaluate(s.Expr)
		return resultNone, err
	case *ast.Print:
		val, err := i.evaluate(s.Expr)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.output, Stringify(val))
		return resultNone, nil
	case *ast.VarDecl:
		return resultNone, i.executeVarDecl(s)
	case *ast.Block:
		blockEnv := NewEnvironment(i.env)
		return i.executeBlock(s.Stmts, blockEnv)
	case *ast.If:
		return i.executeIf(s)
	case *ast.While:
		return i.executeWhile(s)
	case *ast.Function:
		fn := &Function{decl: s, closure: i.env, isInitializer: false}
		i.env.Define(s.Name.Lexeme, fn)
		return resultNone, nil
	case *ast.Return:
		var value Value = NilVal{}
		if s.Value != nil {
			v, err := i.evaluate(s.Value)
			if err != nil {
				return resultNone, err
			}
			value = v
		}
		return execResult{signal: sigReturn, value: value}, nil
	case *ast.Class:
		return resultNone, i.executeClassDecl(s)
	default:
		return resultNone, runtimeErr(stmt.GetSpan(), "unexpected statement type: %T", stmt)
	}
}

func (i *Interpreter) executeVarDecl(s *ast.VarDecl) error {
	var value Value = NilVal{}
	if s.Initializer != nil {
		v, err := i.evaluate(s.Initializer)
		if err != nil {
			return err
		}
		value = v
	}
	i.env.Define(s.Name.Lexeme, value)
	return nil
}

func (i *Interpreter) executeIf(s *ast.If) (execResult, error) {
	cond, err := i.evaluate(s.Condition)
	if err != nil {
		return resultNone, err
	}
	if IsTruthy(cond) {
		return i.execute(s.Then)
	}
	if s.Else != nil {
		return i.execute(s.Else)
	}
	return resultNone, nil
}

func (i *Interpreter) executeWhile(s *ast.While) (execResult, error) {
	for {
		cond, err := i.evaluate(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			return resultNone, nil
		}
		result, err := i.execute(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.signal == sigReturn {
			return result, nil
		}
	}
}

// executeBlock runs stmts in blockEnv, temporarily swapping it in as the
// current environment and restoring the previous one on return.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, blockEnv *Environment) (execResult, error) {
	previous := i.env
	i.env = blockEnv
	defer func() { i.env = previous }()

	for _, stmt := range stmts {
		result, err := i.execute(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.signal == sigReturn {
			return result, nil
		}
	}
	return resultNone, nil
}

func (i *Interpreter) executeClassDecl(s *ast.Class) error {
	var superclass *Class
	if s.Superclass != nil {
		superVal, err := i.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		sc, ok := superVal.(*Class)
		if !ok {
			return runtimeErr(s.Superclass.GetSpan(), "Superclass must be a class.")
		}
		superclass = sc
	}

	i.env.Define(s.Name.Lexeme, NilVal{})

	classEnv := i.env
	if superclass != nil {
		classEnv = NewEnvironment(i.env)
		classEnv.Define("super", superclass)
	}

	methods := make(map[string]*Function)
	for _, method := range s.Methods {
		fn := &Function{decl: method, closure: classEnv, isInitializer: method.Name.Lexeme == "init"}
		methods[method.Name.Lexeme] = fn
	}

	class := &Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}

	if err := i.env.Assign(s.Name.Lexeme, class); err != nil {
		return err
	}
	return nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e.Value), nil
	case *ast.Grouping:
		return i.evaluate(e.Inner)
	case *ast.Unary:
		return i.evalUnary(e)
	case *ast.Binary:
		return i.evalBinary(e)
	case *ast.Logical:
		return i.evalLogical(e)
	case *ast.Variable:
		return i.lookUpVariable(e.Name, e)
	case *ast.Assign:
		return i.evalAssign(e)
	case *ast.Call:
		return i.evalCall(e)
	case *ast.Get:
		return i.evalGet(e)
	case *ast.Set:
		return i.evalSet(e)
	case *ast.This:
		return i.lookUpVariable(e.Keyword, e)
	case *ast.Super:
		return i.evalSuper(e)
	default:
		return nil, runtimeErr(expr.GetSpan(), "unexpected expression type: %T", expr)
	}
}

func literalValue(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return NilVal{}
	case bool:
		return BoolVal(val)
	case float64:
		return NumberVal(val)
	case string:
		return StringVal(val)
	default:
		return NilVal{}
	}
}

// lookUpVariable resolves a name using the resolver's distance annotation
// when present; otherwise it falls back to a dynamic global lookup.
func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) (Value, error) {
	if distance, ok := i.locals[expr]; ok {
		val, err := i.env.GetAt(distance, name.Lexeme)
		if err != nil {
			return nil, runtimeErrTok(name, "%s", err.Error())
		}
		return val, nil
	}
	val, err := i.globals.Get(name.Lexeme)
	if err != nil {
		return nil, runtimeErrTok(name, "%s", err.Error())
	}
	return val, nil
}

func (i *Interpreter) evalUnary(e *ast.Unary) (Value, error) {
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op.Lexeme {
	case "!":
		return BoolVal(!IsTruthy(right)), nil
	case "-":
		num, ok := right.(NumberVal)
		if !ok {
			return nil, runtimeErrTok(e.Op, "Operand must be a number.")
		}
		return -num, nil
	default:
		return nil, runtimeErrTok(e.Op, "unknown unary operator %q", e.Op.Lexeme)
	}
}

func (i *Interpreter) evalBinary(e *ast.Binary) (Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Lexeme {
	case "+":
		if ln, ok := left.(NumberVal); ok {
			if rn, ok := right.(NumberVal); ok {
				return ln + rn, nil
			}
		}
		if ls, ok := left.(StringVal); ok {
			if rs, ok := right.(StringVal); ok {
				return ls + rs, nil
			}
		}
		return nil, runtimeErrTok(e.Op, "Operands must be two numbers or two strings.")
	case "-":
		ln, rn, err := numberOperands(left, right, e.Op.Span)
		if err != nil {
			return nil, err
		}
		return ln - rn, nil
	case "*":
		ln, rn, err := numberOperands(left, right, e.Op.Span)
		if err != nil {
			return nil, err
		}
		return ln * rn, nil
	case "/":
		ln, rn, err := numberOperands(left, right, e.Op.Span)
		if err != nil {
			return nil, err
		}
		return ln / rn, nil
	case ">":
		ln, rn, err := numberOperands(left, right, e.Op.Span)
		if err != nil {
			return nil, err
		}
		return BoolVal(ln > rn), nil
	case ">=":
		ln, rn, err := numberOperands(left, right, e.Op.Span)
		if err != nil {
			return nil, err
		}
		return BoolVal(ln >= rn), nil
	case "<":
		ln, rn, err := numberOperands(left, right, e.Op.Span)
		if err != nil {
			return nil, err
		}
		return BoolVal(ln < rn), nil
	case "<=":
		ln, rn, err := numberOperands(left, right, e.Op.Span)
		if err != nil {
			return nil, err
		}
		return BoolVal(ln <= rn), nil
	case "==":
		return BoolVal(ValuesEqual(left, right)), nil
	case "!=":
		return BoolVal(!ValuesEqual(left, right)), nil
	default:
		return nil, runtimeErrTok(e.Op, "unknown binary operator %q", e.Op.Lexeme)
	}
}

func numberOperands(left, right Value, s span.Span) (NumberVal, NumberVal, error) {
	ln, ok1 := left.(NumberVal)
	rn, ok2 := right.(NumberVal)
	if !ok1 || !ok2 {
		return 0, 0, runtimeErr(s, "Operands must be numbers.")
	}
	return ln, rn, nil
}

// evalLogical short-circuits "and"/"or" and returns the determining
// operand's value, not a coerced boolean.
func (i *Interpreter) evalLogical(e *ast.Logical) (Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Lexeme == "or" {
		if IsTruthy(left) {
			return left, nil
		}
	} else {
		if !IsTruthy(left) {
			return left, nil
		}
	}
	return i.evaluate(e.Right)
}

func (i *Interpreter) evalAssign(e *ast.Assign) (Value, error) {
	value, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	if distance, ok := i.locals[e]; ok {
		if err := i.env.AssignAt(distance, e.Name.Lexeme, value); err != nil {
			return nil, runtimeErrTok(e.Name, "%s", err.Error())
		}
		return value, nil
	}
	if err := i.globals.Assign(e.Name.Lexeme, value); err != nil {
		return nil, runtimeErrTok(e.Name, "%s", err.Error())
	}
	return value, nil
}

func (i *Interpreter) evalCall(e *ast.Call) (Value, error) {
	callee, err := i.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErrTok(e.Paren, "Can only call functions and classes.")
	}

	if len(args) != callable.Arity() {
		return nil, runtimeErrTok(e.Paren, "Expected %d arguments but got %d.", callable.Arity(), len(args))
	}

	return callable.Call(i, args)
}

func (i *Interpreter) evalGet(e *ast.Get) (Value, error) {
	obj, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, runtimeErrTok(e.Name, "Only instances have properties.")
	}
	val, err := instance.Get(e.Name.Lexeme)
	if err != nil {
		return nil, runtimeErrTok(e.Name, "%s", err.Error())
	}
	return val, nil
}

func (i *Interpreter) evalSet(e *ast.Set) (Value, error) {
	obj, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, runtimeErrTok(e.Name, "Only instances have fields.")
	}
	value, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	instance.Set(e.Name.Lexeme, value)
	return value, nil
}

func (i *Interpreter) evalSuper(e *ast.Super) (Value, error) {
	distance := i.locals[e]
	superVal, err := i.env.GetAt(distance, "super")
	if err != nil {
		return nil, runtimeErrTok(e.Keyword, "%s", err.Error())
	}
	superclass := superVal.(*Class)

	thisVal, err := i.env.GetAt(distance-1, "this")
	if err != nil {
		return nil, runtimeErrTok(e.Keyword, "%s", err.Error())
	}
	instance := thisVal.(*Instance)

	method, ok := superclass.FindMethod(e.Method.Lexeme)
	if !ok {
		return nil, runtimeErrTok(e.Method, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return method.Bind(instance), nil
}

// Stringify renders a Value per the print-statement formatting rules.
func Stringify(v Value) string {
	return v.String()
}
