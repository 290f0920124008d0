// Package parser implements the syntax analysis for Lox.
// It uses Pratt parsing for expressions and recursive descent for
// statements/declarations.
package parser

import (
	"fmt"

	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/span"
	"lox/internal/token"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * /
	bpPrefix     = 70 // ! -
	bpCall       = 80 // () .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.OR:
		return bpOr
	case token.AND:
		return bpAnd
	case token.BANG_EQUAL, token.EQUAL_EQUAL:
		return bpEquality
	case token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH:
		return bpMultiply
	case token.LPAREN, token.DOT:
		return bpCall
	default:
		return bpNone
	}
}

const maxArgs = 255

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// Parse parses the entire token stream into a list of statements. Parse
// errors are collected and synchronization resumes at the next declaration;
// the returned slice may be incomplete when diagnostics are non-empty.
func (p *Parser) Parse() ([]ast.Stmt, []diag.Diagnostic) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind, msg string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error(tok.Span, msg)
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf("SYN001", s, "%s", msg))
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.previous().Span.End}
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary: past a
// consumed ';', or just before a keyword that starts a new declaration.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		switch p.peekKind() {
		case token.CLASS, token.FOR, token.FUN, token.IF, token.PRINT, token.RETURN, token.VAR, token.WHILE:
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); ok {
				p.synchronize()
				stmt = nil
				return
			}
			panic(r)
		}
	}()

	switch {
	case p.match(token.CLASS):
		return p.classDecl()
	case p.match(token.FUN):
		return p.function("function")
	case p.match(token.VAR):
		return p.varDecl()
	default:
		return p.statement()
	}
}

// parseError signals a recoverable syntax error, caught in declaration().
type parseError struct{}

func (p *Parser) fail(s span.Span, msg string) {
	p.error(s, msg)
	panic(parseError{})
}

func (p *Parser) classDecl() ast.Stmt {
	start := p.previous().Span.Start
	name, _ := p.expect(token.IDENT, "expected class name")

	var superclass *ast.Variable
	if p.match(token.LESS) {
		superName, ok := p.expect(token.IDENT, "expected superclass name")
		if ok {
			superclass = &ast.Variable{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: superName.Span}}, Name: superName}
		}
	}

	p.expect(token.LBRACE, "expected '{' before class body")

	var methods []*ast.Function
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		methods = append(methods, p.function("method"))
	}

	p.expect(token.RBRACE, "expected '}' after class body")

	return &ast.Class{
		StmtBase:   ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}},
		Name:       name,
		Superclass: superclass,
		Methods:    methods,
	}
}

func (p *Parser) function(kind string) *ast.Function {
	start := p.previous().Span.Start
	name, _ := p.expect(token.IDENT, fmt.Sprintf("expected %s name", kind))
	p.expect(token.LPAREN, fmt.Sprintf("expected '(' after %s name", kind))

	var params []token.Token
	if !p.check(token.RPAREN) {
		for {
			if len(params) >= maxArgs {
				p.error(p.peek().Span, fmt.Sprintf("can't have more than %d parameters", maxArgs))
			}
			param, _ := p.expect(token.IDENT, "expected parameter name")
			params = append(params, param)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "expected ')' after parameters")

	p.expect(token.LBRACE, fmt.Sprintf("expected '{' before %s body", kind))
	body := p.block()

	return &ast.Function{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}},
		Name:     name,
		Params:   params,
		Body:     body,
	}
}

func (p *Parser) varDecl() ast.Stmt {
	start := p.previous().Span.Start
	name, _ := p.expect(token.IDENT, "expected variable name")

	var initializer ast.Expr
	if p.match(token.EQUAL) {
		initializer = p.expression()
	}

	p.expect(token.SEMICOLON, "expected ';' after variable declaration")
	return &ast.VarDecl{
		StmtBase:    ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}},
		Name:        name,
		Initializer: initializer,
	}
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.PRINT):
		return p.printStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.LBRACE):
		start := p.previous().Span.Start
		stmts := p.block()
		return &ast.Block{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Stmts: stmts}
	default:
		return p.exprStatement()
	}
}

func (p *Parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RBRACE, "expected '}' after block")
	return stmts
}

func (p *Parser) ifStatement() ast.Stmt {
	start := p.previous().Span.Start
	p.expect(token.LPAREN, "expected '(' after 'if'")
	condition := p.expression()
	p.expect(token.RPAREN, "expected ')' after if condition")

	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}

	return &ast.If{
		StmtBase:  ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}},
		Condition: condition,
		Then:      thenBranch,
		Else:      elseBranch,
	}
}

func (p *Parser) printStatement() ast.Stmt {
	start := p.previous().Span.Start
	value := p.expression()
	p.expect(token.SEMICOLON, "expected ';' after value")
	return &ast.Print{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Expr: value}
}

func (p *Parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	start := keyword.Span.Start

	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.expect(token.SEMICOLON, "expected ';' after return value")
	return &ast.Return{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}},
		Keyword:  keyword,
		Value:    value,
	}
}

func (p *Parser) whileStatement() ast.Stmt {
	start := p.previous().Span.Start
	p.expect(token.LPAREN, "expected '(' after 'while'")
	condition := p.expression()
	p.expect(token.RPAREN, "expected ')' after condition")
	body := p.statement()

	return &ast.While{
		StmtBase:  ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}},
		Condition: condition,
		Body:      body,
	}
}

// forStatement desugars `for (init; cond; incr) body` into
// `{ init?; while (cond ?? true) { body; incr?; } }` at parse time.
func (p *Parser) forStatement() ast.Stmt {
	start := p.previous().Span.Start
	p.expect(token.LPAREN, "expected '(' after 'for'")

	var initializer ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		initializer = nil
	case p.check(token.VAR):
		p.advance()
		initializer = p.varDecl()
	default:
		initializer = p.exprStatement()
	}

	var condition ast.Expr
	if !p.check(token.SEMICOLON) {
		condition = p.expression()
	}
	p.expect(token.SEMICOLON, "expected ';' after loop condition")

	var increment ast.Expr
	if !p.check(token.RPAREN) {
		increment = p.expression()
	}
	p.expect(token.RPAREN, "expected ')' after for clauses")

	body := p.statement()

	if increment != nil {
		incStmt := &ast.Expression{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: increment.GetSpan()}}, Expr: increment}
		body = &ast.Block{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Stmts: []ast.Stmt{body, incStmt}}
	}

	if condition == nil {
		condition = &ast.Literal{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Value: true}
	}
	body = &ast.While{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Condition: condition, Body: body}

	if initializer != nil {
		body = &ast.Block{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Stmts: []ast.Stmt{initializer, body}}
	}

	return body
}

func (p *Parser) exprStatement() ast.Stmt {
	start := p.peek().Span.Start
	expr := p.expression()
	p.expect(token.SEMICOLON, "expected ';' after expression")
	return &ast.Expression{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Expr: expr}
}

// ============================================================
// Expressions (Pratt / precedence climbing)
// ============================================================

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment parses logic_or, then special-cases a trailing '=' by
// re-inspecting the already-parsed left operand rather than parsing an
// lvalue grammar production up front.
func (p *Parser) assignment() ast.Expr {
	expr := p.parseExpr(bpNone)

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: expr.GetSpan().Start, End: value.GetSpan().End}}},
				Name:     target.Name,
				Value:    value,
			}
		case *ast.Get:
			return &ast.Set{
				ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: expr.GetSpan().Start, End: value.GetSpan().End}}},
				Object:   target.Object,
				Name:     target.Name,
				Value:    value,
			}
		default:
			p.error(equals.Span, "invalid assignment target")
			return expr
		}
	}

	return expr
}

// parseExpr implements Pratt parsing: parse a prefix (nud), then repeatedly
// fold in infix/postfix operators (led) whose binding power exceeds minBP.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	for infixBP(p.peekKind()) > minBP {
		left = p.led(left)
	}
	return left
}

func (p *Parser) nud() ast.Expr {
	start := p.peek().Span.Start

	switch {
	case p.match(token.FALSE):
		return &ast.Literal{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.previous().Span}}, Value: false}
	case p.match(token.TRUE):
		return &ast.Literal{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.previous().Span}}, Value: true}
	case p.match(token.NIL):
		return &ast.Literal{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.previous().Span}}, Value: nil}
	case p.match(token.NUMBER, token.STRING):
		tok := p.previous()
		return &ast.Literal{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}}, Value: tok.Literal}
	case p.match(token.SUPER):
		keyword := p.previous()
		p.expect(token.DOT, "expected '.' after 'super'")
		method, _ := p.expect(token.IDENT, "expected superclass method name")
		return &ast.Super{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Keyword: keyword, Method: method}
	case p.match(token.THIS):
		return &ast.This{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.previous().Span}}, Keyword: p.previous()}
	case p.match(token.IDENT):
		tok := p.previous()
		return &ast.Variable{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: tok.Span}}, Name: tok}
	case p.match(token.LPAREN):
		inner := p.expression()
		p.expect(token.RPAREN, "expected ')' after expression")
		return &ast.Grouping{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Inner: inner}
	case p.match(token.BANG, token.MINUS):
		op := p.previous()
		right := p.parseExpr(bpPrefix)
		return &ast.Unary{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Op: op, Right: right}
	default:
		tok := p.peek()
		p.fail(tok.Span, fmt.Sprintf("expected expression, got '%s'", tok.Kind))
		return nil
	}
}

func (p *Parser) led(left ast.Expr) ast.Expr {
	start := left.GetSpan().Start

	switch {
	case p.match(token.AND):
		op := p.previous()
		right := p.parseExpr(bpAnd)
		return &ast.Logical{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Left: left, Op: op, Right: right}
	case p.match(token.OR):
		op := p.previous()
		right := p.parseExpr(bpOr)
		return &ast.Logical{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Left: left, Op: op, Right: right}
	case p.match(token.BANG_EQUAL, token.EQUAL_EQUAL):
		op := p.previous()
		right := p.parseExpr(bpEquality)
		return &ast.Binary{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Left: left, Op: op, Right: right}
	case p.match(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL):
		op := p.previous()
		right := p.parseExpr(bpComparison)
		return &ast.Binary{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Left: left, Op: op, Right: right}
	case p.match(token.PLUS, token.MINUS):
		op := p.previous()
		right := p.parseExpr(bpAdditive)
		return &ast.Binary{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Left: left, Op: op, Right: right}
	case p.match(token.STAR, token.SLASH):
		op := p.previous()
		right := p.parseExpr(bpMultiply)
		return &ast.Binary{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Left: left, Op: op, Right: right}
	case p.match(token.LPAREN):
		return p.finishCall(left, start)
	case p.match(token.DOT):
		name, _ := p.expect(token.IDENT, "expected property name after '.'")
		return &ast.Get{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Object: left, Name: name}
	default:
		// Unreachable: led is only called when infixBP(peek) > minBP.
		p.advance()
		return left
	}
}

func (p *Parser) finishCall(callee ast.Expr, start span.Position) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			if len(args) >= maxArgs {
				p.error(p.peek().Span, fmt.Sprintf("can't have more than %d arguments", maxArgs))
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren, _ := p.expect(token.RPAREN, "expected ')' after arguments")
	return &ast.Call{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: p.makeSpan(start)}}, Callee: callee, Paren: paren, Args: args}
}
