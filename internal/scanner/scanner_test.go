package scanner

import (
	"testing"

	"lox/internal/token"
)

func TestScanSimple(t *testing.T) {
	source := `var x = 1 + 2;`
	tokens, diags := New(source).ScanTokens()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expected := []token.Kind{
		token.VAR, token.IDENT, token.EQUAL,
		token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestScanKeywords(t *testing.T) {
	source := `and class else false fun for if nil or print return super this true var while`
	tokens, diags := New(source).ScanTokens()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expected := []token.Kind{
		token.AND, token.CLASS, token.ELSE, token.FALSE, token.FUN, token.FOR,
		token.IF, token.NIL, token.OR, token.PRINT, token.RETURN, token.SUPER,
		token.THIS, token.TRUE, token.VAR, token.WHILE, token.EOF,
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
}

func TestScanOperators(t *testing.T) {
	source := `= == != < <= > >= + - * /`
	tokens, diags := New(source).ScanTokens()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expected := []token.Kind{
		token.EQUAL, token.EQUAL_EQUAL, token.BANG_EQUAL,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EOF,
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
}

func TestScanString(t *testing.T) {
	source := `"hello" "line1
line2"`
	tokens, diags := New(source).ScanTokens()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	if tokens[0].Kind != token.STRING || tokens[0].Literal != "hello" {
		t.Errorf("expected STRING 'hello', got %s %v", tokens[0].Kind, tokens[0].Literal)
	}
	if tokens[1].Kind != token.STRING || tokens[1].Literal != "line1\nline2" {
		t.Errorf("expected multiline STRING, got %s %v", tokens[1].Kind, tokens[1].Literal)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, diags := New(`"unterminated`).ScanTokens()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestScanNumbers(t *testing.T) {
	source := `123 3.14 0 123.456`
	tokens, diags := New(source).ScanTokens()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expectedLiterals := []float64{123, 3.14, 0, 123.456}
	for i, exp := range expectedLiterals {
		if tokens[i].Kind != token.NUMBER {
			t.Fatalf("token[%d]: expected NUMBER, got %s", i, tokens[i].Kind)
		}
		if tokens[i].Literal.(float64) != exp {
			t.Errorf("token[%d]: expected %v, got %v", i, exp, tokens[i].Literal)
		}
	}
}

func TestScanTrailingDotIsSeparateToken(t *testing.T) {
	tokens, _ := New(`123.method`).ScanTokens()
	if tokens[0].Kind != token.NUMBER || tokens[0].Literal.(float64) != 123 {
		t.Fatalf("expected NUMBER 123, got %s %v", tokens[0].Kind, tokens[0].Literal)
	}
	if tokens[1].Kind != token.DOT {
		t.Fatalf("expected DOT, got %s", tokens[1].Kind)
	}
	if tokens[2].Kind != token.IDENT || tokens[2].Lexeme != "method" {
		t.Fatalf("expected IDENT 'method', got %s %q", tokens[2].Kind, tokens[2].Lexeme)
	}
}

func TestScanComment(t *testing.T) {
	source := "x // this is a comment\ny;"
	tokens, _ := New(source).ScanTokens()

	expected := []token.Kind{token.IDENT, token.IDENT, token.SEMICOLON, token.EOF}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
}

func TestScanPositions(t *testing.T) {
	source := "var x = 1;"
	tokens, _ := New(source).ScanTokens()

	if tokens[0].Span.Start.Line != 1 || tokens[0].Span.Start.Column != 1 {
		t.Errorf("'var' position: expected 1:1, got %d:%d", tokens[0].Span.Start.Line, tokens[0].Span.Start.Column)
	}
	if tokens[1].Span.Start.Line != 1 || tokens[1].Span.Start.Column != 5 {
		t.Errorf("'x' position: expected 1:5, got %d:%d", tokens[1].Span.Start.Line, tokens[1].Span.Start.Column)
	}
}

func TestScanIllegalCharacter(t *testing.T) {
	_, diags := New(`@`).ScanTokens()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}
