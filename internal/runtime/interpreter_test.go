package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"lox/internal/parser"
	"lox/internal/resolver"
	"lox/internal/scanner"
)

func runSource(t *testing.T, source string) (string, error) {
	t.Helper()
	tokens, scanDiags := scanner.New(source).ScanTokens()
	require.Empty(t, scanDiags)
	stmts, parseDiags := parser.New(tokens).Parse()
	require.Empty(t, parseDiags)
	locals, resolveDiags := resolver.New().Resolve(stmts)
	require.Empty(t, resolveDiags)

	var buf bytes.Buffer
	interp := NewInterpreter(&buf, locals)
	err := interp.Interpret(stmts)
	return buf.String(), err
}

func TestInterpretArithmetic(t *testing.T) {
	out, err := runSource(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestInterpretIntegerDisplayStripsTrailingZero(t *testing.T) {
	out, err := runSource(t, `print 6 / 2;`)
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestInterpretStringConcatenation(t *testing.T) {
	out, err := runSource(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	require.Equal(t, "foobar\n", out)
}

func TestInterpretScopingAndShadowing(t *testing.T) {
	out, err := runSource(t, `
var a = "outer";
{
  var a = "inner";
  print a;
}
print a;
`)
	require.NoError(t, err)
	require.Equal(t, "inner\nouter\n", out)
}

func TestInterpretClosureCapturesBindingAtDeclaration(t *testing.T) {
	out, err := runSource(t, `
var a = "before";
fun showA() { print a; }
showA();
a = "after";
showA();
`)
	require.NoError(t, err)
	require.Equal(t, "before\nafter\n", out)
}

func TestInterpretClosureOverRebindAcrossCalls(t *testing.T) {
	out, err := runSource(t, `
fun makeCounter() {
  var count = 0;
  fun counter() {
    count = count + 1;
    print count;
  }
  return counter;
}
var c = makeCounter();
c();
c();
c();
`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestInterpretSuperDispatchThroughInheritanceChain(t *testing.T) {
	out, err := runSource(t, `
class Doughnut {
  cook() {
    print "Fry until golden brown.";
  }
}
class BostonCream < Doughnut {
  cook() {
    super.cook();
    print "Pipe full of custard and coat with chocolate.";
  }
}
BostonCream().cook();
`)
	require.NoError(t, err)
	require.Equal(t, "Fry until golden brown.\nPipe full of custard and coat with chocolate.\n", out)
}

func TestInterpretClassFieldsAndMethods(t *testing.T) {
	out, err := runSource(t, `
class Point {
  init(x, y) {
    this.x = x;
    this.y = y;
  }
  sum() {
    return this.x + this.y;
  }
}
var p = Point(3, 4);
print p.sum();
`)
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestInterpretRuntimeTypeError(t *testing.T) {
	_, err := runSource(t, `print "str" - 1;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Operands must be numbers.")
}

func TestInterpretCallNonCallable(t *testing.T) {
	_, err := runSource(t, `var x = 1; x();`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can only call functions and classes.")
}

func TestInterpretArityMismatch(t *testing.T) {
	_, err := runSource(t, `
fun add(a, b) { return a + b; }
add(1);
`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected 2 arguments but got 1.")
}

func TestInterpretLogicalShortCircuitReturnsOperand(t *testing.T) {
	out, err := runSource(t, `print "hi" or 2;`)
	require.NoError(t, err)
	require.Equal(t, "hi\n", out)
}

func TestInterpretWhileLoop(t *testing.T) {
	out, err := runSource(t, `
var i = 0;
while (i < 3) {
  print i;
  i = i + 1;
}
`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestInterpretForLoopDesugaring(t *testing.T) {
	out, err := runSource(t, `
for (var i = 0; i < 3; i = i + 1) {
  print i;
}
`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, []string{"0", "1", "2"}, lines)
}

func TestInterpretUndefinedVariable(t *testing.T) {
	_, err := runSource(t, `print nope;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable 'nope'.")
}

func TestInterpretClockReturnsNumber(t *testing.T) {
	out, err := runSource(t, `print clock() > 0;`)
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}
