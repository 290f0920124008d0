package runner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunArithmetic(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run(`print -123 * (35.67 + 10);`, &errs)
	require.True(t, ok)
	require.Equal(t, "-5617.41\n", out.String())
	require.Empty(t, errs.String())
}

func TestRunIntegerDisplayStrip(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run(`print 4 + 10;`, &errs)
	require.True(t, ok)
	require.Equal(t, "14\n", out.String())
}

func TestRunScopingAndShadowing(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run(`var a=1; { var a=2; print a; } print a;`, &errs)
	require.True(t, ok)
	require.Equal(t, "2\n1\n", out.String())
}

func TestRunClosureOverReboundName(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run(`var a="global"; { fun showA(){ print a; } showA(); var a="block"; showA(); }`, &errs)
	require.True(t, ok)
	require.Equal(t, "global\nglobal\n", out.String())
}

func TestRunSuperDispatchThroughInheritanceChain(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run(`
class A{method(){print "A method";}}
class B<A{method(){print "B method";} test(){super.method();}}
class C<B{}
C().test();
`, &errs)
	require.True(t, ok)
	require.Equal(t, "A method\n", out.String())
}

func TestRunStaticErrorDetection(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run(`{ var a = a; }`, &errs)
	require.False(t, ok)
	require.Contains(t, errs.String(), "Can't read local variable in its own initializer")
	require.Contains(t, errs.String(), "Compiler error on line")
}

func TestRunRuntimeTypeError(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run(`4 + "foo";`, &errs)
	require.False(t, ok)
	require.Contains(t, errs.String(), "Operands must be two numbers or two strings")
}

func TestRunLexicalErrorFormat(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run("var a = 1;\n@\n", &errs)
	require.False(t, ok)
	require.Contains(t, errs.String(), "There were lexical errors:")
	require.Contains(t, errs.String(), `Unexpected character "@" on line 2`)
}

func TestRunSyntaxErrorFormat(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.Run(`var = 1;`, &errs)
	require.False(t, ok)
	require.Contains(t, errs.String(), "There were syntax errors:")
	require.Contains(t, errs.String(), "Error on line 1:")
}

func TestRunGlobalStatePersistsAcrossCalls(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	require.True(t, r.Run(`var counter = 0;`, &errs))
	require.True(t, r.Run(`counter = counter + 1; print counter;`, &errs))
	require.True(t, r.Run(`counter = counter + 1; print counter;`, &errs))
	require.Equal(t, "1\n2\n", out.String())
}

func TestRunReplEchoesBareExpression(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.RunRepl(`1 + 2;`, &errs)
	require.True(t, ok)
	require.Equal(t, "3\n", out.String())
}

func TestRunReplDoesNotEchoStatements(t *testing.T) {
	var out, errs bytes.Buffer
	r := New(&out)
	ok := r.RunRepl(`var x = 5;`, &errs)
	require.True(t, ok)
	require.Empty(t, out.String())
}
