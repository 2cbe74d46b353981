package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pusl-lang/pusl/compiler"
	"github.com/pusl-lang/pusl/lexer"
	"github.com/pusl-lang/pusl/parser"
)

// compile mirrors compiler_test.go's mustLinearize, kept local since vm
// cannot import a _test.go helper from another package.
func compile(t *testing.T, src, path string) *compiler.ByteCodeFile {
	t.Helper()
	units, err := lexer.Lex(src)
	require.NoError(t, err)
	pf, err := parser.Parse(units)
	require.NoError(t, err)
	bcf, err := compiler.Linearize(pf, path)
	require.NoError(t, err)
	return bcf
}

// runSource compiles and executes src with no importable dependencies,
// returning everything written to stdout.
func runSource(t *testing.T, src string) string {
	t.Helper()
	bcf := compile(t, src, "<test>")
	var out bytes.Buffer
	state, err := Startup("<test>", bcf, ExecContext{
		Resolve: func(string) (*compiler.ByteCodeFile, bool) { return nil, false },
		Stream:  &out,
	})
	require.NoError(t, err)
	_, err = Execute(state)
	require.NoError(t, err)
	return out.String()
}

// Scenario 1 (spec.md §8): recursive fibonacci via a self-referencing
// named let-binding.
func TestRunFibonacci(t *testing.T) {
	src := "let fib = fn(n): if n < 2: return n\n  return fib(n-1) + fib(n-2)\nprint(fib(10))\n"
	require.Equal(t, "55", runSource(t, src))
}

// Scenario 2: list literal, method-dispatch push, index read.
func TestRunListAndMethodDispatch(t *testing.T) {
	src := "let xs = [1, 2, 3]\nxs.push(4)\nprint(xs[3])\n"
	require.Equal(t, "4", runSource(t, src))
}

// Scenario 3: prototype field lookup through Object(parent).
func TestRunPrototypeFieldLookup(t *testing.T) {
	src := "let A = Object()\nA.x <- 7\nlet B = Object(A)\nprint(B.x)\n"
	require.Equal(t, "7", runSource(t, src))
}

// Scenario 4: elvis / null-coalescing operator.
func TestRunElvisNullCoalescing(t *testing.T) {
	src := "let y = null\nprint(y ?: 42)\n"
	require.Equal(t, "42", runSource(t, src))
}

// Scenario 5: try/yoink catches a yeeted value.
func TestRunTryYoink(t *testing.T) {
	src := "try:\n  yeet \"boom\"\nyoink true as e:\n  print(e)\n"
	require.Equal(t, "boom", runSource(t, src))
}

// Scenario 6: import resolution and alias, exercising Startup's
// dependency-runs-before-main ordering.
func TestRunImportAndAlias(t *testing.T) {
	dep := compile(t, "let greet = fn(): print(\"hi\")\n", "m.pusl")
	main := compile(t, "import m as m2\nm2.greet()\n", "<test>")

	var out bytes.Buffer
	state, err := Startup("<test>", main, ExecContext{
		Resolve: func(path string) (*compiler.ByteCodeFile, bool) {
			if path == "m" {
				return dep, true
			}
			return nil, false
		},
		Stream: &out,
	})
	require.NoError(t, err)
	_, err = Execute(state)
	require.NoError(t, err)
	require.Equal(t, "hi", out.String())
}

// A Yeet that escapes every enclosing try/yoink region reaches the top
// level as a runtime error rather than a Go panic.
func TestRunUncaughtYeetSurfacesAsError(t *testing.T) {
	src := "yeet \"boom\"\n"
	bcf := compile(t, src, "<test>")
	var out bytes.Buffer
	state, err := Startup("<test>", bcf, ExecContext{
		Resolve: func(string) (*compiler.ByteCodeFile, bool) { return nil, false },
		Stream:  &out,
	})
	require.NoError(t, err)
	_, err = Execute(state)
	require.Error(t, err)
}

// Field assignment without `let` must fail on an undeclared field instead
// of silently creating one, per spec.md §8's write-traversal property.
func TestRunFieldAssignWithoutLetRequiresExistingField(t *testing.T) {
	src := "let A = Object()\nA.x = 7\n"
	bcf := compile(t, src, "<test>")
	var out bytes.Buffer
	state, err := Startup("<test>", bcf, ExecContext{
		Resolve: func(string) (*compiler.ByteCodeFile, bool) { return nil, false },
		Stream:  &out,
	})
	require.NoError(t, err)
	_, err = Execute(state)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.Equal(t, FieldMissing, rerr.Kind)
}
