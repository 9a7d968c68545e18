package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVariableBasics(t *testing.T) {
	x := NewVariable("x")
	require.False(t, x.IsGround())
	require.Equal(t, NewSet("x"), x.FreeVariables())
	require.Equal(t, 1, x.Size())
	require.Equal(t, "x", x.String())
}

func TestReferenceTransparency(t *testing.T) {
	x := NewVariable("x")
	ref := NewReference(x)

	require.True(t, ref.Identical(x))
	require.True(t, x.Identical(ref))
	require.Equal(t, x.Hash(0), ref.Hash(0))
	require.Equal(t, x.Size(), ref.Size())
	require.Equal(t, x.String(), ref.String())
}

func TestSubstitute(t *testing.T) {
	x := NewVariable("x")
	y := NewVariable("y")
	app := NewFuncApp("f", x, y)

	sigma := Substitution{"x": NewVariable("z")}
	result := app.Substitute(sigma)

	got, ok := result.(*FuncApp)
	require.True(t, ok)
	require.True(t, got.Args[0].Identical(NewVariable("z")))
	require.True(t, got.Args[1].Identical(y))
}

func TestFuncAppIdenticalAndHash(t *testing.T) {
	a := NewFuncApp("f", NewVariable("x"), NewVariable("y"))
	b := NewFuncApp("f", NewVariable("x"), NewVariable("y"))
	c := NewFuncApp("f", NewVariable("y"), NewVariable("x"))

	require.True(t, a.Identical(b))
	require.Equal(t, a.Hash(7), b.Hash(7))
	require.False(t, a.Identical(c))
}

func TestFreeVariablesUnion(t *testing.T) {
	app := NewFuncApp("f", NewVariable("x"), NewVariable("y"))
	require.Equal(t, NewSet("x", "y"), app.FreeVariables())
}
