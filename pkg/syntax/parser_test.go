package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/seqprove/pkg/formula"
)

func TestParseBareAtom(t *testing.T) {
	f, err := ParseFormula("a")
	require.NoError(t, err)
	require.True(t, f.Equal(formula.Atom("a")))
}

func TestParseAtomWithDigitsAndUnderscore(t *testing.T) {
	f, err := ParseFormula("x_1")
	require.NoError(t, err)
	require.True(t, f.Equal(formula.Atom("x_1")))
}

func TestParseUnaryNot(t *testing.T) {
	f, err := ParseFormula("Not(a)")
	require.NoError(t, err)
	require.True(t, f.Equal(formula.Not(formula.Atom("a"))))
}

func TestParseBinaryImpl(t *testing.T) {
	f, err := ParseFormula("Impl(a,b)")
	require.NoError(t, err)
	require.True(t, f.Equal(formula.Impl(formula.Atom("a"), formula.Atom("b"))))
}

func TestParseNestedFormula(t *testing.T) {
	f, err := ParseFormula("Impl(a, And(b, Not(c)))")
	require.NoError(t, err)
	want := formula.Impl(formula.Atom("a"), formula.And(formula.Atom("b"), formula.Not(formula.Atom("c"))))
	require.True(t, f.Equal(want))
}

func TestParseVariadicAndWithManyChildren(t *testing.T) {
	f, err := ParseFormula("And(a,b,c)")
	require.NoError(t, err)
	want := formula.And(formula.Atom("a"), formula.Atom("b"), formula.Atom("c"))
	require.True(t, f.Equal(want))
}

func TestParseNullaryTrueAndFalse(t *testing.T) {
	tf, err := ParseFormula("True")
	require.NoError(t, err)
	require.True(t, tf.Equal(formula.TrueF()))

	tf2, err := ParseFormula("True()")
	require.NoError(t, err)
	require.True(t, tf2.Equal(formula.TrueF()))

	ff, err := ParseFormula("False")
	require.NoError(t, err)
	require.True(t, ff.Equal(formula.FalseF()))
}

func TestParseRejectsUnknownConnectiveCall(t *testing.T) {
	_, err := ParseFormula("Foo(a,b)")
	require.Error(t, err)
}

func TestParseRejectsWrongArity(t *testing.T) {
	_, err := ParseFormula("Not(a,b)")
	require.Error(t, err)

	_, err = ParseFormula("Impl(a)")
	require.Error(t, err)

	_, err = ParseFormula("And()")
	require.Error(t, err)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := ParseFormula("a b")
	require.Error(t, err)
}

func TestParseRejectsUnterminatedArgs(t *testing.T) {
	_, err := ParseFormula("Impl(a,b")
	require.Error(t, err)
}

func TestParseListEmptyStringYieldsEmptySlice(t *testing.T) {
	fs, err := ParseList("   ")
	require.NoError(t, err)
	require.Empty(t, fs)
}

func TestParseListSplitsOnTopLevelCommas(t *testing.T) {
	fs, err := ParseList("a, Impl(b,c), Not(d)")
	require.NoError(t, err)
	require.Len(t, fs, 3)
	require.True(t, fs[0].Equal(formula.Atom("a")))
	require.True(t, fs[1].Equal(formula.Impl(formula.Atom("b"), formula.Atom("c"))))
	require.True(t, fs[2].Equal(formula.Not(formula.Atom("d"))))
}
