package equality

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/seqprove/pkg/formula"
)

func TestEqualPointerIdentity(t *testing.T) {
	c := New(nil)
	a := formula.Atom("p")
	ok, err := c.Equal(a, a)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEqualStructural(t *testing.T) {
	c := New(nil)
	a := formula.And(formula.Atom("p"), formula.Atom("q"))
	b := formula.And(formula.Atom("q"), formula.Atom("p"))
	ok, err := c.Equal(a, b)
	require.NoError(t, err)
	require.True(t, ok, "AC commutativity must be recognized by the oracle")
}

func TestEqualFalseForDifferentFormulae(t *testing.T) {
	c := New(nil)
	a := formula.Atom("p")
	b := formula.Atom("q")
	ok, err := c.Equal(a, b)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEqualJoinsRepresentatives(t *testing.T) {
	c := New(nil)
	a := formula.And(formula.Atom("p"), formula.Atom("q"))
	b := formula.And(formula.Atom("q"), formula.Atom("p"))

	ok, err := c.Equal(a, b)
	require.NoError(t, err)
	require.True(t, ok)

	ra, err := c.Find(a.Key())
	require.NoError(t, err)
	rb, err := c.Find(b.Key())
	require.NoError(t, err)
	require.Equal(t, ra, rb, "a successful deep comparison must union the two formulae's representatives")
}

func TestHashIsMemoized(t *testing.T) {
	c := New(nil)
	a := formula.Atom("p")
	h1, err := c.Hash(a)
	require.NoError(t, err)
	h2, err := c.Hash(a)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Equal(t, a.Hash(), h1)
}

func TestFindIsIdempotentOnSingletons(t *testing.T) {
	c := New(nil)
	a := formula.Atom("p")
	r1, err := c.Find(a.Key())
	require.NoError(t, err)
	require.Equal(t, a.Key(), r1, "an unjoined formula is its own root")
	r2, err := c.Find(a.Key())
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestJoinIsTransitive(t *testing.T) {
	c := New(nil)
	a := formula.And(formula.Atom("p"), formula.Atom("q"))
	b := formula.And(formula.Atom("q"), formula.Atom("p"))
	cc := formula.And(formula.Atom("p"), formula.Atom("q"))

	ok, err := c.Equal(a, b)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = c.Equal(b, cc)
	require.NoError(t, err)
	require.True(t, ok)

	ra, err := c.Find(a.Key())
	require.NoError(t, err)
	rc, err := c.Find(cc.Key())
	require.NoError(t, err)
	require.Equal(t, ra, rc)
}
