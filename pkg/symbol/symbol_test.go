package symbol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogueClasses(t *testing.T) {
	require.Equal(t, ClassConnective, And.Class())
	require.Equal(t, ClassConnective, Impl.Class())
	require.Equal(t, ClassQuantifier, ForAll.Class())
	require.Equal(t, ClassQuantifier, Exists.Class())
	require.Equal(t, ClassRelation, Ident.Class())
	require.Equal(t, ClassRelation, Equal.Class())
}

func TestEqualityAndHash(t *testing.T) {
	require.True(t, And.Equal(And))
	require.False(t, And.Equal(Or))

	clone := newSymbol("And", false, false)
	require.True(t, And.Equal(clone))
	require.Equal(t, And.Hash(), clone.Hash())

	require.NotEqual(t, And.Hash(), Or.Hash())
}

func TestACFlag(t *testing.T) {
	for _, s := range []*Symbol{And, Or, NAnd, NOr, Xor, NXor, Equiv, NEquiv} {
		require.True(t, s.AC(), "%s should be AC", s)
	}
	for _, s := range []*Symbol{Not, Impl, RImpl, NImpl, NRImpl, True, False} {
		require.False(t, s.AC(), "%s should not be AC", s)
	}
}

func TestStringIsName(t *testing.T) {
	require.Equal(t, "And", And.String())
	require.Equal(t, "ForAll", ForAll.String())
}
