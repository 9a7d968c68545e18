package txmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/seqprove/internal/errs"
)

func TestSetThenGetWithinTransaction(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	_, ok := tx.Get("a")
	require.False(t, ok)

	tx.Set("a", 1)
	v, ok := tx.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestCommitAppliesWritesToBackingMap(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	tx.Set("a", 1)
	require.NoError(t, tx.Commit(nil))

	tx2 := m.Begin()
	v, ok := tx2.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestEraseRemovesFromSubsequentTransactions(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	tx.Set("a", 1)
	require.NoError(t, tx.Commit(nil))

	tx2 := m.Begin()
	tx2.Erase("a")
	require.NoError(t, tx2.Commit(nil))

	tx3 := m.Begin()
	_, ok := tx3.Get("a")
	require.False(t, ok)
}

func TestSetThenEraseWithinSameTransactionStaysErased(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	tx.Set("a", 1)
	tx.Erase("a")
	_, ok := tx.Get("a")
	require.False(t, ok)
}

func TestEraseThenSetWithinSameTransactionStaysSet(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	tx.Erase("a")
	tx.Set("a", 2)
	v, ok := tx.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestCountReflectsPresence(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	require.Equal(t, 0, tx.Count("a"))
	tx.Set("a", 1)
	require.Equal(t, 1, tx.Count("a"))
}

func TestRejectedCommitLeavesBackingMapUntouched(t *testing.T) {
	m := New[string, int]()
	tx0 := m.Begin()
	tx0.Set("a", 1)
	require.NoError(t, tx0.Commit(nil))

	tx := m.Begin()
	tx.Set("a", 2)
	err := tx.Commit(func(tester *Transaction[string, int]) bool {
		return false
	})
	require.Error(t, err)
	require.True(t, errs.TransactionKind.Is(err))

	tx2 := m.Begin()
	v, ok := tx2.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v, "a rejected commit must leave the backing map exactly as it was before the attempt")
}

func TestValidatorSeesTentativePostWriteState(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	tx.Set("a", 1)

	var sawDuringValidation int
	var sawOK bool
	err := tx.Commit(func(tester *Transaction[string, int]) bool {
		sawDuringValidation, sawOK = tester.Get("a")
		return true
	})
	require.NoError(t, err)
	require.True(t, sawOK)
	require.Equal(t, 1, sawDuringValidation)
}

func TestDoubleCommitIsRejected(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	tx.Set("a", 1)
	require.NoError(t, tx.Commit(nil))
	err := tx.Commit(nil)
	require.Error(t, err)
	require.True(t, errs.RuntimeKind.Is(err))
}

func TestEachVisitsEveryKeyExactlyOnce(t *testing.T) {
	m := New[string, int]()
	tx0 := m.Begin()
	tx0.Set("a", 1)
	tx0.Set("b", 2)
	require.NoError(t, tx0.Commit(nil))

	tx := m.Begin()
	tx.Set("b", 20)
	tx.Set("c", 3)
	tx.Erase("a")

	seen := map[string]int{}
	tx.Each(func(k string, v int) bool {
		seen[k] = v
		return true
	})
	require.Equal(t, map[string]int{"b": 20, "c": 3}, seen, "Each must skip erased keys and prefer pending writes over backing values")
}

func TestEachStopsOnFalseReturn(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	tx.Set("a", 1)
	tx.Set("b", 2)
	tx.Set("c", 3)

	count := 0
	tx.Each(func(k string, v int) bool {
		count++
		return false
	})
	require.Equal(t, 1, count)
}

func TestStringRendersCounts(t *testing.T) {
	m := New[string, int]()
	tx := m.Begin()
	tx.Set("a", 1)
	tx.Erase("b")
	require.Contains(t, tx.String(), "Transaction{")
}
