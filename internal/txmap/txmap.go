// Package txmap implements a transactional shared map: a backing map guarded
// by a read/write mutex, with per-transaction reads/writes/erases/counts
// caches and a validate-then-commit protocol.
//
// Readers and writers both open a Transaction, stage changes locally, and
// attempt to Commit. Commit acquires the exclusive lock, builds the tentative
// post-write state, hands a read-only Transaction over that tentative state
// to the caller-supplied validator, and only then either applies the changes
// to the backing map (validator accepted) or discards them (validator
// rejected, an errs.TransactionKind error returned). This is classical optimistic
// concurrency control: validate against the prospective result, then apply —
// chosen over an apply-then-unwind design because nothing in this package
// ever needs to undo a mutation the backing map has already observed.
package txmap

import (
	"fmt"
	"sync"

	"github.com/gitrdm/seqprove/internal/errs"
)

// Map is a concurrency-safe map of K to V, accessed exclusively through
// Transactions.
type Map[K comparable, V any] struct {
	mu      sync.RWMutex
	backing map[K]V
}

// New creates an empty transactional map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{backing: make(map[K]V)}
}

// Begin opens a read/write transaction against the map.
func (m *Map[K, V]) Begin() *Transaction[K, V] {
	return &Transaction[K, V]{
		m:      m,
		reads:  make(map[K]V),
		writes: make(map[K]V),
		erases: make(map[K]struct{}),
		counts: make(map[K]int),
	}
}

// Transaction stages reads, writes, erases and counts against a Map without
// mutating the backing store until Commit succeeds.
type Transaction[K comparable, V any] struct {
	m       *Map[K, V]
	reads   map[K]V
	writes  map[K]V
	erases  map[K]struct{}
	counts  map[K]int
	applied bool
}

// Get reads a value, consulting writes, then erases, then the local reads
// cache, then (under the map's shared lock) the backing store — memoizing a
// backing-store hit into the reads cache.
func (t *Transaction[K, V]) Get(k K) (V, bool) {
	if v, ok := t.writes[k]; ok {
		return v, true
	}
	if _, ok := t.erases[k]; ok {
		var zero V
		return zero, false
	}
	if v, ok := t.reads[k]; ok {
		return v, true
	}
	t.m.mu.RLock()
	v, ok := t.m.backing[k]
	t.m.mu.RUnlock()
	if ok {
		t.reads[k] = v
	}
	return v, ok
}

// Set stages an insert or update.
func (t *Transaction[K, V]) Set(k K, v V) {
	t.writes[k] = v
	delete(t.erases, k)
	delete(t.counts, k)
}

// Erase stages a deletion.
func (t *Transaction[K, V]) Erase(k K) {
	delete(t.writes, k)
	t.erases[k] = struct{}{}
	delete(t.counts, k)
}

// Count returns a pending or backing count for k, memoizing backing reads.
func (t *Transaction[K, V]) Count(k K) int {
	if c, ok := t.counts[k]; ok {
		return c
	}
	_, ok := t.Get(k)
	c := 0
	if ok {
		c = 1
	}
	t.counts[k] = c
	return c
}

// Each visits every entry the transaction would observe: writes, then reads,
// then backing entries, skipping anything superseded by writes or erases. No
// key is visited twice.
func (t *Transaction[K, V]) Each(fn func(K, V) bool) {
	seen := make(map[K]struct{})
	for k, v := range t.writes {
		seen[k] = struct{}{}
		if !fn(k, v) {
			return
		}
	}
	for k, v := range t.reads {
		if _, ok := seen[k]; ok {
			continue
		}
		if _, erased := t.erases[k]; erased {
			continue
		}
		seen[k] = struct{}{}
		if !fn(k, v) {
			return
		}
	}
	t.m.mu.RLock()
	backing := make(map[K]V, len(t.m.backing))
	for k, v := range t.m.backing {
		backing[k] = v
	}
	t.m.mu.RUnlock()
	for k, v := range backing {
		if _, ok := seen[k]; ok {
			continue
		}
		if _, erased := t.erases[k]; erased {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Validator inspects a transaction opened against the tentative post-write
// state and decides whether the commit should stand.
type Validator[K comparable, V any] func(*Transaction[K, V]) bool

// Commit builds, under the map's exclusive lock, the state this
// transaction's writes and erases would produce, opens a transaction against
// that tentative state, and asks validator whether the commit should stand.
// Only if validator accepts (or is nil) does the tentative state replace the
// backing map; if validator returns false, the backing map is left untouched
// and an errs.TransactionKind error is returned.
func (t *Transaction[K, V]) Commit(validator Validator[K, V]) error {
	if t.applied {
		return errs.RuntimeKind.New("transaction committed twice")
	}

	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	tentative := make(map[K]V, len(t.m.backing)+len(t.writes))
	for k, v := range t.m.backing {
		tentative[k] = v
	}
	for k := range t.erases {
		delete(tentative, k)
	}
	for k, v := range t.writes {
		tentative[k] = v
	}

	tester := &Transaction[K, V]{
		m:      &Map[K, V]{backing: tentative},
		reads:  make(map[K]V),
		writes: make(map[K]V),
		erases: make(map[K]struct{}),
		counts: make(map[K]int),
	}

	if validator != nil && !validator(tester) {
		return errs.TransactionKind.New("validator rejected commit")
	}

	t.m.backing = tentative
	t.applied = true
	return nil
}

// String renders a diagnostic summary, mirroring the teacher's convention of
// giving internal bookkeeping types a readable String().
func (t *Transaction[K, V]) String() string {
	return fmt.Sprintf("Transaction{writes=%d, erases=%d, reads=%d}", len(t.writes), len(t.erases), len(t.reads))
}
