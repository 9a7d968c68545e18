// Package equality implements the semantic-equality oracle: a union-find of
// previously-proven-equal formulae bridging pointer identity, hash
// pre-filtering and deep structural comparison, so repeated comparisons
// become near-constant-time.
package equality

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/gitrdm/seqprove/internal/errs"
	"github.com/gitrdm/seqprove/internal/txmap"
	"github.com/gitrdm/seqprove/pkg/formula"
)

// Retry budgets, named exactly as the contract that governs this package:
// hash and join/find retry a bounded number of times on a rejected
// transaction; equal first tries unlocked, then escalates to a wider budget
// before giving up.
const (
	hashRetryBudget    = 2
	findRetryBudget    = 4
	joinRetryBudget    = 4
	unlockedEqualBudget = 6
	upgradedEqualBudget = 10
)

// Cache is a process-scoped (or sub-proof-scoped, see pkg/sequent §4.6)
// union-find equality oracle. The hashes and parent tables sit behind the
// transactional shared-map layer; a singleflight group deduplicates
// concurrent Equal calls racing on the same pair, and a bounded LRU shortcuts
// repeated Hash lookups without a transaction round-trip.
type Cache struct {
	hashes *txmap.Map[formula.Key, uint64]
	parent *txmap.Map[formula.Key, formula.Key]

	sf singleflight.Group
	hc *lru.Cache[formula.Key, uint64]

	correlationID string
	logger        hclog.Logger
}

// New creates an equality cache. A nil logger defaults to a discard logger.
func New(logger hclog.Logger) *Cache {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	id, err := uuid.GenerateUUID()
	if err != nil {
		id = "unavailable"
	}
	hc, err := lru.New[formula.Key, uint64](4096)
	if err != nil {
		panic(fmt.Sprintf("equality: failed to allocate hash LRU: %v", err))
	}
	return &Cache{
		hashes:        txmap.New[formula.Key, uint64](),
		parent:        txmap.New[formula.Key, formula.Key](),
		hc:            hc,
		correlationID: id,
		logger:        logger.Named("equality").With("correlation_id", id),
	}
}

// Hash returns f's memoized structural hash, computing and storing it on
// first call. Subsequent calls for the same formula key are served from the
// bounded LRU without touching the transactional table at all.
func (c *Cache) Hash(f *formula.Formula) (uint64, error) {
	if h, ok := c.hc.Get(f.Key()); ok {
		return h, nil
	}

	var lastErr error
	for attempt := 0; attempt < hashRetryBudget; attempt++ {
		tx := c.hashes.Begin()
		if h, ok := tx.Get(f.Key()); ok {
			c.hc.Add(f.Key(), h)
			return h, nil
		}
		h := f.Hash()
		tx.Set(f.Key(), h)
		if err := tx.Commit(nil); err != nil {
			lastErr = err
			continue
		}
		c.hc.Add(f.Key(), h)
		return h, nil
	}
	return 0, errs.TransactionKind.New(fmt.Sprintf("hash(%v) exhausted retry budget: %v", f.Key(), lastErr))
}

// Find returns the union-find root of k, path-compressing every node visited
// along the way. It retries if a concurrent Join reassigns the root out from
// under an in-flight compression commit.
func (c *Cache) Find(k formula.Key) (formula.Key, error) {
	var lastErr error
	for attempt := 0; attempt < findRetryBudget; attempt++ {
		tx := c.parent.Begin()

		root := k
		var path []formula.Key
		for {
			p, ok := tx.Get(root)
			if !ok || p == root {
				break
			}
			path = append(path, root)
			root = p
		}
		if len(path) == 0 {
			return root, nil
		}
		for _, node := range path {
			tx.Set(node, root)
		}

		err := tx.Commit(func(t *txmap.Transaction[formula.Key, formula.Key]) bool {
			// Reject if root stopped being a root while we were compressing:
			// that means a concurrent Join already unioned it elsewhere, and
			// our compressed chain is stale.
			if p, ok := t.Get(root); ok && p != root {
				return false
			}
			return true
		})
		if err != nil {
			lastErr = err
			continue
		}
		return root, nil
	}
	var zero formula.Key
	return zero, errs.TransactionKind.New(fmt.Sprintf("find(%v) exhausted retry budget: %v", k, lastErr))
}

// Join unions the equivalence classes of a and b. The higher-Key root
// becomes the child of the lower-Key root, giving deterministic roots within
// a run (formula.Key is a monotonically increasing allocation sequence
// number, standing in for "pointer address" in a GC-safe way).
func (c *Cache) Join(a, b formula.Key) error {
	var lastErr error
	for attempt := 0; attempt < joinRetryBudget; attempt++ {
		ra, err := c.Find(a)
		if err != nil {
			return err
		}
		rb, err := c.Find(b)
		if err != nil {
			return err
		}
		if ra == rb {
			return nil
		}

		parentKey, childKey := ra, rb
		if rb < ra {
			parentKey, childKey = rb, ra
		}

		tx := c.parent.Begin()
		tx.Set(childKey, parentKey)
		err = tx.Commit(func(t *txmap.Transaction[formula.Key, formula.Key]) bool {
			// Reject if the child was unioned elsewhere since we read it as
			// a root: joining over a stale root would disconnect whoever
			// already attached to it.
			if p, ok := t.Get(childKey); ok && p != parentKey && p != childKey {
				return false
			}
			return true
		})
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return errs.TransactionKind.New(fmt.Sprintf("join(%v,%v) exhausted retry budget: %v", a, b, lastErr))
}

// Equal decides whether a and b are the same formula modulo AC-connective
// commutativity and idempotence, implementing the four-step oracle:
// pointer identity, union-find lookup, hash pre-filter, deep structural
// compare (joining the two on success). Concurrent calls for the same
// unordered pair are deduplicated via singleflight. A transaction-exhaustion
// failure at the unlocked budget escalates once to the wider budget before
// giving up — modeling the contract's read-lock-to-write-lock upgrade
// without this package needing its own separate locking layer, since
// txmap.Map already serializes writers internally.
func (c *Cache) Equal(a, b *formula.Formula) (bool, error) {
	if a == b {
		return true, nil
	}
	key := pairKey(a, b)

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		return c.equalBudgeted(a, b, unlockedEqualBudget)
	})
	if err != nil && errs.TransactionKind.Is(err) {
		c.logger.Debug("equal: escalating to upgraded retry budget", "pair", key)
		v, err, _ = c.sf.Do(key+"#upgraded", func() (interface{}, error) {
			return c.equalBudgeted(a, b, upgradedEqualBudget)
		})
	}
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *Cache) equalBudgeted(a, b *formula.Formula, budget int) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < budget; attempt++ {
		ok, err := c.equalOnce(a, b)
		if err == nil {
			return ok, nil
		}
		lastErr = err
	}
	return false, lastErr
}

func (c *Cache) equalOnce(a, b *formula.Formula) (bool, error) {
	if a == b {
		return true, nil
	}

	ra, err := c.Find(a.Key())
	if err != nil {
		return false, err
	}
	rb, err := c.Find(b.Key())
	if err != nil {
		return false, err
	}
	if ra == rb {
		return true, nil
	}

	ha, err := c.Hash(a)
	if err != nil {
		return false, err
	}
	hb, err := c.Hash(b)
	if err != nil {
		return false, err
	}
	if ha != hb {
		return false, nil
	}

	if !a.Equal(b) {
		return false, nil
	}
	if err := c.Join(a.Key(), b.Key()); err != nil {
		return false, err
	}
	return true, nil
}

func pairKey(a, b *formula.Formula) string {
	ka, kb := a.Key(), b.Key()
	if ka > kb {
		ka, kb = kb, ka
	}
	return fmt.Sprintf("%d:%d", ka, kb)
}
