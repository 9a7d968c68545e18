// Package formula implements the formula tree: a tagged union of connective,
// relation and quantifier nodes over pkg/symbol and pkg/term. Formulae are
// immutable once constructed and value-typed — deep copies are cheap and
// sharing a *Formula by reference is always safe: no operation changes a
// formula's structure, and the lazily memoized hash is computed under a
// sync.Once.
package formula

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mitchellh/hashstructure"

	"github.com/gitrdm/seqprove/pkg/symbol"
	"github.com/gitrdm/seqprove/pkg/term"
)

// Kind distinguishes the three node shapes spec.md §3 describes.
type Kind int

const (
	KindConnective Kind = iota
	KindRelation
	KindQuantifier
)

// Key is a stable, monotonically increasing identity stamped on every
// Formula at construction time. The equality cache's union-find tables key
// their two maps on Key rather than on a raw Go pointer: spec.md §9 asks
// for an identity that survives for the lifetime of a top-level proof and
// supports a deterministic "higher address wins" tie-break in Join, which a
// monotonic counter gives for free without depending on GC-movable pointer
// values.
type Key uint64

var keySeq atomic.Uint64

func nextKey() Key {
	return Key(keySeq.Add(1))
}

// Formula is the tagged-union tree node. Exactly one of the per-kind fields
// is populated, matching the symbol's Class.
type Formula struct {
	key    Key
	Symbol *symbol.Symbol

	// Populated when Symbol.Class() == ClassConnective.
	Children []*Formula

	// Populated when Symbol.Class() == ClassRelation.
	Args []term.Expression

	// Populated when Symbol.Class() == ClassQuantifier.
	Bound *term.Variable
	Body  *Formula

	hash     uint64
	hashOnce sync.Once
}

// Key returns the formula's stable identity, used by pkg/equality as a map
// key in place of a raw pointer.
func (f *Formula) Key() Key { return f.key }

// Kind reports which of the three node shapes this formula is.
func (f *Formula) Kind() Kind {
	switch f.Symbol.Class() {
	case symbol.ClassRelation:
		return KindRelation
	case symbol.ClassQuantifier:
		return KindQuantifier
	default:
		return KindConnective
	}
}

// NewConnective builds a connective-class formula over child formulae.
func NewConnective(sym *symbol.Symbol, children ...*Formula) *Formula {
	if sym.Class() != symbol.ClassConnective {
		panic(fmt.Sprintf("formula: %s is not a connective symbol", sym))
	}
	return &Formula{key: nextKey(), Symbol: sym, Children: children}
}

// NewRelation builds a relation-class formula (an atomic proposition) over
// expression arguments.
func NewRelation(sym *symbol.Symbol, args ...term.Expression) *Formula {
	if sym.Class() != symbol.ClassRelation {
		panic(fmt.Sprintf("formula: %s is not a relation symbol", sym))
	}
	return &Formula{key: nextKey(), Symbol: sym, Args: args}
}

// NewQuantifier builds a quantifier-class formula binding v over body.
func NewQuantifier(sym *symbol.Symbol, v *term.Variable, body *Formula) *Formula {
	if sym.Class() != symbol.ClassQuantifier {
		panic(fmt.Sprintf("formula: %s is not a quantifier symbol", sym))
	}
	return &Formula{key: nextKey(), Symbol: sym, Bound: v, Body: body}
}

// Atom is a convenience constructor for a nullary relation — the common case
// of a propositional letter such as "a" or "b" in the worked examples.
func Atom(name string) *Formula {
	return NewRelation(symbol.Ident, term.NewVariable(name))
}

// Clone returns a deep structural copy. Formulae never need cloning for
// safety (they are immutable and safely shared), but callers building new
// trees that graft part of an existing one sometimes want a fresh Key so the
// grafted copy is tracked independently by the equality cache.
func (f *Formula) Clone() *Formula {
	switch f.Kind() {
	case KindConnective:
		children := make([]*Formula, len(f.Children))
		for i, c := range f.Children {
			children[i] = c.Clone()
		}
		return NewConnective(f.Symbol, children...)
	case KindRelation:
		args := make([]term.Expression, len(f.Args))
		copy(args, f.Args)
		return NewRelation(f.Symbol, args...)
	default:
		return NewQuantifier(f.Symbol, f.Bound, f.Body.Clone())
	}
}

// TotalSize returns the number of nodes in the formula tree (spec.md §4.4's
// |f|). Every formula has size at least 1.
func (f *Formula) TotalSize() int {
	switch f.Kind() {
	case KindConnective:
		n := 1
		for _, c := range f.Children {
			n += c.TotalSize()
		}
		return n
	case KindQuantifier:
		return 1 + f.Body.TotalSize()
	default:
		// A relation node is a leaf of the formula tree; its expression
		// arguments are not formula nodes.
		return 1
	}
}

// Depth returns the formula tree's depth; every formula has depth at least 1.
func (f *Formula) Depth() int {
	switch f.Kind() {
	case KindConnective:
		max := 0
		for _, c := range f.Children {
			if d := c.Depth(); d > max {
				max = d
			}
		}
		return 1 + max
	case KindQuantifier:
		return 1 + f.Body.Depth()
	default:
		return 1
	}
}

// Hash returns the formula's stable structural hash. For AC-connective
// symbols (And, Or, NAnd, NOr, Xor, NXor, Equiv, NEquiv — see
// symbol.Symbol.AC) the hash is computed over the *deduplicated, sorted* set
// of child hashes, so that commutative/idempotent rearrangements of the same
// children hash identically: Equal(a,b) implies Hash(a) == Hash(b), the
// direction spec.md §4.3's pre-filter depends on; the converse — equal hash
// implies equal formula — is explicitly not guaranteed.
func (f *Formula) Hash() uint64 {
	f.hashOnce.Do(func() { f.hash = f.computeHash() })
	return f.hash
}

func (f *Formula) computeHash() uint64 {
	switch f.Kind() {
	case KindConnective:
		childHashes := make([]uint64, len(f.Children))
		for i, c := range f.Children {
			childHashes[i] = c.Hash()
		}
		if f.Symbol.AC() {
			childHashes = dedupSortUint64(childHashes)
		}
		h, err := hashstructure.Hash(struct {
			Symbol string
			Kind   string
			Kids   []uint64
		}{f.Symbol.Name(), "connective", childHashes}, nil)
		if err != nil {
			panic(err)
		}
		return h
	case KindRelation:
		argHashes := make([]uint64, len(f.Args))
		for i, a := range f.Args {
			argHashes[i] = a.Hash(f.Symbol.Hash())
		}
		h, err := hashstructure.Hash(struct {
			Symbol string
			Kind   string
			Args   []uint64
		}{f.Symbol.Name(), "relation", argHashes}, nil)
		if err != nil {
			panic(err)
		}
		return h
	default:
		h, err := hashstructure.Hash(struct {
			Symbol string
			Kind   string
			Bound  string
			Body   uint64
		}{f.Symbol.Name(), "quantifier", f.Bound.Name, f.Body.Hash()}, nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

func dedupSortUint64(xs []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(xs))
	out := make([]uint64, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports deep structural equality: same symbol and, for AC symbols,
// the same *set* of children (order-independent, duplicates collapsed, per
// "commutativity and idempotence" in spec.md §1); for non-AC symbols, the
// same children in the same order. This is the "value_compare" deep-compare
// spec.md §4.3 step 4 falls back to after pointer identity, union-find and
// hash pre-filtering have all failed to decide.
func (f *Formula) Equal(other *Formula) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	if !f.Symbol.Equal(other.Symbol) {
		return false
	}
	switch f.Kind() {
	case KindConnective:
		if f.Symbol.AC() {
			return acChildrenEqual(f.Children, other.Children)
		}
		if len(f.Children) != len(other.Children) {
			return false
		}
		for i := range f.Children {
			if !f.Children[i].Equal(other.Children[i]) {
				return false
			}
		}
		return true
	case KindRelation:
		if len(f.Args) != len(other.Args) {
			return false
		}
		for i := range f.Args {
			if !f.Args[i].Identical(other.Args[i]) {
				return false
			}
		}
		return true
	default:
		return f.Bound.Name == other.Bound.Name && f.Body.Equal(other.Body)
	}
}

// acChildrenEqual compares two child lists as sets modulo Equal, collapsing
// duplicates (idempotence) and ignoring order (commutativity): the distinct
// equivalence classes present in a must be exactly the distinct equivalence
// classes present in b.
func acChildrenEqual(a, b []*Formula) bool {
	ra, rb := distinctByEqual(a), distinctByEqual(b)
	if len(ra) != len(rb) {
		return false
	}
	used := make([]bool, len(rb))
	for _, x := range ra {
		found := false
		for j, y := range rb {
			if used[j] {
				continue
			}
			if x.Equal(y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// distinctByEqual returns one representative per Equal-equivalence class,
// in first-seen order.
func distinctByEqual(xs []*Formula) []*Formula {
	out := make([]*Formula, 0, len(xs))
	for _, x := range xs {
		dup := false
		for _, y := range out {
			if x.Equal(y) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, x)
		}
	}
	return out
}

// String renders a minimal, parser-free textual form good enough for error
// messages and CLI echo — not a full pretty-printer (spec.md §1 scopes the
// pretty printer out of core).
func (f *Formula) String() string {
	switch f.Kind() {
	case KindConnective:
		parts := make([]string, len(f.Children))
		for i, c := range f.Children {
			parts[i] = c.String()
		}
		return fmt.Sprintf("%s[%s]", f.Symbol, strings.Join(parts, ", "))
	case KindRelation:
		parts := make([]string, len(f.Args))
		for i, a := range f.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", f.Symbol, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%s[%s](%s)", f.Symbol, f.Bound.Name, f.Body.String())
	}
}
