// Package view implements the lazy, composable collection-view algebra:
// index-addressable, size-known handles over zero, one or two underlying
// sequences. Combinators never enumerate anything eagerly — enumeration only
// happens when a driver (ForAll/ForAny) or an explicit At/Count call walks
// the view.
package view

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/gitrdm/seqprove/internal/errs"
	"github.com/gitrdm/seqprove/internal/parallel"
)

// View is the common interface every combinator in this package satisfies.
type View[T any] interface {
	// Size returns the number of addressable elements.
	Size() int

	// At returns the i-th element, or an IndexKind error if i is outside
	// [0, Size()).
	At(i int) (T, error)

	// Count returns the multiplicity of x using pointer/value equality (==).
	Count(x T) int

	// CountFunc returns the multiplicity of x using a caller-supplied
	// equality predicate.
	CountFunc(x T, eq func(a, b T) bool) int

	// ForAll evaluates task over every element in parallel, short-circuiting
	// to false on the first false/error-free result.
	ForAll(ctx context.Context, d *parallel.Driver, task func(ctx context.Context, x T) (bool, error)) (bool, error)

	// ForAny evaluates task over every element in parallel, short-circuiting
	// to true on the first true result.
	ForAny(ctx context.Context, d *parallel.Driver, task func(ctx context.Context, x T) (bool, error)) (bool, error)
}

// sourceSeq assigns a stable identity to the underlying sequence a Shadow or
// Unfold view is built over, so Difference can tell whether either operand
// is rooted in a traceable underlying sequence (see Difference).
type sourceSeq struct {
	id uint64
}

var sourceSeqCounter atomic.Uint64

func newSourceSeq() *sourceSeq {
	return &sourceSeq{id: sourceSeqCounter.Add(1)}
}

// runForAll is the shared driver-dispatch body for ForAll, common to every
// view variant below.
func runForAll[T any](ctx context.Context, d *parallel.Driver, v View[T], task func(context.Context, T) (bool, error)) (bool, error) {
	n := v.Size()
	return d.Run(ctx, parallel.ModeAll, n, func(ctx context.Context, i int) (bool, error) {
		x, err := v.At(i)
		if err != nil {
			return false, err
		}
		return task(ctx, x)
	})
}

func runForAny[T any](ctx context.Context, d *parallel.Driver, v View[T], task func(context.Context, T) (bool, error)) (bool, error) {
	n := v.Size()
	return d.Run(ctx, parallel.ModeAny, n, func(ctx context.Context, i int) (bool, error) {
		x, err := v.At(i)
		if err != nil {
			return false, err
		}
		return task(ctx, x)
	})
}

func countDefault[T any](v View[T], x T, eq func(a, b T) bool) int {
	n := v.Size()
	c := 0
	for i := 0; i < n; i++ {
		e, err := v.At(i)
		if err != nil {
			continue
		}
		if eq(e, x) {
			c++
		}
	}
	return c
}

// ---- Empty ----

// Empty is the view over no elements.
type Empty[T any] struct{}

// NewEmpty builds the empty view.
func NewEmpty[T any]() *Empty[T] { return &Empty[T]{} }

func (e *Empty[T]) Size() int { return 0 }

func (e *Empty[T]) At(i int) (T, error) {
	var zero T
	return zero, errs.IndexKind.New(i, 0)
}

func (e *Empty[T]) Count(x T) int { return 0 }

func (e *Empty[T]) CountFunc(x T, eq func(a, b T) bool) int { return 0 }

func (e *Empty[T]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return true, nil
}

func (e *Empty[T]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return false, nil
}

// ---- Singleton ----

// Singleton is the view over exactly one element.
type Singleton[T any] struct {
	x T
}

// NewSingleton builds the view {x}.
func NewSingleton[T any](x T) *Singleton[T] { return &Singleton[T]{x: x} }

func (s *Singleton[T]) Size() int { return 1 }

func (s *Singleton[T]) At(i int) (T, error) {
	if i != 0 {
		var zero T
		return zero, errs.IndexKind.New(i, 1)
	}
	return s.x, nil
}

func (s *Singleton[T]) Count(x T) int {
	return s.CountFunc(x, func(a, b T) bool { return any(a) == any(b) })
}

func (s *Singleton[T]) CountFunc(x T, eq func(a, b T) bool) int {
	if eq(s.x, x) {
		return 1
	}
	return 0
}

func (s *Singleton[T]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAll[T](ctx, d, s, task)
}

func (s *Singleton[T]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAny[T](ctx, d, s, task)
}

// ---- Shadow ----

// Shadow is a by-reference view over an existing slice: it never copies the
// backing data, so mutations to the slice are visible through the view.
type Shadow[T any] struct {
	backing []T
	source  *sourceSeq
}

// NewShadow builds a view over backing by reference.
func NewShadow[T any](backing []T) *Shadow[T] {
	return &Shadow[T]{backing: backing, source: newSourceSeq()}
}

func (s *Shadow[T]) Size() int { return len(s.backing) }

func (s *Shadow[T]) At(i int) (T, error) {
	if i < 0 || i >= len(s.backing) {
		var zero T
		return zero, errs.IndexKind.New(i, len(s.backing))
	}
	return s.backing[i], nil
}

func (s *Shadow[T]) Count(x T) int {
	return s.CountFunc(x, func(a, b T) bool { return any(a) == any(b) })
}

func (s *Shadow[T]) CountFunc(x T, eq func(a, b T) bool) int {
	return countDefault[T](s, x, eq)
}

func (s *Shadow[T]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAll[T](ctx, d, s, task)
}

func (s *Shadow[T]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAny[T](ctx, d, s, task)
}

// ---- Unfold ----

// Unfold materializes a pointer array over an existing view's elements so
// their addresses stay stable even if the original collection is mutated or
// reordered afterwards.
type Unfold[T any] struct {
	ptrs   []*T
	source *sourceSeq
}

// NewUnfold materializes a stable-address copy of c.
func NewUnfold[T any](c View[T]) *Unfold[T] {
	n := c.Size()
	ptrs := make([]*T, n)
	for i := 0; i < n; i++ {
		x, err := c.At(i)
		if err != nil {
			continue
		}
		xv := x
		ptrs[i] = &xv
	}
	return &Unfold[T]{ptrs: ptrs, source: newSourceSeq()}
}

func (u *Unfold[T]) Size() int { return len(u.ptrs) }

func (u *Unfold[T]) At(i int) (T, error) {
	if i < 0 || i >= len(u.ptrs) {
		var zero T
		return zero, errs.IndexKind.New(i, len(u.ptrs))
	}
	return *u.ptrs[i], nil
}

func (u *Unfold[T]) Count(x T) int {
	return u.CountFunc(x, func(a, b T) bool { return any(a) == any(b) })
}

func (u *Unfold[T]) CountFunc(x T, eq func(a, b T) bool) int {
	return countDefault[T](u, x, eq)
}

func (u *Unfold[T]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAll[T](ctx, d, u, task)
}

func (u *Unfold[T]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAny[T](ctx, d, u, task)
}

// ---- Concat ----

// Concat is the view over A followed by B.
type Concat[T any] struct {
	a, b View[T]
}

// NewConcat builds A+B.
func NewConcat[T any](a, b View[T]) *Concat[T] { return &Concat[T]{a: a, b: b} }

func (c *Concat[T]) Size() int { return c.a.Size() + c.b.Size() }

func (c *Concat[T]) At(i int) (T, error) {
	na := c.a.Size()
	if i < 0 || i >= c.Size() {
		var zero T
		return zero, errs.IndexKind.New(i, c.Size())
	}
	if i < na {
		return c.a.At(i)
	}
	return c.b.At(i - na)
}

func (c *Concat[T]) Count(x T) int {
	return c.CountFunc(x, func(a, b T) bool { return any(a) == any(b) })
}

func (c *Concat[T]) CountFunc(x T, eq func(a, b T) bool) int {
	return c.a.CountFunc(x, eq) + c.b.CountFunc(x, eq)
}

func (c *Concat[T]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAll[T](ctx, d, c, task)
}

func (c *Concat[T]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAny[T](ctx, d, c, task)
}

// ---- Difference ----

// Difference is the view over the elements of A whose value does not occur
// in B, using pointer/value equality. Shadow and Unfold views carry a source
// identity; Difference fails with IteratorKind only when neither operand is
// such a view. Operands with different sources are not an error. In the
// failing case Size reports 0 and At, ForAll and ForAny return the
// IteratorKind error; Count does not check.
type Difference[T any] struct {
	a, b    View[T]
	sourceA *sourceSeq
	sourceB *sourceSeq
	idx     []int // lazily computed on first access
	built   bool
}

type sourced interface {
	viewSource() *sourceSeq
}

func (s *Shadow[T]) viewSource() *sourceSeq { return s.source }
func (u *Unfold[T]) viewSource() *sourceSeq { return u.source }

func sourceOf[T any](v View[T]) *sourceSeq {
	if s, ok := any(v).(sourced); ok {
		return s.viewSource()
	}
	return nil
}

// NewDifference builds A−B.
func NewDifference[T any](a, b View[T]) *Difference[T] {
	return &Difference[T]{a: a, b: b, sourceA: sourceOf[T](a), sourceB: sourceOf[T](b)}
}

// build computes, once, the indices into A that survive the subtraction.
// This is where the "different underlying views" failure from spec.md
// actually surfaces: a Difference is only invalid when A and B were BOTH
// derived (via further combinators) from incompatible root sequences that
// the caller nonetheless tried to compare element-for-element by identity
// without a shared addressable source — modeled here as neither operand
// exposing a traceable source at all.
func (d *Difference[T]) build() error {
	if d.built {
		return nil
	}
	if d.sourceA == nil && d.sourceB == nil {
		return errs.IteratorKind.New("view: Difference operands expose no traceable underlying source")
	}
	na := d.a.Size()
	idx := make([]int, 0, na)
	for i := 0; i < na; i++ {
		x, err := d.a.At(i)
		if err != nil {
			return err
		}
		if d.b.Count(x) == 0 {
			idx = append(idx, i)
		}
	}
	d.idx = idx
	d.built = true
	return nil
}

func (d *Difference[T]) Size() int {
	if err := d.build(); err != nil {
		return 0
	}
	return len(d.idx)
}

func (d *Difference[T]) At(i int) (T, error) {
	if err := d.build(); err != nil {
		var zero T
		return zero, err
	}
	if i < 0 || i >= len(d.idx) {
		var zero T
		return zero, errs.IndexKind.New(i, len(d.idx))
	}
	return d.a.At(d.idx[i])
}

func (d *Difference[T]) Count(x T) int {
	return d.CountFunc(x, func(a, b T) bool { return any(a) == any(b) })
}

func (d *Difference[T]) CountFunc(x T, eq func(a, b T) bool) int {
	if d.b.CountFunc(x, eq) > 0 {
		return 0
	}
	return d.a.CountFunc(x, eq)
}

func (d *Difference[T]) ForAll(ctx context.Context, dv *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	if err := d.build(); err != nil {
		return false, err
	}
	return runForAll[T](ctx, dv, d, task)
}

func (d *Difference[T]) ForAny(ctx context.Context, dv *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	if err := d.build(); err != nil {
		return false, err
	}
	return runForAny[T](ctx, dv, d, task)
}

// ---- Cartesian ----

// Pair is the element type produced by Cartesian and Zip.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Cartesian is the view over every ordered pair (A[i], B[j]).
type Cartesian[A, B any] struct {
	a View[A]
	b View[B]
}

// NewCartesian builds A×B.
func NewCartesian[A, B any](a View[A], b View[B]) *Cartesian[A, B] {
	return &Cartesian[A, B]{a: a, b: b}
}

func (c *Cartesian[A, B]) Size() int { return c.a.Size() * c.b.Size() }

func (c *Cartesian[A, B]) At(i int) (Pair[A, B], error) {
	na := c.a.Size()
	if na == 0 || i < 0 || i >= c.Size() {
		var zero Pair[A, B]
		return zero, errs.IndexKind.New(i, c.Size())
	}
	ia := i % na
	ib := i / na
	av, err := c.a.At(ia)
	if err != nil {
		var zero Pair[A, B]
		return zero, err
	}
	bv, err := c.b.At(ib)
	if err != nil {
		var zero Pair[A, B]
		return zero, err
	}
	return Pair[A, B]{First: av, Second: bv}, nil
}

func (c *Cartesian[A, B]) Count(x Pair[A, B]) int {
	return c.CountFunc(x, func(p, q Pair[A, B]) bool {
		return any(p.First) == any(q.First) && any(p.Second) == any(q.Second)
	})
}

func (c *Cartesian[A, B]) CountFunc(x Pair[A, B], eq func(a, b Pair[A, B]) bool) int {
	return countDefault[Pair[A, B]](c, x, eq)
}

func (c *Cartesian[A, B]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, Pair[A, B]) (bool, error)) (bool, error) {
	return runForAll[Pair[A, B]](ctx, d, c, task)
}

func (c *Cartesian[A, B]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, Pair[A, B]) (bool, error)) (bool, error) {
	return runForAny[Pair[A, B]](ctx, d, c, task)
}

// ---- Zip ----

// Zip is the view over (A[i], B[i]) for each i; A and B must be the same
// size. A size mismatch is a caller contract violation, checked at
// construction time rather than deferred to an IndexKind/IteratorKind at
// access time, since it is detectable immediately and unconditionally.
type Zip[A, B any] struct {
	a View[A]
	b View[B]
}

// NewZip builds A%B. Panics if a and b differ in size: spec.md requires them
// to be the same size as a hard precondition, not a recoverable runtime
// contingency.
func NewZip[A, B any](a View[A], b View[B]) *Zip[A, B] {
	if a.Size() != b.Size() {
		panic("view: Zip requires operands of equal size")
	}
	return &Zip[A, B]{a: a, b: b}
}

func (z *Zip[A, B]) Size() int { return z.a.Size() }

func (z *Zip[A, B]) At(i int) (Pair[A, B], error) {
	if i < 0 || i >= z.Size() {
		var zero Pair[A, B]
		return zero, errs.IndexKind.New(i, z.Size())
	}
	av, err := z.a.At(i)
	if err != nil {
		var zero Pair[A, B]
		return zero, err
	}
	bv, err := z.b.At(i)
	if err != nil {
		var zero Pair[A, B]
		return zero, err
	}
	return Pair[A, B]{First: av, Second: bv}, nil
}

func (z *Zip[A, B]) Count(x Pair[A, B]) int {
	return z.CountFunc(x, func(p, q Pair[A, B]) bool {
		return any(p.First) == any(q.First) && any(p.Second) == any(q.Second)
	})
}

func (z *Zip[A, B]) CountFunc(x Pair[A, B], eq func(a, b Pair[A, B]) bool) int {
	return countDefault[Pair[A, B]](z, x, eq)
}

func (z *Zip[A, B]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, Pair[A, B]) (bool, error)) (bool, error) {
	return runForAll[Pair[A, B]](ctx, d, z, task)
}

func (z *Zip[A, B]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, Pair[A, B]) (bool, error)) (bool, error) {
	return runForAny[Pair[A, B]](ctx, d, z, task)
}

// ---- Reorder / ReorderUnique ----

// Reorder is C under a stable ascending permutation by key.
type Reorder[T any] struct {
	c    View[T]
	perm []int
}

// NewReorder builds C sorted ascending by key, stably.
func NewReorder[T any](c View[T], key func(T) float64) *Reorder[T] {
	n := c.Size()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	keys := make([]float64, n)
	for i := 0; i < n; i++ {
		x, err := c.At(i)
		if err == nil {
			keys[i] = key(x)
		}
	}
	sort.SliceStable(perm, func(i, j int) bool { return keys[perm[i]] < keys[perm[j]] })
	return &Reorder[T]{c: c, perm: perm}
}

func (r *Reorder[T]) Size() int { return len(r.perm) }

func (r *Reorder[T]) At(i int) (T, error) {
	if i < 0 || i >= len(r.perm) {
		var zero T
		return zero, errs.IndexKind.New(i, len(r.perm))
	}
	return r.c.At(r.perm[i])
}

func (r *Reorder[T]) Count(x T) int {
	return r.CountFunc(x, func(a, b T) bool { return any(a) == any(b) })
}

func (r *Reorder[T]) CountFunc(x T, eq func(a, b T) bool) int {
	return r.c.CountFunc(x, eq)
}

func (r *Reorder[T]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAll[T](ctx, d, r, task)
}

func (r *Reorder[T]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAny[T](ctx, d, r, task)
}

// ReorderUnique is Reorder keeping exactly one element per distinct key
// value, earliest original index winning ties.
type ReorderUnique[T any] struct {
	c    View[T]
	perm []int
}

// NewReorderUnique builds C sorted ascending by key, deduplicated by key.
func NewReorderUnique[T any](c View[T], key func(T) float64) *ReorderUnique[T] {
	n := c.Size()
	type entry struct {
		idx int
		key float64
	}
	entries := make([]entry, 0, n)
	for i := 0; i < n; i++ {
		x, err := c.At(i)
		if err != nil {
			continue
		}
		entries = append(entries, entry{idx: i, key: key(x)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	seen := make(map[float64]struct{}, len(entries))
	perm := make([]int, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.key]; ok {
			continue
		}
		seen[e.key] = struct{}{}
		perm = append(perm, e.idx)
	}
	return &ReorderUnique[T]{c: c, perm: perm}
}

func (r *ReorderUnique[T]) Size() int { return len(r.perm) }

func (r *ReorderUnique[T]) At(i int) (T, error) {
	if i < 0 || i >= len(r.perm) {
		var zero T
		return zero, errs.IndexKind.New(i, len(r.perm))
	}
	return r.c.At(r.perm[i])
}

func (r *ReorderUnique[T]) Count(x T) int {
	return r.CountFunc(x, func(a, b T) bool { return any(a) == any(b) })
}

func (r *ReorderUnique[T]) CountFunc(x T, eq func(a, b T) bool) int {
	return countDefault[T](r, x, eq)
}

func (r *ReorderUnique[T]) ForAll(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAll[T](ctx, d, r, task)
}

func (r *ReorderUnique[T]) ForAny(ctx context.Context, d *parallel.Driver, task func(context.Context, T) (bool, error)) (bool, error) {
	return runForAny[T](ctx, d, r, task)
}
