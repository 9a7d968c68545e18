// Package sequent implements the proof-search engine: given two finite
// sequences of formulae Γ and Δ, it decides whether Γ ⊢ Δ is derivable in a
// Gentzen-style sequent calculus, trying the empty-sequent axiom, the
// initial-sequent axiom (via the equality oracle) and a polarity-guided
// breakdown of some formula's top connective, all explored in parallel with
// short-circuit.
package sequent

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-uuid"

	"github.com/gitrdm/seqprove/internal/errs"
	"github.com/gitrdm/seqprove/internal/parallel"
	"github.com/gitrdm/seqprove/pkg/equality"
	"github.com/gitrdm/seqprove/pkg/formula"
	"github.com/gitrdm/seqprove/pkg/symbol"
	"github.com/gitrdm/seqprove/pkg/view"
)

// Sequent is a pair (Left, Right) of finite formula multisets, represented
// as lazy views, read Left ⊢ Right.
type Sequent struct {
	Left  view.View[*formula.Formula]
	Right view.View[*formula.Formula]
}

// Config carries the process-wide knobs spec.md §9 asks to be made explicit
// configuration rather than globals: a worker pool (admission cap) and a
// logger handed to the equality cache and the parallel driver. Proof-tree
// tracing goes to Trace, not to the logger.
type Config struct {
	Pool   *parallel.WorkerPool
	Logger hclog.Logger

	// Trace, if non-nil, receives an indented proof-tree log of every
	// breakdown dispatch (side, symbol, chosen premises). This is purely
	// diagnostic text, never a checkable proof object.
	Trace io.Writer
}

// Option configures a top-level Prove call.
type Option func(*Config)

// WithPool overrides the default worker pool (bounded to runtime.NumCPU()).
func WithPool(pool *parallel.WorkerPool) Option {
	return func(c *Config) { c.Pool = pool }
}

// WithLogger attaches an hclog.Logger for proof-search diagnostics.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithTrace attaches a proof-tree trace sink.
func WithTrace(w io.Writer) Option {
	return func(c *Config) { c.Trace = w }
}

// ProofID is a generated correlation identifier for one top-level Prove
// call, threaded through trace output and logging.
type ProofID string

// proofState is the per-call context threaded through prove/breakdown: the
// shared equality cache (owned by the top-level call, per spec.md §4.6), the
// parallel driver, the proof ID, and an indent depth for trace output.
type proofState struct {
	cache  *equality.Cache
	driver *parallel.Driver
	trace  io.Writer
	id     ProofID
	depth  int
}

func (s *proofState) tracef(format string, args ...any) {
	if s.trace == nil {
		return
	}
	prefix := ""
	for i := 0; i < s.depth; i++ {
		prefix += "  "
	}
	fmt.Fprintf(s.trace, "%s%s\n", prefix, fmt.Sprintf(format, args...))
}

func (s *proofState) child() *proofState {
	return &proofState{cache: s.cache, driver: s.driver, trace: s.trace, id: s.id, depth: s.depth + 1}
}

// Prove decides whether left ⊢ right is derivable, building a fresh
// equality cache scoped to this top-level call (sub-proofs share it, per
// spec.md §4.6).
func Prove(ctx context.Context, left, right []*formula.Formula, opts ...Option) (bool, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Pool == nil {
		cfg.Pool = parallel.NewWorkerPool(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	id, err := uuid.GenerateUUID()
	if err != nil {
		id = "unavailable"
	}

	st := &proofState{
		cache:  equality.New(cfg.Logger),
		driver: parallel.New(cfg.Pool, cfg.Logger),
		trace:  cfg.Trace,
		id:     ProofID(id),
	}
	st.tracef("prove id=%s |Γ|=%d |Δ|=%d", st.id, len(left), len(right))

	seq := Sequent{
		Left:  view.NewShadow(left),
		Right: view.NewShadow(right),
	}
	return prove(ctx, st, seq)
}

// guideEqual is the Cartesian-pair sort key for the initial-sequent axiom
// search: cheap pairs (small total size, similar size) are tried first.
func guideEqual(p, q *formula.Formula) float64 {
	sp, sq := float64(p.TotalSize()), float64(q.TotalSize())
	diff := sp - sq
	if diff < 0 {
		diff = -diff
	}
	return (sp + sq) * (1 + diff)
}

// guideNegative/guidePositive are the polarity-aware breakdown sort keys:
// the size of f if it sits on the named side, else the formula contributes
// nothing from that side.
func guideNegative(f *formula.Formula) float64 { return float64(f.TotalSize()) }
func guidePositive(f *formula.Formula) float64 { return float64(f.TotalSize()) }

// side tags which half of the sequent a formula (inside the Γ+Δ breakdown
// view) came from.
type side int

const (
	sideLeft side = iota
	sideRight
)

func (s side) String() string {
	if s == sideLeft {
		return "Γ"
	}
	return "Δ"
}

// tagged pairs a formula with which side it was drawn from, for the
// breakdown search's Γ+Δ view.
type tagged struct {
	f *formula.Formula
	s side
}

func prove(ctx context.Context, st *proofState, seq Sequent) (bool, error) {
	// Step 1: empty-sequent axiom.
	if seq.Left.Size() == 0 && seq.Right.Size() == 0 {
		st.tracef("axiom: empty sequent")
		return true, nil
	}

	// Step 2: initial-sequent axiom via the equality oracle, over the
	// cheapest-first Cartesian Γ×Δ.
	pairs := view.NewCartesian[*formula.Formula, *formula.Formula](seq.Left, seq.Right)
	ordered := view.NewReorder[view.Pair[*formula.Formula, *formula.Formula]](pairs, func(p view.Pair[*formula.Formula, *formula.Formula]) float64 {
		return guideEqual(p.First, p.Second)
	})
	found, err := ordered.ForAny(ctx, st.driver, func(ctx context.Context, p view.Pair[*formula.Formula, *formula.Formula]) (bool, error) {
		return st.cache.Equal(p.First, p.Second)
	})
	if err != nil {
		return false, err
	}
	if found {
		st.tracef("axiom: initial sequent (equal pair found)")
		return true, nil
	}

	// Step 3: break down some formula, cheapest (by polarity-aware key)
	// first.
	tagLeft := make([]tagged, seq.Left.Size())
	for i := 0; i < seq.Left.Size(); i++ {
		f, err := seq.Left.At(i)
		if err != nil {
			return false, err
		}
		tagLeft[i] = tagged{f: f, s: sideLeft}
	}
	tagRight := make([]tagged, seq.Right.Size())
	for i := 0; i < seq.Right.Size(); i++ {
		f, err := seq.Right.At(i)
		if err != nil {
			return false, err
		}
		tagRight[i] = tagged{f: f, s: sideRight}
	}
	candidates := view.NewConcat[tagged](view.NewShadow(tagLeft), view.NewShadow(tagRight))
	orderedCandidates := view.NewReorder[tagged](candidates, func(t tagged) float64 {
		if t.s == sideLeft {
			return guideNegative(t.f)
		}
		return guidePositive(t.f)
	})

	return orderedCandidates.ForAny(ctx, st.driver, func(ctx context.Context, t tagged) (bool, error) {
		return breakdown(ctx, st.child(), seq, t)
	})
}

// without returns a view over all of c except the elements pointer-identical
// to target, via Difference over a Singleton. c is first materialized through
// Unfold so the Difference always has a traceable source, whatever
// combinators c was built from.
func without(c view.View[*formula.Formula], target *formula.Formula) view.View[*formula.Formula] {
	return view.NewDifference[*formula.Formula](view.NewUnfold(c), view.NewSingleton(target))
}

// plus returns a lazy view over c with extra appended, via Concat.
func plus(c view.View[*formula.Formula], extra ...*formula.Formula) view.View[*formula.Formula] {
	if len(extra) == 0 {
		return c
	}
	return view.NewConcat[*formula.Formula](c, view.NewShadow(extra))
}

// breakdown applies the sequent-calculus inference rule selected by t's side
// and its formula's top symbol, recursing into sub_prove with the modified
// context views. It reproduces spec.md §4.4's rule table verbatim, including
// the NImpl/NRImpl-on-Δ disjunctive asymmetry spec.md §9 flags but does not
// correct.
func breakdown(ctx context.Context, st *proofState, seq Sequent, t tagged) (bool, error) {
	f := t.f
	sym := f.Symbol

	// Atoms (relation formulae) have no inference rule and close a branch
	// only through the initial-sequent axiom; quantifiers are scaffolded
	// and have no breakdown rule either.
	switch f.Kind() {
	case formula.KindRelation:
		return false, nil
	case formula.KindQuantifier:
		return false, errs.UnsupportedConnectiveKind.New(sym.Name(), t.s.String())
	}

	gammaMinus := without(seq.Left, f)
	deltaMinus := without(seq.Right, f)

	st.tracef("breakdown side=%s symbol=%s", t.s, sym)

	subProve := func(left, right view.View[*formula.Formula]) (bool, error) {
		return prove(ctx, st, Sequent{Left: left, Right: right})
	}

	if t.s == sideLeft {
		switch sym {
		case symbol.True:
			return subProve(gammaMinus, seq.Right)
		case symbol.False:
			return true, nil
		case symbol.Not:
			return subProve(gammaMinus, plus(seq.Right, f.Children[0]))
		case symbol.And:
			return subProve(plus(gammaMinus, f.Children...), seq.Right)
		case symbol.Or:
			return forAllChildren(ctx, st, f.Children, func(ctx context.Context, x *formula.Formula) (bool, error) {
				return subProve(plus(gammaMinus, x), seq.Right)
			})
		case symbol.NOr:
			return subProve(gammaMinus, plus(seq.Right, f.Children...))
		case symbol.NAnd:
			return forAllChildren(ctx, st, f.Children, func(ctx context.Context, x *formula.Formula) (bool, error) {
				return subProve(gammaMinus, plus(seq.Right, x))
			})
		case symbol.Impl:
			x, y := f.Children[0], f.Children[1]
			return forAnyOf(ctx, st,
				func() (bool, error) { return subProve(plus(gammaMinus, y), seq.Right) },
				func() (bool, error) { return subProve(gammaMinus, plus(seq.Right, x)) },
			)
		case symbol.RImpl:
			x, y := f.Children[0], f.Children[1]
			return forAnyOf(ctx, st,
				func() (bool, error) { return subProve(plus(gammaMinus, x), seq.Right) },
				func() (bool, error) { return subProve(gammaMinus, plus(seq.Right, y)) },
			)
		case symbol.NImpl:
			x, y := f.Children[0], f.Children[1]
			return subProve(plus(gammaMinus, y), plus(seq.Right, x))
		case symbol.NRImpl:
			x, y := f.Children[0], f.Children[1]
			return subProve(plus(gammaMinus, x), plus(seq.Right, y))
		default:
			return false, nil
		}
	}

	switch sym {
	case symbol.False:
		return subProve(seq.Left, deltaMinus)
	case symbol.True:
		return true, nil
	case symbol.Not:
		return subProve(plus(seq.Left, f.Children[0]), deltaMinus)
	case symbol.Or:
		return subProve(seq.Left, plus(deltaMinus, f.Children...))
	case symbol.And:
		return forAllChildren(ctx, st, f.Children, func(ctx context.Context, x *formula.Formula) (bool, error) {
			return subProve(seq.Left, plus(deltaMinus, x))
		})
	case symbol.NAnd:
		return subProve(plus(seq.Left, f.Children...), deltaMinus)
	case symbol.NOr:
		return forAllChildren(ctx, st, f.Children, func(ctx context.Context, x *formula.Formula) (bool, error) {
			return subProve(plus(seq.Left, x), deltaMinus)
		})
	case symbol.Impl:
		x, y := f.Children[0], f.Children[1]
		return subProve(plus(seq.Left, x), plus(deltaMinus, y))
	case symbol.RImpl:
		x, y := f.Children[0], f.Children[1]
		return subProve(plus(seq.Left, y), plus(deltaMinus, x))
	case symbol.NImpl:
		// Disjunctive on Δ — reproduces the source's asymmetry verbatim;
		// see spec.md §9. Not corrected to the conjunctive dual a textbook
		// calculus would use.
		x, y := f.Children[0], f.Children[1]
		return forAnyOf(ctx, st,
			func() (bool, error) { return subProve(plus(seq.Left, y), seq.Right) },
			func() (bool, error) { return subProve(seq.Left, plus(seq.Right, x)) },
		)
	case symbol.NRImpl:
		x, y := f.Children[0], f.Children[1]
		return forAnyOf(ctx, st,
			func() (bool, error) { return subProve(plus(seq.Left, x), seq.Right) },
			func() (bool, error) { return subProve(seq.Left, plus(seq.Right, y)) },
		)
	default:
		return false, nil
	}
}

// forAllChildren evaluates task over xs in parallel, short-circuiting to
// false (spec.md's "for each" branching, which must ALL prove).
func forAllChildren(ctx context.Context, st *proofState, xs []*formula.Formula, task func(context.Context, *formula.Formula) (bool, error)) (bool, error) {
	v := view.NewShadow(xs)
	return v.ForAll(ctx, st.driver, task)
}

// forAnyOf evaluates a fixed set of alternative premises in parallel,
// short-circuiting to true (spec.md's "disjunctively" branching).
func forAnyOf(ctx context.Context, st *proofState, alts ...func() (bool, error)) (bool, error) {
	v := view.NewShadow(alts)
	return v.ForAny(ctx, st.driver, func(ctx context.Context, alt func() (bool, error)) (bool, error) {
		return alt()
	})
}
