package formula

import "github.com/gitrdm/seqprove/pkg/symbol"

// The functions below stand in for spec.md §6's operator sugar on formulae
// (a%b = Equiv, a<<b = Impl, a>>b = RImpl, ~a = Not, a&b = And, a|b = Or,
// a^b = Xor). Go does not allow user types to overload %, <<, >>, ~, &, |, ^
// the way the source's embedded DSL does, so named constructor functions are
// the idiomatic substitute — see SPEC_FULL.md §9's "operator sugar" note.

// Not builds ¬a.
func Not(a *Formula) *Formula { return NewConnective(symbol.Not, a) }

// And builds a conjunction over one or more conjuncts.
func And(fs ...*Formula) *Formula { return NewConnective(symbol.And, fs...) }

// Or builds a disjunction over one or more disjuncts.
func Or(fs ...*Formula) *Formula { return NewConnective(symbol.Or, fs...) }

// NAnd builds a negated conjunction (NAND) over one or more conjuncts.
func NAnd(fs ...*Formula) *Formula { return NewConnective(symbol.NAnd, fs...) }

// NOr builds a negated disjunction (NOR) over one or more disjuncts.
func NOr(fs ...*Formula) *Formula { return NewConnective(symbol.NOr, fs...) }

// Xor builds an exclusive-or over a, b.
func Xor(a, b *Formula) *Formula { return NewConnective(symbol.Xor, a, b) }

// Equiv builds a↔b.
func Equiv(a, b *Formula) *Formula { return NewConnective(symbol.Equiv, a, b) }

// Impl builds a→b (left-implication: a<<b in spec.md's sugar).
func Impl(a, b *Formula) *Formula { return NewConnective(symbol.Impl, a, b) }

// RImpl builds a reverse implication a←b, i.e. b→a (a>>b in spec.md's sugar).
func RImpl(a, b *Formula) *Formula { return NewConnective(symbol.RImpl, a, b) }

// NImpl builds the negation of Impl(a,b).
func NImpl(a, b *Formula) *Formula { return NewConnective(symbol.NImpl, a, b) }

// NRImpl builds the negation of RImpl(a,b).
func NRImpl(a, b *Formula) *Formula { return NewConnective(symbol.NRImpl, a, b) }

// TrueF builds the True connective (named TrueF to avoid colliding with the
// Go keyword true).
func TrueF() *Formula { return NewConnective(symbol.True) }

// FalseF builds the False connective.
func FalseF() *Formula { return NewConnective(symbol.False) }
