// Package symbol defines the fixed catalogue of connective, relation and
// quantifier atoms the formula language is built from. A Symbol is immutable
// and process-wide: the catalogue below is constructed once at package init
// and every Formula references one of these values rather than allocating
// its own.
package symbol

import (
	"github.com/mitchellh/hashstructure"
)

// Class partitions symbols by the shape of formula node they head: a
// connective's children are formulae, a relation's children are expressions,
// a quantifier's single child is a bound variable plus a body formula.
type Class int

const (
	ClassConnective Class = iota
	ClassRelation
	ClassQuantifier
)

func (c Class) String() string {
	switch c {
	case ClassRelation:
		return "relation"
	case ClassQuantifier:
		return "quantifier"
	default:
		return "connective"
	}
}

// Symbol is an immutable atom: a display name plus the two Boolean flags
// spec.md §3 defines equality and hashing over. Construct new symbols only
// through newSymbol during package init; consumers use the exported
// catalogue values.
type Symbol struct {
	name         string
	isRelation   bool
	isQuantifier bool
	hash         uint64
}

func newSymbol(name string, isRelation, isQuantifier bool) *Symbol {
	s := &Symbol{name: name, isRelation: isRelation, isQuantifier: isQuantifier}
	h, err := hashstructure.Hash(struct {
		Name         string
		IsRelation   bool
		IsQuantifier bool
	}{name, isRelation, isQuantifier}, nil)
	if err != nil {
		// hashstructure only fails on unsupported types; a struct of a
		// string and two bools is always supported.
		panic(err)
	}
	s.hash = h
	return s
}

// Name returns the symbol's display string.
func (s *Symbol) Name() string { return s.name }

// IsRelation reports whether this symbol heads a relation-class formula.
func (s *Symbol) IsRelation() bool { return s.isRelation }

// IsQuantifier reports whether this symbol heads a quantifier-class formula.
func (s *Symbol) IsQuantifier() bool { return s.isQuantifier }

// Class reports the symbol's polarity/shape class, intrinsic to the symbol
// per spec.md §3.
func (s *Symbol) Class() Class {
	switch {
	case s.isQuantifier:
		return ClassQuantifier
	case s.isRelation:
		return ClassRelation
	default:
		return ClassConnective
	}
}

// Hash returns the symbol's stable 64-bit hash, derived from
// (isRelation, isQuantifier, name) as spec.md §3 requires.
func (s *Symbol) Hash() uint64 { return s.hash }

// Equal reports (relation, quantifier, string)-equality. Since the catalogue
// below constructs each symbol exactly once, pointer identity already
// implies value equality for any symbol obtained from this package; Equal
// exists for symbols built independently (e.g. in tests).
func (s *Symbol) Equal(other *Symbol) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.isRelation == other.isRelation &&
		s.isQuantifier == other.isQuantifier &&
		s.name == other.name
}

func (s *Symbol) String() string { return s.name }

// AC reports whether this symbol is treated as associative/commutative by
// the equality oracle: And, Or, NAnd, NOr, Xor, NXor, Equiv, NEquiv.
func (s *Symbol) AC() bool {
	switch s {
	case And, Or, NAnd, NOr, Xor, NXor, Equiv, NEquiv:
		return true
	default:
		return false
	}
}

// The fixed catalogue from spec.md §3.
var (
	Not    = newSymbol("Not", false, false)
	And    = newSymbol("And", false, false)
	Or     = newSymbol("Or", false, false)
	NAnd   = newSymbol("NAnd", false, false)
	NOr    = newSymbol("NOr", false, false)
	Xor    = newSymbol("Xor", false, false)
	NXor   = newSymbol("NXor", false, false)
	Equiv  = newSymbol("Equiv", false, false)
	NEquiv = newSymbol("NEquiv", false, false)
	Impl   = newSymbol("Impl", false, false)
	NImpl  = newSymbol("NImpl", false, false)
	RImpl  = newSymbol("RImpl", false, false)
	NRImpl = newSymbol("NRImpl", false, false)
	True   = newSymbol("True", false, false)
	False  = newSymbol("False", false, false)
	Id     = newSymbol("Id", false, false)

	ForAll = newSymbol("ForAll", false, true)
	Exists = newSymbol("Exists", false, true)

	Ident  = newSymbol("Ident", true, false)
	NIdent = newSymbol("NIdent", true, false)
	Equal  = newSymbol("Equal", true, false)
	NEqual = newSymbol("NEqual", true, false)
	Pred   = newSymbol("Pred", true, false)
	Succ   = newSymbol("Succ", true, false)
	EPred  = newSymbol("EPred", true, false)
	ESucc  = newSymbol("ESucc", true, false)
	NPred  = newSymbol("NPred", true, false)
	NSucc  = newSymbol("NSucc", true, false)
)
