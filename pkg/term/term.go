// Package term implements the expression sub-language formulae's relation
// nodes carry their arguments in: named variables, transparent forwarding
// references (used for sharing), and a stub function-application variant
// reserved for, but not exercised by, the propositional prover.
package term

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
)

// Set is a small string-keyed set of free variable names. A plain map is
// sufficient here: expressions in this package are small and free-variable
// sets are rarely large enough to warrant a specialized structure.
type Set map[string]struct{}

// NewSet builds a Set from the given names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Union returns the union of s and other, leaving both untouched.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Expression is the term sub-language's common interface. Every variant
// exposes groundness, free variables, a seeded hash, syntactic identity
// (transparent through References), size, indexed access over any
// sub-structure, and substitution.
type Expression interface {
	fmt.Stringer

	// IsGround reports whether the expression contains no free variables.
	IsGround() bool

	// FreeVariables returns the set of variable names occurring free in
	// the expression.
	FreeVariables() Set

	// Hash returns a hash seeded by seed, stable across equal expressions
	// including across a Reference indirection.
	Hash(seed uint64) uint64

	// Identical reports syntactic structural equality, transparent to
	// References.
	Identical(other Expression) bool

	// Size reports the number of nodes in the expression.
	Size() int

	// At returns the i-th child sub-expression. Variables and References
	// (once resolved) have no children and panic if indexed.
	At(i int) Expression

	// Substitute applies σ, replacing every free occurrence of a variable
	// σ maps with its image.
	Substitute(sigma Substitution) Expression
}

// Substitution maps variable names to the expression they stand for.
type Substitution map[string]Expression

// Variable is a named logic-level term variable.
type Variable struct {
	Name string
}

// NewVariable constructs a named variable.
func NewVariable(name string) *Variable { return &Variable{Name: name} }

func (v *Variable) String() string { return v.Name }

func (v *Variable) IsGround() bool { return false }

func (v *Variable) FreeVariables() Set { return NewSet(v.Name) }

func (v *Variable) Hash(seed uint64) uint64 {
	h, err := hashstructure.Hash(struct {
		Seed uint64
		Kind string
		Name string
	}{seed, "var", v.Name}, nil)
	if err != nil {
		panic(err)
	}
	return h
}

func (v *Variable) Identical(other Expression) bool {
	o := resolve(other)
	ov, ok := o.(*Variable)
	return ok && ov.Name == v.Name
}

func (v *Variable) Size() int { return 1 }

func (v *Variable) At(i int) Expression {
	panic(fmt.Sprintf("term: Variable has no children, got index %d", i))
}

func (v *Variable) Substitute(sigma Substitution) Expression {
	if e, ok := sigma[v.Name]; ok {
		return e
	}
	return v
}

// Reference transparently forwards to another expression, used to let
// multiple relation argument positions share one underlying sub-expression
// without copying it. Every Expression method on Reference resolves through
// Target first, so a Reference is invisible to Identical/Hash/Size/At.
type Reference struct {
	Target Expression
}

// NewReference wraps target in a transparent forwarding reference.
func NewReference(target Expression) *Reference { return &Reference{Target: target} }

func resolve(e Expression) Expression {
	for {
		r, ok := e.(*Reference)
		if !ok {
			return e
		}
		e = r.Target
	}
}

func (r *Reference) String() string { return resolve(r).String() }

func (r *Reference) IsGround() bool { return resolve(r).IsGround() }

func (r *Reference) FreeVariables() Set { return resolve(r).FreeVariables() }

func (r *Reference) Hash(seed uint64) uint64 { return resolve(r).Hash(seed) }

func (r *Reference) Identical(other Expression) bool { return resolve(r).Identical(other) }

func (r *Reference) Size() int { return resolve(r).Size() }

func (r *Reference) At(i int) Expression { return resolve(r).At(i) }

func (r *Reference) Substitute(sigma Substitution) Expression {
	return resolve(r).Substitute(sigma)
}

// FuncApp is a function-application expression: a named head applied to
// argument expressions. It is declared for extensibility (spec.md §3 notes
// the expression language is "extensible for function application") but is
// not constructed or dispatched on anywhere in the prover — relations never
// reach this variant because breakdown never inspects relation arguments.
type FuncApp struct {
	Head string
	Args []Expression
}

// NewFuncApp constructs a function-application expression.
func NewFuncApp(head string, args ...Expression) *FuncApp {
	return &FuncApp{Head: head, Args: args}
}

func (f *FuncApp) String() string {
	s := f.Head + "("
	for i, a := range f.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func (f *FuncApp) IsGround() bool {
	for _, a := range f.Args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

func (f *FuncApp) FreeVariables() Set {
	out := Set{}
	for _, a := range f.Args {
		out = out.Union(a.FreeVariables())
	}
	return out
}

func (f *FuncApp) Hash(seed uint64) uint64 {
	childHashes := make([]uint64, len(f.Args))
	for i, a := range f.Args {
		childHashes[i] = a.Hash(seed)
	}
	h, err := hashstructure.Hash(struct {
		Seed uint64
		Kind string
		Head string
		Args []uint64
	}{seed, "funcapp", f.Head, childHashes}, nil)
	if err != nil {
		panic(err)
	}
	return h
}

func (f *FuncApp) Identical(other Expression) bool {
	o := resolve(other)
	of, ok := o.(*FuncApp)
	if !ok || of.Head != f.Head || len(of.Args) != len(f.Args) {
		return false
	}
	for i := range f.Args {
		if !f.Args[i].Identical(of.Args[i]) {
			return false
		}
	}
	return true
}

func (f *FuncApp) Size() int {
	n := 1
	for _, a := range f.Args {
		n += a.Size()
	}
	return n
}

func (f *FuncApp) At(i int) Expression { return f.Args[i] }

func (f *FuncApp) Substitute(sigma Substitution) Expression {
	newArgs := make([]Expression, len(f.Args))
	for i, a := range f.Args {
		newArgs[i] = a.Substitute(sigma)
	}
	return &FuncApp{Head: f.Head, Args: newArgs}
}
