// Package errs defines the typed error taxonomy shared by the prover's
// subsystems. Each kind corresponds to one of the abstract error categories
// named in the specification: a violated view contract, a cross-view
// iterator mismatch, an internal invariant break, a propagated task
// exception, a locking misuse, a rejected transaction, a debug-only
// assertion, or an unsupported connective reaching breakdown.
//
// Kinds are built on gopkg.in/src-d/go-errors.v1 so callers can match with
// errors.Is against the exported Kind values instead of parsing message
// strings or declaring their own sentinel variables per package.
package errs

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// IndexKind is returned when a view is indexed outside [0, Size()).
	IndexKind = goerrors.NewKind("index %d out of range [0, %d)")

	// IteratorKind is returned when two views built over unrelated
	// underlying sequences are compared or subtracted.
	IteratorKind = goerrors.NewKind("iterators from different underlying views: %s")

	// RuntimeKind marks an internal invariant violation: a "should not be
	// here" path.
	RuntimeKind = goerrors.NewKind("internal invariant violated: %s")

	// ThreadKind wraps an exception captured from a task body running
	// inside the parallel driver.
	ThreadKind = goerrors.NewKind("task failed: %s")

	// DeadlockKind is returned when a lock is upgraded twice or downgraded
	// while inactive.
	DeadlockKind = goerrors.NewKind("locking protocol violated: %s")

	// TransactionKind is returned when a transaction's validator rejects a
	// commit and the caller has exhausted its retry budget.
	TransactionKind = goerrors.NewKind("transaction rejected: %s")

	// AssertionKind is a debug-only invariant check; it carries the file
	// and line of the assertion that failed.
	AssertionKind = goerrors.NewKind("assertion failed at %s:%d: %s")

	// UnsupportedConnectiveKind is reserved for breakdown cases the prover
	// does not implement: quantifier formulae, which are scaffolded but not
	// exercised by the propositional core.
	UnsupportedConnectiveKind = goerrors.NewKind("breakdown: unsupported connective %s on side %s")
)
