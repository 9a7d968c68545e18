package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"

	"github.com/gitrdm/seqprove/internal/parallel"
	"github.com/gitrdm/seqprove/pkg/formula"
	"github.com/gitrdm/seqprove/pkg/sequent"
)

// BenchCommand implements `seqprove bench`: it runs a fixed catalogue of
// sequents of known provability and reports wall-clock time and pass/fail
// per case, plus the shared worker pool's execution statistics.
type BenchCommand struct {
	Meta
}

func (c *BenchCommand) Help() string {
	return strings.TrimSpace(`
Usage: seqprove bench [options]

  Runs a fixed catalogue of sequents with known provability and reports
  pass/fail and timing for each, plus aggregate worker pool statistics.

Options:

  -workers  Worker pool size (default: runtime.NumCPU())
`)
}

func (c *BenchCommand) Synopsis() string {
	return "Run the canonical proof-search benchmark suite"
}

type benchCase struct {
	name  string
	left  []*formula.Formula
	right []*formula.Formula
	want  bool
}

func benchCatalogue() []benchCase {
	a, b, cc := formula.Atom("a"), formula.Atom("b"), formula.Atom("c")

	return []benchCase{
		{"identity", []*formula.Formula{a}, []*formula.Formula{a}, true},
		{"distinct atoms", []*formula.Formula{a}, []*formula.Formula{b}, false},
		{"excluded middle", nil, []*formula.Formula{formula.Or(a, formula.Not(a))}, true},
		{"modus ponens", []*formula.Formula{a, formula.Impl(a, b)}, []*formula.Formula{b}, true},
		{
			"implication transitivity",
			[]*formula.Formula{formula.Impl(a, b), formula.Impl(b, cc)},
			[]*formula.Formula{formula.Impl(a, cc)},
			true,
		},
		{
			"implication converse is not entailed",
			[]*formula.Formula{formula.Impl(a, b)},
			[]*formula.Formula{formula.Impl(b, a)},
			false,
		},
		{
			"de morgan: not(a and b) entails not a or not b",
			[]*formula.Formula{formula.Not(formula.And(a, b))},
			[]*formula.Formula{formula.Or(formula.Not(a), formula.Not(b))},
			true,
		},
		{
			"nested implication tautology",
			nil,
			[]*formula.Formula{formula.Impl(a, formula.Impl(b, a))},
			true,
		},
		{
			"three-way and distributes over or",
			[]*formula.Formula{formula.And(a, formula.Or(b, cc))},
			[]*formula.Formula{formula.Or(formula.And(a, b), formula.And(a, cc))},
			true,
		},
	}
}

func (c *BenchCommand) Run(args []string) int {
	fs := c.flagSet("bench")
	var workers int
	fs.IntVar(&workers, "workers", 0, "worker pool size")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing arguments: %s", err))
		return 1
	}

	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()
	logger := hclog.New(&hclog.LoggerOptions{Name: "seqprove-bench", Level: hclog.Warn})

	cases := benchCatalogue()
	failures := 0
	for _, tc := range cases {
		start := time.Now()
		got, err := sequent.Prove(context.Background(), tc.left, tc.right,
			sequent.WithPool(pool), sequent.WithLogger(logger))
		elapsed := time.Since(start)

		if err != nil {
			failures++
			c.Ui.Output(color.RedString("FAIL  %-40s error: %s", tc.name, err))
			continue
		}
		if got != tc.want {
			failures++
			c.Ui.Output(color.RedString("FAIL  %-40s want=%v got=%v (%s)", tc.name, tc.want, got, elapsed))
			continue
		}
		c.Ui.Output(color.GreenString("PASS  %-40s (%s)", tc.name, elapsed))
	}

	c.Ui.Output("")
	c.Ui.Output(pool.Stats().String())

	if failures > 0 {
		c.Ui.Error(fmt.Sprintf("%d of %d cases failed", failures, len(cases)))
		return 1
	}
	return 0
}
