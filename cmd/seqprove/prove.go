package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"

	"github.com/gitrdm/seqprove/pkg/formula"
	"github.com/gitrdm/seqprove/pkg/sequent"
	"github.com/gitrdm/seqprove/pkg/syntax"
)

// ProveCommand implements `seqprove prove`: it decides whether a
// comma-separated antecedent list entails a comma-separated succedent list.
type ProveCommand struct {
	Meta
}

func (c *ProveCommand) Help() string {
	return strings.TrimSpace(`
Usage: seqprove prove [options]

  Decides whether the antecedent (-left) entails the succedent (-right) in
  the sequent calculus: left |- right.

  Formulae use connective-call notation over bare atom names, e.g.:

    seqprove prove -left "a,Impl(a,b)" -right "b"
    seqprove prove -left "" -right "Or(a,Not(a))"

Options:

  -left     Comma-separated list of antecedent formulae (default: empty)
  -right    Comma-separated list of succedent formulae (default: empty)
  -trace    Print the proof-search trace to stderr
  -verbose  Enable debug-level logging
`)
}

func (c *ProveCommand) Synopsis() string {
	return "Decide whether a sequent Left |- Right is derivable"
}

func (c *ProveCommand) Run(args []string) int {
	fs := c.flagSet("prove")
	var left, right string
	var trace, verbose bool
	fs.StringVar(&left, "left", "", "comma-separated antecedent formulae")
	fs.StringVar(&right, "right", "", "comma-separated succedent formulae")
	fs.BoolVar(&trace, "trace", false, "print the proof-search trace")
	fs.BoolVar(&verbose, "verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing arguments: %s", err))
		return 1
	}

	leftFs, err := syntax.ParseList(left)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing -left: %s", err))
		return 1
	}
	rightFs, err := syntax.ParseList(right)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing -right: %s", err))
		return 1
	}

	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{Name: "seqprove", Level: level})

	opts := []sequent.Option{sequent.WithLogger(logger)}
	if trace {
		opts = append(opts, sequent.WithTrace(os.Stderr))
	}

	ok, err := sequent.Prove(context.Background(), leftFs, rightFs, opts...)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error during proof search: %s", err))
		return 1
	}

	if ok {
		c.Ui.Output(color.GreenString("derivable: %s", renderSequent(leftFs, rightFs)))
		return 0
	}
	c.Ui.Output(color.RedString("not derivable: %s", renderSequent(leftFs, rightFs)))
	return 1
}

func renderSequent(left, right []*formula.Formula) string {
	return fmt.Sprintf("%s |- %s", joinFormulae(left), joinFormulae(right))
}

func joinFormulae(fs []*formula.Formula) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
