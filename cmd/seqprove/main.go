// Command seqprove is a CLI front end over pkg/sequent's proof-search
// engine: it decides whether a sequent is derivable (`prove`) and runs a
// fixed timing benchmark over a catalogue of known sequents (`bench`).
package main

import (
	"os"

	"github.com/hashicorp/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ui := &cli.ColoredUi{
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
		OutputColor: cli.UiColorNone,
		InfoColor:   cli.UiColorNone,
		ErrorColor:  cli.UiColorRed,
		WarnColor:   cli.UiColorYellow,
	}

	meta := Meta{Ui: ui}

	c := cli.NewCLI("seqprove", "0.1.0")
	c.Args = args
	c.Commands = map[string]cli.CommandFactory{
		"prove": func() (cli.Command, error) {
			return &ProveCommand{Meta: meta}, nil
		},
		"bench": func() (cli.Command, error) {
			return &BenchCommand{Meta: meta}, nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}
	return exitStatus
}
