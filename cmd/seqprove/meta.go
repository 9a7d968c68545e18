package main

import (
	"flag"
	"io"

	"github.com/hashicorp/cli"
)

// Meta holds state shared by every subcommand.
type Meta struct {
	Ui cli.Ui
}

// flagSet returns a FlagSet whose own usage/error text is discarded; a
// subcommand reports parse errors through Meta.Ui instead.
func (m *Meta) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}
