package main

import (
	"testing"

	"github.com/hashicorp/cli"
	"github.com/stretchr/testify/require"
)

func TestBenchCommandImplementsCliCommand(t *testing.T) {
	var _ cli.Command = &BenchCommand{}
}

func TestBenchCommandAllCasesPass(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &BenchCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run(nil)
	require.Equal(t, 0, code)

	out := ui.OutputWriter.String()
	require.Contains(t, out, "PASS")
	require.NotContains(t, out, "FAIL")
	require.Contains(t, out, "ExecutionStats{")
}

func TestBenchCommandRespectsWorkersFlag(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &BenchCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run([]string{"-workers", "2"})
	require.Equal(t, 0, code)
}
