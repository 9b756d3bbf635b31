// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/litehost/lib/process"
	"github.com/bureau-foundation/litehost/lib/version"
)

// command is one litehost subcommand.
type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer) error
}

var commands = []command{
	{name: "probe", summary: "run open/query/close cycles and report pool counts", run: runProbe},
	{name: "stats", summary: "decode a probe snapshot", run: runStats},
	{name: "functions", summary: "list stock SQL functions and collations", run: runFunctions},
	{name: "version", summary: "print build information", run: runVersion},
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		process.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stdout)
		return nil
	}
	if args[0] == "--version" {
		return runVersion(nil, stdout)
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:], stdout)
		}
	}
	printUsage(os.Stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "litehost %s\n\nUsage:\n  litehost <command> [flags]\n\nCommands:\n", version.Version)
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(w, "\nRun \"litehost <command> --help\" for command flags.\n")
}

// newFlagSet returns a flag set whose --help output goes to stderr.
func newFlagSet(name, usage string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("litehost "+name, pflag.ContinueOnError)
	flagSet.SetOutput(os.Stderr)
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  litehost %s %s\n\nFlags:\n", name, usage)
		flagSet.PrintDefaults()
	}
	return flagSet
}

func runVersion(args []string, stdout io.Writer) error {
	flagSet := newFlagSet("version", "[flags]")
	full := flagSet.Bool("full", false, "include Go version and platform")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *full {
		fmt.Fprintf(stdout, "litehost %s\n", version.Full())
		return nil
	}
	fmt.Fprintf(stdout, "litehost %s\n", version.Info())
	return nil
}
