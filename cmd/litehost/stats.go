// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/litehost/lib/codec"
)

func runStats(args []string, stdout io.Writer) error {
	flagSet := newFlagSet("stats", "SNAPSHOT [flags]")
	format := flagSet.String("format", "text", "output format: text, json, or diag (CBOR diagnostic notation)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("stats: expected one snapshot file, got %d arguments", flagSet.NArg())
	}
	if err := checkFormat(*format, "text", "json", "diag"); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	data, err := os.ReadFile(flagSet.Arg(0))
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	if *format == "diag" {
		notation, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		fmt.Fprintln(stdout, notation)
		return nil
	}

	var report snapshot
	if err := codec.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("stats: decoding %s: %w", flagSet.Arg(0), err)
	}
	return writeReport(stdout, &report, *format)
}
