// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bureau-foundation/litehost/lib/function"
	"github.com/bureau-foundation/litehost/lib/sqlfuncs"
)

type functionEntry struct {
	Name  string `json:"name"`
	Arity int    `json:"arity"`
	Kind  string `json:"kind"`
}

func runFunctions(args []string, stdout io.Writer) error {
	flagSet := newFlagSet("functions", "[flags]")
	asJSON := flagSet.Bool("json", false, "print as JSON")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	registry := function.NewRegistry(nil)
	if err := sqlfuncs.Register(registry); err != nil {
		return err
	}
	descriptors := registry.Descriptors()

	if *asJSON {
		entries := make([]functionEntry, len(descriptors))
		for i, descriptor := range descriptors {
			entries[i] = functionEntry{Name: descriptor.Name, Arity: descriptor.Arity, Kind: descriptor.Kind.String()}
		}
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}
	for _, descriptor := range descriptors {
		fmt.Fprintln(stdout, descriptor.String())
	}
	return nil
}
