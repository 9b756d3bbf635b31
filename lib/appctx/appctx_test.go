// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package appctx

import (
	"testing"

	"github.com/bureau-foundation/litehost/lib/config"
	"github.com/bureau-foundation/litehost/lib/connpool"
	"github.com/bureau-foundation/litehost/lib/engine/enginetest"
	"github.com/bureau-foundation/litehost/lib/function"
)

func TestNewInstallsConfiguredStrategy(t *testing.T) {
	tests := []struct {
		strategy config.Strategy
		check    func(connpool.Pool) bool
	}{
		{config.StrategyStrong, func(p connpool.Pool) bool { _, ok := p.(*connpool.Strong); return ok }},
		{config.StrategyWeak, func(p connpool.Pool) bool { _, ok := p.(*connpool.Collectible); return ok }},
		{config.StrategyNone, func(p connpool.Pool) bool { return p == nil }},
		{config.StrategyCustom, func(p connpool.Pool) bool { return p == nil }},
	}
	for _, test := range tests {
		t.Run(string(test.strategy), func(t *testing.T) {
			cfg := config.Default()
			cfg.Pool.Strategy = test.strategy
			app, err := New(Options{Config: cfg, Opener: enginetest.NewOpener()})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer app.Close()
			if got := app.Pools.ConnectionPool(); !test.check(got) {
				t.Errorf("installed pool = %T", got)
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pool.Strategy = "bogus"
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Error("New accepted an invalid config")
	}
	if _, err := New(Options{}); err == nil {
		t.Error("New accepted a nil config")
	}
}

func TestBindFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Functions.LogCallbackErrors = false
	app, err := New(Options{Config: cfg, Opener: enginetest.NewOpener()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if app.BindFlags().Has(function.LogCallbackErrors) {
		t.Error("LogCallbackErrors set although disabled in config")
	}
	cfg.Functions.LogCallbackErrors = true
	if !app.BindFlags().Has(function.LogCallbackErrors) {
		t.Error("LogCallbackErrors not set although enabled in config")
	}
}

func TestCloseTerminatesPool(t *testing.T) {
	app, err := New(Options{Config: config.Default(), Opener: enginetest.NewOpener()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	app.Close()
	if app.Pools.ConnectionPool() != nil {
		t.Error("pool still installed after Close")
	}
}
