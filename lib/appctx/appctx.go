// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package appctx holds the state one litehost host shares across all
// of its connections: configuration, the engine opener, the pool
// manager, and the function registry.
//
// A host builds one Context at startup, registers its functions, and
// passes the Context to connection.Open. Tests build a fresh Context
// per test instead of resetting shared state.
package appctx

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/litehost/lib/clock"
	"github.com/bureau-foundation/litehost/lib/config"
	"github.com/bureau-foundation/litehost/lib/connpool"
	"github.com/bureau-foundation/litehost/lib/engine"
	"github.com/bureau-foundation/litehost/lib/engine/sqliteengine"
	"github.com/bureau-foundation/litehost/lib/function"
)

// Options configures New. Only Config is required.
type Options struct {
	Config *config.Config

	// Opener opens native connections. Nil opens SQLite files with
	// the configured pragmas.
	Opener engine.Opener

	// Clock drives idle reclamation. Nil uses the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Context is the shared state of one host.
type Context struct {
	Config    *config.Config
	Logger    *slog.Logger
	Opener    engine.Opener
	Pools     *connpool.Manager
	Functions *function.Registry
}

// New validates the configuration and builds a Context. The pool
// strategy named by pool.strategy is installed and initialized; with
// "custom" the host installs its own through Pools.SetConnectionPool.
func New(options Options) (*Context, error) {
	cfg := options.Config
	if cfg == nil {
		return nil, fmt.Errorf("appctx: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("appctx: invalid config: %w", err)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opener := options.Opener
	if opener == nil {
		opener = sqliteengine.NewOpener(sqliteengine.Config{
			Pragmas: cfg.Database.Pragmas,
			Logger:  logger,
		})
	}

	pools := connpool.NewManager(connpool.ManagerConfig{
		Clock:         options.Clock,
		IdleTimeout:   cfg.Pool.IdleTimeoutDuration(),
		SweepInterval: cfg.Pool.SweepIntervalDuration(),
		Logger:        logger,
	})
	switch cfg.Pool.Strategy {
	case config.StrategyStrong:
		pools.CreateAndInitialize(nil, true, false)
	case config.StrategyWeak:
		pools.CreateAndInitialize(nil, false, false)
	}

	return &Context{
		Config:    cfg,
		Logger:    logger,
		Opener:    opener,
		Pools:     pools,
		Functions: function.NewRegistry(logger),
	}, nil
}

// BindFlags returns the flags connections bind functions with.
func (c *Context) BindFlags() function.BindFlags {
	var flags function.BindFlags
	if c.Config.Functions.LogCallbackErrors {
		flags |= function.LogCallbackErrors
	}
	return flags
}

// Close terminates the active pool strategy, closing every idle
// connection. Connections still open are closed when they are
// returned.
func (c *Context) Close() {
	c.Pools.TerminateAndReset(nil)
}
