// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connpool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/litehost/lib/clock"
	"github.com/bureau-foundation/litehost/lib/pool"
)

// Strong pools idle connections by direct reference.
type Strong struct {
	*pool.Registry[*pool.Handle]
	logger *slog.Logger
}

// NewStrong returns a strong strategy with empty queues.
func NewStrong(logger *slog.Logger) *Strong {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Strong{
		Registry: pool.NewStrongRegistry(pool.Options{Logger: logger}),
		logger:   logger,
	}
}

// Initialize has nothing to set up.
func (s *Strong) Initialize(argument any) {
	s.logger.Debug("strong pool initialized", "argument", argument)
}

// Terminate closes every idle connection.
func (s *Strong) Terminate(argument any) {
	s.ClearAllPools()
	s.logger.Debug("strong pool terminated", "argument", argument)
}

// CollectibleConfig configures a Collectible strategy.
type CollectibleConfig struct {
	Clock         clock.Clock
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// Collectible pools idle connections in an arena that closes those
// idle longer than IdleTimeout. The sweep runs every SweepInterval
// between Initialize and Terminate.
type Collectible struct {
	*pool.Registry[uint64]
	arena         *pool.Arena
	sweepInterval time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCollectible returns a collectible strategy. The sweeper does not
// run until Initialize is called.
func NewCollectible(config CollectibleConfig) *Collectible {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	arena := pool.NewArena(config.Clock, config.IdleTimeout, logger)
	return &Collectible{
		Registry:      pool.NewCollectibleRegistry(arena, pool.Options{Logger: logger}),
		arena:         arena,
		sweepInterval: config.SweepInterval,
		logger:        logger,
	}
}

// Arena returns the arena holding idle connections.
func (c *Collectible) Arena() *pool.Arena { return c.arena }

// Initialize starts the idle sweeper. Calling it again while the
// sweeper runs has no effect.
func (c *Collectible) Initialize(argument any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil || c.sweepInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	go func() {
		defer close(done)
		c.arena.Run(ctx, c.sweepInterval)
	}()
	c.logger.Debug("collectible pool initialized", "argument", argument, "sweep_interval", c.sweepInterval)
}

// Terminate stops the sweeper and closes every idle connection.
func (c *Collectible) Terminate(argument any) {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.ClearAllPools()
	c.logger.Debug("collectible pool terminated", "argument", argument)
}
