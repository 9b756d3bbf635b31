// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/litehost/lib/clock"
)

// Arena is the collectible retention policy. Idle handles are parked
// in the arena under their handle id and the pool queue holds only the
// id. Reclaim closes handles that have been idle longer than the idle
// timeout; a queue entry whose handle was reclaimed resolves to nil and
// is skipped on checkout.
//
// A handle is always owned by exactly one party: the arena while it is
// parked, the caller once Resolve hands it out. There is no state in
// which both could close it.
type Arena struct {
	clock       clock.Clock
	idleTimeout time.Duration
	logger      *slog.Logger

	mu    sync.Mutex
	slots map[uint64]parked

	reclaimed atomic.Int64

	// afterSweep is called after each sweep run by Run. Tests use it
	// to observe sweeps without polling.
	afterSweep func(reclaimed int)
}

type parked struct {
	handle    *Handle
	idleSince time.Time
}

// NewArena returns an arena that reclaims handles idle for at least
// idleTimeout. A non-positive idleTimeout disables reclamation, which
// makes the arena behave like the strong policy.
func NewArena(clk clock.Clock, idleTimeout time.Duration, logger *slog.Logger) *Arena {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Arena{
		clock:       clk,
		idleTimeout: idleTimeout,
		logger:      logger,
		slots:       make(map[uint64]parked),
	}
}

// Retain parks the handle and returns its id.
func (a *Arena) Retain(handle *Handle) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slots[handle.ID()] = parked{handle: handle, idleSince: a.clock.Now()}
	return handle.ID()
}

// Resolve unparks the handle with the given id. Returns nil if it was
// reclaimed or is no longer valid.
func (a *Arena) Resolve(id uint64) *Handle {
	a.mu.Lock()
	slot, found := a.slots[id]
	delete(a.slots, id)
	a.mu.Unlock()

	if !found {
		return nil
	}
	if !slot.handle.IsValid() {
		slot.handle.Close()
		return nil
	}
	return slot.handle
}

// Release closes the handle with the given id if it is still parked.
func (a *Arena) Release(id uint64) error {
	a.mu.Lock()
	slot, found := a.slots[id]
	delete(a.slots, id)
	a.mu.Unlock()

	if !found {
		return nil
	}
	return slot.handle.Close()
}

// Reclaim closes every parked handle idle for at least the idle
// timeout and returns how many were closed.
func (a *Arena) Reclaim() int {
	if a.idleTimeout <= 0 {
		return 0
	}
	now := a.clock.Now()

	a.mu.Lock()
	var expired []*Handle
	for id, slot := range a.slots {
		if now.Sub(slot.idleSince) >= a.idleTimeout {
			expired = append(expired, slot.handle)
			delete(a.slots, id)
		}
	}
	a.mu.Unlock()

	for _, handle := range expired {
		if err := handle.Close(); err != nil {
			a.logger.Warn("closing reclaimed connection", "handle", handle.ID(), "error", err)
		}
	}
	if len(expired) > 0 {
		a.reclaimed.Add(int64(len(expired)))
		a.logger.Debug("reclaimed idle connections", "count", len(expired))
	}
	return len(expired)
}

// Run calls Reclaim every interval until ctx is cancelled.
func (a *Arena) Run(ctx context.Context, interval time.Duration) {
	ticker := a.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count := a.Reclaim()
			if a.afterSweep != nil {
				a.afterSweep(count)
			}
		}
	}
}

// Len returns the number of parked handles.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots)
}

// Reclaimed returns the total number of handles closed by Reclaim.
func (a *Arena) Reclaimed() int64 { return a.reclaimed.Load() }

// NewCollectibleRegistry returns a registry whose idle handles are
// parked in arena.
func NewCollectibleRegistry(arena *Arena, options Options) *Registry[uint64] {
	return NewRegistry[uint64](arena, options)
}
