// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connpool

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/litehost/lib/clock"
	"github.com/bureau-foundation/litehost/lib/pool"
)

// ManagerConfig configures the strategies a Manager creates.
type ManagerConfig struct {
	// Clock drives idle reclamation in the collectible strategy. Nil
	// uses the real clock.
	Clock clock.Clock

	// IdleTimeout and SweepInterval configure the collectible
	// strategy.
	IdleTimeout   time.Duration
	SweepInterval time.Duration

	Logger *slog.Logger
}

// Manager resolves the active pool strategy for every operation.
type Manager struct {
	config ManagerConfig
	logger *slog.Logger

	mu   sync.Mutex
	pool Pool
}

// NewManager returns a manager with no strategy installed.
func NewManager(config ManagerConfig) *Manager {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{config: config, logger: logger}
}

// ConnectionPool returns the active strategy, or nil.
func (m *Manager) ConnectionPool() Pool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool
}

// SetConnectionPool installs p as the active strategy without running
// any lifecycle hooks. A nil p disables pooling.
func (m *Manager) SetConnectionPool(p Pool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool = p
}

// CreateAndInitialize installs a built-in strategy and initializes it
// with argument. When a strategy is already installed nothing happens
// unless force is set, in which case the previous strategy is
// terminated with the same argument before being replaced.
func (m *Manager) CreateAndInitialize(argument any, strong, force bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil && !force {
		return
	}
	if lifecycle, ok := m.pool.(Lifecycle); ok {
		lifecycle.Terminate(argument)
	}

	var created Pool
	if strong {
		created = NewStrong(m.logger)
	} else {
		created = NewCollectible(CollectibleConfig{
			Clock:         m.config.Clock,
			IdleTimeout:   m.config.IdleTimeout,
			SweepInterval: m.config.SweepInterval,
			Logger:        m.logger,
		})
	}
	if lifecycle, ok := created.(Lifecycle); ok {
		lifecycle.Initialize(argument)
	}
	m.pool = created
	m.logger.Info("connection pool installed", "strong", strong)
}

// TerminateAndReset terminates the active strategy and uninstalls it.
func (m *Manager) TerminateAndReset(argument any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool == nil {
		return
	}
	if lifecycle, ok := m.pool.(Lifecycle); ok {
		lifecycle.Terminate(argument)
	}
	m.pool = nil
	m.logger.Info("connection pool removed")
}

// GetCounts returns the active strategy's counts, or empty counts.
func (m *Manager) GetCounts(fileName string) pool.Counts {
	if p := m.ConnectionPool(); p != nil {
		return p.GetCounts(fileName)
	}
	return pool.Counts{Files: map[string]int{}}
}

// ClearPool clears fileName's queue in the active strategy.
func (m *Manager) ClearPool(fileName string) {
	if p := m.ConnectionPool(); p != nil {
		p.ClearPool(fileName)
	}
}

// ClearAllPools clears every queue in the active strategy.
func (m *Manager) ClearAllPools() {
	if p := m.ConnectionPool(); p != nil {
		p.ClearAllPools()
	}
}

// Add returns handle to the active strategy. With no strategy
// installed nothing can take ownership, so the handle is closed.
func (m *Manager) Add(fileName string, handle *pool.Handle, version int) {
	if p := m.ConnectionPool(); p != nil {
		p.Add(fileName, handle, version)
		return
	}
	if handle != nil {
		if err := handle.Close(); err != nil {
			m.logger.Warn("closing unpooled connection", "file", fileName, "error", err)
		}
	}
}

// Remove checks out an idle handle from the active strategy. With no
// strategy installed it always misses with version 0.
func (m *Manager) Remove(fileName string, maxPoolSize int) (*pool.Handle, int) {
	if p := m.ConnectionPool(); p != nil {
		return p.Remove(fileName, maxPoolSize)
	}
	return nil, 0
}

// Counters returns the active strategy's traffic counters if it
// exposes them.
func (m *Manager) Counters() (opened, closed int64) {
	if lifecycle, ok := m.ConnectionPool().(Lifecycle); ok {
		return lifecycle.Counters()
	}
	return 0, 0
}

// ResetCounts zeroes the active strategy's traffic counters.
func (m *Manager) ResetCounts() {
	if lifecycle, ok := m.ConnectionPool().(Lifecycle); ok {
		lifecycle.ResetCounts()
	}
}
