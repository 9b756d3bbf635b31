// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connpool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bureau-foundation/litehost/lib/pool"
)

// NullPool pools nothing and records every call it receives, one line
// per call. When dispose is set, handles passed to Add are closed.
// Otherwise Add leaves them open and forgets them: nothing reclaims
// their native connections, so the caller that passed a handle to Add
// must still close it. Hosts that install a NullPool for production
// traffic want dispose set.
type NullPool struct {
	dispose bool

	mu  sync.Mutex
	log strings.Builder
}

// NewNullPool returns an empty NullPool.
func NewNullPool(dispose bool) *NullPool {
	return &NullPool{dispose: dispose}
}

func (p *NullPool) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(&p.log, format, args...)
	p.log.WriteByte('\n')
}

// String returns the recorded call log.
func (p *NullPool) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.log.String()
}

// GetCounts records the call and returns empty counts.
func (p *NullPool) GetCounts(fileName string) pool.Counts {
	p.record("GetCounts(%q)", fileName)
	return pool.Counts{Files: map[string]int{}}
}

// ClearPool records the call.
func (p *NullPool) ClearPool(fileName string) {
	p.record("ClearPool(%q)", fileName)
}

// ClearAllPools records the call.
func (p *NullPool) ClearAllPools() {
	p.record("ClearAllPools()")
}

// Add records the call and closes handle if the pool disposes. A
// non-disposing pool leaves handle open for the caller to close.
func (p *NullPool) Add(fileName string, handle *pool.Handle, version int) {
	var id uint64
	if handle != nil {
		id = handle.ID()
	}
	p.record("Add(%q, %d, %d)", fileName, id, version)
	if p.dispose && handle != nil {
		handle.Close()
	}
}

// Remove records the call and always misses with version 0.
func (p *NullPool) Remove(fileName string, maxPoolSize int) (*pool.Handle, int) {
	p.record("Remove(%q, %d, %d)", fileName, maxPoolSize, 0)
	return nil, 0
}

// Initialize records the call.
func (p *NullPool) Initialize(argument any) {
	p.record("Initialize(%v)", argument)
}

// Terminate records the call.
func (p *NullPool) Terminate(argument any) {
	p.record("Terminate(%v)", argument)
}

// Counters records the call and returns zeros.
func (p *NullPool) Counters() (opened, closed int64) {
	p.record("Counters()")
	return 0, 0
}

// ResetCounts records the call.
func (p *NullPool) ResetCounts() {
	p.record("ResetCounts()")
}
