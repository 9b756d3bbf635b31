// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package function

import "sync"

// aggregateEntry is the state of one in-progress aggregate
// invocation.
type aggregateEntry struct {
	stepCount    int
	inverseCount int
	state        any
}

// contextTable maps engine aggregate context ids to their state. One
// bound function serves every statement on its connection, so entries
// for different statements coexist.
type contextTable struct {
	mu      sync.Mutex
	entries map[uint64]*aggregateEntry
}

func newContextTable() *contextTable {
	return &contextTable{entries: make(map[uint64]*aggregateEntry)}
}

// acquire returns the entry for id, creating it on first use.
func (t *contextTable) acquire(id uint64) *aggregateEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, found := t.entries[id]
	if !found {
		entry = &aggregateEntry{stepCount: 1, inverseCount: 1}
		t.entries[id] = entry
	}
	return entry
}

// peek returns the entry for id without creating one.
func (t *contextTable) peek(id uint64) *aggregateEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[id]
}

// take removes and returns the entry for id.
func (t *contextTable) take(id uint64) *aggregateEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := t.entries[id]
	delete(t.entries, id)
	return entry
}

// drain removes and returns every entry.
func (t *contextTable) drain() []*aggregateEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]*aggregateEntry, 0, len(t.entries))
	for id, entry := range t.entries {
		entries = append(entries, entry)
		delete(t.entries, id)
	}
	return entries
}

func (t *contextTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
