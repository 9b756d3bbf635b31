// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Options configures a Registry.
type Options struct {
	// Logger receives disposal and eviction events. Nil discards.
	Logger *slog.Logger
}

// Counts is a snapshot of pool occupancy and traffic.
type Counts struct {
	// Files maps each normalized file name to its idle queue length.
	Files map[string]int `json:"files" cbor:"1,keyasint"`

	// Opened counts handles handed out by Remove since the last reset.
	Opened int64 `json:"opened" cbor:"2,keyasint"`

	// Closed counts handles accepted back by Add since the last reset.
	Closed int64 `json:"closed" cbor:"3,keyasint"`

	// Queued is the total number of idle entries across Files. For a
	// collectible registry this includes entries whose handle has been
	// reclaimed but not yet skipped by a checkout.
	Queued int `json:"queued" cbor:"4,keyasint"`
}

// queue holds the idle entries for one file, oldest first.
type queue[E any] struct {
	entries []E
	version int
	maxSize int
}

// Registry is a versioned map from file name to idle handle queue.
// All methods are safe for concurrent use.
type Registry[E any] struct {
	policy Policy[E]
	logger *slog.Logger

	mu      sync.Mutex
	queues  map[string]*queue[E]
	version int

	opened atomic.Int64
	closed atomic.Int64
}

// NewRegistry returns an empty registry whose global version starts
// at 1.
func NewRegistry[E any](policy Policy[E], options Options) *Registry[E] {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry[E]{
		policy:  policy,
		logger:  logger,
		queues:  make(map[string]*queue[E]),
		version: 1,
	}
}

// GetCounts reports per-file queue lengths. An empty fileName reports
// every file; otherwise only the named file appears, and only if it
// has a queue.
func (r *Registry[E]) GetCounts(fileName string) Counts {
	counts := Counts{
		Files:  make(map[string]int),
		Opened: r.opened.Load(),
		Closed: r.closed.Load(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if fileName == "" {
		for key, q := range r.queues {
			counts.Files[key] = len(q.entries)
			counts.Queued += len(q.entries)
		}
		return counts
	}

	key, ok := NormalizeFileName(fileName)
	if !ok {
		return counts
	}
	if q, found := r.queues[key]; found {
		counts.Files[key] = len(q.entries)
		counts.Queued = len(q.entries)
	}
	return counts
}

// ResetCounts zeroes the opened and closed counters.
func (r *Registry[E]) ResetCounts() {
	r.opened.Store(0)
	r.closed.Store(0)
}

// Counters returns the opened and closed counters.
func (r *Registry[E]) Counters() (opened, closed int64) {
	return r.opened.Load(), r.closed.Load()
}

// ClearPool disposes every idle handle for fileName and bumps the
// queue version, so handles currently checked out for that file are
// disposed when they are returned.
func (r *Registry[E]) ClearPool(fileName string) {
	key, ok := NormalizeFileName(fileName)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	q, found := r.queues[key]
	if !found {
		return
	}
	q.version++
	r.releaseLocked(key, q.entries, "cleared")
	q.entries = nil
	r.logger.Debug("pool cleared", "file", key, "version", q.version)
}

// ClearAllPools disposes every idle handle, forgets every queue, and
// raises the global version above every queue version seen, so every
// outstanding handle is disposed on return.
func (r *Registry[E]) ClearAllPools() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, q := range r.queues {
		r.releaseLocked(key, q.entries, "cleared")
		q.entries = nil
		if r.version <= q.version {
			r.version = q.version + 1
		}
	}
	clear(r.queues)
	r.logger.Debug("all pools cleared", "version", r.version)
}

// Add returns a handle to the pool. The handle is queued only if its
// file still has a queue whose version equals version; otherwise it is
// disposed. Before queueing, the oldest entries are evicted so the
// queue stays within its capacity. A capacity of zero or less disables
// pooling for the file and the handle is disposed.
func (r *Registry[E]) Add(fileName string, handle *Handle, version int) {
	if handle == nil {
		return
	}
	key, poolable := NormalizeFileName(fileName)

	r.mu.Lock()
	defer r.mu.Unlock()

	q, found := r.queues[key]
	switch {
	case !poolable:
		r.disposeLocked(fileName, handle, "not poolable")
		return
	case !found:
		r.disposeLocked(key, handle, "no queue")
		return
	case q.version != version:
		r.disposeLocked(key, handle, "stale version")
		return
	case q.maxSize <= 0:
		r.disposeLocked(key, handle, "pooling disabled")
		return
	case !handle.IsValid():
		r.disposeLocked(key, handle, "invalid")
		return
	}

	r.shrinkLocked(key, q, q.maxSize-1)
	q.entries = append(q.entries, r.policy.Retain(handle))
	r.closed.Add(1)
}

// Remove checks out an idle handle for fileName. It records
// maxPoolSize as the queue's capacity, shrinking the queue if needed,
// and returns the first valid handle found along with the queue
// version the caller must pass back to Add. When no queue exists one
// is created at the current global version. A nil handle means the
// caller must open a new native connection under the returned version.
//
// In-memory file names are never pooled: Remove returns (nil, 0).
func (r *Registry[E]) Remove(fileName string, maxPoolSize int) (*Handle, int) {
	key, ok := NormalizeFileName(fileName)
	if !ok {
		return nil, 0
	}

	r.mu.Lock()
	q, found := r.queues[key]
	if !found {
		q = &queue[E]{version: r.version, maxSize: maxPoolSize}
		r.queues[key] = q
		version := q.version
		r.mu.Unlock()
		return nil, version
	}
	version := q.version
	q.maxSize = maxPoolSize
	r.shrinkLocked(key, q, maxPoolSize)
	working := q.entries
	q.entries = nil
	r.mu.Unlock()

	var handle *Handle
	consumed := 0
	for consumed < len(working) {
		candidate := r.policy.Resolve(working[consumed])
		consumed++
		if candidate != nil {
			handle = candidate
			break
		}
	}
	remaining := working[consumed:]

	r.mu.Lock()
	defer r.mu.Unlock()

	q, found = r.queues[key]
	if !found {
		// ClearAllPools ran during the search. The fresh queue carries
		// the raised global version, so the check below fails.
		q = &queue[E]{version: r.version, maxSize: maxPoolSize}
		r.queues[key] = q
	}
	if q.version != version {
		r.releaseLocked(key, remaining, "cleared during checkout")
		if handle != nil {
			r.disposeLocked(key, handle, "cleared during checkout")
		}
		return nil, q.version
	}

	if len(remaining) > 0 {
		merged := make([]E, 0, len(remaining)+len(q.entries))
		merged = append(merged, remaining...)
		merged = append(merged, q.entries...)
		q.entries = merged
		r.shrinkLocked(key, q, q.maxSize)
	}
	if handle != nil {
		r.opened.Add(1)
	}
	return handle, version
}

// Files returns the normalized names of every file with a queue,
// sorted.
func (r *Registry[E]) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := make([]string, 0, len(r.queues))
	for key := range r.queues {
		files = append(files, key)
	}
	sort.Strings(files)
	return files
}

// Version returns the global version new queues are created under.
func (r *Registry[E]) Version() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// shrinkLocked evicts the oldest entries until at most target remain.
func (r *Registry[E]) shrinkLocked(key string, q *queue[E], target int) {
	if target < 0 {
		target = 0
	}
	if len(q.entries) <= target {
		return
	}
	excess := len(q.entries) - target
	r.releaseLocked(key, q.entries[:excess], "evicted")
	q.entries = append(q.entries[:0:0], q.entries[excess:]...)
}

func (r *Registry[E]) releaseLocked(key string, entries []E, reason string) {
	for _, entry := range entries {
		if err := r.policy.Release(entry); err != nil {
			r.logger.Warn("closing pooled connection", "file", key, "reason", reason, "error", err)
		}
	}
}

func (r *Registry[E]) disposeLocked(key string, handle *Handle, reason string) {
	r.logger.Debug("disposing returned connection", "file", key, "handle", handle.ID(), "reason", reason)
	if err := handle.Close(); err != nil {
		r.logger.Warn("closing returned connection", "file", key, "reason", reason, "error", err)
	}
}
