// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bureau-foundation/litehost/lib/engine/enginetest"
)

func newTestHandle(t *testing.T, path string, version int) (*Handle, *enginetest.Conn) {
	t.Helper()
	conn := enginetest.NewConn(nextHandleID.Load()+1, path)
	return NewHandle(conn, version), conn
}

func TestRegistryCheckoutScenario(t *testing.T) {
	registry := NewStrongRegistry(Options{})

	handle, version := registry.Remove("a.db", 2)
	if handle != nil || version != 1 {
		t.Fatalf("first Remove = (%v, %d), want (nil, 1)", handle, version)
	}

	h1, conn := newTestHandle(t, "a.db", version)
	registry.Add("a.db", h1, 1)
	if got := registry.GetCounts("a.db").Files["a.db"]; got != 1 {
		t.Fatalf("queued after Add = %d, want 1", got)
	}

	handle, version = registry.Remove("a.db", 2)
	if handle != h1 || version != 1 {
		t.Fatalf("second Remove = (%v, %d), want (h1, 1)", handle, version)
	}
	if got := registry.GetCounts("a.db").Files["a.db"]; got != 0 {
		t.Fatalf("queued after checkout = %d, want 0", got)
	}

	registry.Add("a.db", h1, 1)
	if got := registry.GetCounts("a.db").Files["a.db"]; got != 1 {
		t.Fatalf("queued after return = %d, want 1", got)
	}

	registry.ClearPool("a.db")
	counts := registry.GetCounts("a.db")
	if counts.Files["a.db"] != 0 {
		t.Fatalf("queued after ClearPool = %d, want 0", counts.Files["a.db"])
	}
	if !h1.IsClosed() || conn.CloseCalls() != 1 {
		t.Fatalf("ClearPool did not dispose the queued handle (closed=%v, calls=%d)", h1.IsClosed(), conn.CloseCalls())
	}

	// A handle checked out under version 1 is discarded, not queued.
	h2, conn2 := newTestHandle(t, "a.db", 1)
	registry.Add("a.db", h2, 1)
	if got := registry.GetCounts("a.db").Files["a.db"]; got != 0 {
		t.Fatalf("stale handle was queued: count %d", got)
	}
	if conn2.CloseCalls() != 1 {
		t.Errorf("stale handle close calls = %d, want 1", conn2.CloseCalls())
	}

	_, version = registry.Remove("a.db", 2)
	if version != 2 {
		t.Errorf("version after ClearPool = %d, want 2", version)
	}
}

func TestRegistryCapacityNeverExceeded(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	_, version := registry.Remove("cap.db", 3)

	var handles []*Handle
	for i := 0; i < 10; i++ {
		handle, _ := newTestHandle(t, "cap.db", version)
		handles = append(handles, handle)
		registry.Add("cap.db", handle, version)
		if got := registry.GetCounts("cap.db").Queued; got > 3 {
			t.Fatalf("after Add %d queue length = %d, exceeds capacity 3", i, got)
		}
	}

	// Oldest entries were evicted; the three newest survive.
	for i, handle := range handles {
		wantClosed := i < 7
		if handle.IsClosed() != wantClosed {
			t.Errorf("handle %d closed = %v, want %v", i, handle.IsClosed(), wantClosed)
		}
	}
}

func TestRegistryShrinkOnRemoveEvictsOldest(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	_, version := registry.Remove("shrink.db", 4)

	var handles []*Handle
	for i := 0; i < 4; i++ {
		handle, _ := newTestHandle(t, "shrink.db", version)
		handles = append(handles, handle)
		registry.Add("shrink.db", handle, version)
	}

	got, _ := registry.Remove("shrink.db", 2)
	if got != handles[2] {
		t.Fatalf("Remove after shrink returned handle %d, want the oldest survivor", got.ID())
	}
	if !handles[0].IsClosed() || !handles[1].IsClosed() {
		t.Error("shrinking did not dispose the two oldest handles")
	}
	if counts := registry.GetCounts("shrink.db"); counts.Queued != 1 {
		t.Errorf("queued after shrink and checkout = %d, want 1", counts.Queued)
	}
}

func TestRegistryZeroCapacityDisposes(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	_, version := registry.Remove("zero.db", 0)
	handle, _ := newTestHandle(t, "zero.db", version)
	registry.Add("zero.db", handle, version)
	if !handle.IsClosed() {
		t.Error("Add with capacity 0 did not dispose the handle")
	}
	if counts := registry.GetCounts(""); counts.Queued != 0 {
		t.Errorf("Queued = %d, want 0", counts.Queued)
	}
}

func TestRegistrySkipsInvalidHandles(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	_, version := registry.Remove("skip.db", 5)

	broken, _ := newTestHandle(t, "skip.db", version)
	healthy, _ := newTestHandle(t, "skip.db", version)
	registry.Add("skip.db", broken, version)
	registry.Add("skip.db", healthy, version)
	broken.Invalidate()

	got, _ := registry.Remove("skip.db", 5)
	if got != healthy {
		t.Fatalf("Remove returned %v, want the healthy handle", got)
	}
	if !broken.IsClosed() {
		t.Error("invalid handle was not disposed")
	}
}

func TestRegistryAddWithoutQueueDisposes(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	handle, _ := newTestHandle(t, "orphan.db", 1)
	registry.Add("orphan.db", handle, 1)
	if !handle.IsClosed() {
		t.Error("handle for a file without a queue was not disposed")
	}
}

func TestRegistryInMemoryNeverPooled(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	for _, name := range []string{"", MemoryFileName, "file::memory:?cache=shared", "file:x?mode=memory"} {
		handle, version := registry.Remove(name, 10)
		if handle != nil || version != 0 {
			t.Errorf("Remove(%q) = (%v, %d), want (nil, 0)", name, handle, version)
		}
		h, _ := newTestHandle(t, name, 0)
		registry.Add(name, h, 0)
		if !h.IsClosed() {
			t.Errorf("Add(%q) did not dispose the handle", name)
		}
	}
	if files := registry.Files(); len(files) != 0 {
		t.Errorf("in-memory names created queues: %v", files)
	}
}

func TestRegistryNormalizesFileNames(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	_, version := registry.Remove("Data/./Shared.DB", 2)
	handle, _ := newTestHandle(t, "data/shared.db", version)
	registry.Add("data/shared.db", handle, version)

	got, _ := registry.Remove("DATA/Shared.db", 2)
	if got != handle {
		t.Fatal("differently spelled file names did not share a queue")
	}
}

func TestRegistryClearAllPools(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	_, versionA := registry.Remove("a.db", 2)
	_, versionB := registry.Remove("b.db", 2)
	registry.ClearPool("b.db")
	registry.ClearPool("b.db")

	queuedA, _ := newTestHandle(t, "a.db", versionA)
	registry.Add("a.db", queuedA, versionA)
	outstanding, _ := newTestHandle(t, "b.db", versionB+2)

	registry.ClearAllPools()

	if !queuedA.IsClosed() {
		t.Error("ClearAllPools did not dispose idle handles")
	}
	if files := registry.Files(); len(files) != 0 {
		t.Errorf("queues remain after ClearAllPools: %v", files)
	}
	// b.db reached version 3; the new global version must exceed it.
	if got := registry.Version(); got <= 3 {
		t.Errorf("global version after ClearAllPools = %d, want > 3", got)
	}

	_, fresh := registry.Remove("b.db", 2)
	registry.Add("b.db", outstanding, versionB+2)
	if !outstanding.IsClosed() {
		t.Errorf("handle from before ClearAllPools (version %d) was queued under version %d", versionB+2, fresh)
	}
}

func TestRegistryCounters(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	_, version := registry.Remove("count.db", 2)
	handle, _ := newTestHandle(t, "count.db", version)
	registry.Add("count.db", handle, version)
	registry.Remove("count.db", 2)
	registry.Add("count.db", handle, version)

	opened, closed := registry.Counters()
	if opened != 1 || closed != 2 {
		t.Errorf("Counters() = (%d, %d), want (1, 2)", opened, closed)
	}

	registry.ResetCounts()
	counts := registry.GetCounts("")
	if counts.Opened != 0 || counts.Closed != 0 {
		t.Errorf("after ResetCounts = (%d, %d), want (0, 0)", counts.Opened, counts.Closed)
	}
	if counts.Queued != 1 || counts.Files["count.db"] != 1 {
		t.Errorf("ResetCounts changed queue state: %+v", counts)
	}
}

func TestRegistryGetCountsUnknownFile(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	counts := registry.GetCounts("missing.db")
	if len(counts.Files) != 0 || counts.Queued != 0 {
		t.Errorf("GetCounts(missing) = %+v, want empty", counts)
	}
}

func TestRegistryCloseErrorIsContained(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	_, version := registry.Remove("err.db", 2)
	handle, conn := newTestHandle(t, "err.db", version)
	conn.FailClose(errors.New("disk on fire"))
	registry.Add("err.db", handle, version)

	registry.ClearPool("err.db")
	if !handle.IsClosed() {
		t.Error("handle with failing Close was not marked closed")
	}
}

// A handle returned to the pool must never be handed to two callers,
// and every handle is either queued, checked out, or closed.
func TestRegistryConcurrentCheckout(t *testing.T) {
	registry := NewStrongRegistry(Options{})
	const (
		workers    = 16
		iterations = 200
		capacity   = 4
	)

	var (
		mu    sync.Mutex
		inUse = make(map[*Handle]bool)
	)
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				handle, version := registry.Remove("shared.db", capacity)
				if handle == nil {
					handle = NewHandle(enginetest.NewConn(0, "shared.db"), version)
				}
				mu.Lock()
				if inUse[handle] {
					mu.Unlock()
					errs <- fmt.Errorf("worker %d: handle %d handed out twice", worker, handle.ID())
					return
				}
				inUse[handle] = true
				mu.Unlock()

				if i%50 == 0 {
					registry.ClearPool("shared.db")
				}

				mu.Lock()
				delete(inUse, handle)
				mu.Unlock()
				registry.Add("shared.db", handle, version)
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if got := registry.GetCounts("shared.db").Queued; got > capacity {
		t.Errorf("queue length %d exceeds capacity %d", got, capacity)
	}
}
