// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/litehost/lib/engine/enginetest"
	"github.com/bureau-foundation/litehost/lib/testutil"
)

// gatedPolicy is a StrongPolicy whose first Resolve signals entered
// and then waits for gate, holding Remove between detaching the queue
// and committing.
type gatedPolicy struct {
	StrongPolicy
	calls   atomic.Int32
	entered chan struct{}
	gate    chan struct{}
}

func newGatedPolicy() *gatedPolicy {
	return &gatedPolicy{entered: make(chan struct{}), gate: make(chan struct{})}
}

func (p *gatedPolicy) Resolve(handle *Handle) *Handle {
	if p.calls.Add(1) == 1 {
		close(p.entered)
		<-p.gate
	}
	return p.StrongPolicy.Resolve(handle)
}

type removeResult struct {
	handle  *Handle
	version int
}

func TestRegistryRemoveDisposesAcrossConcurrentClear(t *testing.T) {
	tests := []struct {
		name        string
		clear       func(r *Registry[*Handle])
		wantVersion int
	}{
		{name: "ClearPool", clear: func(r *Registry[*Handle]) { r.ClearPool("race.db") }, wantVersion: 2},
		{name: "ClearAllPools", clear: func(r *Registry[*Handle]) { r.ClearAllPools() }, wantVersion: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			policy := newGatedPolicy()
			registry := NewRegistry[*Handle](policy, Options{})

			_, version := registry.Remove("race.db", 5)
			var conns []*enginetest.Conn
			var handles []*Handle
			for range 3 {
				handle, conn := newTestHandle(t, "race.db", version)
				registry.Add("race.db", handle, version)
				handles = append(handles, handle)
				conns = append(conns, conn)
			}

			results := make(chan removeResult, 1)
			go func() {
				handle, version := registry.Remove("race.db", 5)
				results <- removeResult{handle: handle, version: version}
			}()

			testutil.RequireClosed(t, policy.entered, time.Second, "Resolve entered")
			test.clear(registry)
			close(policy.gate)
			got := testutil.RequireReceive(t, results, time.Second, "Remove result")

			if got.handle != nil {
				t.Errorf("Remove handed out %d after a concurrent clear, want nil", got.handle.ID())
			}
			if got.version != test.wantVersion {
				t.Errorf("Remove version = %d, want %d", got.version, test.wantVersion)
			}
			for i, handle := range handles {
				if !handle.IsClosed() || conns[i].CloseCalls() != 1 {
					t.Errorf("handle %d: closed=%v close calls=%d, want disposed once", i, handle.IsClosed(), conns[i].CloseCalls())
				}
			}
			if queued := registry.GetCounts("race.db").Files["race.db"]; queued != 0 {
				t.Errorf("queued after commit = %d, want 0", queued)
			}
			if opened, _ := registry.Counters(); opened != 0 {
				t.Errorf("opened counter = %d, want 0", opened)
			}

			// The next checkout misses under the new version.
			handle, version := registry.Remove("race.db", 5)
			if handle != nil || version != test.wantVersion {
				t.Errorf("follow-up Remove = (%v, %d), want (nil, %d)", handle, version, test.wantVersion)
			}
		})
	}
}
