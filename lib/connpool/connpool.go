// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connpool

import (
	"github.com/bureau-foundation/litehost/lib/pool"
)

// Pool is the contract every pool strategy implements. See
// [pool.Registry] for the semantics of each operation.
type Pool interface {
	GetCounts(fileName string) pool.Counts
	ClearPool(fileName string)
	ClearAllPools()
	Add(fileName string, handle *pool.Handle, version int)
	Remove(fileName string, maxPoolSize int) (*pool.Handle, int)
}

// Lifecycle is implemented by strategies that need setup and teardown
// or that expose traffic counters. The argument passed to Initialize
// and Terminate is opaque to the manager.
type Lifecycle interface {
	Initialize(argument any)
	Terminate(argument any)
	Counters() (opened, closed int64)
	ResetCounts()
}
