// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock time so idle-handle reclamation
// can be tested without sleeping.
//
// Production code takes a [Clock] and receives [Real] in main. Tests
// pass a [Fake] and move time forward with [FakeClock.Advance]:
//
//	fake := clock.Fake(time.Unix(0, 0))
//	arena := pool.NewArena(fake, time.Minute, nil)
//	fake.Advance(2 * time.Minute)
//	arena.Reclaim() // collects handles idle for more than a minute
//
// Goroutines that block on a ticker register it before the test
// advances; [FakeClock.WaitForTimers] closes that race.
package clock
