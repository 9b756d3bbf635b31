// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package connpool is the single entry point the connection layer
// uses to reach whichever pool strategy is active.
//
// A [Manager] holds one [Pool] behind its own lock. The strategy can
// be swapped at any time with [Manager.SetConnectionPool], or created
// through [Manager.CreateAndInitialize], which also runs the
// strategy's [Lifecycle] hooks. When no strategy is installed every
// operation is a no-op that returns empty results, so callers never
// branch on whether pooling is configured.
//
// Two strategies are built in: [Strong] holds idle connections until
// they are reused or cleared, and [Collectible] additionally closes
// connections left idle past a timeout. [NullPool] records the calls
// it receives and pools nothing, for tests and diagnostics.
package connpool
