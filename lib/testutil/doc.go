// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for litehost packages.
//
// [RequireReceive] and [RequireClosed] bound a channel wait with a
// wall-clock timeout so a broken test fails instead of hanging. They
// are the only place tests use real time; everything else runs on
// [clock.FakeClock].
//
// [DatabasePath] returns a fresh database file path inside t.TempDir,
// and [UniqueID] produces distinguishable names for pool keys.
//
// All helpers call t.Fatalf on failure.
package testutil
