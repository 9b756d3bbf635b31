// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool caches idle native engine connections per database
// file so that opening a connection to a recently used file can skip
// the native open.
//
// A [Registry] maps a normalized file name to a queue of idle
// [Handle]s. Every queue carries a version number. Handles are checked
// out with [Registry.Remove], which reports the queue version, and are
// returned with [Registry.Add] under that version. Clearing a queue
// bumps its version, so a handle checked out before the clear is
// disposed instead of re-queued when it comes back.
//
// How an idle handle is retained is decided by a [Policy]. The
// strong policy holds handles directly. The collectible policy parks
// them in an [Arena] that reclaims handles idle longer than a
// configured timeout; the queue then holds only an arena id, and a
// reclaimed entry is skipped on checkout.
//
// Remove never holds the registry lock while it validates candidate
// handles. It detaches the queue contents under the lock, searches the
// detached copy, and then commits the remainder back, reconciling with
// any clear that ran in between.
//
// Queue capacity never exceeds the max pool size passed to the most
// recent Remove for that file. When a queue is shrunk the oldest idle
// handles are disposed first.
package pool
