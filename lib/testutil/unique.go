// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
)

var counter atomic.Uint64

// UniqueID returns "prefix-N" for a process-wide increasing N.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, counter.Add(1))
}

// DatabasePath returns a path for a database file that does not exist
// yet, inside a directory removed when the test ends.
func DatabasePath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), UniqueID("test")+".db")
}
