// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// MemoryFileName is the engine's name for a private in-memory
// database.
const MemoryFileName = ":memory:"

// NormalizeFileName returns the pool key for fileName and whether the
// file may be pooled at all. Paths are cleaned and case-folded, so
// "Data/A.db" and "data/./a.DB" share a queue. In-memory databases are
// private to their connection and are never pooled.
func NormalizeFileName(fileName string) (string, bool) {
	if !IsPoolable(fileName) {
		return "", false
	}
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(filepath.Clean(fileName)), true
}

// IsPoolable reports whether connections to fileName can be shared
// through the pool.
func IsPoolable(fileName string) bool {
	trimmed := strings.TrimSpace(fileName)
	switch {
	case trimmed == "", trimmed == MemoryFileName:
		return false
	case strings.HasPrefix(trimmed, "file::memory:"):
		return false
	case strings.HasPrefix(trimmed, "file:") && strings.Contains(trimmed, "mode=memory"):
		return false
	}
	return true
}
