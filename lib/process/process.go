// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// DebugVariable forces debug logging when set to a non-empty value.
const DebugVariable = "LITEHOST_DEBUG"

// Fatal writes "error: err" to stderr and exits with code 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// NewLogger returns a logger writing to w in the given format ("text"
// or "json") at level, or at debug when LITEHOST_DEBUG is set.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	if os.Getenv(DebugVariable) != "" {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, options))
	}
	return slog.New(slog.NewTextHandler(w, options))
}
