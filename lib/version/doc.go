// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for litehost binaries.
//
// Release builds stamp the variables with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/litehost/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Unstamped builds fall back to the VCS settings the Go toolchain
// embeds in the binary.
package version
