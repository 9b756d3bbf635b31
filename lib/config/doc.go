// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads litehost configuration.
//
// Configuration is read from a single file named either by the
// LITEHOST_CONFIG environment variable (via [Load]) or by a --config
// flag (via [LoadFile]). Files ending in .json or .jsonc are parsed as
// JSON with comments and trailing commas allowed; anything else is
// YAML. Values not present in the file keep the [Default]s.
//
// ${HOME} and ${VAR:-default} patterns in database.path are expanded
// after loading. No other environment variable overrides a value from
// the file.
//
// [Config.Validate] reports every problem at once, joined with
// errors.Join.
package config
