// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// litehost exercises the pooled SQLite data-access layer from the
// command line.
//
// Subcommands:
//
//	litehost probe      run concurrent open/query/close cycles against a
//	                    database and report pool counts
//	litehost stats      decode a snapshot written by probe --snapshot
//	litehost functions  list the stock SQL functions and collations
//	litehost version    print build information
//
// probe reads its pool settings from --config, or from the file named
// by LITEHOST_CONFIG when that is set, falling back to built-in
// defaults. Setting LITEHOST_DEBUG forces debug logging.
package main
