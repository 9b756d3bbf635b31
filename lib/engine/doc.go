// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine defines the contract between litehost and the native
// embedded SQL engine. The connection pool and the function bridge
// are written against these interfaces only; the production adapter
// lives in [sqliteengine] and a scriptable fake for tests lives in
// [enginetest].
//
// The shape of the contract follows the engine's C callback plumbing
// rather than a Go-friendly abstraction of it. A registered function
// is a set of void trampolines ([Callbacks]) that read their
// arguments through [Value] and report their outcome through the
// result setters on [Context]. Aggregate and window evaluations are
// distinguished by [Context.AggregateID], an identifier that is
// stable for one evaluation over one result set.
//
// Passing nil callbacks to [Conn.CreateFunction] (or a nil collation
// to [Conn.CreateCollation]) unregisters the name.
package engine
