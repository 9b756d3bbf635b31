// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package enginetest provides an in-memory fake of the [engine]
// contract. The fake never executes SQL. It records function and
// collation registrations so tests can drive the registered
// trampolines directly with synthetic [Value]s and capture results
// through [Context], and it tracks connection open/close state so
// pool tests can observe disposal.
//
//	opener := enginetest.NewOpener()
//	conn, _ := opener.Open(ctx, "a.db")
//	fake := conn.(*enginetest.Conn)
//	registration := fake.Function("double", 1)
//	result := enginetest.NewContext(0)
//	registration.Callbacks.Invoke(result, []engine.Value{enginetest.Int(21)})
//	// result.Result.Int == 42
package enginetest
