// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package function exposes Go implementations to the SQL engine as
// scalar functions, aggregates, window functions, and collations.
//
// A [Registry] catalogs [Descriptor]s. Each descriptor names a
// function (name, arity, kind, flags) and where its implementation
// comes from: either a factory that produces a fresh implementation
// per connection, registered with [Registry.Register] or discovered
// from a [Declarer] by [Registry.RegisterType], or a [Funcs] value of
// plain callbacks registered with [Registry.RegisterFuncs].
//
// [Registry.BindFunctions] instantiates every cataloged descriptor
// against one engine connection and installs engine callbacks
// ("trampolines") that marshal engine values to Go values, call the
// implementation, and marshal the result back. The returned
// [Bindings] keep each [BoundFunction] reachable for as long as the
// engine may call into it; [Registry.UnbindAllFunctions] removes them.
//
// Trampolines never let a Go error or panic escape into the engine.
// Scalar and aggregate failures become an error result on the current
// statement. Collation failures cancel the statement and compare as
// equal.
//
// Per-statement aggregate state is kept in a table on the bound
// function keyed by the engine's aggregate context id. An entry is
// created by the first Step, carries 1-based step and inverse counters
// and the implementation's accumulator, and is removed by Final.
//
// Argument and result marshaling:
//
//	engine type   Go argument
//	NULL          nil
//	INTEGER       int64
//	FLOAT         float64
//	TEXT          string
//	BLOB          []byte
//
// Results may be nil, an error (reported as an error result), any Go
// integer, float, bool, string, or []byte, a [time.Time] (stored as
// text), a [driver.Valuer], or a [fmt.Stringer].
package function
