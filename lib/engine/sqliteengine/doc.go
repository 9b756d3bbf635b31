// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqliteengine adapts zombiezen.com/go/sqlite to the
// [engine] contract. It is the production engine for litehost: pure
// Go (modernc.org/sqlite underneath), so no cgo toolchain is needed.
//
// # Mapping
//
// zombiezen exposes functions as a Go-level FunctionImpl with a
// Scalar func or a MakeAggregate factory. The adapter turns the void
// trampolines of [engine.Callbacks] into that shape:
//
//   - Scalar: the adapter passes a capturing [engine.Context] to
//     Invoke and converts whatever result setter was called into the
//     returned sqlite.Value or error.
//   - Aggregate and window: MakeAggregate runs once per evaluation and
//     allocates a fresh aggregate identifier from a per-connection
//     counter. That identifier is what [engine.Context.AggregateID]
//     reports to every Step, Inverse, Value and Final for that
//     evaluation.
//   - zombiezen asks for the final result through WindowValue and
//     then calls Finalize. For plain aggregates WindowValue runs Final
//     (consuming the evaluation's state). For window functions
//     WindowValue runs Value and Finalize runs Final with its result
//     discarded, so the accumulator is still released exactly once.
//     zombiezen cannot tell the last xValue from xFinal, so a window
//     function's SQL result is always what Value returned. An error
//     from that Final never reaches SQL; it is logged at warn level.
//
// zombiezen does not expose value sub-types, the no-change flag, bind
// provenance or sqlite3_result_subtype. Those report zero or false,
// and setting a result sub-type has no effect.
//
// [Conn.Cancel] cancels the context that Execute hands to
// SetInterrupt. Calling SetInterrupt itself from inside a callback
// would reset the statement that is still stepping.
//
// zombiezen has no way to remove a function, so unregistering
// replaces it with a scalar that fails with "no such function".
// Collations are removed with SetCollation(name, nil).
package sqliteengine
