// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned by operations on a connection that has
	// already been closed.
	ErrClosed = errors.New("engine: connection closed")

	// ErrUnsupported is returned when the engine cannot perform a
	// requested registration (for example a flag combination or a
	// callback kind the engine does not implement).
	ErrUnsupported = errors.New("engine: operation not supported")
)

// ValueType is the fundamental type tag of a native value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInteger
	TypeFloat
	TypeText
	TypeBlob
)

// String returns the SQL name of the type.
func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "REAL"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// Value is one argument passed by the engine to a function callback.
// Values are only valid for the duration of the callback.
type Value interface {
	Type() ValueType

	// NumericType is the type the value would have after numeric
	// affinity is applied (sqlite3_value_numeric_type).
	NumericType() ValueType

	Int64() int64
	Float() float64
	Text() string
	Blob() []byte

	// SubType is the application sub-type tag, zero when unset.
	SubType() uint32

	// NoChange reports whether the value is unchanged in an UPDATE
	// against a virtual table column.
	NoChange() bool

	// FromBind reports whether the value originated from a bound
	// parameter rather than a literal or column.
	FromBind() bool
}

// Context is the per-invocation handle the engine passes to every
// function callback. Exactly one result setter should be called per
// scalar or final/value invocation; later calls overwrite earlier
// ones.
type Context interface {
	// AggregateID identifies the aggregate or window evaluation this
	// callback belongs to. Zero for scalar invocations.
	AggregateID() uint64

	ResultNull()
	ResultInt64(v int64)
	ResultFloat(v float64)
	ResultText(v string)
	ResultBlob(v []byte)
	ResultError(message string)
	ResultSubType(subType uint32)
}

// Callbacks is the trampoline set registered for one function name.
// Which members are set determines the kind of function: Invoke only
// for scalars, Step and Final for aggregates, all four of Step,
// Final, Value and Inverse for window functions.
type Callbacks struct {
	Invoke  func(ctx Context, args []Value)
	Step    func(ctx Context, args []Value)
	Final   func(ctx Context)
	Value   func(ctx Context)
	Inverse func(ctx Context, args []Value)
}

// Collation is the compare trampoline pair for one collating
// sequence. Compare receives UTF-8 text, Compare16 receives UTF-16
// (native byte order, little-endian on every supported platform).
// Engines register whichever encodings they support.
type Collation struct {
	Compare   func(left, right []byte) int
	Compare16 func(left, right []byte) int
}

// Row is one result row produced by [Conn.Execute].
type Row []any

// Conn is one native database connection. It is not safe for
// concurrent use; the pool guarantees a single owner at a time.
type Conn interface {
	// CreateFunction registers (callbacks non-nil) or unregisters
	// (callbacks nil) a function with the given name and arity.
	CreateFunction(name string, nArgs int, flags FunctionFlags, callbacks *Callbacks) error

	// CreateCollation registers (collation non-nil) or unregisters
	// a collating sequence.
	CreateCollation(name string, collation *Collation) error

	// Cancel interrupts the statement currently executing on this
	// connection, if any.
	Cancel()

	// Execute prepares and steps one statement, calling fn for each
	// result row. fn may be nil.
	Execute(ctx context.Context, query string, fn func(Row) error, args ...any) error

	// IsOpen reports whether the connection is usable.
	IsOpen() bool

	// Close releases the native connection. Close is idempotent.
	Close() error
}

// Opener creates native connections for a database path.
type Opener interface {
	Open(ctx context.Context, path string) (Conn, error)
}

// OpenerFunc adapts a function to the [Opener] interface.
type OpenerFunc func(ctx context.Context, path string) (Conn, error)

// Open calls f(ctx, path).
func (f OpenerFunc) Open(ctx context.Context, path string) (Conn, error) {
	return f(ctx, path)
}
