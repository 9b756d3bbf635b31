// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package function

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf16"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// BindFlags controls binding and trampoline behavior.
type BindFlags uint32

const (
	// LogCallbackErrors logs every error and panic contained by a
	// trampoline at warn level.
	LogCallbackErrors BindFlags = 1 << iota
)

// Has reports whether every bit in flag is set.
func (f BindFlags) Has(flag BindFlags) bool { return f&flag == flag }

// PanicError wraps a value recovered from a panicking implementation.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("function: implementation panicked: %v", e.Value)
}

// BoundFunction is one descriptor instantiated against one engine
// connection. It owns the trampolines registered with the engine.
type BoundFunction struct {
	descriptor Descriptor
	impl       any
	owned      bool
	conn       engine.Conn
	flags      BindFlags
	logger     *slog.Logger

	scalar    Scalar
	aggregate Aggregate
	window    Window
	collation Collation

	contexts *contextTable
}

func newBoundFunction(descriptor Descriptor, impl any, owned bool, conn engine.Conn, flags BindFlags, logger *slog.Logger) *BoundFunction {
	f := &BoundFunction{
		descriptor: descriptor,
		impl:       impl,
		owned:      owned,
		conn:       conn,
		flags:      flags,
		logger:     logger,
		contexts:   newContextTable(),
	}
	f.scalar, _ = impl.(Scalar)
	f.aggregate, _ = impl.(Aggregate)
	f.window, _ = impl.(Window)
	f.collation, _ = impl.(Collation)
	return f
}

// Descriptor returns the descriptor this function was bound from.
func (f *BoundFunction) Descriptor() Descriptor { return f.descriptor }

// Implementation returns the Go implementation behind the trampolines.
func (f *BoundFunction) Implementation() any { return f.impl }

// ActiveContexts returns the number of aggregate invocations that have
// stepped but not finished.
func (f *BoundFunction) ActiveContexts() int { return f.contexts.len() }

// bind registers the trampolines with the engine.
func (f *BoundFunction) bind() error {
	d := f.descriptor
	if d.Kind == KindCollation {
		return f.conn.CreateCollation(d.Name, &engine.Collation{
			Compare:   f.compare,
			Compare16: f.compare16,
		})
	}
	callbacks := &engine.Callbacks{}
	switch d.Kind {
	case KindScalar:
		callbacks.Invoke = f.invoke
	case KindAggregate:
		callbacks.Step = f.step
		callbacks.Final = f.final
	case KindWindow:
		callbacks.Step = f.step
		callbacks.Final = f.final
		callbacks.Value = f.value
		callbacks.Inverse = f.inverse
	}
	return f.conn.CreateFunction(d.Name, d.Arity, d.engineFlags(), callbacks)
}

// unbind removes the trampolines from conn.
func (f *BoundFunction) unbind(conn engine.Conn) error {
	d := f.descriptor
	if d.Kind == KindCollation {
		return conn.CreateCollation(d.Name, nil)
	}
	return conn.CreateFunction(d.Name, d.Arity, d.engineFlags(), nil)
}

// Close releases accumulators left by aggregates that never finished
// and closes the implementation if it was created for this connection.
func (f *BoundFunction) Close() error {
	for _, entry := range f.contexts.drain() {
		f.release(entry.state)
	}
	if closer, ok := f.impl.(io.Closer); ok && f.owned {
		return closer.Close()
	}
	return nil
}

// guard runs fn, converting a panic into a PanicError.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}

func (f *BoundFunction) report(callback string, err error) {
	if f.flags.Has(LogCallbackErrors) {
		f.logger.Warn("function callback failed",
			"function", f.descriptor.Name,
			"kind", f.descriptor.Kind.String(),
			"callback", callback,
			"error", err,
		)
	}
}

// fail reports err and turns it into an error result.
func (f *BoundFunction) fail(ctx engine.Context, callback string, err error) {
	f.report(callback, err)
	ctx.ResultError(fmt.Sprintf("%s: %v", f.descriptor.Name, err))
}

// finish marshals result into ctx and applies any pending subtype.
func finish(ctx engine.Context, call *Call, result any, err error) error {
	if err != nil {
		return err
	}
	if err := setResult(ctx, result); err != nil {
		return err
	}
	call.applySubType()
	return nil
}

func (f *BoundFunction) invoke(ctx engine.Context, values []engine.Value) {
	err := guard(func() error {
		call := newCall(ctx, values)
		result, err := f.scalar.Invoke(call, convertArgs(values))
		return finish(ctx, call, result, err)
	})
	if err != nil {
		f.fail(ctx, "Invoke", err)
	}
}

func (f *BoundFunction) step(ctx engine.Context, values []engine.Value) {
	entry := f.contexts.acquire(ctx.AggregateID())
	err := guard(func() error {
		defer func() { entry.stepCount++ }()
		return f.aggregate.Step(newCall(ctx, values), convertArgs(values), entry.stepCount, &entry.state)
	})
	if err != nil {
		f.fail(ctx, "Step", err)
	}
}

func (f *BoundFunction) final(ctx engine.Context) {
	var state any
	if entry := f.contexts.take(ctx.AggregateID()); entry != nil {
		state = entry.state
	}
	err := guard(func() error {
		defer f.release(state)
		call := newCall(ctx, nil)
		result, err := f.aggregate.Final(call, state)
		return finish(ctx, call, result, err)
	})
	if err != nil {
		f.fail(ctx, "Final", err)
	}
}

func (f *BoundFunction) value(ctx engine.Context) {
	var state any
	if entry := f.contexts.peek(ctx.AggregateID()); entry != nil {
		state = entry.state
	}
	err := guard(func() error {
		call := newCall(ctx, nil)
		result, err := f.window.Value(call, state)
		return finish(ctx, call, result, err)
	})
	if err != nil {
		f.fail(ctx, "Value", err)
	}
}

func (f *BoundFunction) inverse(ctx engine.Context, values []engine.Value) {
	entry := f.contexts.acquire(ctx.AggregateID())
	err := guard(func() error {
		defer func() { entry.inverseCount++ }()
		return f.window.Inverse(newCall(ctx, values), convertArgs(values), entry.inverseCount, &entry.state)
	})
	if err != nil {
		f.fail(ctx, "Inverse", err)
	}
}

// release closes an accumulator that holds resources.
func (f *BoundFunction) release(state any) {
	closer, ok := state.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		f.report("Final", fmt.Errorf("releasing accumulator: %w", err))
	}
}

func (f *BoundFunction) compare(left, right []byte) int {
	return f.compareStrings("Compare", string(left), string(right))
}

func (f *BoundFunction) compare16(left, right []byte) int {
	return f.compareStrings("Compare16", decodeUTF16LE(left), decodeUTF16LE(right))
}

// compareStrings runs the collation. On failure the running statement
// is cancelled and the strings compare as equal.
func (f *BoundFunction) compareStrings(callback, left, right string) int {
	var result int
	err := guard(func() error {
		var err error
		result, err = f.collation.Compare(left, right)
		return err
	})
	if err != nil {
		f.report(callback, err)
		if f.conn.IsOpen() {
			f.conn.Cancel()
		}
		return 0
	}
	return result
}

func decodeUTF16LE(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units))
}
