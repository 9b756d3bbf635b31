// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqliteengine

import (
	"encoding/binary"
	"errors"
	"log/slog"
	"unicode/utf16"

	"zombiezen.com/go/sqlite"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// value wraps a zombiezen argument. zombiezen does not surface
// sub-types, the no-change flag or bind provenance, so those report
// their zero values.
type value struct {
	raw sqlite.Value
}

func (v value) Type() engine.ValueType {
	switch v.raw.Type() {
	case sqlite.TypeInteger:
		return engine.TypeInteger
	case sqlite.TypeFloat:
		return engine.TypeFloat
	case sqlite.TypeText:
		return engine.TypeText
	case sqlite.TypeBlob:
		return engine.TypeBlob
	default:
		return engine.TypeNull
	}
}

func (v value) NumericType() engine.ValueType {
	if kind := v.Type(); kind != engine.TypeText {
		return kind
	}
	return engine.NumericAffinity(v.raw.Text())
}

func (v value) Int64() int64    { return v.raw.Int64() }
func (v value) Float() float64  { return v.raw.Float() }
func (v value) Text() string    { return v.raw.Text() }
func (v value) Blob() []byte    { return v.raw.Blob() }
func (v value) SubType() uint32 { return 0 }
func (v value) NoChange() bool  { return false }
func (v value) FromBind() bool  { return false }

func wrapValues(args []sqlite.Value) []engine.Value {
	wrapped := make([]engine.Value, len(args))
	for i, arg := range args {
		wrapped[i] = value{raw: arg}
	}
	return wrapped
}

// result captures the result setters called by a trampoline and
// converts them into what zombiezen expects as a return value.
type result struct {
	aggregateID uint64
	value       sqlite.Value
	err         error
}

func (r *result) AggregateID() uint64      { return r.aggregateID }
func (r *result) ResultNull()              { r.value, r.err = sqlite.Value{}, nil }
func (r *result) ResultInt64(v int64)      { r.value, r.err = sqlite.IntegerValue(v), nil }
func (r *result) ResultFloat(v float64)    { r.value, r.err = sqlite.FloatValue(v), nil }
func (r *result) ResultText(v string)      { r.value, r.err = sqlite.TextValue(v), nil }
func (r *result) ResultBlob(v []byte)      { r.value, r.err = sqlite.BlobValue(v), nil }
func (r *result) ResultError(msg string)   { r.value, r.err = sqlite.Value{}, errors.New(msg) }
func (r *result) ResultSubType(sub uint32) {}

func scalarTrampoline(invoke func(engine.Context, []engine.Value)) func(sqlite.Context, []sqlite.Value) (sqlite.Value, error) {
	return func(_ sqlite.Context, args []sqlite.Value) (sqlite.Value, error) {
		captured := &result{}
		invoke(captured, wrapValues(args))
		return captured.value, captured.err
	}
}

// aggregate is one aggregate or window evaluation.
type aggregate struct {
	id        uint64
	name      string
	callbacks *engine.Callbacks
	logger    *slog.Logger
	finalized bool
}

func (a *aggregate) Step(_ sqlite.Context, rowArgs []sqlite.Value) error {
	captured := &result{aggregateID: a.id}
	a.callbacks.Step(captured, wrapValues(rowArgs))
	return captured.err
}

func (a *aggregate) WindowInverse(_ sqlite.Context, rowArgs []sqlite.Value) error {
	if a.callbacks.Inverse == nil {
		return engine.ErrUnsupported
	}
	captured := &result{aggregateID: a.id}
	a.callbacks.Inverse(captured, wrapValues(rowArgs))
	return captured.err
}

func (a *aggregate) WindowValue(_ sqlite.Context) (sqlite.Value, error) {
	captured := &result{aggregateID: a.id}
	if a.callbacks.Value != nil {
		a.callbacks.Value(captured)
		return captured.value, captured.err
	}
	a.finalized = true
	a.callbacks.Final(captured)
	return captured.value, captured.err
}

func (a *aggregate) Finalize(_ sqlite.Context) {
	if a.finalized {
		return
	}
	a.finalized = true
	captured := &result{aggregateID: a.id}
	a.callbacks.Final(captured)
	if captured.err != nil {
		a.logger.Warn("window function final failed after its value was returned",
			"function", a.name,
			"error", captured.err,
		)
	}
}

// collationTrampoline picks the UTF-8 compare when present and
// otherwise re-encodes both operands for the UTF-16 compare.
func collationTrampoline(collation *engine.Collation) func(string, string) int {
	if collation.Compare != nil {
		return func(left, right string) int {
			return collation.Compare([]byte(left), []byte(right))
		}
	}
	if collation.Compare16 != nil {
		return func(left, right string) int {
			return collation.Compare16(encodeUTF16(left), encodeUTF16(right))
		}
	}
	return nil
}

func encodeUTF16(text string) []byte {
	units := utf16.Encode([]rune(text))
	encoded := make([]byte, 2*len(units))
	for i, unit := range units {
		binary.LittleEndian.PutUint16(encoded[2*i:], unit)
	}
	return encoded
}
