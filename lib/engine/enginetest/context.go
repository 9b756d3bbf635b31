// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package enginetest

import "github.com/bureau-foundation/litehost/lib/engine"

// Result records what a trampoline reported through the result
// setters of a [Context].
type Result struct {
	// Set is true once any result setter has been called.
	Set bool

	Type    engine.ValueType
	Int     int64
	Float   float64
	Text    string
	Blob    []byte
	SubType uint32

	// IsError and Error record a ResultError call.
	IsError bool
	Error   string
}

// Value returns the recorded result as a Go value: nil for NULL or
// unset, int64, float64, string or []byte otherwise. Error results
// return nil; check IsError.
func (r Result) Value() any {
	if !r.Set || r.IsError {
		return nil
	}
	switch r.Type {
	case engine.TypeInteger:
		return r.Int
	case engine.TypeFloat:
		return r.Float
	case engine.TypeText:
		return r.Text
	case engine.TypeBlob:
		return r.Blob
	}
	return nil
}

// Context is a synthetic callback context that captures results.
type Context struct {
	aggregateID uint64
	Result      Result
}

var _ engine.Context = (*Context)(nil)

// NewContext returns a context for the given aggregate evaluation.
// Use zero for scalar calls.
func NewContext(aggregateID uint64) *Context {
	return &Context{aggregateID: aggregateID}
}

func (c *Context) AggregateID() uint64 { return c.aggregateID }

func (c *Context) ResultNull() {
	c.Result = Result{Set: true, Type: engine.TypeNull, SubType: c.Result.SubType}
}

func (c *Context) ResultInt64(v int64) {
	c.Result = Result{Set: true, Type: engine.TypeInteger, Int: v, SubType: c.Result.SubType}
}

func (c *Context) ResultFloat(v float64) {
	c.Result = Result{Set: true, Type: engine.TypeFloat, Float: v, SubType: c.Result.SubType}
}

func (c *Context) ResultText(v string) {
	c.Result = Result{Set: true, Type: engine.TypeText, Text: v, SubType: c.Result.SubType}
}

func (c *Context) ResultBlob(v []byte) {
	c.Result = Result{Set: true, Type: engine.TypeBlob, Blob: append([]byte(nil), v...), SubType: c.Result.SubType}
}

func (c *Context) ResultError(message string) {
	c.Result = Result{Set: true, IsError: true, Error: message}
}

func (c *Context) ResultSubType(subType uint32) { c.Result.SubType = subType }
