// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package function

import (
	"fmt"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// Call gives an implementation access to per-invocation engine state
// that the marshaled arguments do not carry. A Call is valid only for
// the duration of the callback it was passed to.
//
// Sub-types, the no-change flag and bind provenance are only as good
// as the engine behind the call. The zombiezen engine reports zero or
// false for all three and ignores SetReturnSubType.
type Call struct {
	ctx    engine.Context
	values []engine.Value

	subType    uint32
	hasSubType bool
}

func newCall(ctx engine.Context, values []engine.Value) *Call {
	return &Call{ctx: ctx, values: values}
}

// AggregateID returns the engine's identifier for the current
// aggregate invocation. Zero for scalar calls.
func (c *Call) AggregateID() uint64 { return c.ctx.AggregateID() }

// ArgCount returns the number of arguments passed by the engine.
func (c *Call) ArgCount() int { return len(c.values) }

func (c *Call) value(index int) (engine.Value, error) {
	if index < 0 || index >= len(c.values) {
		return nil, fmt.Errorf("function: parameter %d out of range [0, %d)", index, len(c.values))
	}
	return c.values[index], nil
}

// ParameterSubType returns the subtype tag of argument index.
func (c *Call) ParameterSubType(index int) (uint32, error) {
	v, err := c.value(index)
	if err != nil {
		return 0, err
	}
	return v.SubType(), nil
}

// ParameterNumericType returns the type argument index would have
// after numeric affinity is applied.
func (c *Call) ParameterNumericType(index int) (engine.ValueType, error) {
	v, err := c.value(index)
	if err != nil {
		return engine.TypeNull, err
	}
	return v.NumericType(), nil
}

// ParameterNoChange reports whether argument index is a column an
// UPDATE leaves unchanged.
func (c *Call) ParameterNoChange(index int) (bool, error) {
	v, err := c.value(index)
	if err != nil {
		return false, err
	}
	return v.NoChange(), nil
}

// ParameterFromBind reports whether argument index came from a bound
// parameter rather than a column or expression.
func (c *Call) ParameterFromBind(index int) (bool, error) {
	v, err := c.value(index)
	if err != nil {
		return false, err
	}
	return v.FromBind(), nil
}

// SetReturnSubType tags the result with a subtype. It is applied after
// the result value is set.
func (c *Call) SetReturnSubType(subType uint32) {
	c.subType = subType
	c.hasSubType = true
}

func (c *Call) applySubType() {
	if c.hasSubType {
		c.ctx.ResultSubType(c.subType)
	}
}
