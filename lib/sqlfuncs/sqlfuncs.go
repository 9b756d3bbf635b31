// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlfuncs

import (
	"fmt"

	"github.com/bureau-foundation/litehost/lib/engine"
	"github.com/bureau-foundation/litehost/lib/function"
)

// Register adds every stock function to registry.
func Register(registry *function.Registry) error {
	return registry.RegisterAll(
		func() any { return Double{} },
		func() any { return &SumSquares{} },
		func() any { return &MovingSum{} },
		func() any { return Natural{} },
	)
}

// number is an integer or float accumulator that stays integral until
// a float is added.
type number struct {
	integer int64
	real    float64
	isReal  bool
}

func (n *number) add(v any, sign int64) error {
	switch v := v.(type) {
	case nil:
	case int64:
		if n.isReal {
			n.real += float64(sign * v)
		} else {
			n.integer += sign * v
		}
	case float64:
		if !n.isReal {
			n.real, n.isReal = float64(n.integer), true
		}
		n.real += float64(sign) * v
	default:
		return fmt.Errorf("expected a number, got %T", v)
	}
	return nil
}

func (n *number) value() any {
	if n.isReal {
		return n.real
	}
	return n.integer
}

// Double doubles its argument.
type Double struct{}

func (Double) Declarations() []function.Descriptor {
	return []function.Descriptor{{
		Name:  "double",
		Arity: 1,
		Kind:  function.KindScalar,
		Flags: engine.FlagDeterministic | engine.FlagInnocuous,
	}}
}

func (Double) Invoke(_ *function.Call, args []any) (any, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case int64:
		return v * 2, nil
	case float64:
		return v * 2, nil
	case string:
		return nil, fmt.Errorf("double: text argument %q", v)
	default:
		return nil, fmt.Errorf("double: unsupported argument %T", v)
	}
}

// SumSquares sums the squares of its argument over a group. NULLs are
// skipped; an empty group yields NULL.
type SumSquares struct{}

func (*SumSquares) Declarations() []function.Descriptor {
	return []function.Descriptor{{
		Name:  "sum_squares",
		Arity: 1,
		Kind:  function.KindAggregate,
		Flags: engine.FlagDeterministic,
	}}
}

func (*SumSquares) Step(_ *function.Call, args []any, _ int, state *any) error {
	if args[0] == nil {
		return nil
	}
	acc, _ := (*state).(*number)
	if acc == nil {
		acc = &number{}
		*state = acc
	}
	var square any
	switch v := args[0].(type) {
	case int64:
		square = v * v
	case float64:
		square = v * v
	default:
		return fmt.Errorf("sum_squares: expected a number, got %T", v)
	}
	return acc.add(square, 1)
}

func (*SumSquares) Final(_ *function.Call, state any) (any, error) {
	acc, _ := state.(*number)
	if acc == nil {
		return nil, nil
	}
	return acc.value(), nil
}

// MovingSum sums its argument over the current window frame. Used as
// a plain aggregate it behaves like sum().
type MovingSum struct{}

func (*MovingSum) Declarations() []function.Descriptor {
	return []function.Descriptor{{
		Name:  "moving_sum",
		Arity: 1,
		Kind:  function.KindWindow,
		Flags: engine.FlagDeterministic,
	}}
}

func (*MovingSum) accumulator(state *any) *number {
	acc, _ := (*state).(*number)
	if acc == nil {
		acc = &number{}
		*state = acc
	}
	return acc
}

func (m *MovingSum) Step(_ *function.Call, args []any, _ int, state *any) error {
	if err := m.accumulator(state).add(args[0], 1); err != nil {
		return fmt.Errorf("moving_sum: %w", err)
	}
	return nil
}

func (m *MovingSum) Inverse(_ *function.Call, args []any, _ int, state *any) error {
	if err := m.accumulator(state).add(args[0], -1); err != nil {
		return fmt.Errorf("moving_sum: %w", err)
	}
	return nil
}

func (*MovingSum) Value(_ *function.Call, state any) (any, error) {
	acc, _ := state.(*number)
	if acc == nil {
		return int64(0), nil
	}
	return acc.value(), nil
}

func (m *MovingSum) Final(call *function.Call, state any) (any, error) {
	return m.Value(call, state)
}
