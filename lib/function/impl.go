// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package function

import (
	"errors"
	"fmt"
)

// ErrNoImplementation is returned when an implementation does not
// provide a callback its descriptor's kind requires.
var ErrNoImplementation = errors.New("function: no implementation")

// Scalar is implemented by scalar functions.
type Scalar interface {
	Invoke(call *Call, args []any) (any, error)
}

// Aggregate is implemented by aggregate functions. Step receives the
// 1-based row number within the current aggregate invocation and a
// pointer to the accumulator, which starts nil. Final receives the
// accumulator, or nil if Step never ran.
type Aggregate interface {
	Step(call *Call, args []any, stepNumber int, state *any) error
	Final(call *Call, state any) (any, error)
}

// Window is implemented by aggregate window functions. Value returns
// the current result without consuming the accumulator; Inverse
// removes the oldest row from the window.
type Window interface {
	Aggregate
	Value(call *Call, state any) (any, error)
	Inverse(call *Call, args []any, inverseNumber int, state *any) error
}

// Collation is implemented by collating sequences.
type Collation interface {
	Compare(left, right string) (int, error)
}

// Declarer is implemented by types that describe their own SQL
// registrations. See [Registry.RegisterType].
type Declarer interface {
	Declarations() []Descriptor
}

// Funcs supplies an implementation as plain callbacks. Only the
// callbacks required by the descriptor's kind need to be set.
type Funcs struct {
	Invoke  func(call *Call, args []any) (any, error)
	Step    func(call *Call, args []any, stepNumber int, state *any) error
	Final   func(call *Call, state any) (any, error)
	Value   func(call *Call, state any) (any, error)
	Inverse func(call *Call, args []any, inverseNumber int, state *any) error
	Compare func(left, right string) (int, error)

	// Close, if set, is called when the registration is replaced or
	// removed from the registry.
	Close func() error
}

// check reports whether funcs can serve kind.
func (f *Funcs) check(kind Kind) error {
	var missing []string
	need := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	switch kind {
	case KindScalar:
		need(f.Invoke != nil, "Invoke")
	case KindAggregate:
		need(f.Step != nil, "Step")
		need(f.Final != nil, "Final")
	case KindWindow:
		need(f.Step != nil, "Step")
		need(f.Final != nil, "Final")
		need(f.Value != nil, "Value")
		need(f.Inverse != nil, "Inverse")
	case KindCollation:
		need(f.Compare != nil, "Compare")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s missing %v", ErrNoImplementation, kind, missing)
	}
	return nil
}

// delegate adapts Funcs to the implementation interfaces.
type delegate struct{ funcs *Funcs }

func (d delegate) Invoke(call *Call, args []any) (any, error) {
	return d.funcs.Invoke(call, args)
}

func (d delegate) Step(call *Call, args []any, stepNumber int, state *any) error {
	return d.funcs.Step(call, args, stepNumber, state)
}

func (d delegate) Final(call *Call, state any) (any, error) {
	return d.funcs.Final(call, state)
}

func (d delegate) Value(call *Call, state any) (any, error) {
	return d.funcs.Value(call, state)
}

func (d delegate) Inverse(call *Call, args []any, inverseNumber int, state *any) error {
	return d.funcs.Inverse(call, args, inverseNumber, state)
}

func (d delegate) Compare(left, right string) (int, error) {
	return d.funcs.Compare(left, right)
}

// conforms reports whether impl provides every callback kind needs.
func conforms(impl any, kind Kind) error {
	var ok bool
	switch kind {
	case KindScalar:
		_, ok = impl.(Scalar)
	case KindAggregate:
		_, ok = impl.(Aggregate)
	case KindWindow:
		_, ok = impl.(Window)
	case KindCollation:
		_, ok = impl.(Collation)
	}
	if !ok {
		return fmt.Errorf("%w: %T is not a %s implementation", ErrNoImplementation, impl, kind)
	}
	return nil
}
