// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package function

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// ErrInvalidDescriptor is returned when a descriptor cannot be
// registered.
var ErrInvalidDescriptor = errors.New("function: invalid descriptor")

// MaxArity is the largest fixed argument count the engine accepts.
const MaxArity = 127

// Kind is the role a function plays in SQL.
type Kind uint8

const (
	KindScalar Kind = iota + 1
	KindAggregate
	KindWindow
	KindCollation
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindAggregate:
		return "aggregate"
	case KindWindow:
		return "window"
	case KindCollation:
		return "collation"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind converts a kind name as printed by Kind.String.
func ParseKind(name string) (Kind, error) {
	for _, kind := range []Kind{KindScalar, KindAggregate, KindWindow, KindCollation} {
		if strings.EqualFold(name, kind.String()) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("function: unknown kind %q", name)
}

// Descriptor declares one function. Descriptors are comparable and are
// used as map keys in [Bindings].
type Descriptor struct {
	// Name is the SQL-visible name. Lookup is case-insensitive.
	Name string

	// Arity is the argument count, or -1 for any number. Ignored for
	// collations.
	Arity int

	Kind Kind

	// Flags are passed to the engine when the function is created.
	// When the encoding bits are zero, UTF-8 is used.
	Flags engine.FunctionFlags
}

func (d Descriptor) String() string {
	if d.Kind == KindCollation {
		return fmt.Sprintf("%s %s", d.Kind, d.Name)
	}
	return fmt.Sprintf("%s %s/%d", d.Kind, d.Name, d.Arity)
}

// Validate reports whether the descriptor can be registered.
func (d Descriptor) Validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	case d.Kind < KindScalar || d.Kind > KindCollation:
		return fmt.Errorf("%w: %s: unknown kind %d", ErrInvalidDescriptor, d.Name, d.Kind)
	case d.Kind != KindCollation && (d.Arity < -1 || d.Arity > MaxArity):
		return fmt.Errorf("%w: %s: arity %d out of range", ErrInvalidDescriptor, d.Name, d.Arity)
	}
	return nil
}

// engineFlags returns the flags passed to the engine, defaulting the
// encoding to UTF-8.
func (d Descriptor) engineFlags() engine.FunctionFlags {
	flags := d.Flags
	if flags.Encoding() == engine.FlagNone {
		flags |= engine.FlagUTF8
	}
	return flags
}

// key identifies the catalog slot a descriptor occupies. Two
// descriptors with the same key replace each other.
type key struct {
	name  string
	arity int
	kind  Kind
}

func (d Descriptor) key() key {
	k := key{name: strings.ToLower(d.Name), arity: d.Arity, kind: d.Kind}
	if d.Kind == KindCollation {
		k.arity = 0
	}
	return k
}
