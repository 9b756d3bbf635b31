// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package enginetest

import (
	"strconv"
	"strings"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// Value is a synthetic native value. The zero Value is SQL NULL.
type Value struct {
	Kind     engine.ValueType
	Integer  int64
	Real     float64
	String   string
	Bytes    []byte
	Sub      uint32
	Unchanged bool
	Bound    bool
}

var _ engine.Value = Value{}

// Null returns a NULL value.
func Null() Value { return Value{Kind: engine.TypeNull} }

// Int returns an INTEGER value.
func Int(v int64) Value { return Value{Kind: engine.TypeInteger, Integer: v} }

// Float returns a REAL value.
func Float(v float64) Value { return Value{Kind: engine.TypeFloat, Real: v} }

// Text returns a TEXT value.
func Text(v string) Value { return Value{Kind: engine.TypeText, String: v} }

// Blob returns a BLOB value.
func Blob(v []byte) Value { return Value{Kind: engine.TypeBlob, Bytes: v} }

func (v Value) Type() engine.ValueType { return v.Kind }

// NumericType applies numeric affinity to TEXT values the way the
// engine does: well-formed integers become INTEGER, other numbers
// become REAL, anything else stays TEXT.
func (v Value) NumericType() engine.ValueType {
	if v.Kind != engine.TypeText {
		return v.Kind
	}
	return engine.NumericAffinity(v.String)
}

func (v Value) Int64() int64 {
	switch v.Kind {
	case engine.TypeInteger:
		return v.Integer
	case engine.TypeFloat:
		return int64(v.Real)
	case engine.TypeText:
		parsed, _ := strconv.ParseInt(strings.TrimSpace(v.String), 10, 64)
		return parsed
	}
	return 0
}

func (v Value) Float() float64 {
	switch v.Kind {
	case engine.TypeInteger:
		return float64(v.Integer)
	case engine.TypeFloat:
		return v.Real
	case engine.TypeText:
		parsed, _ := strconv.ParseFloat(strings.TrimSpace(v.String), 64)
		return parsed
	}
	return 0
}

func (v Value) Text() string {
	switch v.Kind {
	case engine.TypeInteger:
		return strconv.FormatInt(v.Integer, 10)
	case engine.TypeFloat:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case engine.TypeText:
		return v.String
	case engine.TypeBlob:
		return string(v.Bytes)
	}
	return ""
}

func (v Value) Blob() []byte {
	switch v.Kind {
	case engine.TypeBlob:
		return v.Bytes
	case engine.TypeNull:
		return nil
	}
	return []byte(v.Text())
}

func (v Value) SubType() uint32 { return v.Sub }
func (v Value) NoChange() bool  { return v.Unchanged }
func (v Value) FromBind() bool  { return v.Bound }
