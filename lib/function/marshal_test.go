// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package function

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bureau-foundation/litehost/lib/engine"
	"github.com/bureau-foundation/litehost/lib/engine/enginetest"
)

type celsius float64

type label struct{ name string }

func (l label) String() string { return "label:" + l.name }

type money struct{ cents int64 }

func (m money) Value() (driver.Value, error) { return m.cents, nil }

func TestSetResult(t *testing.T) {
	stamp := time.Date(2026, 3, 4, 5, 6, 7, 800000000, time.UTC)
	seven := int64(7)
	var nilPointer *int64

	tests := []struct {
		name     string
		value    any
		wantType engine.ValueType
		want     any
	}{
		{"nil", nil, engine.TypeNull, nil},
		{"int", 5, engine.TypeInteger, int64(5)},
		{"int8", int8(-3), engine.TypeInteger, int64(-3)},
		{"uint32", uint32(math.MaxUint32), engine.TypeInteger, int64(math.MaxUint32)},
		{"uint64", uint64(9), engine.TypeInteger, int64(9)},
		{"true", true, engine.TypeInteger, int64(1)},
		{"false", false, engine.TypeInteger, int64(0)},
		{"float32", float32(1.5), engine.TypeFloat, 1.5},
		{"string", "hi", engine.TypeText, "hi"},
		{"bytes", []byte{1, 2}, engine.TypeBlob, []byte{1, 2}},
		{"nil bytes", []byte(nil), engine.TypeNull, nil},
		{"time", stamp, engine.TypeText, "2026-03-04 05:06:07.8Z"},
		{"stringer", label{"x"}, engine.TypeText, "label:x"},
		{"valuer", money{250}, engine.TypeInteger, int64(250)},
		{"named float", celsius(21.5), engine.TypeFloat, 21.5},
		{"pointer", &seven, engine.TypeInteger, int64(7)},
		{"nil pointer", nilPointer, engine.TypeNull, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := enginetest.NewContext(0)
			if err := setResult(ctx, test.value); err != nil {
				t.Fatalf("setResult(%v): %v", test.value, err)
			}
			if ctx.Result.Type != test.wantType {
				t.Errorf("type = %v, want %v", ctx.Result.Type, test.wantType)
			}
			got := ctx.Result.Value()
			if gotBytes, ok := got.([]byte); ok {
				if !bytes.Equal(gotBytes, test.want.([]byte)) {
					t.Errorf("value = %v, want %v", got, test.want)
				}
				return
			}
			if got != test.want {
				t.Errorf("value = %#v, want %#v", got, test.want)
			}
		})
	}
}

func TestSetResultErrors(t *testing.T) {
	ctx := enginetest.NewContext(0)
	if err := setResult(ctx, errors.New("user said no")); err != nil {
		t.Fatalf("setResult(error) returned %v", err)
	}
	if !ctx.Result.IsError || ctx.Result.Error != "user said no" {
		t.Errorf("error value result = %+v", ctx.Result)
	}

	for _, value := range []any{uint64(math.MaxUint64), struct{}{}, []int{1}} {
		if err := setResult(enginetest.NewContext(0), value); err == nil {
			t.Errorf("setResult(%T) succeeded, want an error", value)
		}
	}
}

func TestConvertArgs(t *testing.T) {
	blob := []byte{9, 8}
	args := convertArgs(values(
		enginetest.Null(),
		enginetest.Int(-4),
		enginetest.Float(2.25),
		enginetest.Text("t"),
		enginetest.Blob(blob),
	))
	if args[0] != nil || args[1] != int64(-4) || args[2] != 2.25 || args[3] != "t" {
		t.Errorf("convertArgs = %#v", args)
	}
	got := args[4].([]byte)
	blob[0] = 0
	if got[0] != 9 {
		t.Error("blob argument aliases the engine buffer")
	}
	if convertArgs(nil) != nil {
		t.Error("convertArgs(nil) is not nil")
	}
}
