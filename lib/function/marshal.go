// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package function

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// TimeFormat is the layout time.Time results are stored with.
const TimeFormat = "2006-01-02 15:04:05.999999999Z07:00"

// convertArgs marshals engine values to Go values. Blobs are copied
// because the engine reuses its buffers after the callback returns.
func convertArgs(values []engine.Value) []any {
	if len(values) == 0 {
		return nil
	}
	args := make([]any, len(values))
	for i, v := range values {
		switch v.Type() {
		case engine.TypeInteger:
			args[i] = v.Int64()
		case engine.TypeFloat:
			args[i] = v.Float()
		case engine.TypeText:
			args[i] = v.Text()
		case engine.TypeBlob:
			args[i] = append([]byte{}, v.Blob()...)
		default:
			args[i] = nil
		}
	}
	return args
}

// setResult marshals a Go value into the engine result for ctx.
func setResult(ctx engine.Context, result any) error {
	switch v := result.(type) {
	case nil:
		ctx.ResultNull()
	case error:
		ctx.ResultError(v.Error())
	case int64:
		ctx.ResultInt64(v)
	case int:
		ctx.ResultInt64(int64(v))
	case int32:
		ctx.ResultInt64(int64(v))
	case int16:
		ctx.ResultInt64(int64(v))
	case int8:
		ctx.ResultInt64(int64(v))
	case uint8:
		ctx.ResultInt64(int64(v))
	case uint16:
		ctx.ResultInt64(int64(v))
	case uint32:
		ctx.ResultInt64(int64(v))
	case uint:
		return setUnsigned(ctx, uint64(v))
	case uint64:
		return setUnsigned(ctx, v)
	case bool:
		if v {
			ctx.ResultInt64(1)
		} else {
			ctx.ResultInt64(0)
		}
	case float64:
		ctx.ResultFloat(v)
	case float32:
		ctx.ResultFloat(float64(v))
	case string:
		ctx.ResultText(v)
	case []byte:
		if v == nil {
			ctx.ResultNull()
		} else {
			ctx.ResultBlob(v)
		}
	case time.Time:
		ctx.ResultText(v.Format(TimeFormat))
	case driver.Valuer:
		value, err := v.Value()
		if err != nil {
			return fmt.Errorf("function: result %T: %w", result, err)
		}
		if _, nested := value.(driver.Valuer); nested {
			return fmt.Errorf("function: result %T: Value returned another Valuer", result)
		}
		return setResult(ctx, value)
	case fmt.Stringer:
		ctx.ResultText(v.String())
	default:
		return setReflected(ctx, result)
	}
	return nil
}

func setUnsigned(ctx engine.Context, v uint64) error {
	if v > math.MaxInt64 {
		return fmt.Errorf("function: result %d overflows a 64-bit integer", v)
	}
	ctx.ResultInt64(int64(v))
	return nil
}

// setReflected handles named types whose underlying kind is
// supported, such as `type Celsius float64`.
func setReflected(ctx engine.Context, result any) error {
	value := reflect.ValueOf(result)
	switch value.Kind() {
	case reflect.Pointer:
		if value.IsNil() {
			ctx.ResultNull()
			return nil
		}
		return setResult(ctx, value.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		ctx.ResultInt64(value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return setUnsigned(ctx, value.Uint())
	case reflect.Float32, reflect.Float64:
		ctx.ResultFloat(value.Float())
	case reflect.Bool:
		return setResult(ctx, value.Bool())
	case reflect.String:
		ctx.ResultText(value.String())
	case reflect.Slice:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return setResult(ctx, value.Bytes())
		}
		return fmt.Errorf("function: unsupported result type %T", result)
	default:
		return fmt.Errorf("function: unsupported result type %T", result)
	}
	return nil
}
