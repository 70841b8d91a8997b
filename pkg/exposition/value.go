package exposition

import (
	"fmt"
	"reflect"
	"strconv"
)

// FormatValue renders a sample value in its natural textual form. Floats use
// the shortest representation that round-trips, so 1.0
// renders as "1" and infinities as "+Inf" and "-Inf". Booleans render as 1
// and 0. Anything implementing fmt.Stringer renders through String.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return formatFloat(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	// sync/atomic counters
	case interface{ Load() int64 }:
		return strconv.FormatInt(x.Load(), 10)
	case interface{ Load() uint64 }:
		return strconv.FormatUint(x.Load(), 10)
	case interface{ Load() int32 }:
		return strconv.FormatInt(int64(x.Load()), 10)
	case interface{ Load() uint32 }:
		return strconv.FormatUint(uint64(x.Load()), 10)
	case interface{ Load() bool }:
		return FormatValue(x.Load())
	case fmt.Stringer:
		return x.String()
	case nil:
		return "0"
	}
	return formatReflect(reflect.ValueOf(v))
}

// formatLabelValue renders a collection key or key field as label text.
// Unlike sample values, booleans keep their words and nil is empty.
func formatLabelValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return ""
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return formatLabelValue(rv.Elem().Interface())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	}
	return FormatValue(v)
}

func formatReflect(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "0"
		}
		return FormatValue(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.Bool:
		return FormatValue(rv.Bool())
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprint(rv.Interface())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
