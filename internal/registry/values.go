package registry

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Field value coercion for generated constructors. Values arrive from Go
// callers, decoded JSON (float64 or json.Number) and command-line input
// (decimal strings); nil always means "unset".

func AsString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	default:
		return "", fmt.Errorf("%w: %T is not a string", ErrValue, v)
	}
}

// AsBytes accepts raw bytes or standard base64 text.
func AsBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return nil, fmt.Errorf("%w: bytes string is not base64: %v", ErrValue, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %T is not bytes", ErrValue, v)
	}
}

func AsBool(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a bool", ErrValue, x)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %T is not a bool", ErrValue, v)
	}
}

func AsInt32(v any) (int32, error) {
	n, err := asInt(v, math.MinInt32, math.MaxInt32)
	return int32(n), err
}

func AsInt64(v any) (int64, error) {
	return asInt(v, math.MinInt64, math.MaxInt64)
}

func AsUint32(v any) (uint32, error) {
	n, err := asUint(v, math.MaxUint32)
	return uint32(n), err
}

func AsUint64(v any) (uint64, error) {
	return asUint(v, math.MaxUint64)
}

// AsList converts a slice of any element type with conv. A nil value is an
// empty list.
func AsList[T any](v any, conv func(any) (T, error)) ([]T, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []T:
		return append([]T(nil), x...), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: %T is not a list", ErrValue, v)
	}
	out := make([]T, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		el, err := conv(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, el)
	}
	return out, nil
}

func asInt(v any, lo, hi int64) (int64, error) {
	var n int64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint, uint8, uint16, uint32, uint64:
		u, err := asUint(v, math.MaxInt64)
		if err != nil {
			return 0, err
		}
		n = int64(u)
	case float64:
		if x != math.Trunc(x) || x < -(1<<63) || x >= 1<<63 {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrValue, x)
		}
		n = int64(x)
	case float32:
		return asInt(float64(x), lo, hi)
	case json.Number:
		return asInt(string(x), lo, hi)
	case string:
		p, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrValue, x)
		}
		n = p
	default:
		return 0, fmt.Errorf("%w: %T is not an integer", ErrValue, v)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %d out of range", ErrValue, n)
	}
	return n, nil
}

func asUint(v any, hi uint64) (uint64, error) {
	var n uint64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case uint:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	case int, int8, int16, int32, int64:
		s, err := asInt(v, 0, math.MaxInt64)
		if err != nil {
			return 0, err
		}
		n = uint64(s)
	case float64:
		if x != math.Trunc(x) || x < 0 || x >= 1<<64 {
			return 0, fmt.Errorf("%w: %v is not an unsigned integer", ErrValue, x)
		}
		n = uint64(x)
	case float32:
		return asUint(float64(x), hi)
	case json.Number:
		return asUint(string(x), hi)
	case string:
		p, err := strconv.ParseUint(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an unsigned integer", ErrValue, x)
		}
		n = p
	default:
		return 0, fmt.Errorf("%w: %T is not an unsigned integer", ErrValue, v)
	}
	if n > hi {
		return 0, fmt.Errorf("%w: %d out of range", ErrValue, n)
	}
	return n, nil
}

// Describe renders a debug line such as `CursorMove{user_id:"u1" x:3 y:0}`.
// Keys in order come first; any others follow alphabetically.
func Describe(name string, order []string, fields map[string]any) string {
	keys := append([]string(nil), order...)
	var extra []string
	for k := range fields {
		if !slices.Contains(order, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte(':')
		switch v := fields[k].(type) {
		case string:
			b.WriteString(strconv.Quote(v))
		case []byte:
			fmt.Fprintf(&b, "0x%x", v)
		case []string:
			fmt.Fprintf(&b, "%q", v)
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	b.WriteByte('}')
	return b.String()
}
