// Package fallback is the reduced-fidelity runtime used when the schema
// compiler is unavailable. Messages keep the generated API but travel as
// JSON objects keyed by schema field names.
package fallback

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/danmuck/canvasproto/internal/registry"
	"github.com/danmuck/canvasproto/internal/schema"
	"github.com/danmuck/canvasproto/internal/wire"
)

// Encode renders fields as a JSON object. Fields at their default are
// omitted, so an all-default message encodes to zero bytes. 64-bit integers
// are written as decimal strings and bytes as standard base64, the forms
// the browser client reads without precision loss.
func Encode(spec schema.Message, fields map[string]any) ([]byte, error) {
	obj := make(map[string]any, len(spec.Fields))
	for _, f := range spec.SortedFields() {
		v, err := Normalize(f, fields[f.Name])
		if err != nil {
			return nil, &wire.EncodeError{Field: wire.Number(f.Number), Err: err}
		}
		if IsDefault(v) {
			continue
		}
		obj[f.Name] = jsonValue(v)
	}
	if len(obj) == 0 {
		return []byte{}, nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("fallback: encode %s: %w", spec.Name, err)
	}
	return b, nil
}

// Decode parses a JSON object produced by Encode. Every schema field is
// present in the result, at its default when absent from b. Unknown keys are
// ignored.
func Decode(spec schema.Message, b []byte) (map[string]any, error) {
	raw := map[string]any{}
	if len(bytes.TrimSpace(b)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, wire.Malformed("fallback", err)
		}
		if dec.More() {
			return nil, wire.Malformed("fallback", errors.New("trailing data after object"))
		}
	}
	out := make(map[string]any, len(spec.Fields))
	for _, f := range spec.Fields {
		v, err := Normalize(f, raw[f.Name])
		if err != nil {
			return nil, wire.Malformed("fallback", fmt.Errorf("%s.%s: %v", spec.Name, f.Name, err))
		}
		out[f.Name] = v
	}
	return out, nil
}

// DecodeAs decodes b and hands the field map to a generated constructor.
func DecodeAs[T any](spec schema.Message, b []byte, create func(map[string]any) (T, error)) (T, error) {
	var zero T
	fields, err := Decode(spec, b)
	if err != nil {
		return zero, err
	}
	m, err := create(fields)
	if err != nil {
		return zero, wire.Malformed("fallback", err)
	}
	return m, nil
}

// Normalize converts v to the canonical Go type for f: string, []byte,
// bool, int32, int64, uint32, uint64, or a slice of one of those. nil
// yields the default.
func Normalize(f schema.Field, v any) (any, error) {
	if f.Repeated {
		switch f.Kind {
		case schema.StringKind:
			return nonNil(registry.AsList(v, registry.AsString))
		case schema.BytesKind:
			return nonNil(registry.AsList(v, registry.AsBytes))
		case schema.BoolKind:
			return nonNil(registry.AsList(v, registry.AsBool))
		case schema.Int32Kind:
			return nonNil(registry.AsList(v, registry.AsInt32))
		case schema.Int64Kind:
			return nonNil(registry.AsList(v, registry.AsInt64))
		case schema.Uint32Kind:
			return nonNil(registry.AsList(v, registry.AsUint32))
		case schema.Uint64Kind:
			return nonNil(registry.AsList(v, registry.AsUint64))
		}
	}
	switch f.Kind {
	case schema.StringKind:
		return registry.AsString(v)
	case schema.BytesKind:
		b, err := registry.AsBytes(v)
		if b == nil {
			b = []byte{}
		}
		return b, err
	case schema.BoolKind:
		return registry.AsBool(v)
	case schema.Int32Kind:
		return registry.AsInt32(v)
	case schema.Int64Kind:
		return registry.AsInt64(v)
	case schema.Uint32Kind:
		return registry.AsUint32(v)
	case schema.Uint64Kind:
		return registry.AsUint64(v)
	}
	return nil, fmt.Errorf("%w: unsupported kind %s", registry.ErrValue, f.Kind)
}

// IsDefault reports whether a normalized value is its kind's default.
func IsDefault(v any) bool {
	switch x := v.(type) {
	case string:
		return x == ""
	case []byte:
		return len(x) == 0
	case bool:
		return !x
	case int32:
		return x == 0
	case int64:
		return x == 0
	case uint32:
		return x == 0
	case uint64:
		return x == 0
	case []string:
		return len(x) == 0
	case [][]byte:
		return len(x) == 0
	case []bool:
		return len(x) == 0
	case []int32:
		return len(x) == 0
	case []int64:
		return len(x) == 0
	case []uint32:
		return len(x) == 0
	case []uint64:
		return len(x) == 0
	}
	return v == nil
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case []int64:
		out := make([]string, len(x))
		for i, n := range x {
			out[i] = strconv.FormatInt(n, 10)
		}
		return out
	case []uint64:
		out := make([]string, len(x))
		for i, n := range x {
			out[i] = strconv.FormatUint(n, 10)
		}
		return out
	}
	return v
}

func nonNil[T any](list []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}
