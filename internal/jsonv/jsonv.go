// Package jsonv is the ordered JSON document model used by the persistence
// codec. Objects keep insertion order on write and source order on read, so a
// document can be parsed, inspected, rewritten and re-emitted without losing
// its key layout.
package jsonv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// Object is an ordered JSON object.
type Object = orderedmap.OrderedMap

var (
	// ErrMissingKey is returned when a mandatory key is absent.
	ErrMissingKey = errors.New("missing mandatory key")

	// ErrInvalidShape is returned when a value has the wrong JSON type.
	ErrInvalidShape = errors.New("invalid json shape")
)

// NewObject creates an empty object that does not escape HTML characters.
func NewObject() *Object {
	o := orderedmap.New()
	o.SetEscapeHTML(false)
	return o
}

// ParseObject parses data as a JSON object.
func ParseObject(data []byte) (*Object, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: document is not a json object", ErrInvalidShape)
	}
	o := NewObject()
	if err := json.Unmarshal(trimmed, o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return o, nil
}

// ParseArray parses data as a JSON array of objects.
func ParseArray(data []byte) ([]*Object, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	out := make([]*Object, 0, len(raw))
	for i, r := range raw {
		o, err := ParseObject(r)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// Encode renders v as JSON. Objects keep their key order.
func Encode(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// AsObject converts a decoded value into an object. Nested objects produced
// by the decoder are stored by value, top-level ones by pointer.
func AsObject(v any) (*Object, bool) {
	switch t := v.(type) {
	case *orderedmap.OrderedMap:
		return t, t != nil
	case orderedmap.OrderedMap:
		return &t, true
	default:
		return nil, false
	}
}

// AsArray converts a decoded value into a slice.
func AsArray(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []*Object:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// AsNumber converts a decoded number.
func AsNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// Normalize turns decoded ordered objects into plain maps, recursively.
func Normalize(v any) any {
	if o, ok := AsObject(v); ok {
		m := make(map[string]any, len(o.Keys()))
		for _, k := range o.Keys() {
			val, _ := o.Get(k)
			m[k] = Normalize(val)
		}
		return m
	}
	if arr, ok := v.([]any); ok {
		out := make([]any, len(arr))
		for i := range arr {
			out[i] = Normalize(arr[i])
		}
		return out
	}
	if n, ok := v.(json.Number); ok {
		f, _ := n.Float64()
		return f
	}
	return v
}

// RenameKey moves the value under from to to, keeping its position. An
// existing value under to is replaced. It is a no-op when from is absent.
func RenameKey(o *Object, from, to string) {
	val, ok := o.Get(from)
	if !ok {
		return
	}
	// Keys returns the map's own slice, which Delete shifts in place.
	keys := append([]string(nil), o.Keys()...)
	values := make(map[string]any, len(keys))
	for _, k := range keys {
		v, _ := o.Get(k)
		values[k] = v
	}
	for _, k := range keys {
		o.Delete(k)
	}
	for _, k := range keys {
		switch k {
		case from:
			o.Set(to, val)
		case to:
		default:
			o.Set(k, values[k])
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case []any:
		return "array"
	}
	if _, ok := AsObject(v); ok {
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func shapeError(key, want string, got any) error {
	return fmt.Errorf("%w: %q must be %s, got %s", ErrInvalidShape, key, want, typeName(got))
}
