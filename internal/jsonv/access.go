package jsonv

import (
	"fmt"
	"math"
)

// Has reports whether key is present, even if its value is null.
func Has(o *Object, key string) bool {
	_, ok := o.Get(key)
	return ok
}

// IsSet reports whether key is present with a non-null value.
func IsSet(o *Object, key string) bool {
	v, ok := o.Get(key)
	return ok && v != nil
}

// Value returns the raw value for a mandatory key.
func Value(o *Object, key string) (any, error) {
	v, ok := o.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return v, nil
}

// String returns a mandatory string.
func String(o *Object, key string) (string, error) {
	v, err := Value(o, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", shapeError(key, "a string", v)
	}
	return s, nil
}

// OptString returns an optional string; absent and null read as "".
func OptString(o *Object, key string) (string, error) {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", shapeError(key, "a string", v)
	}
	return s, nil
}

// OptBool returns an optional boolean, def when absent or null.
func OptBool(o *Object, key string, def bool) (bool, error) {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, shapeError(key, "a boolean", v)
	}
	return b, nil
}

// OptBoolPtr returns nil when key is absent or null.
func OptBoolPtr(o *Object, key string) (*bool, error) {
	if !IsSet(o, key) {
		return nil, nil
	}
	b, err := OptBool(o, key, false)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Int returns a mandatory integral number.
func Int(o *Object, key string) (int, error) {
	v, err := Value(o, key)
	if err != nil {
		return 0, err
	}
	return toInt(key, v)
}

// OptInt returns nil when key is absent or null.
func OptInt(o *Object, key string) (*int, error) {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	n, err := toInt(key, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func toInt(key string, v any) (int, error) {
	f, ok := AsNumber(v)
	if !ok || f != math.Trunc(f) {
		return 0, shapeError(key, "an integer", v)
	}
	return int(f), nil
}

// Obj returns a mandatory nested object.
func Obj(o *Object, key string) (*Object, error) {
	v, err := Value(o, key)
	if err != nil {
		return nil, err
	}
	child, ok := AsObject(v)
	if !ok {
		return nil, shapeError(key, "an object", v)
	}
	return child, nil
}

// OptObj returns nil when key is absent or null.
func OptObj(o *Object, key string) (*Object, error) {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	child, ok := AsObject(v)
	if !ok {
		return nil, shapeError(key, "an object", v)
	}
	return child, nil
}

// Array returns a mandatory array.
func Array(o *Object, key string) ([]any, error) {
	v, err := Value(o, key)
	if err != nil {
		return nil, err
	}
	arr, ok := AsArray(v)
	if !ok {
		return nil, shapeError(key, "an array", v)
	}
	return arr, nil
}

// OptArray returns nil when key is absent or null.
func OptArray(o *Object, key string) ([]any, error) {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := AsArray(v)
	if !ok {
		return nil, shapeError(key, "an array", v)
	}
	return arr, nil
}

// Objects returns the elements of an optional array of objects.
func Objects(o *Object, key string) ([]*Object, error) {
	arr, err := OptArray(o, key)
	if err != nil {
		return nil, err
	}
	out := make([]*Object, 0, len(arr))
	for i, item := range arr {
		child, ok := AsObject(item)
		if !ok {
			return nil, shapeError(fmt.Sprintf("%s[%d]", key, i), "an object", item)
		}
		out = append(out, child)
	}
	return out, nil
}

// Strings returns the elements of an optional array of strings.
func Strings(o *Object, key string) ([]string, error) {
	arr, err := OptArray(o, key)
	if err != nil {
		return nil, err
	}
	if arr == nil {
		return nil, nil
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, shapeError(fmt.Sprintf("%s[%d]", key, i), "a string", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// StringSlice converts a []string into the []any shape the encoder expects
// for arrays, never returning nil so empty arrays render as [].
func StringSlice(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
