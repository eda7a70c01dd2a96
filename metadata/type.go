// Package metadata describes structural data types attached to extension
// models: objects with named fields, arrays, unions and scalars. A Type tree
// is built once by introspection and is read-only afterwards.
package metadata

import (
	"fmt"
)

// Kind identifies the structural shape of a Type.
type Kind int

const (
	AnyKind Kind = iota
	ObjectKind
	ArrayKind
	UnionKind
	StringKind
	NumberKind
	BooleanKind
	DateTimeKind
	BinaryKind
	VoidKind
)

var kindNames = map[Kind]string{
	AnyKind:      "Any",
	ObjectKind:   "Object",
	ArrayKind:    "Array",
	UnionKind:    "Union",
	StringKind:   "String",
	NumberKind:   "Number",
	BooleanKind:  "Boolean",
	DateTimeKind: "DateTime",
	BinaryKind:   "Binary",
	VoidKind:     "Void",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a wire name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return AnyKind, fmt.Errorf("unknown type kind %q", name)
}

// Well-known annotation keys.
const (
	AnnotationAlias        = "alias"
	AnnotationDescription  = "description"
	AnnotationExtensible   = "extensible"
	AnnotationDslConfig    = "dsl-config"
	AnnotationDefaultValue = "default-value"
	AnnotationTypeAlias    = "typeAlias"
)

// Annotation is a single key/value pair decorating a type or field. Values
// are JSON values: string, bool, float64, []any or map[string]any. Go
// integers and float32 given to With or the builders are stored as float64.
type Annotation struct {
	Key   string
	Value any
}

// Annotations is an ordered annotation set. Keys are unique.
type Annotations []Annotation

// Get returns the value stored for key.
func (a Annotations) Get(key string) (any, bool) {
	for _, ann := range a {
		if ann.Key == key {
			return ann.Value, true
		}
	}
	return nil, false
}

// With returns a copy of a with key set to value, replacing in place when
// the key already exists.
func (a Annotations) With(key string, value any) Annotations {
	value = NormalizeValue(value)
	out := make(Annotations, 0, len(a)+1)
	replaced := false
	for _, ann := range a {
		if ann.Key == key {
			out = append(out, Annotation{Key: key, Value: value})
			replaced = true
			continue
		}
		out = append(out, ann)
	}
	if !replaced {
		out = append(out, Annotation{Key: key, Value: value})
	}
	return out
}

// NormalizeValue converts numbers to float64, recursing into slices and
// maps, so that values compare equal to what a JSON decoder produces.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = NormalizeValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = NormalizeValue(val)
		}
		return out
	}
	return v
}

func normalizeAnnotations(a []Annotation) Annotations {
	if len(a) == 0 {
		return nil
	}
	out := make(Annotations, len(a))
	for i, ann := range a {
		out[i] = Annotation{Key: ann.Key, Value: NormalizeValue(ann.Value)}
	}
	return out
}

// Field is a named member of an object type.
type Field struct {
	Name        string
	Required    bool
	Type        *Type
	Annotations Annotations
}

// Type is a node in a type tree.
type Type struct {
	Kind Kind

	// ID is the stable identity of the type, usually a qualified class
	// name. Only identified types can be referenced instead of inlined.
	ID string

	Annotations Annotations

	Fields  []Field // ObjectKind
	Item    *Type   // ArrayKind
	Members []*Type // UnionKind
}

// HasID reports whether the type carries a stable identity.
func (t *Type) HasID() bool {
	return t != nil && t.ID != ""
}

// Field returns the named field of an object type.
func (t *Type) Field(name string) (*Field, bool) {
	if t == nil {
		return nil, false
	}
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

// Alias returns the alias annotation, falling back to the id.
func (t *Type) Alias() string {
	if v, ok := t.Annotations.Get(AnnotationAlias); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return t.ID
}

// String renders a short description, for logs and CLI output.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case ArrayKind:
		return fmt.Sprintf("Array<%s>", t.Item)
	case ObjectKind:
		if t.ID != "" {
			return fmt.Sprintf("Object(%s)", t.ID)
		}
		return fmt.Sprintf("Object{%d fields}", len(t.Fields))
	default:
		return t.Kind.String()
	}
}
