package metadata

// Constructors used by introspection output and tests.

// String returns a string type.
func String() *Type { return &Type{Kind: StringKind} }

// Number returns a number type.
func Number() *Type { return &Type{Kind: NumberKind} }

// Boolean returns a boolean type.
func Boolean() *Type { return &Type{Kind: BooleanKind} }

// AnyType returns the any type.
func AnyType() *Type { return &Type{Kind: AnyKind} }

// Void returns the void type.
func Void() *Type { return &Type{Kind: VoidKind} }

// ArrayOf returns an array of item.
func ArrayOf(item *Type) *Type { return &Type{Kind: ArrayKind, Item: item} }

// UnionOf returns a union of members.
func UnionOf(members ...*Type) *Type { return &Type{Kind: UnionKind, Members: members} }

// ObjectBuilder assembles an object type field by field.
type ObjectBuilder struct {
	t *Type
}

// Object starts an object type with the given id, which may be empty for
// anonymous structural types.
func Object(id string) *ObjectBuilder {
	return &ObjectBuilder{t: &Type{Kind: ObjectKind, ID: id}}
}

// Annotate adds an annotation to the object itself.
func (b *ObjectBuilder) Annotate(key string, value any) *ObjectBuilder {
	b.t.Annotations = b.t.Annotations.With(key, value)
	return b
}

// Field adds an optional field.
func (b *ObjectBuilder) Field(name string, t *Type, annotations ...Annotation) *ObjectBuilder {
	b.t.Fields = append(b.t.Fields, Field{Name: name, Type: t, Annotations: normalizeAnnotations(annotations)})
	return b
}

// RequiredField adds a required field.
func (b *ObjectBuilder) RequiredField(name string, t *Type, annotations ...Annotation) *ObjectBuilder {
	b.t.Fields = append(b.t.Fields, Field{Name: name, Required: true, Type: t, Annotations: normalizeAnnotations(annotations)})
	return b
}

// Build returns the type. The builder must not be reused afterwards.
func (b *ObjectBuilder) Build() *Type {
	return b.t
}
