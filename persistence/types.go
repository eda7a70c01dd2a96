package persistence

import (
	"fmt"

	"github.com/conduit-lang/extmodel/internal/jsonv"
	"github.com/conduit-lang/extmodel/metadata"
)

const (
	typeKindKey     = "type"
	typeIDKey       = "typeId"
	annotationsKey  = "annotations"
	fieldsKey       = "fields"
	itemKey         = "item"
	unionMembersKey = "of"
	fieldNameKey    = "name"
	fieldReqKey     = "required"
	fieldModelKey   = "model"
)

// writeType writes t by reference when the catalog or the recursion guard
// allow it, by definition otherwise.
func writeType(t *metadata.Type, ctx *writeContext) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrInvalidShape)
	}
	if t.HasID() {
		if ref, ok := ctx.catalog.WriteReference(t); ok {
			return ref, nil
		}
		if ctx.guard.contains(t.ID) {
			ctx.catalog.RegisterType(t)
			return refPrefix + t.ID, nil
		}
	}
	return writeTypeDefinition(t, ctx)
}

// writeTypeDefinition always writes the full structure of t. Nested types
// still go through writeType.
func writeTypeDefinition(t *metadata.Type, ctx *writeContext) (*jsonv.Object, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrInvalidShape)
	}
	obj := jsonv.NewObject()
	obj.Set(typeKindKey, t.Kind.String())
	if t.HasID() {
		obj.Set(typeIDKey, t.ID)
		ctx.catalog.RegisterType(t)
		release := ctx.guard.push(t.ID)
		defer release()
	}
	if len(t.Annotations) > 0 {
		obj.Set(annotationsKey, writeAnnotations(t.Annotations))
	}

	switch t.Kind {
	case metadata.ObjectKind:
		fields := make([]any, 0, len(t.Fields))
		for i, f := range t.Fields {
			fieldObj := jsonv.NewObject()
			fieldObj.Set(fieldNameKey, f.Name)
			fieldObj.Set(fieldReqKey, f.Required)
			model, err := writeType(f.Type, ctx)
			if err != nil {
				return nil, atIndex(fieldsKey, i, at(fieldModelKey, err))
			}
			fieldObj.Set(fieldModelKey, model)
			if len(f.Annotations) > 0 {
				fieldObj.Set(annotationsKey, writeAnnotations(f.Annotations))
			}
			fields = append(fields, fieldObj)
		}
		obj.Set(fieldsKey, fields)
	case metadata.ArrayKind:
		item, err := writeType(t.Item, ctx)
		if err != nil {
			return nil, at(itemKey, err)
		}
		obj.Set(itemKey, item)
	case metadata.UnionKind:
		members := make([]any, 0, len(t.Members))
		for i, m := range t.Members {
			member, err := writeType(m, ctx)
			if err != nil {
				return nil, atIndex(unionMembersKey, i, err)
			}
			members = append(members, member)
		}
		obj.Set(unionMembersKey, members)
	}
	return obj, nil
}

func writeAnnotations(annotations metadata.Annotations) *jsonv.Object {
	obj := jsonv.NewObject()
	for _, a := range annotations {
		obj.Set(a.Key, a.Value)
	}
	return obj
}

// readType reads either a reference or a definition.
func readType(v any, ctx *readContext) (*metadata.Type, error) {
	if ref, ok := v.(string); ok {
		if _, valid := parseReference(ref); !valid {
			return nil, fmt.Errorf("%w: %q is not a type reference", ErrInvalidShape, ref)
		}
		t, found := ctx.catalog.ReadReference(ref)
		if !found {
			return nil, fmt.Errorf("%w: type %q", ErrUnresolvedReference, ref)
		}
		return t, nil
	}
	obj, ok := jsonv.AsObject(v)
	if !ok {
		return nil, fmt.Errorf("%w: type must be an object or a reference", ErrInvalidShape)
	}
	t := &metadata.Type{}
	if err := readTypeInto(obj, t, ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// readTypeInto fills t from a definition. t is registered under its id
// before its fields are read, so self references resolve to it. The first
// instance registered for an id keeps it.
func readTypeInto(obj *jsonv.Object, t *metadata.Type, ctx *readContext) error {
	kindName, err := jsonv.String(obj, typeKindKey)
	if err != nil {
		return err
	}
	kind, err := metadata.ParseKind(kindName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	id, err := jsonv.OptString(obj, typeIDKey)
	if err != nil {
		return err
	}
	t.Kind = kind
	t.ID = id
	ctx.catalog.registerDefinition(t)

	annotations, err := readAnnotations(obj)
	if err != nil {
		return err
	}
	t.Annotations = annotations

	switch kind {
	case metadata.ObjectKind:
		fieldObjs, err := jsonv.Objects(obj, fieldsKey)
		if err != nil {
			return err
		}
		t.Fields = make([]metadata.Field, 0, len(fieldObjs))
		for i, fo := range fieldObjs {
			f, err := readField(fo, ctx)
			if err != nil {
				return atIndex(fieldsKey, i, err)
			}
			t.Fields = append(t.Fields, f)
		}
	case metadata.ArrayKind:
		raw, err := jsonv.Value(obj, itemKey)
		if err != nil {
			return err
		}
		if t.Item, err = readType(raw, ctx); err != nil {
			return at(itemKey, err)
		}
	case metadata.UnionKind:
		raws, err := jsonv.Array(obj, unionMembersKey)
		if err != nil {
			return err
		}
		t.Members = make([]*metadata.Type, 0, len(raws))
		for i, raw := range raws {
			m, err := readType(raw, ctx)
			if err != nil {
				return atIndex(unionMembersKey, i, err)
			}
			t.Members = append(t.Members, m)
		}
	}
	return nil
}

func readField(obj *jsonv.Object, ctx *readContext) (metadata.Field, error) {
	var f metadata.Field
	var err error
	if f.Name, err = jsonv.String(obj, fieldNameKey); err != nil {
		return f, err
	}
	if f.Required, err = jsonv.OptBool(obj, fieldReqKey, false); err != nil {
		return f, err
	}
	raw, err := jsonv.Value(obj, fieldModelKey)
	if err != nil {
		return f, err
	}
	if f.Type, err = readType(raw, ctx); err != nil {
		return f, at(fieldModelKey, err)
	}
	if f.Annotations, err = readAnnotations(obj); err != nil {
		return f, err
	}
	return f, nil
}

func readAnnotations(obj *jsonv.Object) (metadata.Annotations, error) {
	annObj, err := jsonv.OptObj(obj, annotationsKey)
	if err != nil || annObj == nil {
		return nil, err
	}
	keys := annObj.Keys()
	if len(keys) == 0 {
		return nil, nil
	}
	out := make(metadata.Annotations, 0, len(keys))
	for _, k := range keys {
		v, _ := annObj.Get(k)
		out = append(out, metadata.Annotation{Key: k, Value: jsonv.Normalize(v)})
	}
	return out, nil
}
