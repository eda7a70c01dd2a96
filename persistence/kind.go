package persistence

import (
	"fmt"

	"github.com/conduit-lang/extmodel/internal/jsonv"
	"github.com/conduit-lang/extmodel/model"
)

const kindKey = "kind"

// adapter converts one model type to and from its JSON object form. Adapters
// hold no per-document state; everything mutable lives in the contexts.
type adapter[T any] interface {
	write(v T, ctx *writeContext) (*jsonv.Object, error)
	read(obj *jsonv.Object, ctx *readContext) (T, error)
}

// adapterFuncs builds an adapter from a pair of functions.
type adapterFuncs[T any] struct {
	writeFn func(v T, ctx *writeContext) (*jsonv.Object, error)
	readFn  func(obj *jsonv.Object, ctx *readContext) (T, error)
}

func (a adapterFuncs[T]) write(v T, ctx *writeContext) (*jsonv.Object, error) {
	return a.writeFn(v, ctx)
}

func (a adapterFuncs[T]) read(obj *jsonv.Object, ctx *readContext) (T, error) {
	return a.readFn(obj, ctx)
}

// kindAdapter writes the variant of a value as a "kind" property and
// dispatches reads on it. The vocabulary is closed: it is exactly the set of
// delegates the adapter was built with.
type kindAdapter[T any] struct {
	family    string
	kindOf    func(T) string
	delegates map[string]adapter[T]
}

func newKindAdapter[T any](family string, kindOf func(T) string, delegates map[string]adapter[T]) (*kindAdapter[T], error) {
	if family == "" {
		return nil, fmt.Errorf("%w: kind adapter needs a family name", ErrInvalidConstruction)
	}
	if kindOf == nil {
		return nil, fmt.Errorf("%w: kind adapter %q has no kind function", ErrInvalidConstruction, family)
	}
	if len(delegates) == 0 {
		return nil, fmt.Errorf("%w: kind adapter %q has no delegates", ErrInvalidConstruction, family)
	}
	for kind, d := range delegates {
		if kind == "" || d == nil {
			return nil, fmt.Errorf("%w: kind adapter %q has an empty delegate entry", ErrInvalidConstruction, family)
		}
	}
	return &kindAdapter[T]{family: family, kindOf: kindOf, delegates: delegates}, nil
}

func (a *kindAdapter[T]) write(v T, ctx *writeContext) (*jsonv.Object, error) {
	kind := a.kindOf(v)
	d, ok := a.delegates[kind]
	if !ok {
		return nil, fmt.Errorf("%w '%s' for %s", ErrUnknownKind, kind, a.family)
	}
	obj, err := d.write(v, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(kindKey, kind)
	return obj, nil
}

func (a *kindAdapter[T]) read(obj *jsonv.Object, ctx *readContext) (T, error) {
	var zero T
	raw, ok := obj.Get(kindKey)
	if !ok || raw == nil {
		return zero, ErrMissingKind
	}
	kind, ok := raw.(string)
	if !ok {
		return zero, fmt.Errorf("%w: %q must be a string", ErrInvalidShape, kindKey)
	}
	d, ok := a.delegates[kind]
	if !ok {
		return zero, fmt.Errorf("%w '%s' for %s", ErrUnknownKind, kind, a.family)
	}
	return d.read(obj, ctx)
}

func componentKind[T model.ComponentModel](v T) string {
	return v.Kind().String()
}

// writeList writes every item with a and returns the JSON array.
func writeList[T any](key string, items []T, a adapter[T], ctx *writeContext) ([]any, error) {
	out := make([]any, 0, len(items))
	for i, item := range items {
		obj, err := a.write(item, ctx)
		if err != nil {
			return nil, atIndex(key, i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// readList reads the optional array under key with a.
func readList[T any](obj *jsonv.Object, key string, a adapter[T], ctx *readContext) ([]T, error) {
	objs, err := jsonv.Objects(obj, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(objs))
	for i, o := range objs {
		v, err := a.read(o, ctx)
		if err != nil {
			return nil, atIndex(key, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
