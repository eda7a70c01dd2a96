package persistence

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/extmodel/internal/jsonv"
	"github.com/conduit-lang/extmodel/model"
)

// PropertyCodec encodes and decodes one kind of model property.
type PropertyCodec interface {
	// Kind is the fully qualified name of the property kind.
	Kind() string
	Encode(p model.ModelProperty) (any, error)
	Decode(v any) (model.ModelProperty, error)
}

// JSONPropertyCodec encodes a property struct through its json tags.
type JSONPropertyCodec[T any, P interface {
	*T
	model.ModelProperty
}] struct{}

func (JSONPropertyCodec[T, P]) Kind() string {
	return P(new(T)).PropertyName()
}

func (JSONPropertyCodec[T, P]) Encode(p model.ModelProperty) (any, error) {
	typed, ok := p.(P)
	if !ok {
		return nil, fmt.Errorf("%w: property %T is not a %T", ErrInvalidShape, p, P(nil))
	}
	return encodeGeneric(typed)
}

func (JSONPropertyCodec[T, P]) Decode(v any) (model.ModelProperty, error) {
	if obj, ok := jsonv.AsObject(v); ok {
		v = obj
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	p := P(new(T))
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return p, nil
}

// encodeGeneric renders any value as an ordered JSON value, keeping struct
// field order.
func encodeGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if len(data) > 0 && data[0] == '{' {
		return jsonv.ParseObject(data)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Well-known short names of the built-in property kinds.
const (
	MetadataKeyPartProperty = "metadataKeyPart"
	MetadataKeyIDProperty   = "metadataKeyId"
	PagedOperationProperty  = "pagedOperation"
	LicenseProperty         = "license"
	TypeResolversProperty   = "typeResolvers"
)

// PropertyRegistry maps document keys to property codecs. Kinds registered
// without a short name use their fully qualified name as key.
type PropertyRegistry struct {
	mu     sync.RWMutex
	byKey  map[string]PropertyCodec
	keyFor map[string]string
}

// NewPropertyRegistry creates an empty registry.
func NewPropertyRegistry() *PropertyRegistry {
	return &PropertyRegistry{
		byKey:  make(map[string]PropertyCodec),
		keyFor: make(map[string]string),
	}
}

// DefaultPropertyRegistry creates a registry holding every built-in kind.
func DefaultPropertyRegistry() *PropertyRegistry {
	r := NewPropertyRegistry()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(r.Register(MetadataKeyPartProperty, metadataKeyPartShim{
		delegate: JSONPropertyCodec[model.MetadataKeyPartModelProperty, *model.MetadataKeyPartModelProperty]{},
	}))
	must(r.Register(MetadataKeyIDProperty, JSONPropertyCodec[model.MetadataKeyIdModelProperty, *model.MetadataKeyIdModelProperty]{}))
	must(r.Register(PagedOperationProperty, JSONPropertyCodec[model.PagedOperationModelProperty, *model.PagedOperationModelProperty]{}))
	must(r.Register(LicenseProperty, JSONPropertyCodec[model.LicenseModelProperty, *model.LicenseModelProperty]{}))
	must(r.Register(TypeResolversProperty, JSONPropertyCodec[model.TypeResolversInformationModelProperty, *model.TypeResolversInformationModelProperty]{}))
	must(r.Register("", JSONPropertyCodec[model.SinceMuleVersionModelProperty, *model.SinceMuleVersionModelProperty]{}))
	return r
}

// Register adds codec under key. An empty key means the kind's fully
// qualified name.
func (r *PropertyRegistry) Register(key string, codec PropertyCodec) error {
	if codec == nil {
		return fmt.Errorf("%w: nil property codec", ErrInvalidConstruction)
	}
	kind := codec.Kind()
	if kind == "" {
		return fmt.Errorf("%w: property codec without kind", ErrInvalidConstruction)
	}
	if key == "" {
		key = kind
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byKey[key]; ok && existing.Kind() != kind {
		return fmt.Errorf("%w: key %q already registered for %s", ErrInvalidConstruction, key, existing.Kind())
	}
	if old, ok := r.keyFor[kind]; ok && old != key {
		delete(r.byKey, old)
	}
	r.byKey[key] = codec
	r.keyFor[kind] = key
	return nil
}

// Key returns the document key used for kind, or kind itself.
func (r *PropertyRegistry) Key(kind string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if key, ok := r.keyFor[kind]; ok {
		return key
	}
	return kind
}

func (r *PropertyRegistry) codecForKind(kind string) (PropertyCodec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keyFor[kind]
	if !ok {
		return nil, false
	}
	return r.byKey[key], true
}

func (r *PropertyRegistry) codecForKey(key string) (PropertyCodec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byKey[key]
	return c, ok
}

const modelPropertiesKey = "modelProperties"

// writeModelProperties writes the public properties in their order.
// Properties with no registered codec fall back to their json encoding.
func writeModelProperties(props model.ModelProperties, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	for _, p := range props {
		if p == nil {
			continue
		}
		kind := p.PropertyName()
		if !p.Public() {
			ctx.logger.Debug("skipping non-public model property", zap.String("kind", kind))
			continue
		}
		var (
			value any
			err   error
		)
		if codec, ok := ctx.properties.codecForKind(kind); ok {
			value, err = codec.Encode(p)
		} else {
			value, err = encodeGeneric(p)
		}
		if err != nil {
			return nil, at(ctx.properties.Key(kind), err)
		}
		obj.Set(ctx.properties.Key(kind), value)
	}
	return obj, nil
}

// readModelProperties reads a property map. Keys without a registered codec
// are skipped.
func readModelProperties(parent *jsonv.Object, ctx *readContext) (model.ModelProperties, error) {
	obj, err := jsonv.OptObj(parent, modelPropertiesKey)
	if err != nil || obj == nil {
		return nil, err
	}
	var out model.ModelProperties
	for _, key := range obj.Keys() {
		codec, ok := ctx.properties.codecForKey(key)
		if !ok {
			ctx.logger.Debug("skipping unknown model property", zap.String("key", key))
			continue
		}
		raw, _ := obj.Get(key)
		p, err := codec.Decode(raw)
		if err != nil {
			return nil, at(modelPropertiesKey+"."+key, err)
		}
		out = out.With(p)
	}
	return out, nil
}
