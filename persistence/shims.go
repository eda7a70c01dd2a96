package persistence

import (
	"go.uber.org/zap"

	"github.com/conduit-lang/extmodel/internal/jsonv"
	"github.com/conduit-lang/extmodel/model"
)

// Legacy document keys.
const (
	childComponentsKey = "childComponents"
	isRequiredKey      = "isRequired"
)

// keyRenameShim accepts alias in place of canonical on read. On write the
// canonical key is renamed back to alias when legacy keys are enabled.
type keyRenameShim[T any] struct {
	delegate  adapter[T]
	canonical string
	alias     string
}

func newKeyRenameShim[T any](delegate adapter[T], canonical, alias string) *keyRenameShim[T] {
	return &keyRenameShim[T]{delegate: delegate, canonical: canonical, alias: alias}
}

func (s *keyRenameShim[T]) write(v T, ctx *writeContext) (*jsonv.Object, error) {
	obj, err := s.delegate.write(v, ctx)
	if err != nil {
		return nil, err
	}
	if ctx.legacyKeys {
		jsonv.RenameKey(obj, s.canonical, s.alias)
	}
	return obj, nil
}

func (s *keyRenameShim[T]) read(obj *jsonv.Object, ctx *readContext) (T, error) {
	if jsonv.Has(obj, s.alias) {
		ctx.logger.Debug("renaming legacy key",
			zap.String("from", s.alias),
			zap.String("to", s.canonical))
		jsonv.RenameKey(obj, s.alias, s.canonical)
	}
	return s.delegate.read(obj, ctx)
}

// occurrenceShim synthesizes minOccurs and maxOccurs from isRequired for
// documents written before occurrences existed.
type occurrenceShim[T any] struct {
	delegate adapter[T]
}

func newOccurrenceShim[T any](delegate adapter[T]) *occurrenceShim[T] {
	return &occurrenceShim[T]{delegate: delegate}
}

func (s *occurrenceShim[T]) write(v T, ctx *writeContext) (*jsonv.Object, error) {
	obj, err := s.delegate.write(v, ctx)
	if err != nil {
		return nil, err
	}
	if ctx.legacyKeys {
		minOccurs, err := jsonv.Int(obj, minOccursKey)
		if err != nil {
			return nil, err
		}
		obj.Set(isRequiredKey, minOccurs > 0)
	}
	return obj, nil
}

func (s *occurrenceShim[T]) read(obj *jsonv.Object, ctx *readContext) (T, error) {
	hasMin, hasMax := jsonv.Has(obj, minOccursKey), jsonv.Has(obj, maxOccursKey)
	if !hasMin {
		required, err := jsonv.OptBool(obj, isRequiredKey, false)
		if err != nil {
			var zero T
			return zero, err
		}
		minOccurs := 0
		if required {
			minOccurs = 1
		}
		ctx.logger.Debug("inferring occurrences from legacy isRequired",
			zap.Bool("isRequired", required),
			zap.Bool("hasMaxOccurs", hasMax))
		obj.Set(minOccursKey, minOccurs)
		// an absent maxOccurs next to a present minOccurs means unbounded
		if !hasMax {
			obj.Set(maxOccursKey, 1)
		}
	}
	return s.delegate.read(obj, ctx)
}

// metadataKeyPartShim rebuilds the property with the legacy constructor
// when providedByKeyResolver is absent or null, so it keeps defaulting to
// true.
type metadataKeyPartShim struct {
	delegate PropertyCodec
}

func (s metadataKeyPartShim) Kind() string {
	return s.delegate.Kind()
}

func (s metadataKeyPartShim) Encode(p model.ModelProperty) (any, error) {
	return s.delegate.Encode(p)
}

func (s metadataKeyPartShim) Decode(v any) (model.ModelProperty, error) {
	decoded, err := s.delegate.Decode(v)
	if err != nil {
		return nil, err
	}
	obj, ok := jsonv.AsObject(v)
	if !ok || jsonv.IsSet(obj, "providedByKeyResolver") {
		return decoded, nil
	}
	part, ok := decoded.(*model.MetadataKeyPartModelProperty)
	if !ok {
		return decoded, nil
	}
	return model.NewMetadataKeyPartModelProperty(part.Order), nil
}
