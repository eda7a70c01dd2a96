package persistence

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map"

	"github.com/conduit-lang/extmodel/internal/jsonv"
	"github.com/conduit-lang/extmodel/model"
)

const (
	errorKey         = "error"
	errorParentKey   = "parent"
	errorHandleKey   = "handleable"
	notificationKey  = "notification"
	metadataTypeKey  = "metadataType"
	errorsKey        = "errors"
	notificationsKey = "notifications"
)

// flattenErrors collects every error of errs and all of their ancestors,
// in discovery order, each identifier once.
func flattenErrors(errs []*model.ErrorModel) []*model.ErrorModel {
	seen := orderedmap.New()
	for _, root := range errs {
		for cur := root; cur != nil; cur = cur.Parent {
			id := cur.Identifier()
			if _, ok := seen.Get(id); ok {
				break
			}
			seen.Set(id, cur)
		}
	}
	out := make([]*model.ErrorModel, 0, seen.Len())
	for pair := seen.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.(*model.ErrorModel))
	}
	return out
}

// writeErrors writes the flattened error set. Parents are written by
// identifier; the parent key is omitted for roots.
func writeErrors(errs []*model.ErrorModel) []any {
	flat := flattenErrors(errs)
	out := make([]any, 0, len(flat))
	for _, e := range flat {
		obj := jsonv.NewObject()
		obj.Set(errorKey, e.Identifier())
		if e.Parent != nil && e.Parent != e {
			obj.Set(errorParentKey, e.Parent.Identifier())
		}
		obj.Set(errorHandleKey, e.Handleable)
		out = append(out, obj)
	}
	return out
}

// errorEntry is an error read from a document whose parent is not linked yet.
type errorEntry struct {
	namespace  string
	errorType  string
	parent     string
	handleable bool
}

// errorRepository resolves error identifiers of one document into shared
// instances. An identifier is built at most once.
type errorRepository struct {
	order    []string
	partial  map[string]errorEntry
	built    map[string]*model.ErrorModel
	building map[string]bool
}

func newErrorRepository() *errorRepository {
	return &errorRepository{
		partial:  make(map[string]errorEntry),
		built:    make(map[string]*model.ErrorModel),
		building: make(map[string]bool),
	}
}

func (r *errorRepository) add(id string, entry errorEntry) {
	if _, ok := r.partial[id]; !ok {
		r.order = append(r.order, id)
	}
	r.partial[id] = entry
}

// build returns the instance for id. Identifiers that were never declared
// become parentless handleable errors.
func (r *errorRepository) build(id string) (*model.ErrorModel, error) {
	if e, ok := r.built[id]; ok {
		return e, nil
	}
	entry, ok := r.partial[id]
	if !ok {
		ns, name, err := model.ParseIdentifier(id)
		if err != nil {
			return nil, err
		}
		e := model.NewErrorModel(ns, name, nil)
		r.built[id] = e
		return e, nil
	}
	if r.building[id] {
		return nil, fmt.Errorf("%w: cyclic error hierarchy at %s", ErrInvalidShape, id)
	}
	r.building[id] = true
	defer delete(r.building, id)

	var parent *model.ErrorModel
	if entry.parent != "" && entry.parent != id {
		p, err := r.build(entry.parent)
		if err != nil {
			return nil, err
		}
		parent = p
	}
	e := &model.ErrorModel{
		Namespace:  entry.namespace,
		Type:       entry.errorType,
		Handleable: entry.handleable,
		Parent:     parent,
	}
	r.built[id] = e
	return e, nil
}

// all builds every declared error in document order.
func (r *errorRepository) all() ([]*model.ErrorModel, error) {
	out := make([]*model.ErrorModel, 0, len(r.order))
	for _, id := range r.order {
		e, err := r.build(id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// readErrors loads a flat error array into repo and resolves it.
func readErrors(items []any, repo *errorRepository) ([]*model.ErrorModel, error) {
	for i, item := range items {
		obj, ok := jsonv.AsObject(item)
		if !ok {
			return nil, atIndex(errorsKey, i, fmt.Errorf("%w: error entry must be an object", ErrInvalidShape))
		}
		entry, id, err := readErrorEntry(obj)
		if err != nil {
			return nil, atIndex(errorsKey, i, err)
		}
		repo.add(id, entry)
	}
	errs, err := repo.all()
	if err != nil {
		return nil, at(errorsKey, err)
	}
	return errs, nil
}

func readErrorEntry(obj *jsonv.Object) (errorEntry, string, error) {
	var entry errorEntry
	id, err := jsonv.String(obj, errorKey)
	if err != nil {
		return entry, "", err
	}
	if entry.namespace, entry.errorType, err = model.ParseIdentifier(id); err != nil {
		return entry, "", at(errorKey, err)
	}
	if entry.parent, err = jsonv.OptString(obj, errorParentKey); err != nil {
		return entry, "", err
	}
	if entry.parent != "" {
		if _, _, err := model.ParseIdentifier(entry.parent); err != nil {
			return entry, "", at(errorParentKey, err)
		}
	}
	if entry.handleable, err = jsonv.OptBool(obj, errorHandleKey, true); err != nil {
		return entry, "", err
	}
	return entry, id, nil
}

// writeErrorRefs writes the identifiers of errs.
func writeErrorRefs(errs []*model.ErrorModel) []any {
	out := make([]any, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Identifier())
	}
	return out
}

// readErrorRefs resolves error identifiers through the document repository.
func readErrorRefs(obj *jsonv.Object, ctx *readContext) ([]*model.ErrorModel, error) {
	ids, err := jsonv.Strings(obj, errorsKey)
	if err != nil {
		return nil, err
	}
	out := make([]*model.ErrorModel, 0, len(ids))
	for i, id := range ids {
		e, err := ctx.errors.build(id)
		if err != nil {
			return nil, atIndex(errorsKey, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func writeNotifications(ns []*model.NotificationModel, ctx *writeContext) ([]any, error) {
	out := make([]any, 0, len(ns))
	for i, n := range ns {
		obj := jsonv.NewObject()
		obj.Set(notificationKey, n.Identifier())
		t, err := writeType(n.Type, ctx)
		if err != nil {
			return nil, atIndex(notificationsKey, i, at(metadataTypeKey, err))
		}
		obj.Set(metadataTypeKey, t)
		out = append(out, obj)
	}
	return out, nil
}

// readNotifications fills the document repository. A missing key reads as
// no notifications.
func readNotifications(root *jsonv.Object, ctx *readContext) ([]*model.NotificationModel, error) {
	objs, err := jsonv.Objects(root, notificationsKey)
	if err != nil {
		return nil, err
	}
	out := make([]*model.NotificationModel, 0, len(objs))
	for i, obj := range objs {
		n, err := readNotification(obj, ctx)
		if err != nil {
			return nil, atIndex(notificationsKey, i, err)
		}
		ctx.notifications[n.Identifier()] = n
		out = append(out, n)
	}
	return out, nil
}

func readNotification(obj *jsonv.Object, ctx *readContext) (*model.NotificationModel, error) {
	id, err := jsonv.String(obj, notificationKey)
	if err != nil {
		return nil, err
	}
	ns, name, err := model.ParseIdentifier(id)
	if err != nil {
		return nil, at(notificationKey, err)
	}
	raw, err := jsonv.Value(obj, metadataTypeKey)
	if err != nil {
		return nil, err
	}
	t, err := readType(raw, ctx)
	if err != nil {
		return nil, at(metadataTypeKey, err)
	}
	return &model.NotificationModel{Namespace: ns, Name: name, Type: t}, nil
}

func writeNotificationRefs(ns []*model.NotificationModel) []any {
	out := make([]any, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Identifier())
	}
	return out
}

// readNotificationRefs resolves notification identifiers. Unlike errors,
// a notification must be declared at the extension level.
func readNotificationRefs(obj *jsonv.Object, ctx *readContext) ([]*model.NotificationModel, error) {
	ids, err := jsonv.Strings(obj, notificationsKey)
	if err != nil {
		return nil, err
	}
	out := make([]*model.NotificationModel, 0, len(ids))
	for i, id := range ids {
		n, ok := ctx.notifications[id]
		if !ok {
			return nil, atIndex(notificationsKey, i, fmt.Errorf("%w: notification %q", ErrUnresolvedReference, id))
		}
		out = append(out, n)
	}
	return out, nil
}

// SerializeErrors writes errs, flattened with their ancestors, as a JSON
// array.
func SerializeErrors(errs []*model.ErrorModel) ([]byte, error) {
	return jsonv.Encode(writeErrors(errs), false)
}

// DeserializeErrors reads an array written by SerializeErrors. Errors
// sharing an ancestor share its instance.
func DeserializeErrors(data []byte) ([]*model.ErrorModel, error) {
	objs, err := jsonv.ParseArray(data)
	if err != nil {
		return nil, err
	}
	items := make([]any, len(objs))
	for i := range objs {
		items[i] = objs[i]
	}
	return readErrors(items, newErrorRepository())
}
