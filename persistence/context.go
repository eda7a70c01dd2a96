package persistence

import (
	"go.uber.org/zap"

	"github.com/conduit-lang/extmodel/model"
)

// writeContext is the state of one serialization call. It is never shared
// between calls.
type writeContext struct {
	catalog    *TypeCatalog
	guard      *recursionGuard
	properties *PropertyRegistry
	legacyKeys bool
	logger     *zap.Logger
}

func (s *Serializer) newWriteContext(catalogIDs []string) *writeContext {
	return &writeContext{
		catalog:    NewTypeCatalog(catalogIDs),
		guard:      newRecursionGuard(),
		properties: s.properties,
		legacyKeys: s.legacyKeys,
		logger:     s.logger,
	}
}

// readContext is the state of one deserialization call: resolved types and
// the error and notification repositories of the document.
type readContext struct {
	catalog       *TypeCatalog
	errors        *errorRepository
	notifications map[string]*model.NotificationModel
	properties    *PropertyRegistry
	logger        *zap.Logger
}

func (s *Serializer) newReadContext() *readContext {
	return &readContext{
		catalog:       NewTypeCatalog(nil),
		errors:        newErrorRepository(),
		notifications: make(map[string]*model.NotificationModel),
		properties:    s.properties,
		logger:        s.logger,
	}
}
