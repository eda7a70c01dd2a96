package persistence

import (
	"strings"

	"github.com/conduit-lang/extmodel/metadata"
)

// refPrefix marks a type written by reference instead of by definition.
const refPrefix = "@ref:"

// TypeCatalog tracks, for a single document, which identified types have
// already been written or read so later occurrences can use a reference.
//
// Only ids in the allow-list (the extension's declared and imported types)
// are eligible for references on write; every other type is inlined.
type TypeCatalog struct {
	eligible map[string]bool
	written  map[string]bool
	resolved map[string]*metadata.Type
}

// NewTypeCatalog creates a catalog whose reference-eligible ids are ids.
func NewTypeCatalog(ids []string) *TypeCatalog {
	c := &TypeCatalog{
		eligible: make(map[string]bool, len(ids)),
		written:  make(map[string]bool),
		resolved: make(map[string]*metadata.Type),
	}
	for _, id := range ids {
		c.eligible[id] = true
	}
	return c
}

// IsEligible reports whether id may be written by reference.
func (c *TypeCatalog) IsEligible(id string) bool {
	return c.eligible[id]
}

// RegisterType records t as written, and as the instance references to
// its id resolve to.
func (c *TypeCatalog) RegisterType(t *metadata.Type) {
	if !t.HasID() {
		return
	}
	c.written[t.ID] = true
	c.resolved[t.ID] = t
}

// registerDefinition registers t unless its id already resolves to another
// instance. Catalog shells are registered first, so an inline copy of a
// catalog type never takes their place.
func (c *TypeCatalog) registerDefinition(t *metadata.Type) {
	if !t.HasID() {
		return
	}
	if existing, ok := c.resolved[t.ID]; ok && existing != t {
		return
	}
	c.RegisterType(t)
}

// HasBeenWritten reports whether t was registered in this document.
func (c *TypeCatalog) HasBeenWritten(t *metadata.Type) bool {
	return t.HasID() && c.written[t.ID]
}

// WriteReference returns the reference for t when t is a catalog type.
// Writing a reference registers the type as seen.
func (c *TypeCatalog) WriteReference(t *metadata.Type) (string, bool) {
	if !t.HasID() || !c.eligible[t.ID] {
		return "", false
	}
	c.written[t.ID] = true
	return refPrefix + t.ID, true
}

// ReadReference resolves a reference string to the registered type.
func (c *TypeCatalog) ReadReference(ref string) (*metadata.Type, bool) {
	id, ok := parseReference(ref)
	if !ok {
		return nil, false
	}
	t, ok := c.resolved[id]
	return t, ok
}

func parseReference(ref string) (string, bool) {
	if !strings.HasPrefix(ref, refPrefix) || len(ref) == len(refPrefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, refPrefix), true
}

// recursionGuard holds the ids of the types currently being written, so a
// type that transitively contains itself is referenced instead of expanded
// forever.
type recursionGuard struct {
	active map[string]int
}

func newRecursionGuard() *recursionGuard {
	return &recursionGuard{active: make(map[string]int)}
}

func (g *recursionGuard) contains(id string) bool {
	return g.active[id] > 0
}

// push marks id as in progress. The returned func must always be called,
// typically deferred, to pop it.
func (g *recursionGuard) push(id string) func() {
	g.active[id]++
	return func() {
		g.active[id]--
		if g.active[id] == 0 {
			delete(g.active, id)
		}
	}
}
