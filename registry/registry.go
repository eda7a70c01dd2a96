// Package registry keeps deserialized extension models indexed for lookup.
//
// Documents are decoded once: the registry remembers recently decoded
// documents by a hash of their bytes, so registering the same document again
// (a common case when several applications ship the same plugin) returns the
// already decoded model.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/conduit-lang/extmodel/model"
	"github.com/conduit-lang/extmodel/persistence"
)

// DefaultCacheSize is the number of decoded documents remembered.
const DefaultCacheSize = 64

// ErrNotFound is returned when an extension or component is not registered.
var ErrNotFound = errors.New("not found")

// OperationRef locates an operation inside a registered extension.
type OperationRef struct {
	Extension     string
	Configuration string
	Operation     *model.OperationModel
}

// Registry holds extension models by name. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	extensions map[string]*model.ExtensionModel
	order      []string

	// Pre-computed operation index, rebuilt on every registration
	operations []OperationRef

	// Query result cache, cleared on every registration
	queries    map[string][]OperationRef
	queriesMu  sync.Mutex
	decoded    *lru.Cache[uint64, *model.ExtensionModel]
	serializer *persistence.Serializer
	logger     *zap.Logger
	cacheSize  int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithSerializer sets the serializer used to decode documents.
func WithSerializer(s *persistence.Serializer) Option {
	return func(r *Registry) {
		r.serializer = s
	}
}

// WithCacheSize sets how many decoded documents are remembered.
func WithCacheSize(size int) Option {
	return func(r *Registry) {
		r.cacheSize = size
	}
}

// New creates an empty registry.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		extensions: make(map[string]*model.ExtensionModel),
		queries:    make(map[string][]OperationRef),
		logger:     zap.NewNop(),
		cacheSize:  DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheSize <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", r.cacheSize)
	}
	cache, err := lru.New[uint64, *model.ExtensionModel](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create decode cache: %w", err)
	}
	r.decoded = cache
	if r.serializer == nil {
		s, err := persistence.NewSerializer(persistence.WithLogger(r.logger))
		if err != nil {
			return nil, err
		}
		r.serializer = s
	}
	return r, nil
}

// Register decodes a serialized extension and indexes it, replacing any
// extension already registered under the same name.
func (r *Registry) Register(data []byte) (*model.ExtensionModel, error) {
	key := xxhash.Sum64(data)
	ext, ok := r.decoded.Get(key)
	if ok {
		r.logger.Debug("decode cache hit", zap.String("extension", ext.Name))
	} else {
		var err error
		ext, err = r.serializer.Deserialize(data)
		if err != nil {
			return nil, err
		}
		r.decoded.Add(key, ext)
	}
	if err := r.RegisterModel(ext); err != nil {
		return nil, err
	}
	return ext, nil
}

// RegisterModel indexes an already built extension model.
func (r *Registry) RegisterModel(ext *model.ExtensionModel) error {
	if ext == nil || ext.Name == "" {
		return fmt.Errorf("cannot register an extension without a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.extensions[ext.Name]; !exists {
		r.order = append(r.order, ext.Name)
	} else {
		r.logger.Debug("replacing extension", zap.String("extension", ext.Name))
	}
	r.extensions[ext.Name] = ext
	r.buildIndexes()
	return nil
}

// Remove unregisters the named extension.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.extensions[name]; !ok {
		return false
	}
	delete(r.extensions, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.buildIndexes()
	return true
}

// buildIndexes must be called with mu held for writing.
func (r *Registry) buildIndexes() {
	r.operations = r.operations[:0]
	for _, name := range r.order {
		ext := r.extensions[name]
		for _, op := range ext.Operations {
			r.operations = append(r.operations, OperationRef{Extension: name, Operation: op})
		}
		for _, c := range ext.Configurations {
			for _, op := range c.Operations {
				r.operations = append(r.operations, OperationRef{Extension: name, Configuration: c.Name, Operation: op})
			}
		}
	}

	r.queriesMu.Lock()
	r.queries = make(map[string][]OperationRef)
	r.queriesMu.Unlock()
}

// Extension returns the extension registered under name.
func (r *Registry) Extension(name string) (*model.ExtensionModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.extensions[name]
	return ext, ok
}

// Extensions returns every extension in registration order.
func (r *Registry) Extensions() []*model.ExtensionModel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ExtensionModel, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.extensions[name])
	}
	return out
}

// Operation finds an operation of an extension, looking at top-level
// operations first and then at those of its configurations.
func (r *Registry) Operation(extension, operation string) (*model.OperationModel, error) {
	ext, ok := r.Extension(extension)
	if !ok {
		return nil, fmt.Errorf("extension %s: %w", extension, ErrNotFound)
	}
	for _, op := range ext.AllOperations() {
		if op.Name == operation {
			return op, nil
		}
	}
	return nil, fmt.Errorf("operation %s in extension %s: %w", operation, extension, ErrNotFound)
}

// Errors returns the errors declared by an extension.
func (r *Registry) Errors(extension string) ([]*model.ErrorModel, error) {
	ext, ok := r.Extension(extension)
	if !ok {
		return nil, fmt.Errorf("extension %s: %w", extension, ErrNotFound)
	}
	out := make([]*model.ErrorModel, len(ext.Errors))
	copy(out, ext.Errors)
	return out, nil
}

// FindOperations returns the operations of every extension whose name
// matches pattern. "*" matches any run of characters.
func (r *Registry) FindOperations(pattern string) []OperationRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cached, ok := r.getCached(pattern); ok {
		return cached
	}

	result := []OperationRef{}
	for _, ref := range r.operations {
		if matchPattern(ref.Operation.Name, pattern) {
			result = append(result, ref)
		}
	}

	r.setCached(pattern, result)
	return result
}

func (r *Registry) getCached(key string) ([]OperationRef, bool) {
	r.queriesMu.Lock()
	defer r.queriesMu.Unlock()
	v, ok := r.queries[key]
	if !ok {
		return nil, false
	}
	return append([]OperationRef(nil), v...), true
}

func (r *Registry) setCached(key string, value []OperationRef) {
	r.queriesMu.Lock()
	defer r.queriesMu.Unlock()
	r.queries[key] = append([]OperationRef(nil), value...)
}

// matchPattern matches a string against a pattern with wildcards
func matchPattern(s, pattern string) bool {
	if pattern == s || pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	last := len(parts) - 1
	for _, part := range parts[1:last] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return strings.HasSuffix(s, parts[last])
}
