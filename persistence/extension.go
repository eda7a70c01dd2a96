// Package persistence reads and writes extension models as JSON documents.
//
// A document is written in a fixed key order. Catalog types are written once
// in full and referenced by id everywhere else, errors are flattened with
// their ancestors and referenced by identifier, and polymorphic components
// carry a kind discriminator. Older document layouts are accepted on read.
package persistence

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/extmodel/internal/jsonv"
	"github.com/conduit-lang/extmodel/metadata"
	"github.com/conduit-lang/extmodel/model"
)

const (
	versionKey             = "version"
	vendorKey              = "vendor"
	minMuleVersionKey      = "minMuleVersion"
	categoryKey            = "category"
	xmlDslKey              = "xmlDsl"
	resourcesKey           = "resources"
	subTypesKey            = "subTypes"
	baseTypeKey            = "baseType"
	privilegedPackagesKey  = "privilegedPackages"
	privilegedArtifactsKey = "privilegedArtifacts"
	importedTypesKey       = "importedTypes"
	configurationsKey      = "configurations"
	functionsKey           = "functions"
	constructsKey          = "constructs"
	artifactCoordsKey      = "artifactCoordinates"
	typesKey               = "types"

	prefixKey         = "prefix"
	schemaLocationKey = "schemaLocation"
	schemaVersionKey  = "schemaVersion"
	xsdFileNameKey    = "xsdFileName"

	groupIDKey    = "groupId"
	artifactIDKey = "artifactId"
	classifierKey = "classifier"
	packagingKey  = "packaging"
)

// Serializer converts extension models to and from JSON. It holds no
// per-document state and is safe for concurrent use.
type Serializer struct {
	logger     *zap.Logger
	indent     bool
	legacyKeys bool
	validate   bool
	properties *PropertyRegistry
	codecs     *codecs
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Serializer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIndent pretty prints written documents.
func WithIndent(indent bool) Option {
	return func(s *Serializer) {
		s.indent = indent
	}
}

// WithLegacyKeys controls whether written documents also carry the keys
// older readers expect: childComponents and isRequired on nested elements.
// Enabled by default.
func WithLegacyKeys(enabled bool) Option {
	return func(s *Serializer) {
		s.legacyKeys = enabled
	}
}

// WithPropertyRegistry replaces the built-in model property registry.
func WithPropertyRegistry(r *PropertyRegistry) Option {
	return func(s *Serializer) {
		s.properties = r
	}
}

// WithValidation runs model.Validate before writing and after reading.
func WithValidation(enabled bool) Option {
	return func(s *Serializer) {
		s.validate = enabled
	}
}

// NewSerializer creates a Serializer. Adapter wiring problems are reported
// here rather than on first use.
func NewSerializer(opts ...Option) (*Serializer, error) {
	s := &Serializer{
		logger:     zap.NewNop(),
		legacyKeys: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.properties == nil {
		s.properties = DefaultPropertyRegistry()
	}
	c, err := newCodecs()
	if err != nil {
		return nil, err
	}
	s.codecs = c
	return s, nil
}

// Serialize writes ext as a JSON document.
func (s *Serializer) Serialize(ext *model.ExtensionModel) ([]byte, error) {
	obj, err := s.serializeObject(ext)
	if err != nil {
		return nil, err
	}
	data, err := jsonv.Encode(obj, s.indent)
	if err != nil {
		return nil, &ExtensionModelSerializationError{Extension: ext.Name, Op: "serialize", Err: err}
	}
	return data, nil
}

func (s *Serializer) serializeObject(ext *model.ExtensionModel) (*jsonv.Object, error) {
	if ext == nil {
		return nil, &ExtensionModelSerializationError{Op: "serialize", Err: fmt.Errorf("%w: nil extension model", ErrInvalidShape)}
	}
	if s.validate {
		if err := model.Validate(ext); err != nil {
			return nil, &ExtensionModelSerializationError{Extension: ext.Name, Op: "serialize", Err: err}
		}
	}
	ctx := s.newWriteContext(ext.CatalogIDs())
	obj, err := s.writeExtension(ext, ctx)
	if err != nil {
		return nil, &ExtensionModelSerializationError{Extension: ext.Name, Op: "serialize", Err: located(err)}
	}
	s.logger.Debug("serialized extension model",
		zap.String("extension", ext.Name),
		zap.Int("types", len(ext.Types)),
		zap.Int("operations", len(ext.Operations)),
		zap.Int("errors", len(ext.Errors)))
	return obj, nil
}

// Deserialize reads a document written by Serialize, or by an older writer.
func (s *Serializer) Deserialize(data []byte) (*model.ExtensionModel, error) {
	obj, err := jsonv.ParseObject(data)
	if err != nil {
		return nil, &ExtensionModelSerializationError{Op: "deserialize", Err: err}
	}
	return s.deserializeObject(obj)
}

func (s *Serializer) deserializeObject(obj *jsonv.Object) (*model.ExtensionModel, error) {
	name, _ := jsonv.OptString(obj, nameKey)
	ctx := s.newReadContext()
	ext, err := s.readExtension(obj, ctx)
	if err != nil {
		return nil, &ExtensionModelSerializationError{Extension: name, Op: "deserialize", Err: located(err)}
	}
	if s.validate {
		if err := model.Validate(ext); err != nil {
			return nil, &ExtensionModelSerializationError{Extension: name, Op: "deserialize", Err: err}
		}
	}
	s.logger.Debug("deserialized extension model",
		zap.String("extension", ext.Name),
		zap.Int("types", len(ext.Types)),
		zap.Int("operations", len(ext.Operations)),
		zap.Int("errors", len(ext.Errors)))
	return ext, nil
}

// SerializeList writes several extensions as a JSON array. Each element is
// an independent document.
func (s *Serializer) SerializeList(exts []*model.ExtensionModel) ([]byte, error) {
	out := make([]any, 0, len(exts))
	for _, ext := range exts {
		obj, err := s.serializeObject(ext)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	data, err := jsonv.Encode(out, s.indent)
	if err != nil {
		return nil, &ExtensionModelSerializationError{Op: "serialize", Err: err}
	}
	return data, nil
}

// DeserializeList reads an array written by SerializeList.
func (s *Serializer) DeserializeList(data []byte) ([]*model.ExtensionModel, error) {
	objs, err := jsonv.ParseArray(data)
	if err != nil {
		return nil, &ExtensionModelSerializationError{Op: "deserialize", Err: err}
	}
	out := make([]*model.ExtensionModel, 0, len(objs))
	for _, obj := range objs {
		ext, err := s.deserializeObject(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, ext)
	}
	return out, nil
}

func (s *Serializer) writeExtension(ext *model.ExtensionModel, ctx *writeContext) (*jsonv.Object, error) {
	c := s.codecs
	obj := jsonv.NewObject()
	obj.Set(nameKey, ext.Name)
	obj.Set(descriptionKey, ext.Description)
	obj.Set(versionKey, ext.Version)
	obj.Set(vendorKey, ext.Vendor)
	if ext.MinMuleVersion != "" {
		obj.Set(minMuleVersionKey, ext.MinMuleVersion)
	}
	obj.Set(categoryKey, string(ext.Category))
	obj.Set(xmlDslKey, writeXmlDsl(ext.XmlDsl))
	obj.Set(resourcesKey, jsonv.StringSlice(ext.Resources))

	subTypes, err := writeSubTypes(ext.SubTypes, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(subTypesKey, subTypes)
	obj.Set(privilegedPackagesKey, jsonv.StringSlice(ext.PrivilegedPackages))
	obj.Set(privilegedArtifactsKey, jsonv.StringSlice(ext.PrivilegedArtifacts))

	libs, err := writeList(externalLibrariesKey, ext.ExternalLibraries, c.externalLib, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(externalLibrariesKey, libs)

	imported := make([]any, 0, len(ext.ImportedTypes))
	for i, it := range ext.ImportedTypes {
		def, err := writeTypeDefinition(it.Type, ctx)
		if err != nil {
			return nil, atIndex(importedTypesKey, i, err)
		}
		imported = append(imported, def)
	}
	obj.Set(importedTypesKey, imported)

	if ext.DisplayModel != nil {
		obj.Set(displayModelKey, writeDisplayModel(ext.DisplayModel))
	}

	configs, err := writeList(configurationsKey, ext.Configurations, c.configs, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(configurationsKey, configs)
	ops, err := writeList(operationsKey, ext.Operations, c.operations, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(operationsKey, ops)
	functions, err := writeList(functionsKey, ext.Functions, c.functions, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(functionsKey, functions)
	constructs, err := writeList(constructsKey, ext.Constructs, c.constructs, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(constructsKey, constructs)
	providers, err := writeList(connectionProvidersKey, ext.ConnectionProviders, c.providers, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(connectionProvidersKey, providers)
	sources, err := writeList(messageSourcesKey, ext.Sources, c.sources, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(messageSourcesKey, sources)

	if ext.ArtifactCoordinates != nil {
		obj.Set(artifactCoordsKey, writeArtifactCoordinates(ext.ArtifactCoordinates))
	}

	notifications, err := writeNotifications(ext.Notifications, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(notificationsKey, notifications)
	obj.Set(errorsKey, writeErrors(ext.Errors))

	props, err := writeModelProperties(ext.ModelProperties, ctx)
	if err != nil {
		return nil, at(modelPropertiesKey, err)
	}
	obj.Set(modelPropertiesKey, props)

	types := make([]any, 0, len(ext.Types))
	for i, t := range ext.Types {
		def, err := writeTypeDefinition(t, ctx)
		if err != nil {
			return nil, atIndex(typesKey, i, err)
		}
		types = append(types, def)
	}
	obj.Set(typesKey, types)
	return obj, nil
}

// readExtension reads the catalog first, then errors and notifications, so
// every component read afterwards can resolve references to them.
func (s *Serializer) readExtension(obj *jsonv.Object, ctx *readContext) (*model.ExtensionModel, error) {
	c := s.codecs
	ext := &model.ExtensionModel{}
	var err error

	if ext.ImportedTypes, ext.Types, err = readCatalog(obj, ctx); err != nil {
		return nil, err
	}

	rawErrors, err := jsonv.Array(obj, errorsKey)
	if err != nil {
		return nil, err
	}
	if ext.Errors, err = readErrors(rawErrors, ctx.errors); err != nil {
		return nil, err
	}
	if ext.Notifications, err = readNotifications(obj, ctx); err != nil {
		return nil, err
	}

	if ext.Name, err = jsonv.String(obj, nameKey); err != nil {
		return nil, err
	}
	if ext.Description, err = jsonv.OptString(obj, descriptionKey); err != nil {
		return nil, err
	}
	if ext.Version, err = jsonv.OptString(obj, versionKey); err != nil {
		return nil, err
	}
	if ext.Vendor, err = jsonv.OptString(obj, vendorKey); err != nil {
		return nil, err
	}
	if ext.MinMuleVersion, err = jsonv.OptString(obj, minMuleVersionKey); err != nil {
		return nil, err
	}
	category, err := jsonv.OptString(obj, categoryKey)
	if err != nil {
		return nil, err
	}
	ext.Category = model.Category(category)
	if ext.Category != "" && !ext.Category.Valid() {
		return nil, at(categoryKey, fmt.Errorf("%w: unknown category %q", ErrInvalidShape, category))
	}
	if ext.XmlDsl, err = readXmlDsl(obj); err != nil {
		return nil, at(xmlDslKey, err)
	}
	if ext.Resources, err = jsonv.Strings(obj, resourcesKey); err != nil {
		return nil, err
	}
	if ext.SubTypes, err = readSubTypes(obj, ctx); err != nil {
		return nil, err
	}
	if ext.PrivilegedPackages, err = jsonv.Strings(obj, privilegedPackagesKey); err != nil {
		return nil, err
	}
	if ext.PrivilegedArtifacts, err = jsonv.Strings(obj, privilegedArtifactsKey); err != nil {
		return nil, err
	}
	if ext.ExternalLibraries, err = readList(obj, externalLibrariesKey, c.externalLib, ctx); err != nil {
		return nil, err
	}
	if ext.DisplayModel, err = readDisplayModel(obj); err != nil {
		return nil, at(displayModelKey, err)
	}
	if ext.Configurations, err = readList(obj, configurationsKey, c.configs, ctx); err != nil {
		return nil, err
	}
	if ext.Operations, err = readList(obj, operationsKey, c.operations, ctx); err != nil {
		return nil, err
	}
	if ext.Functions, err = readList(obj, functionsKey, c.functions, ctx); err != nil {
		return nil, err
	}
	if ext.Constructs, err = readList(obj, constructsKey, c.constructs, ctx); err != nil {
		return nil, err
	}
	if ext.ConnectionProviders, err = readList(obj, connectionProvidersKey, c.providers, ctx); err != nil {
		return nil, err
	}
	if ext.Sources, err = readList(obj, messageSourcesKey, c.sources, ctx); err != nil {
		return nil, err
	}
	if ext.ArtifactCoordinates, err = readArtifactCoordinates(obj); err != nil {
		return nil, at(artifactCoordsKey, err)
	}
	if ext.ModelProperties, err = readModelProperties(obj, ctx); err != nil {
		return nil, err
	}
	return ext, nil
}

// readCatalog registers an empty instance for every identified catalog
// type before decoding any of them, so references between catalog entries
// resolve whatever their order.
func readCatalog(obj *jsonv.Object, ctx *readContext) ([]model.ImportedTypeModel, []*metadata.Type, error) {
	importedObjs, err := jsonv.Objects(obj, importedTypesKey)
	if err != nil {
		return nil, nil, err
	}
	typeObjs, err := jsonv.Objects(obj, typesKey)
	if err != nil {
		return nil, nil, err
	}

	shell := func(o *jsonv.Object) (*metadata.Type, error) {
		t := &metadata.Type{}
		id, err := jsonv.OptString(o, typeIDKey)
		if err != nil {
			return nil, err
		}
		if id != "" {
			t.ID = id
			ctx.catalog.RegisterType(t)
		}
		return t, nil
	}
	importedShells := make([]*metadata.Type, len(importedObjs))
	for i, o := range importedObjs {
		if importedShells[i], err = shell(o); err != nil {
			return nil, nil, atIndex(importedTypesKey, i, err)
		}
	}
	typeShells := make([]*metadata.Type, len(typeObjs))
	for i, o := range typeObjs {
		if typeShells[i], err = shell(o); err != nil {
			return nil, nil, atIndex(typesKey, i, err)
		}
	}

	imported := make([]model.ImportedTypeModel, 0, len(importedObjs))
	for i, o := range importedObjs {
		if err := readTypeInto(o, importedShells[i], ctx); err != nil {
			return nil, nil, atIndex(importedTypesKey, i, err)
		}
		imported = append(imported, model.ImportedTypeModel{Type: importedShells[i]})
	}
	for i, o := range typeObjs {
		if err := readTypeInto(o, typeShells[i], ctx); err != nil {
			return nil, nil, atIndex(typesKey, i, err)
		}
	}
	ctx.logger.Debug("registered type catalog",
		zap.Int("types", len(typeShells)),
		zap.Int("importedTypes", len(imported)))
	return imported, typeShells, nil
}

func writeSubTypes(subTypes []model.SubTypesModel, ctx *writeContext) ([]any, error) {
	out := make([]any, 0, len(subTypes))
	for i, st := range subTypes {
		obj := jsonv.NewObject()
		base, err := writeType(st.BaseType, ctx)
		if err != nil {
			return nil, atIndex(subTypesKey, i, at(baseTypeKey, err))
		}
		obj.Set(baseTypeKey, base)
		members := make([]any, 0, len(st.SubTypes))
		for j, t := range st.SubTypes {
			m, err := writeType(t, ctx)
			if err != nil {
				return nil, atIndex(subTypesKey, i, atIndex(subTypesKey, j, err))
			}
			members = append(members, m)
		}
		obj.Set(subTypesKey, members)
		out = append(out, obj)
	}
	return out, nil
}

func readSubTypes(parent *jsonv.Object, ctx *readContext) ([]model.SubTypesModel, error) {
	objs, err := jsonv.Objects(parent, subTypesKey)
	if err != nil {
		return nil, err
	}
	out := make([]model.SubTypesModel, 0, len(objs))
	for i, obj := range objs {
		var st model.SubTypesModel
		raw, err := jsonv.Value(obj, baseTypeKey)
		if err != nil {
			return nil, atIndex(subTypesKey, i, err)
		}
		if st.BaseType, err = readType(raw, ctx); err != nil {
			return nil, atIndex(subTypesKey, i, at(baseTypeKey, err))
		}
		raws, err := jsonv.OptArray(obj, subTypesKey)
		if err != nil {
			return nil, atIndex(subTypesKey, i, err)
		}
		for j, r := range raws {
			t, err := readType(r, ctx)
			if err != nil {
				return nil, atIndex(subTypesKey, i, atIndex(subTypesKey, j, err))
			}
			st.SubTypes = append(st.SubTypes, t)
		}
		out = append(out, st)
	}
	return out, nil
}

func writeXmlDsl(x model.XmlDslModel) *jsonv.Object {
	obj := jsonv.NewObject()
	obj.Set(prefixKey, x.Prefix)
	obj.Set(namespaceKey, x.Namespace)
	obj.Set(schemaLocationKey, x.SchemaLocation)
	obj.Set(schemaVersionKey, x.SchemaVersion)
	obj.Set(xsdFileNameKey, x.XsdFileName)
	return obj
}

func readXmlDsl(parent *jsonv.Object) (model.XmlDslModel, error) {
	var x model.XmlDslModel
	obj, err := jsonv.OptObj(parent, xmlDslKey)
	if err != nil || obj == nil {
		return x, err
	}
	for key, dst := range map[string]*string{
		prefixKey:         &x.Prefix,
		namespaceKey:      &x.Namespace,
		schemaLocationKey: &x.SchemaLocation,
		schemaVersionKey:  &x.SchemaVersion,
		xsdFileNameKey:    &x.XsdFileName,
	} {
		if *dst, err = jsonv.OptString(obj, key); err != nil {
			return x, err
		}
	}
	return x, nil
}

func writeArtifactCoordinates(a *model.ArtifactCoordinates) *jsonv.Object {
	obj := jsonv.NewObject()
	obj.Set(groupIDKey, a.GroupID)
	obj.Set(artifactIDKey, a.ArtifactID)
	obj.Set(versionKey, a.Version)
	if a.Classifier != "" {
		obj.Set(classifierKey, a.Classifier)
	}
	if a.Packaging != "" {
		obj.Set(packagingKey, a.Packaging)
	}
	return obj
}

func readArtifactCoordinates(parent *jsonv.Object) (*model.ArtifactCoordinates, error) {
	obj, err := jsonv.OptObj(parent, artifactCoordsKey)
	if err != nil || obj == nil {
		return nil, err
	}
	a := &model.ArtifactCoordinates{}
	if a.GroupID, err = jsonv.String(obj, groupIDKey); err != nil {
		return nil, err
	}
	if a.ArtifactID, err = jsonv.String(obj, artifactIDKey); err != nil {
		return nil, err
	}
	if a.Version, err = jsonv.String(obj, versionKey); err != nil {
		return nil, err
	}
	if a.Classifier, err = jsonv.OptString(obj, classifierKey); err != nil {
		return nil, err
	}
	if a.Packaging, err = jsonv.OptString(obj, packagingKey); err != nil {
		return nil, err
	}
	return a, nil
}
