package model

import "github.com/conduit-lang/extmodel/metadata"

// XmlDslModel describes the XML namespace of an extension.
type XmlDslModel struct {
	Prefix         string
	Namespace      string
	SchemaLocation string
	SchemaVersion  string
	XsdFileName    string
}

// SubTypesModel maps a base type to its concrete implementations.
type SubTypesModel struct {
	BaseType *metadata.Type
	SubTypes []*metadata.Type
}

// ImportedTypeModel is a type declared by another extension.
type ImportedTypeModel struct {
	Type *metadata.Type
}

// ExternalLibraryModel is a third-party library the extension needs.
type ExternalLibraryModel struct {
	Name                 string
	Description          string
	RegexMatcher         string
	RequiredClassName    string
	Type                 LibraryType
	Optional             bool
	SuggestedCoordinates string
}

// ArtifactCoordinates locate the artifact that packages the extension.
type ArtifactCoordinates struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
	Packaging  string
}

// ExtensionModel is the root aggregate describing a whole extension.
type ExtensionModel struct {
	Name                string
	Description         string
	Version             string
	Vendor              string
	MinMuleVersion      string
	Category            Category
	XmlDsl              XmlDslModel
	Resources           []string
	SubTypes            []SubTypesModel
	PrivilegedPackages  []string
	PrivilegedArtifacts []string
	ExternalLibraries   []ExternalLibraryModel
	ImportedTypes       []ImportedTypeModel
	DisplayModel        *DisplayModel
	Configurations      []*ConfigurationModel
	Operations          []*OperationModel
	Functions           []*FunctionModel
	Constructs          []*ConstructModel
	ConnectionProviders []*ConnectionProviderModel
	Sources             []*SourceModel
	ArtifactCoordinates *ArtifactCoordinates
	Notifications       []*NotificationModel
	Errors              []*ErrorModel
	ModelProperties     ModelProperties

	// Types is the catalog of object types declared by the extension.
	Types []*metadata.Type
}

// OperationModel finds a top-level operation by name.
func (e *ExtensionModel) OperationModel(name string) (*OperationModel, bool) {
	return findNamed(e.Operations, name)
}

// SourceModel finds a top-level source by name.
func (e *ExtensionModel) SourceModel(name string) (*SourceModel, bool) {
	return findNamed(e.Sources, name)
}

// ConfigurationModel finds a configuration by name.
func (e *ExtensionModel) ConfigurationModel(name string) (*ConfigurationModel, bool) {
	return findNamed(e.Configurations, name)
}

// ConstructModel finds a construct by name.
func (e *ExtensionModel) ConstructModel(name string) (*ConstructModel, bool) {
	return findNamed(e.Constructs, name)
}

// FunctionModel finds a function by name.
func (e *ExtensionModel) FunctionModel(name string) (*FunctionModel, bool) {
	return findNamed(e.Functions, name)
}

// ConnectionProviderModel finds a top-level connection provider by name.
func (e *ExtensionModel) ConnectionProviderModel(name string) (*ConnectionProviderModel, bool) {
	return findNamed(e.ConnectionProviders, name)
}

// ErrorModel finds a declared error by identifier.
func (e *ExtensionModel) ErrorModel(identifier string) (*ErrorModel, bool) {
	for _, err := range e.Errors {
		if err.Identifier() == identifier {
			return err, true
		}
	}
	return nil, false
}

// Type finds a catalog type by id.
func (e *ExtensionModel) Type(id string) (*metadata.Type, bool) {
	for _, t := range e.Types {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// AllOperations returns top-level operations followed by those declared in
// configurations.
func (e *ExtensionModel) AllOperations() []*OperationModel {
	out := append([]*OperationModel(nil), e.Operations...)
	for _, c := range e.Configurations {
		out = append(out, c.Operations...)
	}
	return out
}

// AllSources returns top-level sources followed by those declared in
// configurations.
func (e *ExtensionModel) AllSources() []*SourceModel {
	out := append([]*SourceModel(nil), e.Sources...)
	for _, c := range e.Configurations {
		out = append(out, c.Sources...)
	}
	return out
}

// CatalogIDs returns the ids of the declared and imported types, the types
// that may be referenced by id in a serialized document.
func (e *ExtensionModel) CatalogIDs() []string {
	ids := make([]string, 0, len(e.Types)+len(e.ImportedTypes))
	for _, t := range e.Types {
		if t.HasID() {
			ids = append(ids, t.ID)
		}
	}
	for _, it := range e.ImportedTypes {
		if it.Type.HasID() {
			ids = append(ids, it.Type.ID)
		}
	}
	return ids
}
