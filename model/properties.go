package model

// ModelProperty is an extensible piece of information attached to a model.
type ModelProperty interface {
	// PropertyName is the fully qualified kind name of the property.
	PropertyName() string

	// Public reports whether the property is meaningful outside the
	// process that created it. Only public properties are persisted.
	Public() bool
}

// ModelProperties is an ordered set of properties, at most one per kind.
type ModelProperties []ModelProperty

// Get returns the property registered under name.
func (p ModelProperties) Get(name string) (ModelProperty, bool) {
	for _, prop := range p {
		if prop.PropertyName() == name {
			return prop, true
		}
	}
	return nil, false
}

// With returns a copy with prop added, replacing one of the same kind.
func (p ModelProperties) With(prop ModelProperty) ModelProperties {
	out := make(ModelProperties, 0, len(p)+1)
	replaced := false
	for _, existing := range p {
		if existing.PropertyName() == prop.PropertyName() {
			out = append(out, prop)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, prop)
	}
	return out
}

// Property returns the first property of type T.
func Property[T ModelProperty](p ModelProperties) (T, bool) {
	for _, prop := range p {
		if t, ok := prop.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

const propertyPackage = "org.mule.runtime.extension.api.property."

// MetadataKeyPartModelProperty marks a parameter as part of a metadata key.
type MetadataKeyPartModelProperty struct {
	Order                 int  `json:"order"`
	ProvidedByKeyResolver bool `json:"providedByKeyResolver"`
}

// NewMetadataKeyPartModelProperty is the legacy form; the part is assumed
// to be provided by the key resolver.
func NewMetadataKeyPartModelProperty(order int) *MetadataKeyPartModelProperty {
	return &MetadataKeyPartModelProperty{Order: order, ProvidedByKeyResolver: true}
}

// NewMetadataKeyPartModelPropertyWithResolver sets every field explicitly.
func NewMetadataKeyPartModelPropertyWithResolver(order int, providedByKeyResolver bool) *MetadataKeyPartModelProperty {
	return &MetadataKeyPartModelProperty{Order: order, ProvidedByKeyResolver: providedByKeyResolver}
}

func (*MetadataKeyPartModelProperty) PropertyName() string {
	return propertyPackage + "MetadataKeyPartModelProperty"
}
func (*MetadataKeyPartModelProperty) Public() bool { return true }

// MetadataKeyIdModelProperty marks the parameter that carries a metadata key.
type MetadataKeyIdModelProperty struct {
	ParameterName string `json:"parameterName"`
	CategoryName  string `json:"categoryName,omitempty"`
}

func (*MetadataKeyIdModelProperty) PropertyName() string {
	return propertyPackage + "MetadataKeyIdModelProperty"
}
func (*MetadataKeyIdModelProperty) Public() bool { return true }

// PagedOperationModelProperty marks an operation as paginated.
type PagedOperationModelProperty struct{}

func (*PagedOperationModelProperty) PropertyName() string {
	return propertyPackage + "PagedOperationModelProperty"
}
func (*PagedOperationModelProperty) Public() bool { return true }

// LicenseModelProperty declares licensing requirements.
type LicenseModelProperty struct {
	RequiresEeLicense       bool   `json:"requiresEeLicense"`
	AllowsEvaluationLicense bool   `json:"allowsEvaluationLicense"`
	RequiredEntitlement     string `json:"requiredEntitlement,omitempty"`
}

func (*LicenseModelProperty) PropertyName() string {
	return propertyPackage + "LicenseModelProperty"
}
func (*LicenseModelProperty) Public() bool { return true }

// TypeResolversInformationModelProperty names the metadata resolvers of a
// component.
type TypeResolversInformationModelProperty struct {
	CategoryName       string `json:"categoryName"`
	OutputResolver     string `json:"outputResolver,omitempty"`
	AttributesResolver string `json:"attributesResolver,omitempty"`
	RequiresConnection bool   `json:"requiresConnection"`
}

func (*TypeResolversInformationModelProperty) PropertyName() string {
	return propertyPackage + "TypeResolversInformationModelProperty"
}
func (*TypeResolversInformationModelProperty) Public() bool { return true }

// SinceMuleVersionModelProperty records the runtime version an element
// first appeared in.
type SinceMuleVersionModelProperty struct {
	Version string `json:"version"`
}

func (*SinceMuleVersionModelProperty) PropertyName() string {
	return propertyPackage + "SinceMuleVersionModelProperty"
}
func (*SinceMuleVersionModelProperty) Public() bool { return true }

// ImplementingTypeModelProperty points to the implementation of a model.
// It only makes sense in the process that loaded the extension.
type ImplementingTypeModelProperty struct {
	TypeName string `json:"typeName"`
}

func (*ImplementingTypeModelProperty) PropertyName() string {
	return propertyPackage + "ImplementingTypeModelProperty"
}
func (*ImplementingTypeModelProperty) Public() bool { return false }
