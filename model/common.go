// Package model holds the in-memory extension model: the root
// ExtensionModel aggregate and every sub-model it owns.
package model

// DisplayModel carries presentation hints for tooling.
type DisplayModel struct {
	DisplayName string
	Summary     string
	Example     string
}

// DeprecationModel marks an element as deprecated.
type DeprecationModel struct {
	Message         string
	DeprecatedSince string
	ToRemoveIn      string
}

// StereotypeModel classifies a component so other components can restrict
// which ones they accept.
type StereotypeModel struct {
	Type      string
	Namespace string
	Parent    *StereotypeModel
}

// IsAssignableTo reports whether s is other or descends from it.
func (s *StereotypeModel) IsAssignableTo(other *StereotypeModel) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Type == other.Type && cur.Namespace == other.Namespace {
			return true
		}
	}
	return false
}

// ExpressionSupport describes whether a parameter accepts expressions.
type ExpressionSupport string

const (
	ExpressionSupported    ExpressionSupport = "SUPPORTED"
	ExpressionNotSupported ExpressionSupport = "NOT_SUPPORTED"
	ExpressionRequired     ExpressionSupport = "REQUIRED"
)

// Valid reports whether e is a known value.
func (e ExpressionSupport) Valid() bool {
	switch e {
	case ExpressionSupported, ExpressionNotSupported, ExpressionRequired:
		return true
	}
	return false
}

// ParameterRole describes how a parameter is represented in the DSL.
type ParameterRole string

const (
	RoleBehaviour      ParameterRole = "BEHAVIOUR"
	RoleContent        ParameterRole = "CONTENT"
	RolePrimaryContent ParameterRole = "PRIMARY"
)

// Valid reports whether r is a known value.
func (r ParameterRole) Valid() bool {
	switch r {
	case RoleBehaviour, RoleContent, RolePrimaryContent:
		return true
	}
	return false
}

// Category is the licensing category of an extension.
type Category string

const (
	CategoryCommunity Category = "COMMUNITY"
	CategorySelect    Category = "SELECT"
	CategoryPremium   Category = "PREMIUM"
	CategoryCertified Category = "CERTIFIED"
)

// Valid reports whether c is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryCommunity, CategorySelect, CategoryPremium, CategoryCertified:
		return true
	}
	return false
}

// ConnectionManagementType is the connection handling strategy of a provider.
type ConnectionManagementType string

const (
	ConnectionPooling ConnectionManagementType = "POOLING"
	ConnectionCached  ConnectionManagementType = "CACHED"
	ConnectionNone    ConnectionManagementType = "NONE"
)

// Valid reports whether c is a known value.
func (c ConnectionManagementType) Valid() bool {
	switch c {
	case ConnectionPooling, ConnectionCached, ConnectionNone:
		return true
	}
	return false
}

// LibraryType is the packaging of an external library.
type LibraryType string

const (
	LibraryNative     LibraryType = "NATIVE"
	LibraryJar        LibraryType = "JAR"
	LibraryDependency LibraryType = "DEPENDENCY"
)

// Valid reports whether l is a known value.
func (l LibraryType) Valid() bool {
	switch l {
	case LibraryNative, LibraryJar, LibraryDependency:
		return true
	}
	return false
}
