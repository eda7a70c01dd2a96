package model

import "fmt"

// ComponentKind enumerates the variants of the component family.
type ComponentKind int

const (
	KindOperation ComponentKind = iota
	KindSource
	KindConstruct
	KindFunction
	KindNestedComponent
	KindNestedChain
	KindNestedRoute
)

// String returns the kind discriminator written to documents.
func (k ComponentKind) String() string {
	switch k {
	case KindOperation:
		return "operation"
	case KindSource:
		return "source"
	case KindConstruct:
		return "construct"
	case KindFunction:
		return "function"
	case KindNestedComponent:
		return "component"
	case KindNestedChain:
		return "chain"
	case KindNestedRoute:
		return "route"
	default:
		return fmt.Sprintf("ComponentKind(%d)", int(k))
	}
}

// ComponentModel is implemented by every component variant.
type ComponentModel interface {
	ModelName() string
	Kind() ComponentKind
}

// OperationModel is an executable operation.
type OperationModel struct {
	ParameterizedModel
	Output             *OutputModel
	OutputAttributes   *OutputModel
	Blocking           bool
	Transactional      bool
	RequiresConnection bool
	SupportsStreaming  bool
	Stereotype         *StereotypeModel
	Errors             []*ErrorModel
	Notifications      []*NotificationModel
	NestedComponents   []NestableElementModel
}

// Kind implements ComponentModel.
func (*OperationModel) Kind() ComponentKind { return KindOperation }

// SourceCallbackModel is a success, error or terminate callback of a source.
type SourceCallbackModel struct {
	ParameterizedModel
}

// SourceModel is a message source that triggers flows.
type SourceModel struct {
	ParameterizedModel
	Output                *OutputModel
	OutputAttributes      *OutputModel
	Transactional         bool
	RequiresConnection    bool
	SupportsStreaming     bool
	HasResponse           bool
	RunsOnPrimaryNodeOnly bool
	Stereotype            *StereotypeModel
	SuccessCallback       *SourceCallbackModel
	ErrorCallback         *SourceCallbackModel
	TerminateCallback     *SourceCallbackModel
	Errors                []*ErrorModel
	Notifications         []*NotificationModel
	NestedComponents      []NestableElementModel
}

// Kind implements ComponentModel.
func (*SourceModel) Kind() ComponentKind { return KindSource }

// ConstructModel is a scope or router that is not an operation.
type ConstructModel struct {
	ParameterizedModel
	AllowsTopLevelDefinition bool
	Stereotype               *StereotypeModel
	Errors                   []*ErrorModel
	NestedComponents         []NestableElementModel
}

// Kind implements ComponentModel.
func (*ConstructModel) Kind() ComponentKind { return KindConstruct }

// FunctionModel is an expression language function.
type FunctionModel struct {
	ParameterizedModel
	Output *OutputModel
}

// Kind implements ComponentModel.
func (*FunctionModel) Kind() ComponentKind { return KindFunction }

// NestableElementModel is a component that only exists nested inside
// another one: a nested component, a chain or a route.
type NestableElementModel interface {
	ComponentModel
	Occurrences() (minOccurs int, maxOccurs *int)
	Children() []NestableElementModel
	nestable()
}

// NestedBase holds what all nestable elements share. A nil MaxOccurs means
// unbounded.
type NestedBase struct {
	ParameterizedModel
	MinOccurs          int
	MaxOccurs          *int
	AllowedStereotypes []*StereotypeModel
	NestedComponents   []NestableElementModel
}

// Occurrences implements NestableElementModel.
func (n *NestedBase) Occurrences() (int, *int) { return n.MinOccurs, n.MaxOccurs }

// Children implements NestableElementModel.
func (n *NestedBase) Children() []NestableElementModel { return n.NestedComponents }

// IsRequired reports whether at least one occurrence is mandatory.
func (n *NestedBase) IsRequired() bool { return n.MinOccurs > 0 }

func (n *NestedBase) nestable() {}

// NestedComponentModel is a single nested component slot.
type NestedComponentModel struct {
	NestedBase
}

// Kind implements ComponentModel.
func (*NestedComponentModel) Kind() ComponentKind { return KindNestedComponent }

// NestedChainModel is a nested processor chain.
type NestedChainModel struct {
	NestedBase
}

// Kind implements ComponentModel.
func (*NestedChainModel) Kind() ComponentKind { return KindNestedChain }

// NestedRouteModel is a route of a router.
type NestedRouteModel struct {
	NestedBase
}

// Kind implements ComponentModel.
func (*NestedRouteModel) Kind() ComponentKind { return KindNestedRoute }

// ConnectionProviderModel describes how connections are created.
type ConnectionProviderModel struct {
	ParameterizedModel
	ConnectionManagementType    ConnectionManagementType
	SupportsConnectivityTesting bool
	Stereotype                  *StereotypeModel
	ExternalLibraries           []ExternalLibraryModel
}

// ConfigurationModel is a configuration with its own components.
type ConfigurationModel struct {
	ParameterizedModel
	Stereotype          *StereotypeModel
	Operations          []*OperationModel
	Sources             []*SourceModel
	ConnectionProviders []*ConnectionProviderModel
	ExternalLibraries   []ExternalLibraryModel
}

// OperationModel finds an operation of the configuration by name.
func (c *ConfigurationModel) OperationModel(name string) (*OperationModel, bool) {
	return findNamed(c.Operations, name)
}

// SourceModel finds a source of the configuration by name.
func (c *ConfigurationModel) SourceModel(name string) (*SourceModel, bool) {
	return findNamed(c.Sources, name)
}

// Occurs builds a maxOccurs value.
func Occurs(n int) *int {
	return &n
}

func findNamed[T interface{ ModelName() string }](items []T, name string) (T, bool) {
	for _, item := range items {
		if item.ModelName() == name {
			return item, true
		}
	}
	var zero T
	return zero, false
}
