package model

import "github.com/conduit-lang/extmodel/metadata"

// DefaultGroupName is the name of the implicit parameter group.
const DefaultGroupName = "General"

// ParameterModel describes one parameter of a component.
type ParameterModel struct {
	Name               string
	Description        string
	Type               *metadata.Type
	Required           bool
	DefaultValue       string
	ExpressionSupport  ExpressionSupport
	Role               ParameterRole
	IsComponentID      bool
	AllowedStereotypes []*StereotypeModel
	DisplayModel       *DisplayModel
	Deprecation        *DeprecationModel
	ModelProperties    ModelProperties
}

// ExclusiveParametersModel declares a set of mutually exclusive parameters.
type ExclusiveParametersModel struct {
	ExclusiveParameterNames []string
	OneRequired             bool
}

// ParameterGroupModel groups related parameters.
type ParameterGroupModel struct {
	Name                      string
	Description               string
	ShowInDsl                 bool
	Parameters                []*ParameterModel
	ExclusiveParametersModels []ExclusiveParametersModel
	DisplayModel              *DisplayModel
	ModelProperties           ModelProperties
}

// Parameter returns the named parameter of the group.
func (g *ParameterGroupModel) Parameter(name string) (*ParameterModel, bool) {
	for _, p := range g.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// OutputModel describes a payload or attributes output.
type OutputModel struct {
	Description     string
	Type            *metadata.Type
	HasDynamicType  bool
	ModelProperties ModelProperties
}

// ParameterizedModel is the part shared by every component that declares
// parameters.
type ParameterizedModel struct {
	Name            string
	Description     string
	ParameterGroups []*ParameterGroupModel
	DisplayModel    *DisplayModel
	Deprecation     *DeprecationModel
	ModelProperties ModelProperties
}

// ModelName returns the component name.
func (m *ParameterizedModel) ModelName() string {
	return m.Name
}

// AllParameters flattens every group, in declaration order.
func (m *ParameterizedModel) AllParameters() []*ParameterModel {
	var out []*ParameterModel
	for _, g := range m.ParameterGroups {
		out = append(out, g.Parameters...)
	}
	return out
}

// Parameter finds a parameter by name in any group.
func (m *ParameterizedModel) Parameter(name string) (*ParameterModel, bool) {
	for _, g := range m.ParameterGroups {
		if p, ok := g.Parameter(name); ok {
			return p, true
		}
	}
	return nil, false
}

// ParameterGroup finds a group by name.
func (m *ParameterizedModel) ParameterGroup(name string) (*ParameterGroupModel, bool) {
	for _, g := range m.ParameterGroups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}
