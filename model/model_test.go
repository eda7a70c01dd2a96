package model

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/extmodel/metadata"
)

func TestParseIdentifier(t *testing.T) {
	ns, name, err := ParseIdentifier("HTTP:CONNECTIVITY")
	require.NoError(t, err)
	assert.Equal(t, "HTTP", ns)
	assert.Equal(t, "CONNECTIVITY", name)

	for _, bad := range []string{"", "HTTP", ":X", "X:", "A:B:C"} {
		_, _, err := ParseIdentifier(bad)
		assert.True(t, errors.Is(err, ErrMalformedIdentifier), "expected %q to be rejected", bad)
	}
}

func TestErrorModel_IsSubtypeOf(t *testing.T) {
	anyErr := NewErrorModel("MULE", "ANY", nil)
	conn := NewErrorModel("MULE", "CONNECTIVITY", anyErr)
	httpConn := NewErrorModel("HTTP", "CONNECTIVITY", conn)

	assert.True(t, httpConn.IsSubtypeOf(anyErr))
	assert.True(t, httpConn.IsSubtypeOf(httpConn))
	assert.False(t, anyErr.IsSubtypeOf(httpConn))
	assert.Equal(t, "HTTP:CONNECTIVITY", httpConn.String())
}

func TestModelProperties(t *testing.T) {
	var props ModelProperties
	props = props.With(NewMetadataKeyPartModelProperty(1))
	props = props.With(&PagedOperationModelProperty{})
	props = props.With(NewMetadataKeyPartModelPropertyWithResolver(2, false))

	require.Len(t, props, 2)
	part, ok := Property[*MetadataKeyPartModelProperty](props)
	require.True(t, ok)
	assert.Equal(t, 2, part.Order)
	assert.False(t, part.ProvidedByKeyResolver)

	_, ok = props.Get((&LicenseModelProperty{}).PropertyName())
	assert.False(t, ok)

	assert.True(t, NewMetadataKeyPartModelProperty(0).ProvidedByKeyResolver)
	assert.False(t, (&ImplementingTypeModelProperty{}).Public())
}

func TestExtensionLookups(t *testing.T) {
	op := &OperationModel{ParameterizedModel: ParameterizedModel{
		Name: "getCar",
		ParameterGroups: []*ParameterGroupModel{{
			Name:       DefaultGroupName,
			Parameters: []*ParameterModel{{Name: "id", Type: metadata.String(), Required: true}},
		}},
	}}
	cfgOp := &OperationModel{ParameterizedModel: ParameterizedModel{Name: "listCars"}}
	ext := &ExtensionModel{
		Name:           "cars",
		Operations:     []*OperationModel{op},
		Configurations: []*ConfigurationModel{{ParameterizedModel: ParameterizedModel{Name: "config"}, Operations: []*OperationModel{cfgOp}}},
		Types:          []*metadata.Type{metadata.Object("org.Car").Build()},
		ImportedTypes:  []ImportedTypeModel{{Type: metadata.Object("org.Imported").Build()}},
	}

	got, ok := ext.OperationModel("getCar")
	require.True(t, ok)
	id, ok := got.Parameter("id")
	require.True(t, ok)
	assert.True(t, id.Required)

	_, ok = ext.OperationModel("listCars")
	assert.False(t, ok)
	assert.Len(t, ext.AllOperations(), 2)

	cfg, ok := ext.ConfigurationModel("config")
	require.True(t, ok)
	_, ok = cfg.OperationModel("listCars")
	assert.True(t, ok)

	assert.Equal(t, []string{"org.Car", "org.Imported"}, ext.CatalogIDs())
}

func TestValidate(t *testing.T) {
	t.Run("valid model passes", func(t *testing.T) {
		ext := &ExtensionModel{Name: "ok", Category: CategoryCommunity}
		assert.NoError(t, Validate(ext))
	})

	t.Run("collects every violation", func(t *testing.T) {
		car := metadata.Object("org.Car").Build()
		root := NewErrorModel("X", "ROOT", nil)
		root.Parent = root

		ext := &ExtensionModel{
			Category:      "GOLD",
			Types:         []*metadata.Type{car, metadata.Object("org.Car").Build(), metadata.Object("").Build()},
			ImportedTypes: []ImportedTypeModel{{Type: metadata.Object("org.Car").Build()}},
			Operations: []*OperationModel{
				{ParameterizedModel: ParameterizedModel{Name: "a"}},
				{ParameterizedModel: ParameterizedModel{Name: "a"}},
			},
			Errors: []*ErrorModel{root},
		}

		err := Validate(ext)
		require.Error(t, err)
		var merr *multierror.Error
		require.True(t, errors.As(err, &merr))
		// empty name, category, duplicate type, missing id, duplicate import,
		// duplicate operation, cyclic error
		assert.Len(t, merr.Errors, 7)
	})
}

func TestStereotypeAssignable(t *testing.T) {
	processor := &StereotypeModel{Type: "PROCESSOR", Namespace: "MULE"}
	validator := &StereotypeModel{Type: "VALIDATOR", Namespace: "MULE", Parent: processor}

	assert.True(t, validator.IsAssignableTo(processor))
	assert.False(t, processor.IsAssignableTo(validator))
}
