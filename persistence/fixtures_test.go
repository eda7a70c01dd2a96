package persistence

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/extmodel/metadata"
	"github.com/conduit-lang/extmodel/model"
)

var modelCmpOpts = []cmp.Option{cmpopts.EquateEmpty()}

func newTestSerializer(t *testing.T, opts ...Option) *Serializer {
	t.Helper()
	s, err := NewSerializer(opts...)
	require.NoError(t, err)
	return s
}

// getCarExtension is the smallest useful extension: one operation with one
// required string parameter.
func getCarExtension() *model.ExtensionModel {
	return &model.ExtensionModel{
		Name:     "cars",
		Version:  "1.0.0",
		Vendor:   "Acme",
		Category: model.CategoryCommunity,
		XmlDsl:   model.XmlDslModel{Prefix: "cars", Namespace: "http://acme.com/cars"},
		Operations: []*model.OperationModel{{
			ParameterizedModel: model.ParameterizedModel{
				Name: "getCar",
				ParameterGroups: []*model.ParameterGroupModel{{
					Name: model.DefaultGroupName,
					Parameters: []*model.ParameterModel{{
						Name:              "id",
						Type:              metadata.String(),
						Required:          true,
						ExpressionSupport: model.ExpressionSupported,
						Role:              model.RoleBehaviour,
					}},
				}},
			},
			Blocking: true,
		}},
	}
}

// fleetExtension exercises every part of the document: catalog references,
// imported types, nested elements, sources with callbacks, configurations,
// errors with a shared ancestor and notifications.
func fleetExtension() *model.ExtensionModel {
	engine := metadata.Object("org.acme.Engine").
		Annotate(metadata.AnnotationAlias, "Engine").
		RequiredField("cylinders", metadata.Number(),
			metadata.Annotation{Key: metadata.AnnotationDefaultValue, Value: 4}).
		Build()
	car := metadata.Object("org.acme.Car").
		Annotate(metadata.AnnotationDescription, "a car").
		RequiredField("id", metadata.String()).
		Field("engine", engine).
		Field("tags", metadata.ArrayOf(metadata.String()),
			metadata.Annotation{Key: metadata.AnnotationDslConfig, Value: true}).
		Field("owner", metadata.Object("").Field("name", metadata.String()).Build()).
		Build()
	money := metadata.Object("org.other.Money").
		Annotate("precision", map[string]any{"scale": 2, "currencies": []any{"EUR", int64(978)}}).
		RequiredField("amount", metadata.Number()).
		Build()

	anyErr := model.NewErrorModel("MULE", "ANY", nil)
	connectivity := model.NewErrorModel("MULE", "CONNECTIVITY", anyErr)
	carsConn := model.NewErrorModel("CARS", "CONNECTIVITY", connectivity)
	notFound := model.NewErrorModel("CARS", "NOT_FOUND", nil)
	notFound.Handleable = false

	sold := &model.NotificationModel{Namespace: "CARS", Name: "SOLD", Type: car}

	processor := &model.StereotypeModel{Type: "PROCESSOR", Namespace: "MULE"}
	carStereotype := &model.StereotypeModel{Type: "CAR_OPERATION", Namespace: "CARS", Parent: processor}

	idParam := &model.ParameterModel{
		Name:              "id",
		Description:       "car id",
		Type:              metadata.String(),
		Required:          true,
		ExpressionSupport: model.ExpressionSupported,
		Role:              model.RoleBehaviour,
		ModelProperties: model.ModelProperties{
			model.NewMetadataKeyPartModelPropertyWithResolver(1, false),
		},
	}
	carParam := &model.ParameterModel{
		Name:              "car",
		Type:              car,
		ExpressionSupport: model.ExpressionRequired,
		Role:              model.RolePrimaryContent,
		DefaultValue:      "#[payload]",
		DisplayModel:      &model.DisplayModel{DisplayName: "Car", Summary: "The car"},
		Deprecation:       &model.DeprecationModel{Message: "use id", DeprecatedSince: "1.1", ToRemoveIn: "2.0"},
	}
	generalGroup := func(params ...*model.ParameterModel) []*model.ParameterGroupModel {
		return []*model.ParameterGroupModel{{
			Name:       model.DefaultGroupName,
			ShowInDsl:  false,
			Parameters: params,
			ExclusiveParametersModels: []model.ExclusiveParametersModel{{
				ExclusiveParameterNames: []string{"id", "car"},
				OneRequired:             true,
			}},
		}}
	}

	getCar := &model.OperationModel{
		ParameterizedModel: model.ParameterizedModel{
			Name:            "getCar",
			Description:     "fetches a car",
			ParameterGroups: generalGroup(idParam, carParam),
			ModelProperties: model.ModelProperties{
				&model.TypeResolversInformationModelProperty{CategoryName: "cars", OutputResolver: "carResolver"},
			},
		},
		Output:             &model.OutputModel{Type: car, Description: "the car"},
		OutputAttributes:   &model.OutputModel{Type: metadata.Void()},
		Blocking:           true,
		RequiresConnection: true,
		Stereotype:         carStereotype,
		Errors:             []*model.ErrorModel{carsConn, notFound},
		Notifications:      []*model.NotificationModel{sold},
	}
	listCars := &model.OperationModel{
		ParameterizedModel: model.ParameterizedModel{
			Name: "listCars",
			ModelProperties: model.ModelProperties{
				&model.PagedOperationModelProperty{},
			},
		},
		Output:            &model.OutputModel{Type: metadata.ArrayOf(car), HasDynamicType: true},
		Blocking:          true,
		SupportsStreaming: true,
		Errors:            []*model.ErrorModel{connectivity},
	}

	route := &model.NestedRouteModel{NestedBase: model.NestedBase{
		ParameterizedModel: model.ParameterizedModel{Name: "when"},
		MinOccurs:          1,
		AllowedStereotypes: []*model.StereotypeModel{processor},
		NestedComponents: []model.NestableElementModel{
			&model.NestedChainModel{NestedBase: model.NestedBase{
				ParameterizedModel: model.ParameterizedModel{Name: "body"},
				MinOccurs:          0,
				MaxOccurs:          model.Occurs(1),
			}},
		},
	}}
	choice := &model.ConstructModel{
		ParameterizedModel:       model.ParameterizedModel{Name: "choice"},
		AllowsTopLevelDefinition: true,
		Errors:                   []*model.ErrorModel{notFound},
		NestedComponents:         []model.NestableElementModel{route},
	}

	listener := &model.SourceModel{
		ParameterizedModel: model.ParameterizedModel{Name: "onSale"},
		Output:             &model.OutputModel{Type: car},
		HasResponse:        true,
		SuccessCallback: &model.SourceCallbackModel{ParameterizedModel: model.ParameterizedModel{
			Name:            "onSuccess",
			ParameterGroups: generalGroup(&model.ParameterModel{Name: "ack", Type: metadata.Boolean(), ExpressionSupport: model.ExpressionSupported, Role: model.RoleBehaviour}),
		}},
		Notifications: []*model.NotificationModel{sold},
		NestedComponents: []model.NestableElementModel{
			&model.NestedComponentModel{NestedBase: model.NestedBase{
				ParameterizedModel: model.ParameterizedModel{Name: "handler"},
				MinOccurs:          1,
				MaxOccurs:          model.Occurs(1),
			}},
		},
	}

	provider := &model.ConnectionProviderModel{
		ParameterizedModel:          model.ParameterizedModel{Name: "basic"},
		ConnectionManagementType:    model.ConnectionPooling,
		SupportsConnectivityTesting: true,
		ExternalLibraries: []model.ExternalLibraryModel{{
			Name:              "driver",
			Type:              model.LibraryJar,
			RequiredClassName: "org.acme.Driver",
			Optional:          true,
		}},
	}

	return &model.ExtensionModel{
		Name:           "fleet",
		Description:    "fleet management",
		Version:        "2.3.0",
		Vendor:         "Acme",
		MinMuleVersion: "4.1.1",
		Category:       model.CategorySelect,
		XmlDsl: model.XmlDslModel{
			Prefix:         "fleet",
			Namespace:      "http://acme.com/fleet",
			SchemaLocation: "http://acme.com/fleet/current/mule-fleet.xsd",
			SchemaVersion:  "2.3.0",
			XsdFileName:    "mule-fleet.xsd",
		},
		Resources:           []string{"META-INF/fleet.properties"},
		SubTypes:            []model.SubTypesModel{{BaseType: engine, SubTypes: []*metadata.Type{money}}},
		PrivilegedPackages:  []string{"org.acme.fleet.api"},
		PrivilegedArtifacts: []string{"org.acme:fleet-plugin"},
		ExternalLibraries: []model.ExternalLibraryModel{{
			Name:                 "fleet-native",
			Description:          "native bridge",
			RegexMatcher:         "fleet-.*\\.so",
			Type:                 model.LibraryNative,
			SuggestedCoordinates: "org.acme:fleet-native:1.0",
		}},
		ImportedTypes: []model.ImportedTypeModel{{Type: money}},
		DisplayModel:  &model.DisplayModel{DisplayName: "Fleet"},
		Configurations: []*model.ConfigurationModel{{
			ParameterizedModel:  model.ParameterizedModel{Name: "config", ParameterGroups: generalGroup(&model.ParameterModel{Name: "region", Type: metadata.String(), ExpressionSupport: model.ExpressionNotSupported, Role: model.RoleBehaviour})},
			Operations:          []*model.OperationModel{listCars},
			Sources:             []*model.SourceModel{listener},
			ConnectionProviders: []*model.ConnectionProviderModel{provider},
		}},
		Operations: []*model.OperationModel{getCar},
		Functions: []*model.FunctionModel{{
			ParameterizedModel: model.ParameterizedModel{Name: "price"},
			Output:             &model.OutputModel{Type: money},
		}},
		Constructs:          []*model.ConstructModel{choice},
		ArtifactCoordinates: &model.ArtifactCoordinates{GroupID: "org.acme", ArtifactID: "fleet", Version: "2.3.0", Packaging: "mule-plugin"},
		Notifications:       []*model.NotificationModel{sold},
		Errors:              []*model.ErrorModel{carsConn, connectivity, anyErr, notFound},
		ModelProperties: model.ModelProperties{
			&model.LicenseModelProperty{RequiresEeLicense: true, RequiredEntitlement: "fleet"},
			&model.SinceMuleVersionModelProperty{Version: "4.1.1"},
		},
		Types: []*metadata.Type{car, engine},
	}
}
