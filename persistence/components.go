package persistence

import (
	"fmt"

	"github.com/conduit-lang/extmodel/internal/jsonv"
	"github.com/conduit-lang/extmodel/model"
)

const (
	nameKey                    = "name"
	descriptionKey             = "description"
	parameterGroupsKey         = "parameterGroupModels"
	parametersKey              = "parameters"
	exclusiveParametersKey     = "exclusiveParametersModels"
	exclusiveNamesKey          = "exclusiveParameterNames"
	isOneRequiredKey           = "isOneRequired"
	showInDslKey               = "showInDsl"
	typeKey                    = "type"
	requiredKey                = "required"
	expressionSupportKey       = "expressionSupport"
	roleKey                    = "role"
	defaultValueKey            = "defaultValue"
	isComponentIDKey           = "isComponentId"
	allowedStereotypeModelsKey = "allowedStereotypeModels"
	displayModelKey            = "displayModel"
	displayNameKey             = "displayName"
	summaryKey                 = "summary"
	exampleKey                 = "example"
	deprecationKey             = "deprecation"
	messageKey                 = "message"
	deprecatedSinceKey         = "deprecatedSince"
	toRemoveInKey              = "toRemoveIn"
	stereotypeKey              = "stereotype"
	namespaceKey               = "namespace"
	parentKey                  = "parent"
	outputKey                  = "output"
	outputAttributesKey        = "outputAttributes"
	hasDynamicTypeKey          = "hasDynamicType"
	blockingKey                = "blocking"
	transactionalKey           = "transactional"
	requiresConnectionKey      = "requiresConnection"
	supportsStreamingKey       = "supportsStreaming"
	hasResponseKey             = "hasResponse"
	primaryNodeOnlyKey         = "runsOnPrimaryNodeOnly"
	successCallbackKey         = "successCallback"
	errorCallbackKey           = "errorCallback"
	terminateCallbackKey       = "terminateCallback"
	nestedComponentsKey        = "nestedComponents"
	allowsTopLevelKey          = "allowsTopLevelDefinition"
	minOccursKey               = "minOccurs"
	maxOccursKey               = "maxOccurs"
	allowedStereotypesKey      = "allowedStereotypes"
	operationsKey              = "operations"
	messageSourcesKey          = "messageSources"
	connectionProvidersKey     = "connectionProviders"
	externalLibrariesKey       = "externalLibraries"
	connectionMgmtTypeKey      = "connectionManagementType"
	connectivityTestingKey     = "supportsConnectivityTesting"
	regexMatcherKey            = "regexMatcher"
	requiredClassNameKey       = "requiredClassName"
	isOptionalKey              = "isOptional"
	suggestedCoordinatesKey    = "suggestedCoordinates"
)

// codecs holds the adapters shared by every call of a Serializer.
type codecs struct {
	operations  adapter[*model.OperationModel]
	sources     adapter[*model.SourceModel]
	constructs  adapter[*model.ConstructModel]
	functions   adapter[*model.FunctionModel]
	nested      adapter[model.NestableElementModel]
	configs     adapter[*model.ConfigurationModel]
	providers   adapter[*model.ConnectionProviderModel]
	parameters  adapter[*model.ParameterModel]
	groups      adapter[*model.ParameterGroupModel]
	externalLib adapter[model.ExternalLibraryModel]
}

// newCodecs wires the component adapters. Nested elements are decorated,
// from the inside out, by the occurrence shim, the kind adapter and the
// childComponents key rename.
func newCodecs() (*codecs, error) {
	c := &codecs{
		parameters:  adapterFuncs[*model.ParameterModel]{writeFn: writeParameter, readFn: readParameter},
		externalLib: adapterFuncs[model.ExternalLibraryModel]{writeFn: writeExternalLibrary, readFn: readExternalLibrary},
	}
	c.groups = adapterFuncs[*model.ParameterGroupModel]{writeFn: c.writeGroup, readFn: c.readGroup}
	c.configs = adapterFuncs[*model.ConfigurationModel]{writeFn: c.writeConfiguration, readFn: c.readConfiguration}
	c.providers = adapterFuncs[*model.ConnectionProviderModel]{writeFn: c.writeProvider, readFn: c.readProvider}

	var err error
	if c.operations, err = newKindAdapter(model.KindOperation.String(), componentKind[*model.OperationModel],
		map[string]adapter[*model.OperationModel]{
			model.KindOperation.String(): adapterFuncs[*model.OperationModel]{writeFn: c.writeOperation, readFn: c.readOperation},
		}); err != nil {
		return nil, err
	}
	if c.sources, err = newKindAdapter(model.KindSource.String(), componentKind[*model.SourceModel],
		map[string]adapter[*model.SourceModel]{
			model.KindSource.String(): adapterFuncs[*model.SourceModel]{writeFn: c.writeSource, readFn: c.readSource},
		}); err != nil {
		return nil, err
	}
	if c.constructs, err = newKindAdapter(model.KindConstruct.String(), componentKind[*model.ConstructModel],
		map[string]adapter[*model.ConstructModel]{
			model.KindConstruct.String(): adapterFuncs[*model.ConstructModel]{writeFn: c.writeConstruct, readFn: c.readConstruct},
		}); err != nil {
		return nil, err
	}
	if c.functions, err = newKindAdapter(model.KindFunction.String(), componentKind[*model.FunctionModel],
		map[string]adapter[*model.FunctionModel]{
			model.KindFunction.String(): adapterFuncs[*model.FunctionModel]{writeFn: c.writeFunction, readFn: c.readFunction},
		}); err != nil {
		return nil, err
	}

	nestedKinds, err := newKindAdapter("nested element", componentKind[model.NestableElementModel],
		map[string]adapter[model.NestableElementModel]{
			model.KindNestedComponent.String(): newOccurrenceShim(c.nestedDelegate(func() model.NestableElementModel { return &model.NestedComponentModel{} })),
			model.KindNestedChain.String():     newOccurrenceShim(c.nestedDelegate(func() model.NestableElementModel { return &model.NestedChainModel{} })),
			model.KindNestedRoute.String():     newOccurrenceShim(c.nestedDelegate(func() model.NestableElementModel { return &model.NestedRouteModel{} })),
		})
	if err != nil {
		return nil, err
	}
	c.nested = newKeyRenameShim[model.NestableElementModel](nestedKinds, nestedComponentsKey, childComponentsKey)
	return c, nil
}

// writeHead writes the leading keys shared by parameterized models.
func (c *codecs) writeHead(obj *jsonv.Object, m *model.ParameterizedModel, ctx *writeContext) error {
	obj.Set(nameKey, m.Name)
	obj.Set(descriptionKey, m.Description)
	groups, err := writeList(parameterGroupsKey, m.ParameterGroups, c.groups, ctx)
	if err != nil {
		return err
	}
	obj.Set(parameterGroupsKey, groups)
	return nil
}

// writeTail writes the trailing optional keys and the model properties.
func writeTail(obj *jsonv.Object, m *model.ParameterizedModel, stereotype *model.StereotypeModel, ctx *writeContext) error {
	if stereotype != nil {
		obj.Set(stereotypeKey, writeStereotype(stereotype))
	}
	if m.DisplayModel != nil {
		obj.Set(displayModelKey, writeDisplayModel(m.DisplayModel))
	}
	if m.Deprecation != nil {
		obj.Set(deprecationKey, writeDeprecation(m.Deprecation))
	}
	props, err := writeModelProperties(m.ModelProperties, ctx)
	if err != nil {
		return at(modelPropertiesKey, err)
	}
	obj.Set(modelPropertiesKey, props)
	return nil
}

// readParameterized reads the keys written by writeHead and writeTail,
// except the stereotype.
func (c *codecs) readParameterized(obj *jsonv.Object, m *model.ParameterizedModel, ctx *readContext) error {
	var err error
	if m.Name, err = jsonv.String(obj, nameKey); err != nil {
		return err
	}
	if m.Description, err = jsonv.OptString(obj, descriptionKey); err != nil {
		return err
	}
	if m.ParameterGroups, err = readList(obj, parameterGroupsKey, c.groups, ctx); err != nil {
		return err
	}
	if m.DisplayModel, err = readDisplayModel(obj); err != nil {
		return at(displayModelKey, err)
	}
	if m.Deprecation, err = readDeprecation(obj); err != nil {
		return at(deprecationKey, err)
	}
	if m.ModelProperties, err = readModelProperties(obj, ctx); err != nil {
		return err
	}
	return nil
}

func writeParameter(p *model.ParameterModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	obj.Set(nameKey, p.Name)
	obj.Set(descriptionKey, p.Description)
	t, err := writeType(p.Type, ctx)
	if err != nil {
		return nil, at(typeKey, err)
	}
	obj.Set(typeKey, t)
	obj.Set(requiredKey, p.Required)

	support := p.ExpressionSupport
	if support == "" {
		support = model.ExpressionSupported
	}
	obj.Set(expressionSupportKey, string(support))
	role := p.Role
	if role == "" {
		role = model.RoleBehaviour
	}
	obj.Set(roleKey, string(role))

	if p.DefaultValue != "" {
		obj.Set(defaultValueKey, p.DefaultValue)
	}
	if p.IsComponentID {
		obj.Set(isComponentIDKey, true)
	}
	if len(p.AllowedStereotypes) > 0 {
		obj.Set(allowedStereotypeModelsKey, writeStereotypes(p.AllowedStereotypes))
	}
	if p.DisplayModel != nil {
		obj.Set(displayModelKey, writeDisplayModel(p.DisplayModel))
	}
	if p.Deprecation != nil {
		obj.Set(deprecationKey, writeDeprecation(p.Deprecation))
	}
	props, err := writeModelProperties(p.ModelProperties, ctx)
	if err != nil {
		return nil, at(modelPropertiesKey, err)
	}
	obj.Set(modelPropertiesKey, props)
	return obj, nil
}

func readParameter(obj *jsonv.Object, ctx *readContext) (*model.ParameterModel, error) {
	p := &model.ParameterModel{}
	var err error
	if p.Name, err = jsonv.String(obj, nameKey); err != nil {
		return nil, err
	}
	if p.Description, err = jsonv.OptString(obj, descriptionKey); err != nil {
		return nil, err
	}
	raw, err := jsonv.Value(obj, typeKey)
	if err != nil {
		return nil, err
	}
	if p.Type, err = readType(raw, ctx); err != nil {
		return nil, at(typeKey, err)
	}
	if p.Required, err = jsonv.OptBool(obj, requiredKey, false); err != nil {
		return nil, err
	}

	support, err := jsonv.OptString(obj, expressionSupportKey)
	if err != nil {
		return nil, err
	}
	p.ExpressionSupport = model.ExpressionSupport(support)
	if p.ExpressionSupport == "" {
		p.ExpressionSupport = model.ExpressionSupported
	}
	if !p.ExpressionSupport.Valid() {
		return nil, at(expressionSupportKey, fmt.Errorf("%w: unknown expression support %q", ErrInvalidShape, support))
	}
	role, err := jsonv.OptString(obj, roleKey)
	if err != nil {
		return nil, err
	}
	p.Role = model.ParameterRole(role)
	if p.Role == "" {
		p.Role = model.RoleBehaviour
	}
	if !p.Role.Valid() {
		return nil, at(roleKey, fmt.Errorf("%w: unknown parameter role %q", ErrInvalidShape, role))
	}

	if p.DefaultValue, err = jsonv.OptString(obj, defaultValueKey); err != nil {
		return nil, err
	}
	if p.IsComponentID, err = jsonv.OptBool(obj, isComponentIDKey, false); err != nil {
		return nil, err
	}
	if p.AllowedStereotypes, err = readStereotypes(obj, allowedStereotypeModelsKey); err != nil {
		return nil, err
	}
	if p.DisplayModel, err = readDisplayModel(obj); err != nil {
		return nil, at(displayModelKey, err)
	}
	if p.Deprecation, err = readDeprecation(obj); err != nil {
		return nil, at(deprecationKey, err)
	}
	if p.ModelProperties, err = readModelProperties(obj, ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *codecs) writeGroup(g *model.ParameterGroupModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	obj.Set(nameKey, g.Name)
	obj.Set(descriptionKey, g.Description)
	params, err := writeList(parametersKey, g.Parameters, c.parameters, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(parametersKey, params)

	exclusive := make([]any, 0, len(g.ExclusiveParametersModels))
	for _, e := range g.ExclusiveParametersModels {
		eo := jsonv.NewObject()
		eo.Set(exclusiveNamesKey, jsonv.StringSlice(e.ExclusiveParameterNames))
		eo.Set(isOneRequiredKey, e.OneRequired)
		exclusive = append(exclusive, eo)
	}
	obj.Set(exclusiveParametersKey, exclusive)
	obj.Set(showInDslKey, g.ShowInDsl)
	if g.DisplayModel != nil {
		obj.Set(displayModelKey, writeDisplayModel(g.DisplayModel))
	}
	props, err := writeModelProperties(g.ModelProperties, ctx)
	if err != nil {
		return nil, at(modelPropertiesKey, err)
	}
	obj.Set(modelPropertiesKey, props)
	return obj, nil
}

func (c *codecs) readGroup(obj *jsonv.Object, ctx *readContext) (*model.ParameterGroupModel, error) {
	g := &model.ParameterGroupModel{}
	var err error
	if g.Name, err = jsonv.OptString(obj, nameKey); err != nil {
		return nil, err
	}
	if g.Name == "" {
		g.Name = model.DefaultGroupName
	}
	if g.Description, err = jsonv.OptString(obj, descriptionKey); err != nil {
		return nil, err
	}
	if g.Parameters, err = readList(obj, parametersKey, c.parameters, ctx); err != nil {
		return nil, err
	}
	exclusive, err := jsonv.Objects(obj, exclusiveParametersKey)
	if err != nil {
		return nil, err
	}
	for i, eo := range exclusive {
		names, err := jsonv.Strings(eo, exclusiveNamesKey)
		if err != nil {
			return nil, atIndex(exclusiveParametersKey, i, err)
		}
		oneRequired, err := jsonv.OptBool(eo, isOneRequiredKey, false)
		if err != nil {
			return nil, atIndex(exclusiveParametersKey, i, err)
		}
		g.ExclusiveParametersModels = append(g.ExclusiveParametersModels, model.ExclusiveParametersModel{
			ExclusiveParameterNames: names,
			OneRequired:             oneRequired,
		})
	}
	if g.ShowInDsl, err = jsonv.OptBool(obj, showInDslKey, false); err != nil {
		return nil, err
	}
	if g.DisplayModel, err = readDisplayModel(obj); err != nil {
		return nil, at(displayModelKey, err)
	}
	if g.ModelProperties, err = readModelProperties(obj, ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func writeOutput(o *model.OutputModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	t, err := writeType(o.Type, ctx)
	if err != nil {
		return nil, at(typeKey, err)
	}
	obj.Set(typeKey, t)
	obj.Set(hasDynamicTypeKey, o.HasDynamicType)
	if o.Description != "" {
		obj.Set(descriptionKey, o.Description)
	}
	props, err := writeModelProperties(o.ModelProperties, ctx)
	if err != nil {
		return nil, at(modelPropertiesKey, err)
	}
	obj.Set(modelPropertiesKey, props)
	return obj, nil
}

func readOutput(parent *jsonv.Object, key string, ctx *readContext) (*model.OutputModel, error) {
	obj, err := jsonv.OptObj(parent, key)
	if err != nil || obj == nil {
		return nil, err
	}
	o := &model.OutputModel{}
	raw, err := jsonv.Value(obj, typeKey)
	if err != nil {
		return nil, at(key, err)
	}
	if o.Type, err = readType(raw, ctx); err != nil {
		return nil, at(key, at(typeKey, err))
	}
	if o.HasDynamicType, err = jsonv.OptBool(obj, hasDynamicTypeKey, false); err != nil {
		return nil, at(key, err)
	}
	if o.Description, err = jsonv.OptString(obj, descriptionKey); err != nil {
		return nil, at(key, err)
	}
	if o.ModelProperties, err = readModelProperties(obj, ctx); err != nil {
		return nil, at(key, err)
	}
	return o, nil
}

func setOutput(obj *jsonv.Object, key string, o *model.OutputModel, ctx *writeContext) error {
	if o == nil {
		return nil
	}
	out, err := writeOutput(o, ctx)
	if err != nil {
		return at(key, err)
	}
	obj.Set(key, out)
	return nil
}

func (c *codecs) writeOperation(op *model.OperationModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	if err := c.writeHead(obj, &op.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	if err := setOutput(obj, outputKey, op.Output, ctx); err != nil {
		return nil, err
	}
	if err := setOutput(obj, outputAttributesKey, op.OutputAttributes, ctx); err != nil {
		return nil, err
	}
	obj.Set(blockingKey, op.Blocking)
	obj.Set(transactionalKey, op.Transactional)
	obj.Set(requiresConnectionKey, op.RequiresConnection)
	obj.Set(supportsStreamingKey, op.SupportsStreaming)
	obj.Set(errorsKey, writeErrorRefs(op.Errors))
	obj.Set(notificationsKey, writeNotificationRefs(op.Notifications))
	nested, err := writeList(nestedComponentsKey, op.NestedComponents, c.nested, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(nestedComponentsKey, nested)
	if err := writeTail(obj, &op.ParameterizedModel, op.Stereotype, ctx); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *codecs) readOperation(obj *jsonv.Object, ctx *readContext) (*model.OperationModel, error) {
	op := &model.OperationModel{}
	if err := c.readParameterized(obj, &op.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	var err error
	if op.Output, err = readOutput(obj, outputKey, ctx); err != nil {
		return nil, err
	}
	if op.OutputAttributes, err = readOutput(obj, outputAttributesKey, ctx); err != nil {
		return nil, err
	}
	if op.Blocking, err = jsonv.OptBool(obj, blockingKey, true); err != nil {
		return nil, err
	}
	if op.Transactional, err = jsonv.OptBool(obj, transactionalKey, false); err != nil {
		return nil, err
	}
	if op.RequiresConnection, err = jsonv.OptBool(obj, requiresConnectionKey, false); err != nil {
		return nil, err
	}
	if op.SupportsStreaming, err = jsonv.OptBool(obj, supportsStreamingKey, false); err != nil {
		return nil, err
	}
	if op.Errors, err = readErrorRefs(obj, ctx); err != nil {
		return nil, err
	}
	if op.Notifications, err = readNotificationRefs(obj, ctx); err != nil {
		return nil, err
	}
	if op.NestedComponents, err = readList(obj, nestedComponentsKey, c.nested, ctx); err != nil {
		return nil, err
	}
	if op.Stereotype, err = readStereotype(obj, stereotypeKey); err != nil {
		return nil, err
	}
	return op, nil
}

func (c *codecs) writeCallback(key string, cb *model.SourceCallbackModel, obj *jsonv.Object, ctx *writeContext) error {
	if cb == nil {
		return nil
	}
	cbObj := jsonv.NewObject()
	if err := c.writeHead(cbObj, &cb.ParameterizedModel, ctx); err != nil {
		return at(key, err)
	}
	if err := writeTail(cbObj, &cb.ParameterizedModel, nil, ctx); err != nil {
		return at(key, err)
	}
	obj.Set(key, cbObj)
	return nil
}

func (c *codecs) readCallback(parent *jsonv.Object, key string, ctx *readContext) (*model.SourceCallbackModel, error) {
	obj, err := jsonv.OptObj(parent, key)
	if err != nil || obj == nil {
		return nil, err
	}
	cb := &model.SourceCallbackModel{}
	if err := c.readParameterized(obj, &cb.ParameterizedModel, ctx); err != nil {
		return nil, at(key, err)
	}
	return cb, nil
}

func (c *codecs) writeSource(src *model.SourceModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	if err := c.writeHead(obj, &src.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	if err := setOutput(obj, outputKey, src.Output, ctx); err != nil {
		return nil, err
	}
	if err := setOutput(obj, outputAttributesKey, src.OutputAttributes, ctx); err != nil {
		return nil, err
	}
	obj.Set(transactionalKey, src.Transactional)
	obj.Set(requiresConnectionKey, src.RequiresConnection)
	obj.Set(supportsStreamingKey, src.SupportsStreaming)
	obj.Set(hasResponseKey, src.HasResponse)
	obj.Set(primaryNodeOnlyKey, src.RunsOnPrimaryNodeOnly)
	for _, cb := range []struct {
		key string
		cb  *model.SourceCallbackModel
	}{
		{successCallbackKey, src.SuccessCallback},
		{errorCallbackKey, src.ErrorCallback},
		{terminateCallbackKey, src.TerminateCallback},
	} {
		if err := c.writeCallback(cb.key, cb.cb, obj, ctx); err != nil {
			return nil, err
		}
	}
	obj.Set(errorsKey, writeErrorRefs(src.Errors))
	obj.Set(notificationsKey, writeNotificationRefs(src.Notifications))
	nested, err := writeList(nestedComponentsKey, src.NestedComponents, c.nested, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(nestedComponentsKey, nested)
	if err := writeTail(obj, &src.ParameterizedModel, src.Stereotype, ctx); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *codecs) readSource(obj *jsonv.Object, ctx *readContext) (*model.SourceModel, error) {
	src := &model.SourceModel{}
	if err := c.readParameterized(obj, &src.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	var err error
	if src.Output, err = readOutput(obj, outputKey, ctx); err != nil {
		return nil, err
	}
	if src.OutputAttributes, err = readOutput(obj, outputAttributesKey, ctx); err != nil {
		return nil, err
	}
	if src.Transactional, err = jsonv.OptBool(obj, transactionalKey, false); err != nil {
		return nil, err
	}
	if src.RequiresConnection, err = jsonv.OptBool(obj, requiresConnectionKey, false); err != nil {
		return nil, err
	}
	if src.SupportsStreaming, err = jsonv.OptBool(obj, supportsStreamingKey, false); err != nil {
		return nil, err
	}
	if src.HasResponse, err = jsonv.OptBool(obj, hasResponseKey, false); err != nil {
		return nil, err
	}
	if src.RunsOnPrimaryNodeOnly, err = jsonv.OptBool(obj, primaryNodeOnlyKey, false); err != nil {
		return nil, err
	}
	if src.SuccessCallback, err = c.readCallback(obj, successCallbackKey, ctx); err != nil {
		return nil, err
	}
	if src.ErrorCallback, err = c.readCallback(obj, errorCallbackKey, ctx); err != nil {
		return nil, err
	}
	if src.TerminateCallback, err = c.readCallback(obj, terminateCallbackKey, ctx); err != nil {
		return nil, err
	}
	if src.Errors, err = readErrorRefs(obj, ctx); err != nil {
		return nil, err
	}
	if src.Notifications, err = readNotificationRefs(obj, ctx); err != nil {
		return nil, err
	}
	if src.NestedComponents, err = readList(obj, nestedComponentsKey, c.nested, ctx); err != nil {
		return nil, err
	}
	if src.Stereotype, err = readStereotype(obj, stereotypeKey); err != nil {
		return nil, err
	}
	return src, nil
}

func (c *codecs) writeConstruct(cons *model.ConstructModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	if err := c.writeHead(obj, &cons.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	obj.Set(allowsTopLevelKey, cons.AllowsTopLevelDefinition)
	obj.Set(errorsKey, writeErrorRefs(cons.Errors))
	nested, err := writeList(nestedComponentsKey, cons.NestedComponents, c.nested, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(nestedComponentsKey, nested)
	if err := writeTail(obj, &cons.ParameterizedModel, cons.Stereotype, ctx); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *codecs) readConstruct(obj *jsonv.Object, ctx *readContext) (*model.ConstructModel, error) {
	cons := &model.ConstructModel{}
	if err := c.readParameterized(obj, &cons.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	var err error
	if cons.AllowsTopLevelDefinition, err = jsonv.OptBool(obj, allowsTopLevelKey, false); err != nil {
		return nil, err
	}
	if cons.Errors, err = readErrorRefs(obj, ctx); err != nil {
		return nil, err
	}
	if cons.NestedComponents, err = readList(obj, nestedComponentsKey, c.nested, ctx); err != nil {
		return nil, err
	}
	if cons.Stereotype, err = readStereotype(obj, stereotypeKey); err != nil {
		return nil, err
	}
	return cons, nil
}

func (c *codecs) writeFunction(fn *model.FunctionModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	if err := c.writeHead(obj, &fn.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	if err := setOutput(obj, outputKey, fn.Output, ctx); err != nil {
		return nil, err
	}
	if err := writeTail(obj, &fn.ParameterizedModel, nil, ctx); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *codecs) readFunction(obj *jsonv.Object, ctx *readContext) (*model.FunctionModel, error) {
	fn := &model.FunctionModel{}
	if err := c.readParameterized(obj, &fn.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	var err error
	if fn.Output, err = readOutput(obj, outputKey, ctx); err != nil {
		return nil, err
	}
	return fn, nil
}

func nestedBase(n model.NestableElementModel) (*model.NestedBase, error) {
	switch v := n.(type) {
	case *model.NestedComponentModel:
		return &v.NestedBase, nil
	case *model.NestedChainModel:
		return &v.NestedBase, nil
	case *model.NestedRouteModel:
		return &v.NestedBase, nil
	default:
		return nil, fmt.Errorf("%w: unsupported nested element %T", ErrInvalidShape, n)
	}
}

// nestedDelegate is the canonical adapter of one nested element variant.
func (c *codecs) nestedDelegate(newElement func() model.NestableElementModel) adapter[model.NestableElementModel] {
	return adapterFuncs[model.NestableElementModel]{
		writeFn: func(n model.NestableElementModel, ctx *writeContext) (*jsonv.Object, error) {
			base, err := nestedBase(n)
			if err != nil {
				return nil, err
			}
			return c.writeNested(base, ctx)
		},
		readFn: func(obj *jsonv.Object, ctx *readContext) (model.NestableElementModel, error) {
			n := newElement()
			base, err := nestedBase(n)
			if err != nil {
				return nil, err
			}
			if err := c.readNested(obj, base, ctx); err != nil {
				return nil, err
			}
			return n, nil
		},
	}
}

func (c *codecs) writeNested(n *model.NestedBase, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	if err := c.writeHead(obj, &n.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	obj.Set(minOccursKey, n.MinOccurs)
	if n.MaxOccurs != nil {
		obj.Set(maxOccursKey, *n.MaxOccurs)
	}
	obj.Set(allowedStereotypesKey, writeStereotypes(n.AllowedStereotypes))
	children, err := writeList(nestedComponentsKey, n.NestedComponents, c.nested, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(nestedComponentsKey, children)
	if err := writeTail(obj, &n.ParameterizedModel, nil, ctx); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *codecs) readNested(obj *jsonv.Object, n *model.NestedBase, ctx *readContext) error {
	if err := c.readParameterized(obj, &n.ParameterizedModel, ctx); err != nil {
		return err
	}
	var err error
	if n.MinOccurs, err = jsonv.Int(obj, minOccursKey); err != nil {
		return err
	}
	if n.MaxOccurs, err = jsonv.OptInt(obj, maxOccursKey); err != nil {
		return err
	}
	if n.AllowedStereotypes, err = readStereotypes(obj, allowedStereotypesKey); err != nil {
		return err
	}
	if n.NestedComponents, err = readList(obj, nestedComponentsKey, c.nested, ctx); err != nil {
		return err
	}
	return nil
}

func (c *codecs) writeConfiguration(cfg *model.ConfigurationModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	if err := c.writeHead(obj, &cfg.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	ops, err := writeList(operationsKey, cfg.Operations, c.operations, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(operationsKey, ops)
	sources, err := writeList(messageSourcesKey, cfg.Sources, c.sources, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(messageSourcesKey, sources)
	providers, err := writeList(connectionProvidersKey, cfg.ConnectionProviders, c.providers, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(connectionProvidersKey, providers)
	libs, err := writeList(externalLibrariesKey, cfg.ExternalLibraries, c.externalLib, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(externalLibrariesKey, libs)
	if err := writeTail(obj, &cfg.ParameterizedModel, cfg.Stereotype, ctx); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *codecs) readConfiguration(obj *jsonv.Object, ctx *readContext) (*model.ConfigurationModel, error) {
	cfg := &model.ConfigurationModel{}
	if err := c.readParameterized(obj, &cfg.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	var err error
	if cfg.Operations, err = readList(obj, operationsKey, c.operations, ctx); err != nil {
		return nil, err
	}
	if cfg.Sources, err = readList(obj, messageSourcesKey, c.sources, ctx); err != nil {
		return nil, err
	}
	if cfg.ConnectionProviders, err = readList(obj, connectionProvidersKey, c.providers, ctx); err != nil {
		return nil, err
	}
	if cfg.ExternalLibraries, err = readList(obj, externalLibrariesKey, c.externalLib, ctx); err != nil {
		return nil, err
	}
	if cfg.Stereotype, err = readStereotype(obj, stereotypeKey); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *codecs) writeProvider(p *model.ConnectionProviderModel, ctx *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	if err := c.writeHead(obj, &p.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	mgmt := p.ConnectionManagementType
	if mgmt == "" {
		mgmt = model.ConnectionNone
	}
	obj.Set(connectionMgmtTypeKey, string(mgmt))
	obj.Set(connectivityTestingKey, p.SupportsConnectivityTesting)
	libs, err := writeList(externalLibrariesKey, p.ExternalLibraries, c.externalLib, ctx)
	if err != nil {
		return nil, err
	}
	obj.Set(externalLibrariesKey, libs)
	if err := writeTail(obj, &p.ParameterizedModel, p.Stereotype, ctx); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *codecs) readProvider(obj *jsonv.Object, ctx *readContext) (*model.ConnectionProviderModel, error) {
	p := &model.ConnectionProviderModel{}
	if err := c.readParameterized(obj, &p.ParameterizedModel, ctx); err != nil {
		return nil, err
	}
	mgmt, err := jsonv.OptString(obj, connectionMgmtTypeKey)
	if err != nil {
		return nil, err
	}
	p.ConnectionManagementType = model.ConnectionManagementType(mgmt)
	if p.ConnectionManagementType == "" {
		p.ConnectionManagementType = model.ConnectionNone
	}
	if !p.ConnectionManagementType.Valid() {
		return nil, at(connectionMgmtTypeKey, fmt.Errorf("%w: unknown connection management type %q", ErrInvalidShape, mgmt))
	}
	if p.SupportsConnectivityTesting, err = jsonv.OptBool(obj, connectivityTestingKey, false); err != nil {
		return nil, err
	}
	if p.ExternalLibraries, err = readList(obj, externalLibrariesKey, c.externalLib, ctx); err != nil {
		return nil, err
	}
	if p.Stereotype, err = readStereotype(obj, stereotypeKey); err != nil {
		return nil, err
	}
	return p, nil
}

func writeExternalLibrary(lib model.ExternalLibraryModel, _ *writeContext) (*jsonv.Object, error) {
	obj := jsonv.NewObject()
	obj.Set(nameKey, lib.Name)
	obj.Set(descriptionKey, lib.Description)
	if lib.RegexMatcher != "" {
		obj.Set(regexMatcherKey, lib.RegexMatcher)
	}
	if lib.RequiredClassName != "" {
		obj.Set(requiredClassNameKey, lib.RequiredClassName)
	}
	obj.Set(typeKey, string(lib.Type))
	obj.Set(isOptionalKey, lib.Optional)
	if lib.SuggestedCoordinates != "" {
		obj.Set(suggestedCoordinatesKey, lib.SuggestedCoordinates)
	}
	return obj, nil
}

func readExternalLibrary(obj *jsonv.Object, _ *readContext) (model.ExternalLibraryModel, error) {
	var lib model.ExternalLibraryModel
	var err error
	if lib.Name, err = jsonv.String(obj, nameKey); err != nil {
		return lib, err
	}
	if lib.Description, err = jsonv.OptString(obj, descriptionKey); err != nil {
		return lib, err
	}
	if lib.RegexMatcher, err = jsonv.OptString(obj, regexMatcherKey); err != nil {
		return lib, err
	}
	if lib.RequiredClassName, err = jsonv.OptString(obj, requiredClassNameKey); err != nil {
		return lib, err
	}
	libType, err := jsonv.String(obj, typeKey)
	if err != nil {
		return lib, err
	}
	lib.Type = model.LibraryType(libType)
	if !lib.Type.Valid() {
		return lib, at(typeKey, fmt.Errorf("%w: unknown library type %q", ErrInvalidShape, libType))
	}
	if lib.Optional, err = jsonv.OptBool(obj, isOptionalKey, false); err != nil {
		return lib, err
	}
	if lib.SuggestedCoordinates, err = jsonv.OptString(obj, suggestedCoordinatesKey); err != nil {
		return lib, err
	}
	return lib, nil
}

func writeStereotype(s *model.StereotypeModel) *jsonv.Object {
	obj := jsonv.NewObject()
	obj.Set(typeKey, s.Type)
	obj.Set(namespaceKey, s.Namespace)
	if s.Parent != nil {
		obj.Set(parentKey, writeStereotype(s.Parent))
	}
	return obj
}

func writeStereotypes(ss []*model.StereotypeModel) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, writeStereotype(s))
	}
	return out
}

func readStereotype(parent *jsonv.Object, key string) (*model.StereotypeModel, error) {
	obj, err := jsonv.OptObj(parent, key)
	if err != nil || obj == nil {
		return nil, err
	}
	s := &model.StereotypeModel{}
	if s.Type, err = jsonv.String(obj, typeKey); err != nil {
		return nil, at(key, err)
	}
	if s.Namespace, err = jsonv.String(obj, namespaceKey); err != nil {
		return nil, at(key, err)
	}
	if s.Parent, err = readStereotype(obj, parentKey); err != nil {
		return nil, at(key, err)
	}
	return s, nil
}

func readStereotypes(parent *jsonv.Object, key string) ([]*model.StereotypeModel, error) {
	objs, err := jsonv.Objects(parent, key)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, nil
	}
	out := make([]*model.StereotypeModel, 0, len(objs))
	for i, o := range objs {
		holder := jsonv.NewObject()
		holder.Set(stereotypeKey, o)
		s, err := readStereotype(holder, stereotypeKey)
		if err != nil {
			return nil, atIndex(key, i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func writeDisplayModel(d *model.DisplayModel) *jsonv.Object {
	obj := jsonv.NewObject()
	if d.DisplayName != "" {
		obj.Set(displayNameKey, d.DisplayName)
	}
	if d.Summary != "" {
		obj.Set(summaryKey, d.Summary)
	}
	if d.Example != "" {
		obj.Set(exampleKey, d.Example)
	}
	return obj
}

func readDisplayModel(parent *jsonv.Object) (*model.DisplayModel, error) {
	obj, err := jsonv.OptObj(parent, displayModelKey)
	if err != nil || obj == nil {
		return nil, err
	}
	d := &model.DisplayModel{}
	if d.DisplayName, err = jsonv.OptString(obj, displayNameKey); err != nil {
		return nil, err
	}
	if d.Summary, err = jsonv.OptString(obj, summaryKey); err != nil {
		return nil, err
	}
	if d.Example, err = jsonv.OptString(obj, exampleKey); err != nil {
		return nil, err
	}
	return d, nil
}

func writeDeprecation(d *model.DeprecationModel) *jsonv.Object {
	obj := jsonv.NewObject()
	obj.Set(messageKey, d.Message)
	obj.Set(deprecatedSinceKey, d.DeprecatedSince)
	if d.ToRemoveIn != "" {
		obj.Set(toRemoveInKey, d.ToRemoveIn)
	}
	return obj
}

func readDeprecation(parent *jsonv.Object) (*model.DeprecationModel, error) {
	obj, err := jsonv.OptObj(parent, deprecationKey)
	if err != nil || obj == nil {
		return nil, err
	}
	d := &model.DeprecationModel{}
	if d.Message, err = jsonv.String(obj, messageKey); err != nil {
		return nil, err
	}
	if d.DeprecatedSince, err = jsonv.OptString(obj, deprecatedSinceKey); err != nil {
		return nil, err
	}
	if d.ToRemoveIn, err = jsonv.OptString(obj, toRemoveInKey); err != nil {
		return nil, err
	}
	return d, nil
}
