package model

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the structural invariants the persistence layer relies
// on. Every violation is reported, not just the first one.
func Validate(e *ExtensionModel) error {
	var result *multierror.Error
	if e == nil {
		return fmt.Errorf("extension model cannot be nil")
	}
	if e.Name == "" {
		result = multierror.Append(result, fmt.Errorf("extension name cannot be empty"))
	}
	if e.Category != "" && !e.Category.Valid() {
		result = multierror.Append(result, fmt.Errorf("unknown category %q", e.Category))
	}

	seenTypes := make(map[string]bool)
	for i, t := range e.Types {
		switch {
		case t == nil:
			result = multierror.Append(result, fmt.Errorf("types[%d] is nil", i))
		case !t.HasID():
			result = multierror.Append(result, fmt.Errorf("types[%d] has no type id", i))
		case seenTypes[t.ID]:
			result = multierror.Append(result, fmt.Errorf("duplicate type id %q in types catalog", t.ID))
		default:
			seenTypes[t.ID] = true
		}
	}
	for i, it := range e.ImportedTypes {
		switch {
		case it.Type == nil:
			result = multierror.Append(result, fmt.Errorf("importedTypes[%d] is nil", i))
		case !it.Type.HasID():
			result = multierror.Append(result, fmt.Errorf("importedTypes[%d] has no type id", i))
		case seenTypes[it.Type.ID]:
			result = multierror.Append(result, fmt.Errorf("duplicate type id %q in imported types", it.Type.ID))
		default:
			seenTypes[it.Type.ID] = true
		}
	}

	result = checkUniqueNames(result, "operation", e.Operations)
	result = checkUniqueNames(result, "source", e.Sources)
	result = checkUniqueNames(result, "configuration", e.Configurations)
	result = checkUniqueNames(result, "construct", e.Constructs)
	result = checkUniqueNames(result, "function", e.Functions)
	result = checkUniqueNames(result, "connection provider", e.ConnectionProviders)

	seenErrors := make(map[string]bool)
	for _, err := range e.Errors {
		if _, _, perr := ParseIdentifier(err.Identifier()); perr != nil {
			result = multierror.Append(result, perr)
			continue
		}
		if seenErrors[err.Identifier()] {
			result = multierror.Append(result, fmt.Errorf("duplicate error %s", err.Identifier()))
		}
		seenErrors[err.Identifier()] = true
		if cyclic(err) {
			result = multierror.Append(result, fmt.Errorf("error %s has a cyclic parent chain", err.Identifier()))
		}
	}

	seenNotifications := make(map[string]bool)
	for _, n := range e.Notifications {
		if seenNotifications[n.Identifier()] {
			result = multierror.Append(result, fmt.Errorf("duplicate notification %s", n.Identifier()))
		}
		seenNotifications[n.Identifier()] = true
	}

	return result.ErrorOrNil()
}

func checkUniqueNames[T interface{ ModelName() string }](result *multierror.Error, what string, items []T) *multierror.Error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		name := item.ModelName()
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("%s with empty name", what))
			continue
		}
		if seen[name] {
			result = multierror.Append(result, fmt.Errorf("duplicate %s %q", what, name))
		}
		seen[name] = true
	}
	return result
}

func cyclic(e *ErrorModel) bool {
	seen := make(map[*ErrorModel]bool)
	for cur := e; cur != nil; cur = cur.Parent {
		if seen[cur] {
			return true
		}
		seen[cur] = true
	}
	return false
}
