// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"

	"carvel.dev/graft/pkg/nodetype"
	"carvel.dev/graft/pkg/orderedmap"
)

const hiddenMetaProperty = "hidden"

// metaPropertyNames is the closed set of property names the engine
// handles itself, through dedicated store setters, instead of the
// node-type-declared property map.
var metaPropertyNames = []string{hiddenMetaProperty}

// PropertiesAndReferences partitions evaluated property values by their
// declared kind, ready to be validated and applied.
type PropertiesAndReferences struct {
	Properties *orderedmap.Map
	References *orderedmap.Map
}

// Split partitions an evaluated property map by the property kind the
// node type declares. Names the type does not declare keep their
// values and are rejected later, by the Require methods. Property names
// carrying the reserved '_' prefix are authoring errors and fail
// immediately.
func Split(evaluated *orderedmap.Map, typeName string, types *nodetype.Registry) (PropertiesAndReferences, error) {
	result := PropertiesAndReferences{
		Properties: orderedmap.NewMap(),
		References: orderedmap.NewMap(),
	}

	err := evaluated.IterateErr(func(propName string, val interface{}) error {
		if strings.HasPrefix(propName, "_") {
			return fmt.Errorf("Property name '%s' uses the reserved '_' prefix%s", propName, metaAliasHint(propName))
		}

		propDef, found := types.PropertyDefinition(typeName, propName)
		if found && propDef.Kind() != nodetype.KindProperty {
			result.References.Set(propName, val)
			return nil
		}
		result.Properties.Set(propName, val)
		return nil
	})
	if err != nil {
		return PropertiesAndReferences{}, err
	}

	return result, nil
}

// RequireValidProperties filters Properties down to the entries the
// node type accepts. Each dropped property is recorded as one caught
// exception; surviving entries keep their order.
func (pr PropertiesAndReferences) RequireValidProperties(typeName string, types *nodetype.Registry, errs *CaughtExceptions) *orderedmap.Map {
	valid := orderedmap.NewMap()

	pr.Properties.Iterate(func(propName string, val interface{}) {
		reject := func(err error) {
			errs.Add(NewCaughtException(err).
				WithOrigin(propertyOrigin(propName, typeName)).
				WithCause(CausePropertyIgnored))
		}

		propDef, found := types.PropertyDefinition(typeName, propName)
		if !found {
			reject(fmt.Errorf("Property '%s' is not declared by node type '%s'", propName, typeName))
			return
		}

		if val == nil && propDef.Default != nil {
			reject(fmt.Errorf("Property '%s' must not be null (node type '%s' declares a default)", propName, typeName))
			return
		}

		if !nodetype.ValueMatchesType(propDef, val) {
			reject(fmt.Errorf("Property '%s' must be of type '%s', but was %T", propName, propDef.Type, val))
			return
		}

		if !nodetype.MatchesSelectableValues(propDef, val) {
			reject(fmt.Errorf("Property '%s' must be one of %v", propName, propDef.SelectableValues))
			return
		}

		valid.Set(propName, val)
	})

	return valid
}

// RequireValidReferences filters References the same way properties are
// filtered: an undeclared name drops the whole entry, an identifier
// that resolves to no node drops that identifier only. Surviving
// targets keep their order.
func (pr PropertiesAndReferences) RequireValidReferences(typeName string, types *nodetype.Registry, store Store, errs *CaughtExceptions) *orderedmap.Map {
	valid := orderedmap.NewMap()

	pr.References.Iterate(func(refName string, val interface{}) {
		reject := func(err error) {
			errs.Add(NewCaughtException(err).
				WithOrigin(propertyOrigin(refName, typeName)).
				WithCause(CauseReferenceIgnored))
		}

		propDef, found := types.PropertyDefinition(typeName, refName)
		if !found {
			reject(fmt.Errorf("Reference '%s' is not declared by node type '%s'", refName, typeName))
			return
		}

		if val == nil {
			valid.Set(refName, []string{})
			return
		}

		targets, ok := nodetype.ReferenceTargets(propDef.Kind(), val)
		if !ok {
			reject(fmt.Errorf("Reference '%s' expects %s, but was %T", refName, referenceShape(propDef.Kind()), val))
			return
		}

		resolved := make([]string, 0, len(targets))
		for _, target := range targets {
			if !store.HasNode(target) {
				reject(fmt.Errorf("Reference '%s' points at unknown node '%s'", refName, target))
				continue
			}
			resolved = append(resolved, target)
		}

		valid.Set(refName, resolved)
	})

	return valid
}

// ExtractMetaProperties removes the engine-level property names from an
// evaluated property map and returns them separately. The input map is
// modified in place.
func ExtractMetaProperties(evaluated *orderedmap.Map) *orderedmap.Map {
	metas := orderedmap.NewMap()
	for _, name := range metaPropertyNames {
		if val, found := evaluated.Get(name); found {
			metas.Set(name, val)
			evaluated.Delete(name)
		}
	}
	return metas
}

func metaAliasHint(propName string) string {
	trimmed := strings.TrimPrefix(propName, "_")
	for _, name := range metaPropertyNames {
		if name == trimmed {
			return fmt.Sprintf(" (use '%s' instead)", name)
		}
	}
	return ""
}

func referenceShape(kind nodetype.Kind) string {
	if kind == nodetype.KindReference {
		return "a single node identifier"
	}
	return "a list of node identifiers"
}
