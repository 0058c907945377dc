// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodetype

import (
	"fmt"

	semver "github.com/hashicorp/go-version"

	"carvel.dev/graft/pkg/orderedmap"
	"carvel.dev/graft/pkg/spell"
	"carvel.dev/graft/pkg/yamlconf"
)

const minimumRequiredVersionKey = "minimumRequiredVersion"

// FromYAML loads node type definitions from a single YAML document
// holding a mapping of type name to definition. The reserved top-level
// key minimumRequiredVersion rejects the file when the running engine
// is older than what the file demands.
func FromYAML(bs []byte, file string, engineVersion string) (*Registry, error) {
	tree, err := yamlconf.Parse(bs, file)
	if err != nil {
		return nil, err
	}

	root, ok := tree.Root.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("Expected node types file '%s' to hold a mapping of type names to definitions", file)
	}

	registry := NewRegistry()

	err = root.IterateErr(func(name string, rawDef interface{}) error {
		if name == minimumRequiredVersionKey {
			return checkMinimumVersion(rawDef, engineVersion, file)
		}

		def, err := parseDefinition(name, rawDef)
		if err != nil {
			return err
		}
		return registry.Add(def)
	})
	if err != nil {
		return nil, err
	}

	return registry, nil
}

func checkMinimumVersion(rawVal interface{}, engineVersion, file string) error {
	str, ok := rawVal.(string)
	if !ok {
		return fmt.Errorf("Expected %s to be a string, but was %T", minimumRequiredVersionKey, rawVal)
	}

	minVer, err := semver.NewVersion(str)
	if err != nil {
		return fmt.Errorf("Parsing %s: %s", minimumRequiredVersionKey, err)
	}

	curVer, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("Parsing engine version '%s': %s", engineVersion, err)
	}

	if curVer.LessThan(minVer) {
		return fmt.Errorf("Node types file '%s' requires version '%s' or above (currently '%s')",
			file, minVer, curVer)
	}
	return nil
}

func parseDefinition(name string, rawDef interface{}) (*Definition, error) {
	def := &Definition{Name: name, Properties: map[string]*PropertyDefinition{}}

	if rawDef == nil {
		return def, nil
	}

	defMap, ok := rawDef.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("Expected node type '%s' to be a mapping, but was %T", name, rawDef)
	}

	err := defMap.IterateErr(func(key string, val interface{}) error {
		switch key {
		case "superTypes":
			supers, err := parseSuperTypes(name, val)
			if err != nil {
				return err
			}
			def.SuperTypes = supers
			return nil

		case "abstract":
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("Expected abstract of node type '%s' to be a boolean", name)
			}
			def.Abstract = b
			return nil

		case "properties":
			return parseProperties(name, val, def)

		default:
			return fmt.Errorf("Unknown key '%s' in node type '%s' (allowed: superTypes, abstract, properties)%s",
				key, name, spellingHint(key, []string{"superTypes", "abstract", "properties"}))
		}
	})
	if err != nil {
		return nil, err
	}

	return def, nil
}

func spellingHint(key string, allowed []string) string {
	if nearest, ok := spell.Nearest(key, allowed); ok {
		return fmt.Sprintf(" (hint: did you mean '%s'?)", nearest)
	}
	return ""
}

func parseSuperTypes(name string, val interface{}) ([]string, error) {
	switch typedVal := val.(type) {
	case nil:
		return nil, nil

	case []interface{}:
		supers := make([]string, 0, len(typedVal))
		for _, v := range typedVal {
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("Expected superTypes of node type '%s' to list type names", name)
			}
			supers = append(supers, str)
		}
		return supers, nil

	case *orderedmap.Map:
		// mapping form: a false value unplugs the supertype
		var supers []string
		err := typedVal.IterateErr(func(superName string, enabled interface{}) error {
			b, ok := enabled.(bool)
			if !ok {
				return fmt.Errorf("Expected superTypes entry '%s' of node type '%s' to be a boolean", superName, name)
			}
			if b {
				supers = append(supers, superName)
			}
			return nil
		})
		return supers, err

	default:
		return nil, fmt.Errorf("Expected superTypes of node type '%s' to be a list or mapping, but was %T", name, val)
	}
}

func parseProperties(name string, val interface{}, def *Definition) error {
	if val == nil {
		return nil
	}

	propsMap, ok := val.(*orderedmap.Map)
	if !ok {
		return fmt.Errorf("Expected properties of node type '%s' to be a mapping, but was %T", name, val)
	}

	return propsMap.IterateErr(func(propName string, rawPropDef interface{}) error {
		propDef, err := parsePropertyDefinition(name, propName, rawPropDef)
		if err != nil {
			return err
		}
		def.Properties[propName] = propDef
		return nil
	})
}

func parsePropertyDefinition(typeName, propName string, rawPropDef interface{}) (*PropertyDefinition, error) {
	propDef := &PropertyDefinition{}

	if rawPropDef == nil {
		return propDef, nil
	}

	propDefMap, ok := rawPropDef.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("Expected property '%s' of node type '%s' to be a mapping, but was %T",
			propName, typeName, rawPropDef)
	}

	err := propDefMap.IterateErr(func(key string, val interface{}) error {
		switch key {
		case "type":
			str, ok := val.(string)
			if !ok {
				return fmt.Errorf("Expected type of property '%s' in node type '%s' to be a string", propName, typeName)
			}
			propDef.Type = str
			return nil

		case "default":
			propDef.Default = val
			return nil

		case "selectableValues":
			list, ok := val.([]interface{})
			if !ok {
				return fmt.Errorf("Expected selectableValues of property '%s' in node type '%s' to be a list", propName, typeName)
			}
			for _, v := range list {
				str, ok := v.(string)
				if !ok {
					return fmt.Errorf("Expected selectableValues of property '%s' in node type '%s' to list option keys", propName, typeName)
				}
				propDef.SelectableValues = append(propDef.SelectableValues, str)
			}
			return nil

		default:
			return fmt.Errorf("Unknown key '%s' in property '%s' of node type '%s' (allowed: type, default, selectableValues)%s",
				key, propName, typeName, spellingHint(key, []string{"type", "default", "selectableValues"}))
		}
	})
	if err != nil {
		return nil, err
	}

	return propDef, nil
}
