// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodetype

import (
	"time"

	"carvel.dev/graft/pkg/orderedmap"
)

// ValueMatchesType reports whether a value has the shape its property
// declaration names. A nil value always matches; rejecting nil against
// a non-nil default is a separate concern of the validation gate.
func ValueMatchesType(propDef *PropertyDefinition, val interface{}) bool {
	if val == nil {
		return true
	}

	switch propDef.Type {
	case "", "any":
		return true

	case "string", "text":
		_, ok := val.(string)
		return ok

	case "boolean", "bool":
		_, ok := val.(bool)
		return ok

	case "integer", "int":
		switch val.(type) {
		case int, int64, uint, uint64:
			return true
		}
		return false

	case "float", "number":
		switch val.(type) {
		case float64, int, int64, uint, uint64:
			return true
		}
		return false

	case "array":
		_, ok := val.([]interface{})
		return ok

	case "map":
		switch val.(type) {
		case *orderedmap.Map, map[string]interface{}:
			return true
		}
		return false

	case "DateTime", "datetime":
		switch typedVal := val.(type) {
		case time.Time:
			return true
		case string:
			_, err := time.Parse(time.RFC3339, typedVal)
			return err == nil
		}
		return false

	default:
		// unknown declared types are treated as opaque
		return true
	}
}

// MatchesSelectableValues reports whether a value (or every element of
// a value list) is among the declared select-box option keys. Values of
// properties without declared options always match.
func MatchesSelectableValues(propDef *PropertyDefinition, val interface{}) bool {
	if len(propDef.SelectableValues) == 0 || val == nil {
		return true
	}

	isOption := func(v interface{}) bool {
		str, ok := v.(string)
		if !ok {
			return false
		}
		for _, option := range propDef.SelectableValues {
			if option == str {
				return true
			}
		}
		return false
	}

	if list, ok := val.([]interface{}); ok {
		for _, v := range list {
			if !isOption(v) {
				return false
			}
		}
		return true
	}
	return isOption(val)
}

// ReferenceTargets normalizes a reference value into a list of node
// identifiers. Kind reference accepts a single identifier; kind
// references accepts a list of identifiers or a single one.
func ReferenceTargets(kind Kind, val interface{}) ([]string, bool) {
	switch typedVal := val.(type) {
	case string:
		return []string{typedVal}, true

	case []interface{}:
		if kind != KindReferences {
			return nil, false
		}
		targets := make([]string, 0, len(typedVal))
		for _, v := range typedVal {
			str, ok := v.(string)
			if !ok {
				return nil, false
			}
			targets = append(targets, str)
		}
		return targets, true

	default:
		return nil, false
	}
}
