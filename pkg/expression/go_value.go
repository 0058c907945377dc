// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"

	"carvel.dev/graft/pkg/orderedmap"
)

type GoValueToStarlarkValueConversion interface {
	AsStarlarkValue() starlark.Value
}

// GoValue converts a plain Go value into its Starlark counterpart.
// With mapIsStruct set, maps become attribute-accessible structs
// (recursively) instead of dicts.
type GoValue struct {
	val         interface{}
	mapIsStruct bool
}

func NewGoValue(val interface{}, mapIsStruct bool) GoValue {
	return GoValue{val, mapIsStruct}
}

func (e GoValue) AsStarlarkValue() starlark.Value {
	return e.asStarlarkValue(e.val)
}

func (e GoValue) asStarlarkValue(val interface{}) starlark.Value {
	if obj, ok := val.(GoValueToStarlarkValueConversion); ok {
		return obj.AsStarlarkValue()
	}

	switch typedVal := val.(type) {
	case nil:
		return starlark.None

	case bool:
		return starlark.Bool(typedVal)

	case string:
		return starlark.String(typedVal)

	case int:
		return starlark.MakeInt(typedVal)

	case int64:
		return starlark.MakeInt64(typedVal)

	case uint:
		return starlark.MakeUint(typedVal)

	case uint64:
		return starlark.MakeUint64(typedVal)

	case float64:
		return starlark.Float(typedVal)

	case *orderedmap.Map:
		return e.mapAsStarlarkValue(typedVal)

	case map[string]interface{}:
		ordered := orderedmap.Conversion{Object: typedVal}.FromUnorderedMaps()
		return e.mapAsStarlarkValue(ordered.(*orderedmap.Map))

	case []interface{}:
		return e.listAsStarlarkValue(typedVal)

	case []string:
		result := make([]interface{}, len(typedVal))
		for i, v := range typedVal {
			result[i] = v
		}
		return e.listAsStarlarkValue(result)

	default:
		panic(fmt.Sprintf("unknown type %T for conversion to starlark value", val))
	}
}

func (e GoValue) mapAsStarlarkValue(val *orderedmap.Map) starlark.Value {
	if e.mapIsStruct {
		data := orderedmap.NewMap()
		val.Iterate(func(k string, v interface{}) {
			data.Set(k, e.asStarlarkValue(v))
		})
		return NewStarlarkStruct(data)
	}

	result := &starlark.Dict{}
	val.Iterate(func(k string, v interface{}) {
		result.SetKey(starlark.String(k), e.asStarlarkValue(v))
	})
	return result
}

func (e GoValue) listAsStarlarkValue(val []interface{}) *starlark.List {
	result := []starlark.Value{}
	for _, v := range val {
		result = append(result, e.asStarlarkValue(v))
	}
	return starlark.NewList(result)
}
