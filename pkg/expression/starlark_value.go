// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"

	"carvel.dev/graft/pkg/orderedmap"
)

type StarlarkValueToGoValueConversion interface {
	AsGoValue() interface{}
}

// StarlarkValue converts a Starlark value back into its plain Go
// counterpart. Dicts and structs become ordered maps (insertion order
// kept), iterables become slices.
type StarlarkValue struct {
	val starlark.Value
}

func NewStarlarkValue(val starlark.Value) StarlarkValue {
	return StarlarkValue{val}
}

func (e StarlarkValue) AsGoValue() interface{} {
	return e.asInterface(e.val)
}

func (e StarlarkValue) asInterface(val starlark.Value) interface{} {
	if obj, ok := val.(StarlarkValueToGoValueConversion); ok {
		return obj.AsGoValue()
	}

	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return nil

	case starlark.Bool:
		return bool(typedVal)

	case starlark.String:
		return string(typedVal)

	case starlark.Int:
		i1, ok := typedVal.Int64()
		if ok {
			return i1
		}
		i2, ok := typedVal.Uint64()
		if ok {
			return i2
		}
		panic(fmt.Sprintf("int value out of range: %s", typedVal.String()))

	case starlark.Float:
		return float64(typedVal)

	case *starlark.Dict:
		return e.dictAsInterface(typedVal)

	case *StarlarkStruct:
		return e.structAsInterface(typedVal)

	case *starlark.List:
		return e.iterableAsInterface(typedVal)

	case starlark.Tuple:
		return e.iterableAsInterface(typedVal)

	case *starlark.Set:
		return e.iterableAsInterface(typedVal)

	case *starlarkstruct.Struct:
		return e.nativeStructAsInterface(typedVal)

	default:
		panic(fmt.Sprintf("unknown type %T for conversion to go value", val))
	}
}

func (e StarlarkValue) dictAsInterface(val *starlark.Dict) interface{} {
	result := orderedmap.NewMap()
	for _, item := range val.Items() {
		if item.Len() != 2 {
			panic("dict item is not KV")
		}
		key, ok := e.asInterface(item.Index(0)).(string)
		if !ok {
			panic(fmt.Sprintf("expected dict key to be a string, but was %s", item.Index(0).Type()))
		}
		result.Set(key, e.asInterface(item.Index(1)))
	}
	return result
}

func (e StarlarkValue) nativeStructAsInterface(val *starlarkstruct.Struct) interface{} {
	// struct's ToStringDict uses map, hence ordering is not deterministic
	result := orderedmap.NewMap()
	for _, key := range val.AttrNames() {
		v, err := val.Attr(key)
		if err != nil {
			panic("expected Attr() to succeed for *starlarkstruct.Struct")
		}
		result.Set(key, e.asInterface(v))
	}
	return result
}

func (e StarlarkValue) structAsInterface(val *StarlarkStruct) interface{} {
	result := orderedmap.NewMap()
	val.data.Iterate(func(k string, v interface{}) {
		result.Set(k, e.asInterface(v.(starlark.Value)))
	})
	return result
}

func (e StarlarkValue) iterableAsInterface(iterable starlark.Iterable) interface{} {
	iter := iterable.Iterate()
	defer iter.Done()

	result := []interface{}{}
	var x starlark.Value
	for iter.Next(&x) {
		result = append(result, e.asInterface(x))
	}
	return result
}
