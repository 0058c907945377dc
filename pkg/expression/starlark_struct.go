// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"

	"carvel.dev/graft/pkg/orderedmap"
)

// StarlarkStruct exposes a map of values to expressions with both
// attribute access (node.properties) and mapping access
// (node["properties"]).
type StarlarkStruct struct {
	data *orderedmap.Map // [string]starlark.Value
}

func NewStarlarkStruct(goStringKeyToStarlarkValue *orderedmap.Map) *StarlarkStruct {
	return &StarlarkStruct{data: goStringKeyToStarlarkValue}
}

var _ starlark.Value = (*StarlarkStruct)(nil)
var _ starlark.HasAttrs = (*StarlarkStruct)(nil)
var _ starlark.IterableMapping = (*StarlarkStruct)(nil)
var _ starlark.Sequence = (*StarlarkStruct)(nil)

func (s *StarlarkStruct) String() string        { return "struct(...)" }
func (s *StarlarkStruct) Type() string          { return "struct" }
func (s *StarlarkStruct) Freeze()               {}
func (s *StarlarkStruct) Truth() starlark.Bool  { return s.data.Len() > 0 }
func (s *StarlarkStruct) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: struct") }
func (s *StarlarkStruct) Len() int              { return s.data.Len() }

// Attr returns (nil, nil) if attribute is not present
func (s *StarlarkStruct) Attr(name string) (starlark.Value, error) {
	val, found := s.data.Get(name)
	if found {
		return val.(starlark.Value), nil
	}
	return nil, nil
}

// AttrNames callers must not modify the result.
func (s *StarlarkStruct) AttrNames() []string {
	return s.data.Keys()
}

func (s *StarlarkStruct) Get(key starlark.Value) (starlark.Value, bool, error) {
	keyStr, ok := key.(starlark.String)
	if !ok {
		return nil, false, fmt.Errorf("expected key `%s` to be a string but is a %s", key, key.Type())
	}
	val, found := s.data.Get(string(keyStr))
	if found {
		return val.(starlark.Value), true, nil
	}
	return starlark.None, false, nil
}

func (s *StarlarkStruct) Iterate() starlark.Iterator {
	return &starlarkStructIterator{keys: s.data.Keys()}
}

func (s *StarlarkStruct) Items() (items []starlark.Tuple) {
	s.data.Iterate(func(key string, val interface{}) {
		items = append(items, starlark.Tuple{
			starlark.String(key),
			val.(starlark.Value),
		})
	})
	return
}

type starlarkStructIterator struct {
	keys []string
	idx  int
}

var _ starlark.Iterator = &starlarkStructIterator{}

func (s *starlarkStructIterator) Next(p *starlark.Value) bool {
	if s.idx < len(s.keys) {
		*p = starlark.String(s.keys[s.idx])
		s.idx++
		return true
	}
	return false
}

func (s *starlarkStructIterator) Done() {}
