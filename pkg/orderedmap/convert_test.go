// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"carvel.dev/graft/pkg/orderedmap"
)

func TestFromUnorderedMaps(t *testing.T) {
	t.Run("sorts keys for determinism", func(t *testing.T) {
		input := map[string]interface{}{"b": 2, "a": 1, "c": 3}

		result := orderedmap.Conversion{Object: input}.FromUnorderedMaps()

		m, ok := result.(*orderedmap.Map)
		require.True(t, ok)
		require.Equal(t, []string{"a", "b", "c"}, m.Keys())
	})

	t.Run("does not modify nested input", func(t *testing.T) {
		inputA := map[string]interface{}{
			"key": []interface{}{map[string]interface{}{"nestedKey": "nestedValue"}},
		}
		inputB := map[string]interface{}{
			"key": []interface{}{map[string]interface{}{"nestedKey": "nestedValue"}},
		}

		orderedmap.Conversion{Object: inputA}.FromUnorderedMaps()

		require.Equal(t, inputB, inputA)
	})

	t.Run("keeps order of already ordered subtrees", func(t *testing.T) {
		inner := orderedmap.NewMap()
		inner.Set("z", 1)
		inner.Set("a", 2)
		input := map[string]interface{}{"sub": inner}

		result := orderedmap.Conversion{Object: input}.FromUnorderedMaps()

		m := result.(*orderedmap.Map)
		sub, found := m.Get("sub")
		require.True(t, found)
		require.Equal(t, []string{"z", "a"}, sub.(*orderedmap.Map).Keys())
	})
}

func TestAsUnorderedStringMaps(t *testing.T) {
	m := orderedmap.NewMap()
	m.Set("name", "hero")
	m.Set("tags", []interface{}{"a", "b"})

	result := orderedmap.Conversion{Object: m}.AsUnorderedStringMaps()

	require.Equal(t, map[string]interface{}{
		"name": "hero",
		"tags": []interface{}{"a", "b"},
	}, result)
}
