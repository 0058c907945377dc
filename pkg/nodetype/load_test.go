// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodetype_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"carvel.dev/graft/pkg/nodetype"
)

func TestFromYAML(t *testing.T) {
	typesYAML := `
minimumRequiredVersion: 0.1.0

graft:document:
  properties:
    title:
      type: string
    uriPathSegment:
      type: string

acme.site:page:
  superTypes: [graft:document]
  properties:
    layout:
      type: string
      default: default
      selectableValues: [default, landing]
    related:
      type: references

acme.site:special:
  superTypes:
    acme.site:page: true
    graft:document: false
`

	t.Run("loads definitions with supertypes and properties", func(t *testing.T) {
		registry, err := nodetype.FromYAML([]byte(typesYAML), "types.yml", "0.1.0")
		require.NoError(t, err)

		def, found := registry.Get("acme.site:page")
		require.True(t, found)
		require.Equal(t, []string{"graft:document"}, def.SuperTypes)

		layout := def.Properties["layout"]
		require.Equal(t, "string", layout.Type)
		require.Equal(t, "default", layout.Default)
		require.Equal(t, []string{"default", "landing"}, layout.SelectableValues)

		require.Equal(t, nodetype.KindReferences, def.Properties["related"].Kind())

		// mapping form of superTypes keeps only enabled entries
		special, found := registry.Get("acme.site:special")
		require.True(t, found)
		require.Equal(t, []string{"acme.site:page"}, special.SuperTypes)
	})

	t.Run("rejects files demanding a newer engine", func(t *testing.T) {
		_, err := nodetype.FromYAML([]byte("minimumRequiredVersion: 99.0.0\n"), "types.yml", "0.1.0")
		require.Error(t, err)
		require.Contains(t, err.Error(), "requires version '99.0.0' or above")
	})

	t.Run("rejects unknown definition keys", func(t *testing.T) {
		_, err := nodetype.FromYAML([]byte("acme.site:page:\n  propertes: {}\n"), "types.yml", "0.1.0")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Unknown key 'propertes'")
		require.Contains(t, err.Error(), "(hint: did you mean 'properties'?)")
	})

	t.Run("rejects non-mapping files", func(t *testing.T) {
		_, err := nodetype.FromYAML([]byte("- a\n- b\n"), "types.yml", "0.1.0")
		require.Error(t, err)
		require.Contains(t, err.Error(), "mapping of type names")
	})
}

func TestValueMatchesType(t *testing.T) {
	examples := []struct {
		declared string
		val      interface{}
		matches  bool
	}{
		{"string", "hello", true},
		{"string", 1, false},
		{"boolean", true, true},
		{"boolean", "true", false},
		{"integer", int64(3), true},
		{"integer", 0.5, false},
		{"float", 0.5, true},
		{"float", int64(2), true},
		{"array", []interface{}{1}, true},
		{"array", "nope", false},
		{"map", map[string]interface{}{}, true},
		{"DateTime", "2026-08-22T10:00:00Z", true},
		{"DateTime", "not a date", false},
		{"any", struct{}{}, true},
		{"", "anything goes", true},
		{"string", nil, true}, // nil matches; the default rule is separate
	}

	for _, example := range examples {
		propDef := &nodetype.PropertyDefinition{Type: example.declared}
		require.Equal(t, example.matches, nodetype.ValueMatchesType(propDef, example.val),
			"declared=%q val=%v", example.declared, example.val)
	}
}

func TestMatchesSelectableValues(t *testing.T) {
	propDef := &nodetype.PropertyDefinition{Type: "string", SelectableValues: []string{"default", "landing"}}

	require.True(t, nodetype.MatchesSelectableValues(propDef, "landing"))
	require.False(t, nodetype.MatchesSelectableValues(propDef, "wide"))
	require.True(t, nodetype.MatchesSelectableValues(propDef, []interface{}{"default", "landing"}))
	require.False(t, nodetype.MatchesSelectableValues(propDef, []interface{}{"default", "wide"}))
	require.True(t, nodetype.MatchesSelectableValues(&nodetype.PropertyDefinition{Type: "string"}, "anything"))
}

func TestReferenceTargets(t *testing.T) {
	targets, ok := nodetype.ReferenceTargets(nodetype.KindReference, "node-a")
	require.True(t, ok)
	require.Equal(t, []string{"node-a"}, targets)

	_, ok = nodetype.ReferenceTargets(nodetype.KindReference, []interface{}{"node-a"})
	require.False(t, ok)

	targets, ok = nodetype.ReferenceTargets(nodetype.KindReferences, []interface{}{"node-a", "node-b"})
	require.True(t, ok)
	require.Equal(t, []string{"node-a", "node-b"}, targets)

	targets, ok = nodetype.ReferenceTargets(nodetype.KindReferences, "node-a")
	require.True(t, ok)
	require.Equal(t, []string{"node-a"}, targets)

	_, ok = nodetype.ReferenceTargets(nodetype.KindReferences, 42)
	require.False(t, ok)
}
