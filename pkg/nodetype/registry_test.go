// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodetype_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"carvel.dev/graft/pkg/nodetype"
)

func buildRegistry(t *testing.T) *nodetype.Registry {
	registry := nodetype.NewRegistry()

	require.NoError(t, registry.Add(&nodetype.Definition{
		Name: "graft:document",
		Properties: map[string]*nodetype.PropertyDefinition{
			"title":          {Type: "string"},
			"uriPathSegment": {Type: "string"},
		},
	}))
	require.NoError(t, registry.Add(&nodetype.Definition{
		Name:       "acme.site:page",
		SuperTypes: []string{"graft:document"},
		Properties: map[string]*nodetype.PropertyDefinition{
			"layout": {Type: "string", Default: "default", SelectableValues: []string{"default", "landing"}},
		},
	}))
	require.NoError(t, registry.Add(&nodetype.Definition{
		Name:       "acme.site:landing",
		SuperTypes: []string{"acme.site:page"},
		Properties: map[string]*nodetype.PropertyDefinition{
			"layout": {Type: "string", Default: "landing"},
		},
	}))

	return registry
}

func TestRegistry(t *testing.T) {
	registry := buildRegistry(t)

	t.Run("rejects duplicate definitions", func(t *testing.T) {
		err := registry.Add(&nodetype.Definition{Name: "acme.site:page"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "defined more than once")
	})

	t.Run("IsOfType walks supertype chains", func(t *testing.T) {
		require.True(t, registry.IsOfType("acme.site:landing", "graft:document"))
		require.True(t, registry.IsOfType("acme.site:page", "acme.site:page"))
		require.False(t, registry.IsOfType("graft:document", "acme.site:page"))
		require.False(t, registry.IsOfType("no.such:type", "graft:document"))
	})

	t.Run("IsOfType survives supertype cycles", func(t *testing.T) {
		cyclic := nodetype.NewRegistry()
		require.NoError(t, cyclic.Add(&nodetype.Definition{Name: "a", SuperTypes: []string{"b"}}))
		require.NoError(t, cyclic.Add(&nodetype.Definition{Name: "b", SuperTypes: []string{"a"}}))

		require.False(t, cyclic.IsOfType("a", "c"))
		require.True(t, cyclic.IsOfType("a", "b"))
	})

	t.Run("property declarations are inherited, nearest wins", func(t *testing.T) {
		propDef, found := registry.PropertyDefinition("acme.site:landing", "title")
		require.True(t, found)
		require.Equal(t, "string", propDef.Type)

		propDef, found = registry.PropertyDefinition("acme.site:landing", "layout")
		require.True(t, found)
		require.Equal(t, "landing", propDef.Default)

		_, found = registry.PropertyDefinition("acme.site:landing", "nope")
		require.False(t, found)
	})

	t.Run("DefaultValues merges over supertypes", func(t *testing.T) {
		defaults := registry.DefaultValues("acme.site:landing")

		layout, found := defaults.Get("layout")
		require.True(t, found)
		require.Equal(t, "landing", layout)

		_, found = defaults.Get("title")
		require.False(t, found)
	})

	t.Run("document types derive from the document supertype", func(t *testing.T) {
		require.True(t, registry.IsDocumentType("acme.site:landing"))
		require.False(t, registry.IsDocumentType("no.such:type"))
	})
}
