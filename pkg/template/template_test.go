// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"carvel.dev/graft/pkg/orderedmap"
	"carvel.dev/graft/pkg/template"
)

func TestTemplateMarshalJSONPreservesOrder(t *testing.T) {
	props := orderedmap.NewMap()
	props.Set("title", "Home")
	props.Set("rank", int64(1))
	props.Set("draft", false)

	childProps := orderedmap.NewMap()
	childProps.Set("text", "welcome")

	child := template.NewTemplate("site:text", "intro", childProps, nil)
	root := template.NewRootTemplate(props, template.Templates{child})

	bs, err := json.Marshal(root)
	require.NoError(t, err)

	expected := `{"type":null,"name":null,` +
		`"properties":{"title":"Home","rank":1,"draft":false},` +
		`"childNodes":[{"type":"site:text","name":"intro",` +
		`"properties":{"text":"welcome"},"childNodes":[]}]}`

	require.Equal(t, expected, string(bs))
}

func TestTemplateMarshalJSONEmptyRoot(t *testing.T) {
	root := template.NewRootTemplate(nil, nil)

	bs, err := json.Marshal(root)
	require.NoError(t, err)

	require.Equal(t, `{"type":null,"name":null,"properties":{},"childNodes":[]}`, string(bs))
}

func TestTemplateAccessors(t *testing.T) {
	props := orderedmap.NewMap()
	props.Set("title", "About")

	tpl := template.NewTemplate("site:page", "about", props, nil)

	require.Equal(t, "site:page", tpl.Type())
	require.Equal(t, "about", tpl.Name())

	title, found := tpl.Properties().Get("title")
	require.True(t, found)
	require.Equal(t, "About", title)
	require.Empty(t, tpl.ChildNodes())
}
