// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"carvel.dev/graft/pkg/expression"
	"carvel.dev/graft/pkg/orderedmap"
	"carvel.dev/graft/pkg/template"
	"carvel.dev/graft/pkg/yamlconf"
)

func parseConf(t *testing.T, yml string) (*orderedmap.Map, template.PositionFunc) {
	t.Helper()

	tree, err := yamlconf.Parse([]byte(yml), "config.yml")
	require.NoError(t, err)

	conf, ok := tree.Root.(*orderedmap.Map)
	require.True(t, ok, "config root must be a mapping")

	return conf, tree.Position
}

func buildRoot(t *testing.T, yml string, ctx map[string]interface{}) (*template.Template, bool, *template.CaughtExceptions) {
	t.Helper()

	conf, pos := parseConf(t, yml)
	errs := template.NewCaughtExceptions()
	process := expression.Processor(expression.NewStarlarkEvaluator())

	b, err := template.NewRootBuilder(conf, ctx, process, errs, pos)
	require.NoError(t, err)

	tpl, ok, err := template.NewFactory().BuildRoot(b)
	require.NoError(t, err)

	return tpl, ok, errs
}

func prop(t *testing.T, tpl *template.Template, name string) interface{} {
	t.Helper()

	val, found := tpl.Properties().Get(name)
	require.True(t, found, "expected property '%s' to be present", name)
	return val
}

func childNames(tpl *template.Template) []string {
	names := []string{}
	for _, child := range tpl.ChildNodes() {
		names = append(names, child.Name())
	}
	return names
}

func TestFactoryBuildsNestedTree(t *testing.T) {
	configYAML := `
properties:
  title: Home
childNodes:
  hero:
    type: site:text
    name: hero
    properties:
      text: Welcome!
  footer:
    type: site:text
    name: footer
    properties:
      text: Bye.
    childNodes:
      legal:
        type: site:text
        name: legal
`

	tpl, ok, errs := buildRoot(t, configYAML, nil)
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, "", tpl.Type())
	require.Equal(t, "", tpl.Name())
	require.Equal(t, "Home", prop(t, tpl, "title"))

	require.Equal(t, []string{"hero", "footer"}, childNames(tpl))
	require.Equal(t, "site:text", tpl.ChildNodes()[0].Type())
	require.Equal(t, "Welcome!", prop(t, tpl.ChildNodes()[0], "text"))

	footer := tpl.ChildNodes()[1]
	require.Equal(t, []string{"legal"}, childNames(footer))
}

func TestFactoryContextExtensionScopesToSubtree(t *testing.T) {
	configYAML := `
childNodes:
  first:
    type: site:page
    name: first
    withContext:
      greeting: hello
    properties:
      title: ${greeting.upper()}
  second:
    type: site:page
    name: second
    properties:
      title: ${greeting}
`

	tpl, ok, errs := buildRoot(t, configYAML, nil)
	require.True(t, ok)

	require.Equal(t, []string{"first", "second"}, childNames(tpl))
	require.Equal(t, "HELLO", prop(t, tpl.ChildNodes()[0], "title"))

	// the sibling never saw the extension: its title failed and was dropped
	_, found := tpl.ChildNodes()[1].Properties().Get("title")
	require.False(t, found)

	require.Equal(t, 1, errs.Len())
	caught := errs.Items()[0]
	require.Contains(t, caught.Underlying().Error(), "greeting")
	require.Equal(t, "title in site:page", caught.Origin())
	require.Equal(t, template.CausePropertyIgnored, caught.Cause())
}

func TestFactoryContextEntriesSeeIncomingContextOnly(t *testing.T) {
	configYAML := `
withContext:
  a: inner
  b: ${a}
properties:
  fromA: ${a}
  fromB: ${b}
`

	tpl, ok, errs := buildRoot(t, configYAML, map[string]interface{}{"a": "outer"})
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, "inner", prop(t, tpl, "fromA"))
	require.Equal(t, "outer", prop(t, tpl, "fromB"))
}

func TestFactoryContextEntryFailureAbandonsBranch(t *testing.T) {
	configYAML := `
childNodes:
  broken:
    type: site:page
    name: broken
    withContext:
      x: ${nope}
  fine:
    type: site:page
    name: fine
`

	tpl, ok, errs := buildRoot(t, configYAML, nil)
	require.True(t, ok)

	require.Equal(t, []string{"fine"}, childNames(tpl))

	require.Equal(t, 1, errs.Len())
	caught := errs.Items()[0]
	require.Contains(t, caught.Origin(), "childNodes.broken.withContext.x")
	require.Equal(t, template.CauseBranchIgnored, caught.Cause())
}

func TestFactoryWhenSkipsSilently(t *testing.T) {
	configYAML := `
childNodes:
  literal:
    type: site:page
    name: literal
    when: false
  computed:
    type: site:page
    name: computed
    when: ${rank > 3}
  kept:
    type: site:page
    name: kept
    when: ${rank > 0}
`

	tpl, ok, errs := buildRoot(t, configYAML, map[string]interface{}{"rank": 1})
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, []string{"kept"}, childNames(tpl))
}

func TestFactoryRootWhenSkipsWholeTemplate(t *testing.T) {
	configYAML := `
when: ${enabled}
properties:
  title: Home
`

	tpl, ok, errs := buildRoot(t, configYAML, map[string]interface{}{"enabled": false})
	require.False(t, ok)
	require.Nil(t, tpl)
	require.True(t, errs.IsEmpty(), errs.Error())
}

func TestFactoryWhenFailureRecordedAndBranchDropped(t *testing.T) {
	configYAML := `
childNodes:
  broken:
    type: site:page
    name: broken
    when: ${nope}
  fine:
    type: site:page
    name: fine
`

	tpl, ok, errs := buildRoot(t, configYAML, nil)
	require.True(t, ok)

	require.Equal(t, []string{"fine"}, childNames(tpl))

	require.Equal(t, 1, errs.Len())
	caught := errs.Items()[0]
	require.Contains(t, caught.Underlying().Error(), "nope")
	require.Contains(t, caught.Origin(), "childNodes.broken.when")
	require.Contains(t, caught.Origin(), "config.yml:")
	require.Equal(t, template.CauseBranchIgnored, caught.Cause())
}

func TestFactoryWithItemsOverExpressionList(t *testing.T) {
	configYAML := `
childNodes:
  pages:
    type: site:page
    name: ${item}
    withItems: ${pages}
    properties:
      rank: ${key}
`

	ctx := map[string]interface{}{"pages": []interface{}{"home", "about", "contact"}}

	tpl, ok, errs := buildRoot(t, configYAML, ctx)
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, []string{"home", "about", "contact"}, childNames(tpl))
	for i, child := range tpl.ChildNodes() {
		require.EqualValues(t, i, prop(t, child, "rank"))
	}
}

func TestFactoryWithItemsOverMappingKeepsOrder(t *testing.T) {
	configYAML := `
childNodes:
  sections:
    type: site:text
    name: ${key}
    withItems:
      intro: Welcome!
      body: 'Much content.'
      footer: Bye.
    properties:
      text: ${item}
`

	tpl, ok, errs := buildRoot(t, configYAML, nil)
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, []string{"intro", "body", "footer"}, childNames(tpl))
	require.Equal(t, "Much content.", prop(t, tpl.ChildNodes()[1], "text"))
}

func TestFactoryWithItemsLiteralStringSplitsOnCommas(t *testing.T) {
	configYAML := `
childNodes:
  tags:
    type: site:text
    name: ${item}
    withItems: alpha, beta ,gamma
    properties:
      rank: ${key}
`

	tpl, ok, errs := buildRoot(t, configYAML, nil)
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, []string{"alpha", "beta", "gamma"}, childNames(tpl))
	for i, child := range tpl.ChildNodes() {
		require.EqualValues(t, i, prop(t, child, "rank"))
	}
}

func TestFactoryWithItemsAbsentKeepsAncestorItemVisible(t *testing.T) {
	configYAML := `
childNodes:
  pages:
    type: site:page
    name: ${item}
    withItems: ${pages}
    childNodes:
      teaser:
        type: site:text
        name: teaser
        properties:
          text: ${'teaser for ' + item}
`

	ctx := map[string]interface{}{"pages": []interface{}{"home", "about"}}

	tpl, ok, errs := buildRoot(t, configYAML, ctx)
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, []string{"home", "about"}, childNames(tpl))

	teaser := tpl.ChildNodes()[1].ChildNodes()[0]
	require.Equal(t, "teaser for about", prop(t, teaser, "text"))
}

func TestFactoryWithItemsExpressionMustYieldCollection(t *testing.T) {
	configYAML := `
childNodes:
  broken:
    type: site:page
    name: broken
    withItems: ${title}
`

	tpl, ok, errs := buildRoot(t, configYAML, map[string]interface{}{"title": "Home"})
	require.True(t, ok)

	require.Empty(t, childNames(tpl))

	require.Equal(t, 1, errs.Len())
	caught := errs.Items()[0]
	require.Contains(t, caught.Underlying().Error(), "Expected withItems expression to evaluate to a list or mapping")
	require.Contains(t, caught.Origin(), "childNodes.broken.withItems")
}

func TestFactoryEvaluatesTypeAndName(t *testing.T) {
	configYAML := `
childNodes:
  styled:
    type: ${kind}
    name: page-${'x'}
`

	tpl, ok, errs := buildRoot(t, configYAML, map[string]interface{}{"kind": "site:page"})
	require.True(t, ok)

	// a partial placeholder is not an expression, it stays literal
	require.Equal(t, []string{"page-${'x'}"}, childNames(tpl))
	require.Equal(t, "site:page", tpl.ChildNodes()[0].Type())
	require.True(t, errs.IsEmpty(), errs.Error())
}

func TestFactoryNumericNameCoercesToString(t *testing.T) {
	configYAML := `
childNodes:
  versioned:
    type: site:page
    name: ${rank}
`

	tpl, ok, errs := buildRoot(t, configYAML, map[string]interface{}{"rank": 7})
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, []string{"7"}, childNames(tpl))
}

func TestFactoryNilChildEntrySkippedSilently(t *testing.T) {
	configYAML := `
childNodes:
  empty:
  real:
    type: site:page
    name: real
`

	tpl, ok, errs := buildRoot(t, configYAML, nil)
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	require.Equal(t, []string{"real"}, childNames(tpl))
}

func TestFactoryScalarChildEntryRecorded(t *testing.T) {
	configYAML := `
childNodes:
  broken: just a string
  real:
    type: site:page
    name: real
`

	tpl, ok, errs := buildRoot(t, configYAML, nil)
	require.True(t, ok)

	require.Equal(t, []string{"real"}, childNames(tpl))

	require.Equal(t, 1, errs.Len())
	require.Contains(t, errs.Items()[0].Underlying().Error(), "Expected child entry 'broken' to be a mapping")
}

func TestFactoryDeepPropertyValuesAreProcessed(t *testing.T) {
	configYAML := `
properties:
  settings:
    color: ${theme}
    flags:
      - ${1 + 1}
      - plain
`

	tpl, ok, errs := buildRoot(t, configYAML, map[string]interface{}{"theme": "dark"})
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	settings, isMap := prop(t, tpl, "settings").(*orderedmap.Map)
	require.True(t, isMap)

	color, _ := settings.Get("color")
	require.Equal(t, "dark", color)

	flags, _ := settings.Get("flags")
	require.Equal(t, []interface{}{int64(2), "plain"}, flags)
}

func TestFactoryResultSerializesWithoutPlaceholders(t *testing.T) {
	configYAML := `
properties:
  title: ${site.upper()}
childNodes:
  pages:
    type: site:page
    name: ${item}
    withItems: home, about
    properties:
      captured: ${site}
`

	tpl, ok, errs := buildRoot(t, configYAML, map[string]interface{}{"site": "demo"})
	require.True(t, ok)
	require.True(t, errs.IsEmpty(), errs.Error())

	bs, err := json.Marshal(tpl)
	require.NoError(t, err)

	require.NotContains(t, string(bs), "${")

	expected := `{"type":null,"name":null,"properties":{"title":"DEMO"},` +
		`"childNodes":[` +
		`{"type":"site:page","name":"home","properties":{"captured":"demo"},"childNodes":[]},` +
		`{"type":"site:page","name":"about","properties":{"captured":"demo"},"childNodes":[]}` +
		`]}`
	require.Equal(t, expected, string(bs))
}
