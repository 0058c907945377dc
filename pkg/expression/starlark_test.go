// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expression_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"carvel.dev/graft/pkg/expression"
	"carvel.dev/graft/pkg/orderedmap"
)

func TestStarlarkEvaluator(t *testing.T) {
	ev := expression.NewStarlarkEvaluator()

	t.Run("evaluates literals and operators", func(t *testing.T) {
		result, err := ev.Evaluate("1 + 2", nil)
		require.NoError(t, err)
		require.Equal(t, int64(3), result)

		result, err = ev.Evaluate(`"news/" + "article"`, nil)
		require.NoError(t, err)
		require.Equal(t, "news/article", result)

		result, err = ev.Evaluate("None", nil)
		require.NoError(t, err)
		require.Nil(t, result)
	})

	t.Run("resolves context values", func(t *testing.T) {
		ctx := map[string]interface{}{"site": "acme", "count": 2}

		result, err := ev.Evaluate(`site + "-" + str(count)`, ctx)
		require.NoError(t, err)
		require.Equal(t, "acme-2", result)
	})

	t.Run("map-valued context entries read as structs", func(t *testing.T) {
		props := orderedmap.NewMap()
		props.Set("title", "Home")

		node := orderedmap.NewMap()
		node.Set("name", "home")
		node.Set("properties", props)

		ctx := map[string]interface{}{"node": node}

		result, err := ev.Evaluate("node.properties.title", ctx)
		require.NoError(t, err)
		require.Equal(t, "Home", result)

		// mapping access works as well
		result, err = ev.Evaluate(`node["properties"]["title"]`, ctx)
		require.NoError(t, err)
		require.Equal(t, "Home", result)
	})

	t.Run("dict results keep declaration order", func(t *testing.T) {
		result, err := ev.Evaluate(`{"z": 1, "a": 2}`, nil)
		require.NoError(t, err)

		m, ok := result.(*orderedmap.Map)
		require.True(t, ok)
		require.Equal(t, []string{"z", "a"}, m.Keys())
	})

	t.Run("list results become slices", func(t *testing.T) {
		result, err := ev.Evaluate(`[x * 2 for x in items]`, map[string]interface{}{
			"items": []interface{}{1, 2, 3},
		})
		require.NoError(t, err)
		require.Equal(t, []interface{}{int64(2), int64(4), int64(6)}, result)
	})

	t.Run("conditionals", func(t *testing.T) {
		result, err := ev.Evaluate(`"yes" if enabled else "no"`, map[string]interface{}{"enabled": true})
		require.NoError(t, err)
		require.Equal(t, "yes", result)
	})

	t.Run("undefined names fail", func(t *testing.T) {
		_, err := ev.Evaluate("nosuchname", nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "nosuchname")
	})

	t.Run("parse errors fail", func(t *testing.T) {
		_, err := ev.Evaluate("1 +", nil)
		require.Error(t, err)
	})
}

func TestProcessor(t *testing.T) {
	process := expression.Processor(expression.NewStarlarkEvaluator())
	ctx := map[string]interface{}{"title": "Home"}

	t.Run("literal pass-through", func(t *testing.T) {
		result, err := process("plain text", ctx)
		require.NoError(t, err)
		require.Equal(t, "plain text", result)

		result, err = process(42, ctx)
		require.NoError(t, err)
		require.Equal(t, 42, result)
	})

	t.Run("placeholder evaluation", func(t *testing.T) {
		result, err := process("${title.lower()}", ctx)
		require.NoError(t, err)
		require.Equal(t, "home", result)
	})

	t.Run("processes maps and slices deeply", func(t *testing.T) {
		raw := orderedmap.NewMap()
		raw.Set("heading", "${title}")
		raw.Set("tags", []interface{}{"${title.lower()}", "fixed"})

		result, err := process(raw, ctx)
		require.NoError(t, err)

		m := result.(*orderedmap.Map)
		heading, _ := m.Get("heading")
		require.Equal(t, "Home", heading)
		tags, _ := m.Get("tags")
		require.Equal(t, []interface{}{"home", "fixed"}, tags)
	})

	t.Run("failures carry the expression text", func(t *testing.T) {
		_, err := process("${missing}", ctx)
		require.Error(t, err)

		evalErr, ok := err.(expression.EvalError)
		require.True(t, ok)
		require.Equal(t, "missing", evalErr.Expr)
		require.Contains(t, err.Error(), "Evaluating expression '${missing}'")
	})
}
