// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expression_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"carvel.dev/graft/pkg/expression"
)

func TestExtract(t *testing.T) {
	t.Run("whole-string placeholders", func(t *testing.T) {
		examples := map[string]string{
			"${title}":        "title",
			"${ x + 1 }":      " x + 1 ",
			"  ${title}  ":    "title",
			"${d['k']}":       "d['k']",
			"${ {'a': 1} }":   " {'a': 1} ",
			"${f(lambda: 1)}": "f(lambda: 1)",
		}
		for input, expectedInner := range examples {
			inner, ok := expression.Extract(input)
			require.True(t, ok, "input: %q", input)
			require.Equal(t, expectedInner, inner, "input: %q", input)
		}
	})

	t.Run("literals stay literals", func(t *testing.T) {
		literals := []string{
			"plain",
			"",
			"prefix ${a}",
			"${a} suffix",
			"${a} and ${b}",
			"${unclosed",
			"unopened}",
			"${}extra}",
			"${ {unbalanced }",
		}
		for _, input := range literals {
			require.False(t, expression.IsExpression(input), "input: %q", input)
		}
	})

	t.Run("empty placeholder is still a placeholder", func(t *testing.T) {
		inner, ok := expression.Extract("${}")
		require.True(t, ok)
		require.Equal(t, "", inner)
	})
}
