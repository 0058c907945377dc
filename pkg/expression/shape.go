// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"strings"
)

const (
	exprOpen  = "${"
	exprClose = "}"
)

// IsExpression reports whether the whole of s (ignoring surrounding
// whitespace) is a single `${...}` placeholder.
func IsExpression(s string) bool {
	_, ok := Extract(s)
	return ok
}

// Extract returns the inner text of a `${...}` placeholder. Strings that
// merely contain a placeholder somewhere in the middle (e.g. "a ${b} c",
// "${a} ${b}") are not placeholders and stay literals.
func Extract(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, exprOpen) || !strings.HasSuffix(trimmed, exprClose) {
		return "", false
	}

	inner := trimmed[len(exprOpen) : len(trimmed)-len(exprClose)]

	// the closing brace must belong to the opening `${`
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return "", false
			}
		}
	}
	if depth != 0 {
		return "", false
	}

	return inner, true
}
