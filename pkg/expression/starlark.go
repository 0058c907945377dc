// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
	"sort"

	"github.com/k14s/starlark-go/resolve"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/syntax"
)

// StarlarkEvaluator evaluates placeholder text as a single Starlark
// expression. Context keys become predeclared globals; map-valued
// entries are exposed as structs so that nested values read naturally
// (node.properties.title).
type StarlarkEvaluator struct{}

var _ Evaluator = StarlarkEvaluator{}

func NewStarlarkEvaluator() StarlarkEvaluator {
	// TODO package globals
	resolve.AllowFloat = true
	resolve.AllowSet = true
	resolve.AllowLambda = true
	resolve.AllowNestedDef = true
	resolve.AllowBitwise = true
	resolve.AllowGlobalReassign = true

	return StarlarkEvaluator{}
}

func (e StarlarkEvaluator) Evaluate(expr string, ctx map[string]interface{}) (result interface{}, resultErr error) {
	// Catch conversion panics so a bad value fails only its own branch
	defer func() {
		if err := recover(); err != nil {
			if typedErr, ok := err.(error); ok {
				resultErr = typedErr
			} else {
				resultErr = fmt.Errorf("(p) %v", err)
			}
		}
	}()

	env := starlark.StringDict{}
	for _, name := range sortedKeys(ctx) {
		env[name] = NewGoValue(ctx[name], true).AsStarlarkValue()
	}

	parsed, err := syntax.ParseExpr("expression", expr, syntax.BlockScanner)
	if err != nil {
		return nil, err
	}

	thread := &starlark.Thread{Name: "graft-expression"}

	val, err := starlark.EvalExpr(thread, parsed, env)
	if err != nil {
		return nil, err
	}

	return NewStarlarkValue(val).AsGoValue(), nil
}

func sortedKeys(ctx map[string]interface{}) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
