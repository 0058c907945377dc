// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"

	"carvel.dev/graft/pkg/orderedmap"
)

// Evaluator evaluates the inner text of a `${...}` placeholder against a
// context of named values.
type Evaluator interface {
	Evaluate(expr string, ctx map[string]interface{}) (interface{}, error)
}

// EvalError carries the literal expression text that failed to evaluate.
type EvalError struct {
	Expr string
	Err  error
}

func (e EvalError) Error() string {
	return fmt.Sprintf("Evaluating expression '${%s}': %s", e.Expr, e.Err)
}

func (e EvalError) Unwrap() error { return e.Err }

// Processor adapts an Evaluator into the value-processing function the
// template engine expects: placeholder-shaped strings are evaluated,
// maps and slices are processed deeply, everything else passes through
// as a literal.
func Processor(ev Evaluator) func(raw interface{}, ctx map[string]interface{}) (interface{}, error) {
	var process func(raw interface{}, ctx map[string]interface{}) (interface{}, error)

	process = func(raw interface{}, ctx map[string]interface{}) (interface{}, error) {
		switch typedVal := raw.(type) {
		case string:
			inner, ok := Extract(typedVal)
			if !ok {
				return typedVal, nil
			}
			val, err := ev.Evaluate(inner, ctx)
			if err != nil {
				return nil, EvalError{Expr: inner, Err: err}
			}
			return val, nil

		case *orderedmap.Map:
			result := orderedmap.NewMap()
			err := typedVal.IterateErr(func(k string, v interface{}) error {
				processed, err := process(v, ctx)
				if err != nil {
					return err
				}
				result.Set(k, processed)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return result, nil

		case []interface{}:
			result := make([]interface{}, len(typedVal))
			for i, v := range typedVal {
				processed, err := process(v, ctx)
				if err != nil {
					return nil, err
				}
				result[i] = processed
			}
			return result, nil

		default:
			return raw, nil
		}
	}

	return process
}
