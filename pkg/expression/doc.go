// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package expression detects and evaluates `${...}` placeholders found in
configuration values.

Placeholders are evaluated lazily, against the context in scope at the
node where they appear. The inner text is a single Starlark expression;
context keys become predeclared globals.
*/
package expression
