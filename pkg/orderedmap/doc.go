// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides a string-keyed map that maintains key order
(unlike the native Go map).

Configuration trees declare children and properties in a meaningful
order; keeping that order is what makes graft's output deterministic.
*/
package orderedmap
