// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package spell provides the ability to suggest an exact spelling of a word.

In the context of graft, this is useful for errors that involve misspelled
configuration keys.
*/
package spell
