// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package ui provides a thin abstraction over user output (typically, a
tty device), separating command results on stdout from warnings and
debug tracing on stderr.
*/
package ui
