// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos locates configuration values within their source files,
so that errors can point at the line that caused them.
*/
package filepos
