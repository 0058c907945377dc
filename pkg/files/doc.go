// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files provides primitives for enumerating and loading data from
file or file-like Source's.

This allows the rest of graft code to process logically chunked streams of
data (node configurations, node type catalogs, context values) without
becoming entangled in the details of where those bytes came from: local
files, directories, HTTP URLs, or standard input.
*/
package files
