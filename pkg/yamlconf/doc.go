// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamlconf reads YAML documents into ordered configuration trees
and writes such trees back out, keeping map keys in declaration order
in both directions.

Every parsed value also gets a source position, recorded under its
dotted configuration path, so errors can point back into the file.
*/
package yamlconf
