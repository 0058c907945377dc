// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of
graft.

This codebase is intentionally organized into well-defined layers. A concerted
effort has been sustained to keep the responsibility of each package concise
and complete. Packages have been designed to be dependent on each other only
to the degree absolutely required.

In the inventory, below, individual packages are named alongside their
coupling with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

Where "# of dependents" is the count of packages that import the named package
and "# of dependencies" is the count of packages that this named package
imports.

From top-down (http://www.catb.org/~esr/writings/taoup/html/ch04s03.html),
graft code is layered in this way:

# Entry Point

graft is built into a single executable format:

	./cmd/graft   // a command-line tool

# Commands

The root command is "apply": it builds node templates from configuration and
applies them to a content tree.

	(1) => pkg/cmd => (2)
	(1) => pkg/cmd/apply => (9)

# Build and Apply

The heart of graft's action is the template package. A configuration tree is
walked by a Builder/Factory pair into fully resolved templates, or by the
Engine which interleaves building with application so that child expressions
observe freshly applied parent state. Recoverable failures accumulate as
caught exceptions; only authoring mistakes abort a run.

	(2) => pkg/template => (4)

# Expressions

Configuration values may hold expressions. The expression package decides
which strings are expressions, evaluates them as Starlark against the
context in scope, and converts values between Go and Starlark shapes.

	(1) => pkg/expression => (1)

# Node Types and the Store

Applied templates land on typed nodes. The nodetype package loads type
catalogs (supertypes, property declarations, defaults, selectable values)
and answers questions about them with inheritance taken into account. The
nodestore package is the in-memory content tree those templates are applied
against.

	(2) => pkg/nodetype => (3)
	(1) => pkg/nodestore => (2)

# Configuration Structures

graft delegates parsing YAML to the de facto standard YAML library
(https://github.com/go-yaml/yaml/tree/v3). However, graft needs to reject
duplicate keys, keep mappings in declaration order and remember where each
value came from. It does this by walking the parser's node representation
into orderedmap values with a position recorded per configuration path.

	(2) => pkg/yamlconf => (2)
	(6) => pkg/orderedmap => (0)
	(2) => pkg/filepos => (0)

# Utilities

Finally, there is a collection of supporting features: file and URL input
sources, user output, misspelling suggestions and the version anchor.

	(1) => pkg/files => (0)
	(1) => pkg/cmd/ui => (0)
	(2) => pkg/spell => (0)
	(2) => pkg/version => (0)

# Dependencies

Each package's dependencies on other packages within this module are as
follows (if a package is not listed, it has no dependencies on other packages
within this module):

	pkg/cmd:
	- pkg/cmd/apply
	- pkg/version
	pkg/cmd/apply:
	- pkg/cmd/ui
	- pkg/expression
	- pkg/files
	- pkg/nodestore
	- pkg/nodetype
	- pkg/orderedmap
	- pkg/template
	- pkg/version
	- pkg/yamlconf
	pkg/template:
	- pkg/filepos
	- pkg/nodetype
	- pkg/orderedmap
	- pkg/spell
	pkg/expression:
	- pkg/orderedmap
	pkg/nodetype:
	- pkg/orderedmap
	- pkg/spell
	- pkg/yamlconf
	pkg/nodestore:
	- pkg/orderedmap
	- pkg/template
	pkg/yamlconf:
	- pkg/filepos
	- pkg/orderedmap
*/
package pkg
