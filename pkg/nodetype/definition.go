// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodetype

// Kind classifies a declared property by how its value is applied to a
// node: as a plain property value, or as one or many node references.
type Kind int

const (
	KindProperty Kind = iota
	KindReference
	KindReferences
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindReferences:
		return "references"
	default:
		return "property"
	}
}

// Definition describes one node type: the types it derives from and the
// properties nodes of this type may carry.
type Definition struct {
	Name       string
	SuperTypes []string
	Abstract   bool
	Properties map[string]*PropertyDefinition
}

// PropertyDefinition declares one property: its value type, the default
// applied at node creation, and, for select-box backed properties, the
// permissible option keys.
type PropertyDefinition struct {
	Type             string
	Default          interface{}
	SelectableValues []string
}

func (d *PropertyDefinition) Kind() Kind {
	switch d.Type {
	case "reference":
		return KindReference
	case "references":
		return KindReferences
	default:
		return KindProperty
	}
}
