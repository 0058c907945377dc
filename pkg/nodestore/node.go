// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodestore

import (
	"carvel.dev/graft/pkg/orderedmap"
)

// Node is one node of the in-memory content tree.
type Node struct {
	id         string
	typeName   string
	name       string
	hidden     bool
	properties *orderedmap.Map // property name -> value
	references *orderedmap.Map // reference name -> []string of node identifiers
	children   []*Node
	parent     *Node
}

func (n *Node) Identifier() string { return n.id }
func (n *Node) TypeName() string   { return n.typeName }
func (n *Node) Name() string       { return n.name }
func (n *Node) Hidden() bool       { return n.hidden }
func (n *Node) Parent() *Node      { return n.parent }

// Properties returns the live property map; callers must not modify it.
func (n *Node) Properties() *orderedmap.Map { return n.properties }

// References returns the live reference map; callers must not modify it.
func (n *Node) References() *orderedmap.Map { return n.references }

// Children returns the node's children in creation order; callers must
// not modify the slice.
func (n *Node) Children() []*Node { return n.children }

// Path renders the node's location from the root, e.g. "/site/home".
func (n *Node) Path() string {
	if n.parent == nil {
		return "/"
	}
	parentPath := n.parent.Path()
	if parentPath == "/" {
		return "/" + n.name
	}
	return parentPath + "/" + n.name
}
