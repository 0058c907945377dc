// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodestore

import (
	"carvel.dev/graft/pkg/orderedmap"
)

// PlainTree renders the subtree under n as ordered maps, the shape the
// CLI prints: type, hidden flag, properties, references and childNodes
// (a mapping of child name to subtree, in creation order).
func PlainTree(n *Node) *orderedmap.Map {
	result := orderedmap.NewMap()
	result.Set("type", n.typeName)
	if n.hidden {
		result.Set("hidden", true)
	}

	if n.properties.Len() > 0 {
		props := orderedmap.NewMap()
		n.properties.Iterate(func(k string, v interface{}) {
			props.Set(k, v)
		})
		result.Set("properties", props)
	}

	if n.references.Len() > 0 {
		refs := orderedmap.NewMap()
		n.references.Iterate(func(k string, v interface{}) {
			refs.Set(k, v)
		})
		result.Set("references", refs)
	}

	if len(n.children) > 0 {
		children := orderedmap.NewMap()
		for _, child := range n.children {
			children.Set(child.name, PlainTree(child))
		}
		result.Set("childNodes", children)
	}

	return result
}
