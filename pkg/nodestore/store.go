// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodestore

import (
	"fmt"

	"github.com/google/uuid"

	"carvel.dev/graft/pkg/orderedmap"
	"carvel.dev/graft/pkg/template"
)

// Store is an in-memory content tree rooted in a single node. It
// implements template.Store, so templates can be applied against it.
type Store struct {
	root *Node
	byID map[string]*Node
}

var _ template.Store = (*Store)(nil)

func New(rootType string) *Store {
	root := newNode(rootType, "")
	return &Store{root: root, byID: map[string]*Node{root.id: root}}
}

func (s *Store) Root() *Node { return s.root }

func (s *Store) Get(identifier string) (*Node, bool) {
	node, found := s.byID[identifier]
	return node, found
}

func (s *Store) NodeCount() int { return len(s.byID) }

// FindChild locates a direct child of parent by node name.
func (s *Store) FindChild(parent template.Ref, name string) (template.Ref, bool) {
	parentNode, err := s.node(parent)
	if err != nil {
		return nil, false
	}
	for _, child := range parentNode.children {
		if child.name == name {
			return child, true
		}
	}
	return nil, false
}

// CreateChild appends a new child node to parent. An empty name gets a
// generated one; a taken name is rejected.
func (s *Store) CreateChild(parent template.Ref, typeName, name string) (template.Ref, error) {
	parentNode, err := s.node(parent)
	if err != nil {
		return nil, err
	}

	node := newNode(typeName, name)
	if node.name == "" {
		node.name = "node-" + node.id[:8]
	}

	for _, child := range parentNode.children {
		if child.name == node.name {
			return nil, fmt.Errorf("Node '%s' already has a child named '%s'", parentNode.Path(), node.name)
		}
	}

	node.parent = parentNode
	parentNode.children = append(parentNode.children, node)
	s.byID[node.id] = node
	return node, nil
}

func (s *Store) SetProperty(ref template.Ref, name string, value interface{}) error {
	node, err := s.node(ref)
	if err != nil {
		return err
	}
	node.properties.Set(name, value)
	return nil
}

func (s *Store) SetReference(ref template.Ref, name string, targets []string) error {
	node, err := s.node(ref)
	if err != nil {
		return err
	}
	node.references.Set(name, targets)
	return nil
}

func (s *Store) SetHidden(ref template.Ref, hidden bool) error {
	node, err := s.node(ref)
	if err != nil {
		return err
	}
	node.hidden = hidden
	return nil
}

func (s *Store) TypeOf(ref template.Ref) string {
	node, err := s.node(ref)
	if err != nil {
		return ""
	}
	return node.typeName
}

func (s *Store) NameOf(ref template.Ref) string {
	node, err := s.node(ref)
	if err != nil {
		return ""
	}
	return node.name
}

// PropertiesOf returns a snapshot of the node's current properties.
func (s *Store) PropertiesOf(ref template.Ref) *orderedmap.Map {
	node, err := s.node(ref)
	if err != nil {
		return orderedmap.NewMap()
	}

	snapshot := orderedmap.NewMap()
	node.properties.Iterate(func(k string, v interface{}) {
		snapshot.Set(k, v)
	})
	return snapshot
}

func (s *Store) HasNode(identifier string) bool {
	_, found := s.byID[identifier]
	return found
}

func (s *Store) node(ref template.Ref) (*Node, error) {
	node, ok := ref.(*Node)
	if !ok {
		return nil, fmt.Errorf("Expected node reference to belong to this store, but was %T", ref)
	}
	return node, nil
}

func newNode(typeName, name string) *Node {
	return &Node{
		id:         uuid.NewString(),
		typeName:   typeName,
		name:       name,
		properties: orderedmap.NewMap(),
		references: orderedmap.NewMap(),
	}
}
