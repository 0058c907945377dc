// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"carvel.dev/graft/pkg/orderedmap"
)

// Ref is an opaque handle to a node owned by a Store.
type Ref interface {
	Identifier() string
}

// Store is the node store templates are applied against. The
// implementation owns the tree; the engine touches it only through
// this interface.
type Store interface {
	FindChild(parent Ref, name string) (Ref, bool)
	CreateChild(parent Ref, typeName, name string) (Ref, error)
	SetProperty(n Ref, name string, value interface{}) error
	SetReference(n Ref, name string, targets []string) error
	SetHidden(n Ref, hidden bool) error
	TypeOf(n Ref) string
	NameOf(n Ref) string
	PropertiesOf(n Ref) *orderedmap.Map
	HasNode(identifier string) bool
}

// ApplyOptions pass through a build-and-apply run untouched and reach
// the notification sink with every applied node.
type ApplyOptions map[string]interface{}

// Sink is notified once per applied node, after the node's children
// have been applied.
type Sink interface {
	NodeTemplateApplied(n Ref, ctx map[string]interface{}, opts ApplyOptions)
}

// SinkFunc adapts a plain function into a Sink.
type SinkFunc func(n Ref, ctx map[string]interface{}, opts ApplyOptions)

func (f SinkFunc) NodeTemplateApplied(n Ref, ctx map[string]interface{}, opts ApplyOptions) {
	f(n, ctx, opts)
}
