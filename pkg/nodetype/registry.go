// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package nodetype

import (
	"fmt"
	"sort"

	"carvel.dev/graft/pkg/orderedmap"
)

// DefaultDocumentSuperType is the supertype that marks node types whose
// instances get a uriPathSegment derived from their title.
const DefaultDocumentSuperType = "graft:document"

// Registry holds all known node type definitions and answers questions
// about them with supertype inheritance taken into account.
type Registry struct {
	defs              map[string]*Definition
	documentSuperType string
}

func NewRegistry() *Registry {
	return &Registry{
		defs:              map[string]*Definition{},
		documentSuperType: DefaultDocumentSuperType,
	}
}

func (r *Registry) Add(def *Definition) error {
	if def.Name == "" {
		return fmt.Errorf("Expected node type to have a name")
	}
	if _, found := r.defs[def.Name]; found {
		return fmt.Errorf("Node type '%s' is defined more than once", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

func (r *Registry) Get(name string) (*Definition, bool) {
	def, found := r.defs[name]
	return def, found
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsOfType reports whether the named type is the ancestor type or
// derives from it through any chain of supertypes. Supertype cycles do
// not loop.
func (r *Registry) IsOfType(name, ancestor string) bool {
	visited := map[string]bool{}
	queue := []string{name}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if current == ancestor {
			return true
		}
		if def, found := r.defs[current]; found {
			queue = append(queue, def.SuperTypes...)
		}
	}
	return false
}

// IsDocumentType reports whether instances of the named type represent
// documents (and therefore carry a uriPathSegment).
func (r *Registry) IsDocumentType(name string) bool {
	return r.IsOfType(name, r.documentSuperType)
}

// PropertyDefinition resolves a property declaration for the named
// type, walking supertypes in declaration order; the nearest
// declaration wins.
func (r *Registry) PropertyDefinition(typeName, propName string) (*PropertyDefinition, bool) {
	visited := map[string]bool{}
	queue := []string{typeName}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		def, found := r.defs[current]
		if !found {
			continue
		}
		if propDef, found := def.Properties[propName]; found {
			return propDef, true
		}
		queue = append(queue, def.SuperTypes...)
	}
	return nil, false
}

// DefaultValues collects the non-nil property defaults in effect for
// the named type, nearest declaration winning, keyed in sorted order.
func (r *Registry) DefaultValues(typeName string) *orderedmap.Map {
	collected := map[string]interface{}{}

	visited := map[string]bool{}
	queue := []string{typeName}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		def, found := r.defs[current]
		if !found {
			continue
		}
		for name, propDef := range def.Properties {
			if propDef.Default == nil {
				continue
			}
			if _, alreadySet := collected[name]; !alreadySet {
				collected[name] = propDef.Default
			}
		}
		queue = append(queue, def.SuperTypes...)
	}

	return orderedmap.Conversion{Object: collected}.FromUnorderedMaps().(*orderedmap.Map)
}
