// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"encoding/json"

	"carvel.dev/graft/pkg/orderedmap"
)

// Template is one fully evaluated node template: every property value
// and name has already been resolved, no expression placeholders
// remain. The zero type and name mark the root template, which operates
// on an already existing node instead of creating one.
type Template struct {
	typeName   string
	name       string
	properties *orderedmap.Map
	childNodes Templates
}

// Templates is an ordered collection of templates, e.g. the children of
// one template in declaration order.
type Templates []*Template

func NewTemplate(typeName, name string, properties *orderedmap.Map, childNodes Templates) *Template {
	if properties == nil {
		properties = orderedmap.NewMap()
	}
	return &Template{typeName: typeName, name: name, properties: properties, childNodes: childNodes}
}

// NewRootTemplate marks a template for an already resolved node: it has
// no type and no name of its own.
func NewRootTemplate(properties *orderedmap.Map, childNodes Templates) *Template {
	return NewTemplate("", "", properties, childNodes)
}

func (t *Template) Type() string { return t.typeName }
func (t *Template) Name() string { return t.name }

// Properties returns the evaluated property map; callers must not
// modify it.
func (t *Template) Properties() *orderedmap.Map { return t.properties }

func (t *Template) ChildNodes() Templates { return t.childNodes }

var _ json.Marshaler = (*Template)(nil)

// MarshalJSON emits type and name as null when absent, and properties
// and childNodes in declaration order.
func (t *Template) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	if err := writeNullableString(&buf, t.typeName); err != nil {
		return nil, err
	}
	buf.WriteString(`,"name":`)
	if err := writeNullableString(&buf, t.name); err != nil {
		return nil, err
	}

	buf.WriteString(`,"properties":`)
	propsBs, err := json.Marshal(t.properties)
	if err != nil {
		return nil, err
	}
	buf.Write(propsBs)

	buf.WriteString(`,"childNodes":`)
	childBs, err := json.Marshal(t.childNodes)
	if err != nil {
		return nil, err
	}
	buf.Write(childBs)

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON renders an empty collection as [], not null.
func (ts Templates) MarshalJSON() ([]byte, error) {
	if ts == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]*Template(ts))
}

func writeNullableString(buf *bytes.Buffer, s string) error {
	if s == "" {
		buf.WriteString("null")
		return nil
	}
	bs, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(bs)
	return nil
}
