// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlconf

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"carvel.dev/graft/pkg/orderedmap"
)

// Serialize renders a configuration tree as YAML with map keys in their
// recorded order. (yaml.Marshal on its own would not keep the order of
// *orderedmap.Map.)
func Serialize(val interface{}) ([]byte, error) {
	node, err := asYAMLNode(val)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func asYAMLNode(val interface{}) (*yaml.Node, error) {
	switch typedVal := val.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case *orderedmap.Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		err := typedVal.IterateErr(func(k string, v interface{}) error {
			valNode, err := asYAMLNode(v)
			if err != nil {
				return err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, valNode)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return node, nil

	case map[string]interface{}:
		ordered := orderedmap.Conversion{Object: typedVal}.FromUnorderedMaps()
		return asYAMLNode(ordered)

	case []interface{}:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, v := range typedVal {
			itemNode, err := asYAMLNode(v)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, itemNode)
		}
		return node, nil

	case []string:
		items := make([]interface{}, len(typedVal))
		for i, v := range typedVal {
			items[i] = v
		}
		return asYAMLNode(items)

	default:
		node := &yaml.Node{}
		err := node.Encode(val)
		if err != nil {
			return nil, fmt.Errorf("Serializing %T: %s", val, err)
		}
		return node, nil
	}
}
