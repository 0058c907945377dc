// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlconf

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"carvel.dev/graft/pkg/filepos"
	"carvel.dev/graft/pkg/orderedmap"
)

// Tree is one parsed YAML document: ordered maps, slices and scalars,
// with the source position of every value recorded under its dotted
// configuration path (e.g. "childNodes.hero.properties.title").
type Tree struct {
	Root interface{}

	file      string
	positions map[string]*filepos.Position
}

// Parse reads exactly one YAML document into a Tree. Mappings must have
// unique string keys; anchors and aliases are resolved during parsing.
func Parse(bs []byte, file string) (*Tree, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(bs, &doc)
	if err != nil {
		return nil, fmt.Errorf("Parsing '%s': %s", file, err)
	}

	tree := &Tree{file: file, positions: map[string]*filepos.Position{}}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return tree, nil
	}

	rootNode := doc.Content[0]

	root, err := tree.convert(rootNode, "", tree.pos(rootNode))
	if err != nil {
		return nil, err
	}

	tree.Root = root
	return tree, nil
}

// Position returns where the value at the given path came from; an
// unknown position (still naming the file) when the path never parsed.
func (t *Tree) Position(path string) *filepos.Position {
	if pos, found := t.positions[path]; found {
		return pos
	}
	return filepos.NewUnknownPositionInFile(t.file)
}

func (t *Tree) File() string { return t.file }

func (t *Tree) convert(node *yaml.Node, path string, pos *filepos.Position) (interface{}, error) {
	if node.Kind == yaml.AliasNode {
		return t.convert(node.Alias, path, pos)
	}

	t.positions[path] = pos

	switch node.Kind {
	case yaml.MappingNode:
		result := orderedmap.NewMap()
		for i := 0; i < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]

			var key string
			err := keyNode.Decode(&key)
			if err != nil {
				return nil, fmt.Errorf("Parsing '%s': expected map key at line %d to be a string: %s",
					t.file, keyNode.Line, err)
			}
			if _, found := result.Get(key); found {
				return nil, fmt.Errorf("Parsing '%s': duplicate map key '%s' at line %d",
					t.file, key, keyNode.Line)
			}

			childPath := joinPath(path, key)

			// entries point at their key, not their (possibly folded) value
			val, err := t.convert(valNode, childPath, t.pos(keyNode))
			if err != nil {
				return nil, err
			}
			result.Set(key, val)
		}
		return result, nil

	case yaml.SequenceNode:
		result := make([]interface{}, 0, len(node.Content))
		for i, itemNode := range node.Content {
			itemPath := fmt.Sprintf("%s[%d]", path, i)

			val, err := t.convert(itemNode, itemPath, t.pos(itemNode))
			if err != nil {
				return nil, err
			}
			result = append(result, val)
		}
		return result, nil

	case yaml.ScalarNode:
		var val interface{}
		err := node.Decode(&val)
		if err != nil {
			return nil, fmt.Errorf("Parsing '%s': decoding scalar at line %d: %s", t.file, node.Line, err)
		}
		return val, nil

	default:
		return nil, fmt.Errorf("Parsing '%s': unsupported YAML node at line %d", t.file, node.Line)
	}
}

func (t *Tree) pos(node *yaml.Node) *filepos.Position {
	if node.Line <= 0 {
		return filepos.NewUnknownPositionInFile(t.file)
	}
	return filepos.NewPositionInFile(node.Line, t.file)
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
