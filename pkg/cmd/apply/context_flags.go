// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"carvel.dev/graft/pkg/orderedmap"
	"carvel.dev/graft/pkg/yamlconf"
)

// ContextFlags collect the initial expression context from env
// variables, files and explicit key-value flags. Later sources win:
// env, then files, then plain KVs, then YAML KVs.
type ContextFlags struct {
	EnvFromStrings []string
	EnvFromYAML    []string

	FromFiles []string

	KVsFromStrings []string
	KVsFromYAML    []string
}

func (s *ContextFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&s.EnvFromStrings, "context-env", nil, "Extract context values (as strings) from prefixed env vars (format: PREFIX for PREFIX_key1=str) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.EnvFromYAML, "context-env-yaml", nil, "Extract context values (parsed as YAML) from prefixed env vars (format: PREFIX for PREFIX_key1=true) (can be specified multiple times)")

	cmd.Flags().StringArrayVar(&s.FromFiles, "context-file", nil, "Read context values from a YAML, JSON or TOML file holding a top-level mapping (can be specified multiple times)")

	cmd.Flags().StringArrayVarP(&s.KVsFromStrings, "context", "c", nil, "Set specific context value to given value, as string (format: key1.subkey=value) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.KVsFromYAML, "context-yaml", nil, "Set specific context value to given value, parsed as YAML (format: key1.subkey=true) (can be specified multiple times)")
}

type contextFlagsSource struct {
	Values        []string
	TransformFunc func(string) (interface{}, error)
}

// Values resolves all flag sources into the initial context. Keys may
// be dotted to address nested mappings (key1.subkey=val).
func (s *ContextFlags) Values() (map[string]interface{}, error) {
	plainValFunc := func(rawVal string) (interface{}, error) { return rawVal, nil }

	yamlValFunc := func(rawVal string) (interface{}, error) {
		val, err := s.parseYAML(rawVal)
		if err != nil {
			return nil, fmt.Errorf("Deserializing YAML value: %s", err)
		}
		return val, nil
	}

	result := orderedmap.NewMap()

	for _, src := range []contextFlagsSource{{s.EnvFromStrings, plainValFunc}, {s.EnvFromYAML, yamlValFunc}} {
		for _, envPrefix := range src.Values {
			vals, err := s.env(envPrefix, src.TransformFunc)
			if err != nil {
				return nil, fmt.Errorf("Extracting context values from env under prefix '%s': %s", envPrefix, err)
			}
			err = s.mergeFlat(result, vals)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, file := range s.FromFiles {
		vals, err := s.file(file)
		if err != nil {
			return nil, fmt.Errorf("Extracting context values from file: %s", err)
		}
		s.mergeNested(result, vals)
	}

	// explicit KVs take precedence over env variables and files
	for _, src := range []contextFlagsSource{{s.KVsFromStrings, plainValFunc}, {s.KVsFromYAML, yamlValFunc}} {
		for _, kv := range src.Values {
			vals, err := s.kv(kv, src.TransformFunc)
			if err != nil {
				return nil, fmt.Errorf("Extracting context value from KV: %s", err)
			}
			err = s.mergeFlat(result, vals)
			if err != nil {
				return nil, err
			}
		}
	}

	ctx := map[string]interface{}{}
	result.Iterate(func(k string, v interface{}) {
		ctx[k] = v
	})
	return ctx, nil
}

func (s *ContextFlags) env(prefix string, valueFunc func(string) (interface{}, error)) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()
	envVars := os.Environ()

	for _, envVar := range envVars {
		pieces := strings.SplitN(envVar, "=", 2)
		if len(pieces) != 2 {
			return nil, fmt.Errorf("Expected env variable to be key-value pair (format: key=value)")
		}

		if !strings.HasPrefix(pieces[0], prefix+"_") {
			continue
		}

		val, err := valueFunc(pieces[1])
		if err != nil {
			return nil, fmt.Errorf("Extracting context value from env variable '%s': %s", pieces[0], err)
		}

		// '__' gets translated into a '.' since periods may not be liked by shells
		result.Set(strings.Replace(strings.TrimPrefix(pieces[0], prefix+"_"), "__", ".", -1), val)
	}

	return result, nil
}

func (s *ContextFlags) kv(kv string, valueFunc func(string) (interface{}, error)) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()

	pieces := strings.SplitN(kv, "=", 2)
	if len(pieces) != 2 {
		return nil, fmt.Errorf("Expected format key=value")
	}

	val, err := valueFunc(pieces[1])
	if err != nil {
		return nil, fmt.Errorf("Deserializing value for key '%s': %s", pieces[0], err)
	}

	result.Set(pieces[0], val)

	return result, nil
}

func (s *ContextFlags) parseYAML(data string) (interface{}, error) {
	tree, err := yamlconf.Parse([]byte(data), "")
	if err != nil {
		return nil, err
	}
	return tree.Root, nil
}

func (s *ContextFlags) file(path string) (*orderedmap.Map, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Reading file '%s': %s", path, err)
	}

	if strings.HasSuffix(path, ".toml") {
		var raw map[string]interface{}
		err := toml.Unmarshal(contents, &raw)
		if err != nil {
			return nil, fmt.Errorf("Parsing '%s': %s", path, err)
		}
		return orderedmap.Conversion{Object: raw}.FromUnorderedMaps().(*orderedmap.Map), nil
	}

	// JSON parses as YAML, keeping key order
	tree, err := yamlconf.Parse(contents, path)
	if err != nil {
		return nil, err
	}

	root, ok := tree.Root.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("Expected file '%s' to hold a mapping at the top level, but was %T", path, tree.Root)
	}

	return root, nil
}

func (s *ContextFlags) mergeFlat(result, vals *orderedmap.Map) error {
	return vals.IterateErr(func(key string, val interface{}) error {
		keyPieces := strings.Split(key, ".")
		currMap := result
		for _, keyPiece := range keyPieces[:len(keyPieces)-1] {
			subMap, found := currMap.Get(keyPiece)
			if found {
				if typedSubMap, ok := subMap.(*orderedmap.Map); ok {
					currMap = typedSubMap
				} else {
					return fmt.Errorf("Expected key '%s' to not conflict with other context values at piece '%s'", key, keyPiece)
				}
			} else {
				newCurrMap := orderedmap.NewMap()
				currMap.Set(keyPiece, newCurrMap)
				currMap = newCurrMap
			}
		}
		currMap.Set(keyPieces[len(keyPieces)-1], val)
		return nil
	})
}

func (s *ContextFlags) mergeNested(result, vals *orderedmap.Map) {
	vals.Iterate(func(key string, val interface{}) {
		if existing, found := result.Get(key); found {
			existingMap, haveMap := existing.(*orderedmap.Map)
			valMap, gotMap := val.(*orderedmap.Map)
			if haveMap && gotMap {
				s.mergeNested(existingMap, valMap)
				return
			}
		}
		result.Set(key, val)
	})
}
