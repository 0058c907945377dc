// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"

	"carvel.dev/graft/pkg/orderedmap"
)

// Factory evaluates configuration into fully resolved templates without
// touching any store: the pure half of build-and-apply.
//
// Per configuration node it works in a fixed order: withContext, when,
// withItems, type and name, properties, childNodes. A recoverable
// failure anywhere in that chain abandons only the branch it happened
// in; siblings continue.
type Factory struct{}

func NewFactory() Factory { return Factory{} }

// BuildRoot evaluates a whole configuration tree into its root
// template. ok=false means the root itself was skipped (falsy when) or
// its scope failed to evaluate; the error is fatal and reserved for
// authoring mistakes.
func (f Factory) BuildRoot(b *Builder) (*Template, bool, error) {
	scoped, proceed := resolveScope(b)
	if !proceed {
		return nil, false, nil
	}

	props, err := evalProperties(scoped, "")
	if err != nil {
		return nil, false, err
	}

	children, err := f.buildChildren(scoped)
	if err != nil {
		return nil, false, err
	}

	return NewRootTemplate(props, children), true, nil
}

// buildNested evaluates one child configuration entry into its
// template fan-out: one template per withItems pass, exactly one when
// withItems is absent, none when the branch is skipped or aborted.
func (f Factory) buildNested(b *Builder) (Templates, error) {
	scoped, proceed := resolveScope(b)
	if !proceed {
		return nil, nil
	}

	passes, ok := withItemsPasses(scoped)
	if !ok {
		return nil, nil
	}

	var result Templates
	for _, pass := range passes {
		pb := scoped
		if pass.inject {
			pb = scoped.WithMergedContext(map[string]interface{}{
				itemContextKey: pass.item,
				keyContextKey:  pass.key,
			})
		}

		typeName, name, ok := evalTypeAndName(pb)
		if !ok {
			continue
		}

		props, err := evalProperties(pb, typeName)
		if err != nil {
			return nil, err
		}

		children, err := f.buildChildren(pb)
		if err != nil {
			return nil, err
		}

		result = append(result, NewTemplate(typeName, name, props, children))
	}
	return result, nil
}

func (f Factory) buildChildren(b *Builder) (Templates, error) {
	entries, err := childEntries(b)
	if err != nil {
		return nil, err
	}

	var result Templates
	for _, entry := range entries {
		built, err := f.buildNested(entry.builder)
		if err != nil {
			return nil, err
		}
		result = append(result, built...)
	}
	return result, nil
}

// resolveScope applies withContext and when for one configuration node.
// The returned builder carries the merged context. proceed=false covers
// both a falsy when (silent skip) and a failed evaluation (recorded).
func resolveScope(b *Builder) (*Builder, bool) {
	scoped := b

	raw, found := b.Raw("withContext")
	if found && raw != nil {
		extraConf, ok := raw.(*orderedmap.Map)
		if !ok {
			b.Record(fmt.Errorf("Expected withContext to be a mapping, but was %T", raw), "withContext")
			return nil, false
		}

		// entries see the incoming context only, never each other
		extra := map[string]interface{}{}
		aborted := false
		extraConf.Iterate(func(key string, rawVal interface{}) {
			if aborted {
				return
			}
			val, err := b.Eval(rawVal)
			if err != nil {
				b.Record(err, "withContext."+key)
				aborted = true
				return
			}
			extra[key] = val
		})
		if aborted {
			return nil, false
		}

		scoped = b.WithMergedContext(extra)
	}

	whenVal, found, ok := scoped.EvalAt("when")
	if !ok {
		return nil, false
	}
	if found && !IsTruthy(whenVal) {
		return nil, false
	}

	return scoped, true
}

type itemPass struct {
	key    interface{}
	item   interface{}
	inject bool
}

// withItemsPasses expands withItems into one evaluation pass per
// (key, item) pair. Absent withItems yields a single pass injecting
// nothing, which keeps an ancestor's item and key visible. A literal
// string is a comma-delimited list; an expression must evaluate to a
// list or a mapping.
func withItemsPasses(b *Builder) ([]itemPass, bool) {
	raw, found := b.Raw("withItems")
	if !found || raw == nil {
		return []itemPass{{inject: false}}, true
	}

	val, err := b.Eval(raw)
	if err != nil {
		b.Record(err, "withItems")
		return nil, false
	}

	var passes []itemPass

	switch typedVal := val.(type) {
	case string:
		if rawStr, ok := raw.(string); ok && rawStr == typedVal {
			// an untouched literal, not an expression result
			for i, piece := range strings.Split(typedVal, ",") {
				passes = append(passes, itemPass{key: i, item: strings.TrimSpace(piece), inject: true})
			}
			return passes, true
		}
		b.Record(fmt.Errorf("Expected withItems expression to evaluate to a list or mapping, but was string"), "withItems")
		return nil, false

	case []interface{}:
		for i, item := range typedVal {
			passes = append(passes, itemPass{key: i, item: item, inject: true})
		}
		return passes, true

	case *orderedmap.Map:
		typedVal.Iterate(func(k string, v interface{}) {
			passes = append(passes, itemPass{key: k, item: v, inject: true})
		})
		return passes, true

	default:
		b.Record(fmt.Errorf("Expected withItems to evaluate to a list or mapping, but was %T", val), "withItems")
		return nil, false
	}
}

// evalTypeAndName resolves the type and name of one child entry. Either
// may be absent: a nameless child is created with a generated name, a
// typeless one can only attach to an existing child.
func evalTypeAndName(b *Builder) (string, string, bool) {
	typeName, ok := evalScalarString(b, "type")
	if !ok {
		return "", "", false
	}

	name, ok := evalScalarString(b, "name")
	if !ok {
		return "", "", false
	}

	return typeName, name, true
}

func evalScalarString(b *Builder, key string) (string, bool) {
	val, found, ok := b.EvalAt(key)
	if !ok {
		return "", false
	}
	if !found || val == nil {
		return "", true
	}

	switch typedVal := val.(type) {
	case string:
		return typedVal, true
	case int, int64, uint64, float64, bool:
		return fmt.Sprintf("%v", typedVal), true
	default:
		b.Record(fmt.Errorf("Expected %s to resolve to a string, but was %T", key, val), key)
		return "", false
	}
}

// evalProperties resolves each property value independently: a failing
// property is recorded and dropped, the rest survive. Property names
// carrying the reserved '_' prefix are authoring errors.
func evalProperties(b *Builder, typeName string) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()

	raw, found := b.Raw("properties")
	if !found || raw == nil {
		return result, nil
	}

	propsMap, ok := raw.(*orderedmap.Map)
	if !ok {
		b.Record(fmt.Errorf("Expected properties to be a mapping, but was %T", raw), "properties")
		return result, nil
	}

	err := propsMap.IterateErr(func(propName string, rawVal interface{}) error {
		if strings.HasPrefix(propName, "_") {
			return fmt.Errorf("Property name '%s' at '%s' uses the reserved '_' prefix%s",
				propName, b.OriginAt("properties"), metaAliasHint(propName))
		}

		val, err := b.Eval(rawVal)
		if err != nil {
			b.Exceptions().Add(NewCaughtException(err).
				WithOrigin(propertyOrigin(propName, typeName)).
				WithCause(CausePropertyIgnored))
			return nil
		}

		result.Set(propName, val)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// childEntries returns one builder per childNodes entry, in declaration
// order. Unknown keys inside an entry are authoring errors.
func childEntries(b *Builder) ([]childEntry, error) {
	raw, found := b.Raw("childNodes")
	if !found || raw == nil {
		return nil, nil
	}

	confMap, ok := raw.(*orderedmap.Map)
	if !ok {
		b.Record(fmt.Errorf("Expected childNodes to be a mapping, but was %T", raw), "childNodes")
		return nil, nil
	}

	var entries []childEntry
	err := confMap.IterateErr(func(label string, rawChild interface{}) error {
		if rawChild == nil {
			return nil
		}

		childConf, ok := rawChild.(*orderedmap.Map)
		if !ok {
			b.Record(fmt.Errorf("Expected child entry '%s' to be a mapping, but was %T", label, rawChild),
				"childNodes."+label)
			return nil
		}

		cb, err := b.ChildBuilder(childConf, "childNodes."+label)
		if err != nil {
			return err
		}

		entries = append(entries, childEntry{label: label, builder: cb})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

type childEntry struct {
	label   string
	builder *Builder
}

func propertyOrigin(propName, typeName string) string {
	if typeName == "" {
		return propName
	}
	return fmt.Sprintf("%s in %s", propName, typeName)
}
