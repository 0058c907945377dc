// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"
	"unicode"

	"carvel.dev/graft/pkg/nodetype"
	"carvel.dev/graft/pkg/orderedmap"
)

const (
	uriPathSegmentProperty = "uriPathSegment"
	titleProperty          = "title"
)

// applyState says how a branch's node was resolved. The rest of the
// progression (properties applied, children applied, sink notified) is
// the straight-line order of applyOne.
type applyState int

const (
	stateResolvedExisting applyState = iota
	stateCreated
)

// Opts configure an Engine.
type Opts struct {
	// Process evaluates raw configuration values (see ProcessFunc).
	Process ProcessFunc

	// Pos locates configuration paths for error origins. Optional.
	Pos PositionFunc

	// Sink is notified after each applied node's children have been
	// applied. Optional.
	Sink Sink
}

// Engine builds templates from configuration and applies them to a
// node store in one interleaved walk: a node's properties are fully
// applied before its children are built, so child expressions observe
// the parent's fresh state through the injected node value.
type Engine struct {
	store Store
	types *nodetype.Registry
	opts  Opts
}

func NewEngine(store Store, types *nodetype.Registry, opts Opts) *Engine {
	return &Engine{store: store, types: types, opts: opts}
}

// BuildAndApply evaluates conf against the initial context and applies
// the result to the target node. The returned template records what
// was resolved; the exceptions collect every recoverable failure. The
// error is non-nil only for fatal authoring mistakes such as unknown
// configuration keys or reserved property names.
func (e *Engine) BuildAndApply(conf *orderedmap.Map, initialCtx map[string]interface{},
	target Ref, applyOpts ApplyOptions) (*Template, *CaughtExceptions, error) {

	errs := NewCaughtExceptions()

	ctx := map[string]interface{}{}
	for k, v := range initialCtx {
		ctx[k] = v
	}
	ctx[nodeContextKey] = e.nodeValue(target)

	b, err := NewRootBuilder(conf, ctx, e.opts.Process, errs, e.opts.Pos)
	if err != nil {
		return nil, errs, err
	}

	tpl, err := e.applyRoot(b, target, applyOpts)
	if err != nil {
		return nil, errs, err
	}

	return tpl, errs, nil
}

// Apply walks an already built template tree and applies it to the
// target node. Property values are applied as they stand; evaluation
// happened when the template was built.
func (e *Engine) Apply(tpl *Template, target Ref, applyOpts ApplyOptions) *CaughtExceptions {
	errs := NewCaughtExceptions()
	if tpl != nil {
		e.applyTemplate(tpl, target, errs, applyOpts)
	}
	return errs
}

func (e *Engine) applyRoot(b *Builder, target Ref, applyOpts ApplyOptions) (*Template, error) {
	scoped, proceed := resolveScope(b)
	if !proceed {
		return nil, nil
	}

	typeName := e.store.TypeOf(target)

	evaluated, err := evalProperties(scoped, typeName)
	if err != nil {
		return nil, err
	}

	record := snapshotProps(evaluated)

	err = e.applyProperties(evaluated, typeName, target, scoped.Exceptions())
	if err != nil {
		return nil, err
	}

	e.deriveURIPathSegment(target, typeName, scoped.Exceptions())

	childScope := scoped.WithMergedContext(map[string]interface{}{nodeContextKey: e.nodeValue(target)})

	children, err := e.applyChildren(childScope, target, applyOpts)
	if err != nil {
		return nil, err
	}

	e.notify(target, childScope.Context(), applyOpts)

	return NewRootTemplate(record, children), nil
}

func (e *Engine) applyChildren(b *Builder, parent Ref, applyOpts ApplyOptions) (Templates, error) {
	entries, err := childEntries(b)
	if err != nil {
		return nil, err
	}

	var result Templates
	for _, entry := range entries {
		applied, err := e.applyNested(entry.builder, parent, applyOpts)
		if err != nil {
			return nil, err
		}
		result = append(result, applied...)
	}
	return result, nil
}

func (e *Engine) applyNested(b *Builder, parent Ref, applyOpts ApplyOptions) (Templates, error) {
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
		passScope := scoped
		if pass.inject {
			passScope = scoped.WithMergedContext(map[string]interface{}{
				itemContextKey: pass.item,
				keyContextKey:  pass.key,
			})
		}

		tpl, err := e.applyOne(passScope, parent, applyOpts)
		if err != nil {
			return nil, err
		}
		if tpl != nil {
			result = append(result, tpl)
		}
	}
	return result, nil
}

func (e *Engine) applyOne(b *Builder, parent Ref, applyOpts ApplyOptions) (*Template, error) {
	typeName, name, ok := evalTypeAndName(b)
	if !ok {
		return nil, nil
	}

	node, state, err := e.findOrCreate(parent, typeName, name)
	if err != nil {
		b.Record(err, "")
		return nil, nil
	}

	nodeType := e.store.TypeOf(node)

	if state == stateCreated {
		e.applyDefaults(node, nodeType, b.Exceptions())
	}

	evaluated, err := evalProperties(b, nodeType)
	if err != nil {
		return nil, err
	}

	record := snapshotProps(evaluated)

	err = e.applyProperties(evaluated, nodeType, node, b.Exceptions())
	if err != nil {
		return nil, err
	}

	e.deriveURIPathSegment(node, nodeType, b.Exceptions())

	childScope := b.WithMergedContext(map[string]interface{}{nodeContextKey: e.nodeValue(node)})

	children, err := e.applyChildren(childScope, node, applyOpts)
	if err != nil {
		return nil, err
	}

	e.notify(node, childScope.Context(), applyOpts)

	return NewTemplate(nodeType, e.store.NameOf(node), record, children), nil
}

func (e *Engine) applyTemplate(tpl *Template, node Ref, errs *CaughtExceptions, applyOpts ApplyOptions) {
	typeName := e.store.TypeOf(node)

	evaluated := snapshotProps(tpl.Properties())

	err := e.applyProperties(evaluated, typeName, node, errs)
	if err != nil {
		errs.Add(NewCaughtException(err).WithCause(CauseBranchIgnored))
		return
	}

	e.deriveURIPathSegment(node, typeName, errs)

	for _, child := range tpl.ChildNodes() {
		childNode, state, err := e.findOrCreate(node, child.Type(), child.Name())
		if err != nil {
			origin := fmt.Sprintf("child '%s'", child.Name())
			errs.Add(NewCaughtException(err).WithOrigin(origin).WithCause(CauseBranchIgnored))
			continue
		}
		if state == stateCreated {
			e.applyDefaults(childNode, e.store.TypeOf(childNode), errs)
		}
		e.applyTemplate(child, childNode, errs, applyOpts)
	}

	e.notify(node, nil, applyOpts)
}

// findOrCreate resolves a child by name when one exists, and creates
// it otherwise. Anonymous children (empty name) are always created.
func (e *Engine) findOrCreate(parent Ref, typeName, name string) (Ref, applyState, error) {
	if name != "" {
		if existing, found := e.store.FindChild(parent, name); found {
			return existing, stateResolvedExisting, nil
		}
	}

	if typeName == "" {
		return nil, stateCreated, fmt.Errorf(
			"Expected type for child '%s' since no existing child has that name", name)
	}

	def, found := e.types.Get(typeName)
	if !found {
		return nil, stateCreated, fmt.Errorf("Expected node type '%s' to be known", typeName)
	}
	if def.Abstract {
		return nil, stateCreated, fmt.Errorf(
			"Expected node type '%s' to be concrete, but was abstract", typeName)
	}

	node, err := e.store.CreateChild(parent, typeName, name)
	if err != nil {
		return nil, stateCreated, err
	}
	return node, stateCreated, nil
}

func (e *Engine) applyDefaults(node Ref, typeName string, errs *CaughtExceptions) {
	e.types.DefaultValues(typeName).Iterate(func(prop string, val interface{}) {
		err := e.store.SetProperty(node, prop, val)
		if err != nil {
			errs.Add(NewCaughtException(err).
				WithOrigin(propertyOrigin(prop, typeName)).
				WithCause(CausePropertyIgnored))
		}
	})
}

// applyProperties runs the evaluated properties through the validation
// gate and writes the survivors to the store. The map is consumed.
func (e *Engine) applyProperties(evaluated *orderedmap.Map, typeName string,
	node Ref, errs *CaughtExceptions) error {

	metas := ExtractMetaProperties(evaluated)

	split, err := Split(evaluated, typeName, e.types)
	if err != nil {
		return err
	}

	props := split.RequireValidProperties(typeName, e.types, errs)
	props.Iterate(func(prop string, val interface{}) {
		err := e.store.SetProperty(node, prop, val)
		if err != nil {
			errs.Add(NewCaughtException(err).
				WithOrigin(propertyOrigin(prop, typeName)).
				WithCause(CausePropertyIgnored))
		}
	})

	refs := split.RequireValidReferences(typeName, e.types, e.store, errs)
	refs.Iterate(func(ref string, val interface{}) {
		err := e.store.SetReference(node, ref, val.([]string))
		if err != nil {
			errs.Add(NewCaughtException(err).
				WithOrigin(propertyOrigin(ref, typeName)).
				WithCause(CauseReferenceIgnored))
		}
	})

	metas.Iterate(func(meta string, val interface{}) {
		e.applyMetaProperty(node, typeName, meta, val, errs)
	})

	return nil
}

func (e *Engine) applyMetaProperty(node Ref, typeName, meta string,
	val interface{}, errs *CaughtExceptions) {

	record := func(err error) {
		errs.Add(NewCaughtException(err).
			WithOrigin(propertyOrigin(meta, typeName)).
			WithCause(CausePropertyIgnored))
	}

	switch meta {
	case hiddenMetaProperty:
		hidden, ok := val.(bool)
		if !ok {
			record(fmt.Errorf("Expected hidden to be a boolean, but was %T", val))
			return
		}
		err := e.store.SetHidden(node, hidden)
		if err != nil {
			record(err)
		}
	}
}

// deriveURIPathSegment fills in uriPathSegment from the title for
// document nodes that do not carry one yet.
func (e *Engine) deriveURIPathSegment(node Ref, typeName string, errs *CaughtExceptions) {
	if !e.types.IsDocumentType(typeName) {
		return
	}

	props := e.store.PropertiesOf(node)

	existing, found := props.Get(uriPathSegmentProperty)
	if found {
		str, ok := existing.(string)
		if !ok || str != "" {
			return
		}
	}

	title, found := props.Get(titleProperty)
	if !found {
		return
	}
	titleStr, ok := title.(string)
	if !ok || titleStr == "" {
		return
	}

	err := e.store.SetProperty(node, uriPathSegmentProperty, Slugify(titleStr))
	if err != nil {
		errs.Add(NewCaughtException(err).
			WithOrigin(propertyOrigin(uriPathSegmentProperty, typeName)).
			WithCause(CausePropertyIgnored))
	}
}

// nodeValue is the read snapshot of a node injected into evaluation
// contexts under the node key.
func (e *Engine) nodeValue(n Ref) *orderedmap.Map {
	val := orderedmap.NewMap()
	val.Set("identifier", n.Identifier())
	val.Set("name", e.store.NameOf(n))
	val.Set("type", e.store.TypeOf(n))
	val.Set("properties", e.store.PropertiesOf(n))
	return val
}

func (e *Engine) notify(n Ref, ctx map[string]interface{}, applyOpts ApplyOptions) {
	if e.opts.Sink == nil {
		return
	}
	e.opts.Sink.NodeTemplateApplied(n, ctx, applyOpts)
}

// Slugify turns a title into a uriPathSegment: lower-cased, with runs
// of anything but letters and digits collapsed into single dashes.
func Slugify(title string) string {
	var sb strings.Builder
	pendingStart := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			pendingStart = false
		} else if !pendingStart {
			sb.WriteByte('-')
			pendingStart = true
		}
	}
	return strings.TrimRight(sb.String(), "-")
}

func snapshotProps(props *orderedmap.Map) *orderedmap.Map {
	copied := orderedmap.NewMap()
	props.Iterate(func(key string, val interface{}) {
		copied.Set(key, val)
	})
	return copied
}
