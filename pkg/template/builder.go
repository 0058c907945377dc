// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"

	"carvel.dev/graft/pkg/filepos"
	"carvel.dev/graft/pkg/orderedmap"
	"carvel.dev/graft/pkg/spell"
)

// ProcessFunc evaluates one raw configuration value against a context:
// placeholder strings are evaluated, containers are processed deeply,
// literals come back as they are.
type ProcessFunc func(raw interface{}, ctx map[string]interface{}) (interface{}, error)

// PositionFunc locates a dotted configuration path in its source
// document.
type PositionFunc func(path string) *filepos.Position

var (
	rootKeys   = []string{"properties", "childNodes", "when", "withContext"}
	nestedKeys = []string{"type", "name", "properties", "childNodes", "when", "withItems", "withContext"}
)

// Context keys the engine injects on top of the caller's context.
const (
	nodeContextKey = "node"
	itemContextKey = "item"
	keyContextKey  = "key"
)

// Builder is an immutable cursor over one configuration subtree. It
// bundles the raw configuration, the path that led to it, the
// evaluation context in scope, the value processor and the shared
// exception sink. The with-methods return new builders; contexts of
// enclosing scopes are never modified.
type Builder struct {
	conf    *orderedmap.Map
	path    string
	ctx     map[string]interface{}
	process ProcessFunc
	errs    *CaughtExceptions
	pos     PositionFunc
}

// NewRootBuilder wraps the root of a configuration tree. Unknown
// root-level keys are authoring errors and fail immediately.
func NewRootBuilder(conf *orderedmap.Map, ctx map[string]interface{}, process ProcessFunc, errs *CaughtExceptions, pos PositionFunc) (*Builder, error) {
	if conf == nil {
		conf = orderedmap.NewMap()
	}
	if ctx == nil {
		ctx = map[string]interface{}{}
	}
	if process == nil {
		process = func(raw interface{}, _ map[string]interface{}) (interface{}, error) { return raw, nil }
	}
	if errs == nil {
		errs = NewCaughtExceptions()
	}
	if pos == nil {
		pos = func(string) *filepos.Position { return filepos.NewUnknownPosition() }
	}

	b := &Builder{conf: conf, path: "", ctx: ctx, process: process, errs: errs, pos: pos}

	err := validateKeys(conf, "template root", rootKeys)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ChildBuilder descends into the configuration of one child entry.
// Unknown keys on the entry are authoring errors and fail immediately.
func (b *Builder) ChildBuilder(conf *orderedmap.Map, pathSuffix string) (*Builder, error) {
	childPath := joinPath(b.path, pathSuffix)

	err := validateKeys(conf, fmt.Sprintf("'%s'", childPath), nestedKeys)
	if err != nil {
		return nil, err
	}

	return &Builder{conf: conf, path: childPath, ctx: b.ctx, process: b.process, errs: b.errs, pos: b.pos}, nil
}

// WithMergedContext returns a builder whose context is the shallow
// merge of the current context and extra. The current context is left
// untouched.
func (b *Builder) WithMergedContext(extra map[string]interface{}) *Builder {
	if len(extra) == 0 {
		return b
	}

	merged := make(map[string]interface{}, len(b.ctx)+len(extra))
	for k, v := range b.ctx {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}

	copied := *b
	copied.ctx = merged
	return &copied
}

// Context returns the context in scope; callers must not modify it.
func (b *Builder) Context() map[string]interface{} { return b.ctx }

func (b *Builder) Exceptions() *CaughtExceptions { return b.errs }

func (b *Builder) Path() string { return b.path }

// Raw returns the unevaluated configuration value at key.
func (b *Builder) Raw(key string) (interface{}, bool) {
	return b.conf.Get(key)
}

// Eval processes one raw value against the context in scope. Failures
// are returned, not recorded.
func (b *Builder) Eval(raw interface{}) (interface{}, error) {
	return b.process(raw, b.ctx)
}

// EvalAt processes the value found at key. An evaluation failure is
// recorded against the key's configuration path and reported as
// ok=false: the caller abandons the branch.
func (b *Builder) EvalAt(key string) (interface{}, bool, bool) {
	raw, found := b.conf.Get(key)
	if !found {
		return nil, false, true
	}

	val, err := b.process(raw, b.ctx)
	if err != nil {
		b.Record(err, key)
		return nil, true, false
	}
	return val, true, true
}

// Record adds a caught exception for a failure at the given key or
// subpath, naming the configuration path (and source position when
// known) as the origin.
func (b *Builder) Record(err error, subPath string) {
	b.errs.Add(NewCaughtException(err).WithOrigin(b.OriginAt(subPath)).WithCause(CauseBranchIgnored))
}

// OriginAt renders the origin string for a subpath of this builder's
// configuration: the dotted path, plus file and line when known.
func (b *Builder) OriginAt(subPath string) string {
	full := joinPath(b.path, subPath)
	if full == "" {
		full = "template root"
	}

	pos := b.pos(full)
	if pos.IsKnown() {
		return fmt.Sprintf("%s (%s)", full, pos.AsCompactString())
	}
	return full
}

func validateKeys(conf *orderedmap.Map, where string, allowed []string) error {
	if conf == nil {
		return nil
	}
	return conf.IterateErr(func(key string, _ interface{}) error {
		for _, a := range allowed {
			if key == a {
				return nil
			}
		}
		hint := ""
		if nearest, ok := spell.Nearest(key, allowed); ok {
			hint = fmt.Sprintf(" (hint: did you mean '%s'?)", nearest)
		}
		return fmt.Errorf("Unknown key '%s' in %s (allowed: %s)%s", key, where, strings.Join(allowed, ", "), hint)
	})
}

func joinPath(path, suffix string) string {
	switch {
	case path == "":
		return suffix
	case suffix == "":
		return path
	default:
		return path + "." + suffix
	}
}

// IsTruthy interprets a value the way conditions do: nil, false, zero
// numbers, empty strings and empty collections are falsy, everything
// else is truthy.
func IsTruthy(val interface{}) bool {
	switch typedVal := val.(type) {
	case nil:
		return false
	case bool:
		return typedVal
	case string:
		return len(typedVal) > 0
	case int:
		return typedVal != 0
	case int64:
		return typedVal != 0
	case uint64:
		return typedVal != 0
	case float64:
		return typedVal != 0
	case []interface{}:
		return len(typedVal) > 0
	case *orderedmap.Map:
		return typedVal.Len() > 0
	default:
		return true
	}
}
