// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cmdui "carvel.dev/graft/pkg/cmd/ui"
	"carvel.dev/graft/pkg/expression"
	"carvel.dev/graft/pkg/files"
	"carvel.dev/graft/pkg/nodestore"
	"carvel.dev/graft/pkg/nodetype"
	"carvel.dev/graft/pkg/orderedmap"
	"carvel.dev/graft/pkg/template"
	"carvel.dev/graft/pkg/version"
	"carvel.dev/graft/pkg/yamlconf"
)

// DefaultRootType is the node type assumed for the content tree root
// when --root-type is not given.
const DefaultRootType = "graft:root"

type Options struct {
	Debug    bool
	Preview  bool
	RootType string

	FileFlags    FileFlags
	OutputFlags  OutputFlags
	ContextFlags ContextFlags
}

type FileFlags struct {
	ConfigPaths   []string
	NodeTypesPath string
}

func (s *FileFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.ConfigPaths, "file", "f", nil, "Configuration file, directory, URL or - for stdin (can be specified multiple times)")
	cmd.Flags().StringVar(&s.NodeTypesPath, "node-types", "", "Node type catalog file or URL (required unless --preview)")
}

type OutputFlags struct {
	Format string
}

func (s *OutputFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.Format, "output", "o", "yaml", "Output format for the resulting tree (yaml|json)")
}

func NewOptions() *Options {
	return &Options{RootType: DefaultRootType, OutputFlags: OutputFlags{Format: "yaml"}}
}

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apply",
		Aliases: []string{"a"},
		Short:   "Build node templates from configuration and apply them to a content tree",
		RunE:    func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	cmd.Flags().BoolVar(&o.Preview, "preview", false, "Print built templates as JSON without applying them")
	cmd.Flags().StringVar(&o.RootType, "root-type", DefaultRootType, "Node type of the content tree root")
	o.FileFlags.Set(cmd)
	o.OutputFlags.Set(cmd)
	o.ContextFlags.Set(cmd)
	return cmd
}

func (o *Options) Run() error {
	ui := cmdui.NewTTY(o.Debug)
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	if len(o.FileFlags.ConfigPaths) == 0 {
		return fmt.Errorf("Expected at least one configuration file (-f)")
	}

	configSrcs, err := files.NewSources(o.FileFlags.ConfigPaths)
	if err != nil {
		return err
	}

	var typesSrc files.Source

	if o.FileFlags.NodeTypesPath != "" {
		typesSrcs, err := files.NewSources([]string{o.FileFlags.NodeTypesPath})
		if err != nil {
			return err
		}
		if len(typesSrcs) != 1 {
			return fmt.Errorf("Expected node types path '%s' to name exactly one file, but found %d", o.FileFlags.NodeTypesPath, len(typesSrcs))
		}
		typesSrc = typesSrcs[0]
	}

	return o.RunWithSources(configSrcs, typesSrc, ui)
}

// RunWithSources is the testable core of Run: it consumes already
// resolved sources and writes results to the given UI.
func (o *Options) RunWithSources(configSrcs []files.Source, typesSrc files.Source, ui cmdui.UI) error {
	ctx, err := o.ContextFlags.Values()
	if err != nil {
		return err
	}

	trees, err := o.parseConfigs(configSrcs, ui)
	if err != nil {
		return err
	}

	if o.Preview {
		return o.preview(trees, ctx, ui)
	}

	if typesSrc == nil {
		return fmt.Errorf("Expected node types (--node-types) since configuration is applied against typed nodes")
	}

	types, err := o.loadTypes(typesSrc)
	if err != nil {
		return err
	}

	store := nodestore.New(o.RootType)
	process := expression.Processor(expression.NewStarlarkEvaluator())

	sink := template.SinkFunc(func(n template.Ref, _ map[string]interface{}, _ template.ApplyOptions) {
		if node, found := store.Get(n.Identifier()); found {
			ui.Debugf("applied %s %s\n", node.TypeName(), node.Path())
		}
	})

	for _, tree := range trees {
		conf, ok, err := o.confRoot(tree)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		engine := template.NewEngine(store, types, template.Opts{
			Process: process,
			Pos:     tree.Position,
			Sink:    sink,
		})

		_, errs, err := engine.BuildAndApply(conf, ctx, store.Root(), nil)
		if err != nil {
			return fmt.Errorf("Building '%s': %s", tree.File(), err)
		}

		o.printWarnings(errs, ui)
	}

	return o.printTree(store, ui)
}

// preview builds templates without a store or node types; a JSON array
// of the evaluated templates is printed instead of a tree.
func (o *Options) preview(trees []*yamlconf.Tree, ctx map[string]interface{}, ui cmdui.UI) error {
	process := expression.Processor(expression.NewStarlarkEvaluator())
	factory := template.NewFactory()

	result := template.Templates{}

	for _, tree := range trees {
		conf, ok, err := o.confRoot(tree)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		errs := template.NewCaughtExceptions()

		b, err := template.NewRootBuilder(conf, ctx, process, errs, tree.Position)
		if err != nil {
			return fmt.Errorf("Building '%s': %s", tree.File(), err)
		}

		tpl, built, err := factory.BuildRoot(b)
		if err != nil {
			return fmt.Errorf("Building '%s': %s", tree.File(), err)
		}

		o.printWarnings(errs, ui)

		if built {
			result = append(result, tpl)
		}
	}

	bs, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	ui.Printf("%s\n", bs)
	return nil
}

func (o *Options) parseConfigs(srcs []files.Source, ui cmdui.UI) ([]*yamlconf.Tree, error) {
	var trees []*yamlconf.Tree

	for _, src := range srcs {
		bs, err := src.Bytes()
		if err != nil {
			return nil, fmt.Errorf("Reading %s: %s", src.Description(), err)
		}

		relPath, err := src.RelativePath()
		if err != nil {
			relPath = src.Description()
		}

		ui.Debugf("config: %s\n", relPath)

		tree, err := yamlconf.Parse(bs, relPath)
		if err != nil {
			return nil, err
		}

		trees = append(trees, tree)
	}

	return trees, nil
}

// confRoot unwraps a parsed tree; empty documents are skipped, any
// other non-mapping root is an authoring mistake.
func (o *Options) confRoot(tree *yamlconf.Tree) (*orderedmap.Map, bool, error) {
	if tree.Root == nil {
		return nil, false, nil
	}
	conf, ok := tree.Root.(*orderedmap.Map)
	if !ok {
		return nil, false, fmt.Errorf("Expected configuration in '%s' to be a mapping at the top level, but was %T", tree.File(), tree.Root)
	}
	return conf, true, nil
}

func (o *Options) loadTypes(src files.Source) (*nodetype.Registry, error) {
	bs, err := src.Bytes()
	if err != nil {
		return nil, fmt.Errorf("Reading %s: %s", src.Description(), err)
	}

	relPath, err := src.RelativePath()
	if err != nil {
		relPath = src.Description()
	}

	return nodetype.FromYAML(bs, relPath, version.Version)
}

func (o *Options) printWarnings(errs *template.CaughtExceptions, ui cmdui.UI) {
	for _, exc := range errs.Items() {
		ui.Warnf("Warning: %s\n", exc.Error())
	}
}

func (o *Options) printTree(store *nodestore.Store, ui cmdui.UI) error {
	tree := nodestore.PlainTree(store.Root())

	switch o.OutputFlags.Format {
	case "yaml":
		bs, err := yamlconf.Serialize(tree)
		if err != nil {
			return err
		}
		ui.Printf("%s", bs)

	case "json":
		bs, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		ui.Printf("%s\n", bs)

	default:
		return fmt.Errorf("Expected output format to be one of 'yaml', 'json', but was '%s'", o.OutputFlags.Format)
	}

	return nil
}
