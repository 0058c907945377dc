// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"

	cmdapply "carvel.dev/graft/pkg/cmd/apply"
	"carvel.dev/graft/pkg/version"
)

type GraftOptions struct{}

func NewDefaultGraftOptions() *GraftOptions {
	return &GraftOptions{}
}

func NewDefaultGraftCmd() *cobra.Command {
	return NewGraftCmd(NewDefaultGraftOptions())
}

func NewGraftCmd(o *GraftOptions) *cobra.Command {
	cmd := cmdapply.NewCmd(cmdapply.NewOptions())

	cmd.Use = "graft"
	cmd.Aliases = nil
	cmd.Version = version.Version
	cmd.Short = "graft builds content trees from declarative node configuration"
	cmd.Long = `graft builds content trees from declarative node configuration.

Configuration files describe node templates: graft evaluates their
expressions against a context and applies the result to a typed tree
of content nodes.`

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	// TODO bash completion

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(cmdapply.NewCmd(cmdapply.NewOptions())) // for scripts preferring an explicit subcommand

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
