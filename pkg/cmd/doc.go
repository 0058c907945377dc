// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd is home to the full set of graft's "commands" -- instances of cobra.Command
(not to be confused with ./cmd which contains the bootstrapping for the graft executable).

A cobra.Command is the starting point of execution.

For a list of commands run:

	$ graft help

The default command is "apply".
*/
package cmd
