// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	uierrs "github.com/cppforlife/go-cli-ui/errors"

	"carvel.dev/graft/pkg/cmd"
)

func main() {
	rand.Seed(time.Now().UTC().UnixNano())

	command := cmd.NewDefaultGraftCmd()

	err := command.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "graft: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
