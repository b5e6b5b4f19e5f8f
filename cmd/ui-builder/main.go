// Package main is the entry point for the ui-builder CLI.
// This is a thin wrapper around the cli package.
package main

import (
	"os"

	"github.com/zot/ui-builder/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
