// Package main is the entry point for the docsync CLI binary.
package main

import (
	"os"

	"docs-evaluator/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
