// Package main is the entry point for the sens-scan binary.
package main

import (
	"os"

	cli "sens-scan/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
