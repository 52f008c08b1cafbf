// Package main provides the entry point for the accunode CLI.
package main

import (
	"github.com/accunode/accunode-go/cmd/cli"
)

func main() {
	cli.Execute()
}
