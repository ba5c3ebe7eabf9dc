// Package main is the entry point for the mexp2ledger CLI.
package main

import (
	"os"

	"github.com/username/mexp2ledger/cmd/mexp2ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
