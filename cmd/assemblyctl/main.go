// Package main provides assemblyctl, the operator CLI for the governance
// engine: statutory calculators plus site registry and meeting maintenance
// against the configured Postgres database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
