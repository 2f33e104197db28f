// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Ringmaster.
//
// Usage:
//
//	go run . [flags]
//	./ringmaster [flags]
//
// This launches the Ringmaster CLI. See --help for options.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/toeirei/ringmaster/ui/cli"
)

// version is set at build time using -ldflags, e.g.:
// go build -ldflags "-X main.version=1.2.3"
var version = "dev"

// main is the entrypoint for the Ringmaster CLI.
func main() {
	if os.Getenv("RINGMASTER_SHOW_VERSION") == "1" {
		fmt.Fprintf(os.Stderr, "Ringmaster version: %s\n", version)
	}

	if err := cli.Execute(); err != nil {
		log.Printf("Ringmaster CLI error: %v", err)
		os.Exit(1)
	}
}
