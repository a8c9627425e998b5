// Package main is the entry point for the pronounce CLI.
//
// Usage:
//
//	pronounce [flags] <command> [args]
//
// Commands:
//
//	build    - Build a reference corpus from speaker recordings
//	score    - Grade a recording of a word against the corpus
//	words    - List the words of a corpus archive
//	catalog  - List recording counts from the catalog store
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/pronounce/cmd/pronounce/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
