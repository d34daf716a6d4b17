// SPDX-License-Identifier: MIT
package main

import (
	"os"

	"dtmf/cmd"
	"dtmf/internal/build"
	"dtmf/internal/log"
)

// main is the entry point of the DTMF decoder. Build metadata is resolved
// first; every command, including the live decoder, runs from the cobra
// tree in package cmd.
func main() {
	// Initialize build information including version, commit hash, and build time
	if err := build.Initialize(); err != nil {
		log.Debugf("Build: %v, using development metadata", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
