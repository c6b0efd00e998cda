// Package main is the entry point for the audioqc CLI.
//
// Usage:
//
//	audioqc [flags] <command> [args]
//
// Commands:
//
//	odg       - ODG estimate (log-spectral distance) for a reference/degraded pair
//	pesq      - PESQ scores via the configured external scorer
//	call      - Real codec round trip (Opus & G.711) comparison
//	simulate  - Synthetic narrowband vs wideband comparison (no external tool)
//	denoise   - Spectral subtraction of a noise recording
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/rohxnreddy/UX-Tradeoffs-App/cmd/audioqc/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
