// Package main is the entry point for the camwatch CLI.
//
// camwatch can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	camwatch serve -c config.yaml    # Start the monitor
//	camwatch validate -c config.yaml # Validate configuration
//	camwatch status                  # Query a running monitor
//	camwatch version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "camwatch",
	Short: "A camera health monitor for MediaMTX",
	Long: `camwatch monitors the health of cameras served by a MediaMTX media server.

It discovers camera paths through the MediaMTX control API, probes their
HLS playback endpoints at configurable intervals, and serves the resulting
health state over an HTTP API with Server-Sent Events for live updates.

Quick start:
  1. Create a config file (camwatch.yaml)
  2. Run: camwatch serve -c camwatch.yaml
  3. Query http://localhost:8093/api/v1/cameras

Example config:
  listen: ":8093"
  mediamtx:
    api_url: http://127.0.0.1:9997/v3
  cameras:
    - name: gate
      source: rtsp://10.0.0.10:554/stream1`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this camwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("camwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
