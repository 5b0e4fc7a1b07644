package main

import (
	"fmt"

	"github.com/camwatch/camwatch/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the monitor.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a camwatch configuration file without starting the monitor.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  camwatch validate -c config.yaml
  camwatch validate --config /etc/camwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Count total cameras (direct + from grids)
	directCameras := len(cfg.Cameras)
	gridCameras := 0
	for _, g := range cfg.CameraGrids {
		// Calculate cartesian product size
		size := 1
		for _, vals := range g.Dimensions {
			size *= len(vals)
		}
		gridCameras += size
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Listen:           %s\n", cfg.Listen)
	fmt.Printf("  MediaMTX API:     %s\n", cfg.MediaMTX.APIURL)
	fmt.Printf("  Probe interval:   %s\n", cfg.Monitor.ProbeInterval.Duration())
	fmt.Printf("  Refresh interval: %s\n", cfg.Monitor.RefreshInterval.Duration())
	fmt.Printf("  Cameras:          %d direct + %d from grids = %d total\n",
		directCameras, gridCameras, directCameras+gridCameras)

	return nil
}
