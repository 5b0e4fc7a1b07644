package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

// cameraInfo mirrors the camera JSON served by a running monitor.
type cameraInfo struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Source     string            `json:"source"`
	IsActive   bool              `json:"is_active"`
	Status     string            `json:"status"`
	LastSeen   time.Time         `json:"last_seen"`
	LastCheck  time.Time         `json:"last_check"`
	ErrorCount int               `json:"error_count"`
	HLSURL     string            `json:"hls_url"`
	WebRTCURL  string            `json:"webrtc_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// cameraListResponse mirrors GET /api/v1/cameras.
type cameraListResponse struct {
	Total int          `json:"total"`
	Items []cameraInfo `json:"items"`
}

// statsResponse mirrors GET /api/v1/stats.
type statsResponse struct {
	Total  int `json:"total"`
	Online int `json:"online"`
	Active int `json:"active"`
	Errors int `json:"errors"`
}

// statusCmd queries a running monitor and prints camera health.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show camera health from a running monitor",
	Long: `Query a running camwatch monitor over its HTTP API and print the
health of every camera it tracks.

Example:
  camwatch status
  camwatch status --api http://nvr.local:8093
  camwatch status --json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("api", "http://127.0.0.1:8093", "base URL of the running monitor")
	statusCmd.Flags().Bool("json", false, "output raw JSON instead of a table")
}

func runStatus(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("api")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	var cameras cameraListResponse
	resp, err := client.R().
		SetResult(&cameras).
		Get("/api/v1/cameras")
	if err != nil {
		return fmt.Errorf("failed to reach monitor at %s: %w", apiURL, err)
	}
	if resp.IsError() {
		return fmt.Errorf("monitor returned %s for /api/v1/cameras", resp.Status())
	}

	var stats statsResponse
	resp, err = client.R().
		SetResult(&stats).
		Get("/api/v1/stats")
	if err != nil {
		return fmt.Errorf("failed to reach monitor at %s: %w", apiURL, err)
	}
	if resp.IsError() {
		return fmt.Errorf("monitor returned %s for /api/v1/stats", resp.Status())
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Stats   statsResponse `json:"stats"`
			Cameras []cameraInfo  `json:"cameras"`
		}{stats, cameras.Items})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tACTIVE\tERRORS\tLAST SEEN\tSOURCE")
	fmt.Fprintln(w, "----\t------\t------\t------\t---------\t------")

	for _, cam := range cameras.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			cam.Name,
			cam.Status,
			activeLabel(cam.IsActive),
			cam.ErrorCount,
			lastSeenLabel(cam.LastSeen),
			cam.Source,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d cameras: %d online, %d active, %d in error\n",
		stats.Total, stats.Online, stats.Active, stats.Errors)

	return nil
}

func activeLabel(active bool) string {
	if active {
		return "yes"
	}
	return "no"
}

// lastSeenLabel renders a last-seen timestamp as a relative age.
func lastSeenLabel(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	age := time.Since(t).Round(time.Second)
	if age < time.Second {
		return "just now"
	}
	return fmt.Sprintf("%s ago", age)
}
