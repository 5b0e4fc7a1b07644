package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newFakeMonitorAPI serves canned /api/v1/cameras and /api/v1/stats responses.
func newFakeMonitorAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/cameras", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cameraListResponse{
			Total: 2,
			Items: []cameraInfo{
				{
					ID:       "gate",
					Name:     "gate",
					Source:   "rtsp://10.0.0.10:554/stream1",
					IsActive: true,
					Status:   "online",
					LastSeen: time.Now().Add(-30 * time.Second),
				},
				{
					ID:         "dock",
					Name:       "dock",
					Source:     "rtsp://10.0.0.11:554/stream1",
					IsActive:   false,
					Status:     "offline",
					ErrorCount: 4,
				},
			},
		})
	})
	mux.HandleFunc("/api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statsResponse{
			Total:  2,
			Online: 1,
			Active: 1,
			Errors: 1,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunStatus_Table(t *testing.T) {
	srv := newFakeMonitorAPI(t)

	output, err := executeCommand(t, "status", "--api", srv.URL, "--json=false")
	if err != nil {
		t.Fatalf("status command error = %v", err)
	}

	expectedPhrases := []string{
		"NAME",
		"STATUS",
		"gate",
		"online",
		"dock",
		"offline",
		"never", // dock has no last_seen
		"2 cameras: 1 online, 1 active, 1 in error",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunStatus_JSON(t *testing.T) {
	srv := newFakeMonitorAPI(t)

	output, err := executeCommand(t, "status", "--api", srv.URL, "--json=true")
	if err != nil {
		t.Fatalf("status command error = %v", err)
	}

	var decoded struct {
		Stats   statsResponse `json:"stats"`
		Cameras []cameraInfo  `json:"cameras"`
	}
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\nGot: %s", err, output)
	}

	if decoded.Stats.Total != 2 {
		t.Errorf("Stats.Total = %d, want 2", decoded.Stats.Total)
	}
	if len(decoded.Cameras) != 2 {
		t.Fatalf("len(Cameras) = %d, want 2", len(decoded.Cameras))
	}
	if decoded.Cameras[0].Name != "gate" {
		t.Errorf("Cameras[0].Name = %q, want gate", decoded.Cameras[0].Name)
	}
}

func TestRunStatus_MonitorUnreachable(t *testing.T) {
	// connect to a port nothing listens on
	_, err := executeCommand(t, "status", "--api", "http://127.0.0.1:1", "--json=false")
	if err == nil {
		t.Fatal("status command expected error for unreachable monitor, got nil")
	}
	if !strings.Contains(err.Error(), "failed to reach monitor") {
		t.Errorf("error should mention unreachable monitor, got: %v", err)
	}
}

func TestLastSeenLabel(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, "never"},
		{"thirty seconds", time.Now().Add(-30 * time.Second), "30s ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lastSeenLabel(tt.t)
			if got != tt.want {
				t.Errorf("lastSeenLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
