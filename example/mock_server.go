package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// mockPath tracks the source and health cycle of one mock camera path.
type mockPath struct {
	source       string
	healthIdx    int
	nextChangeAt time.Time
}

// health states the mock cycles through: healthy, stalled, broken.
var mockHealthCodes = []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError}

var mockHealthNames = map[int]string{
	http.StatusOK:                  "healthy",
	http.StatusNotFound:            "stalled",
	http.StatusInternalServerError: "broken",
}

// StartMockMediaMTX runs a mock media server on the given address.
//
// It serves the control API under /v3 (paths list, per-path config, add,
// delete) and HLS manifests under /hls/{name}/index.m3u8. Each path's
// manifest cycles through healthy, stalled, and broken every 20-60 seconds.
// Call this in a goroutine before starting the monitor.
func StartMockMediaMTX(addr string) {
	var (
		mu    sync.Mutex
		paths = make(map[string]*mockPath)
	)

	// advance the health cycle for a path when its scheduled change is due
	healthCode := func(name string) int {
		mu.Lock()
		defer mu.Unlock()

		p, exists := paths[name]
		if !exists {
			return http.StatusNotFound
		}
		if time.Now().After(p.nextChangeAt) {
			old := mockHealthCodes[p.healthIdx]
			p.healthIdx = (p.healthIdx + 1) % len(mockHealthCodes)
			p.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("mock stream change",
				"path", name,
				"from", mockHealthNames[old],
				"to", mockHealthNames[mockHealthCodes[p.healthIdx]],
			)
		}
		return mockHealthCodes[p.healthIdx]
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/v3/paths/list", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		type item struct {
			Name  string `json:"name"`
			Ready bool   `json:"ready"`
		}
		items := make([]item, 0, len(paths))
		for name, p := range paths {
			items = append(items, item{Name: name, Ready: mockHealthCodes[p.healthIdx] == http.StatusOK})
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"itemCount": len(items),
			"pageCount": 1,
			"items":     items,
		})
	})

	mux.HandleFunc("/v3/config/paths/get/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/v3/config/paths/get/")

		mu.Lock()
		p, exists := paths[name]
		mu.Unlock()
		if !exists {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"name":   name,
			"source": p.source,
		})
	})

	mux.HandleFunc("/v3/config/paths/add/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/v3/config/paths/add/")

		var body struct {
			Source string `json:"source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		mu.Lock()
		paths[name] = &mockPath{
			source:       body.Source,
			nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
		}
		mu.Unlock()

		slog.Info("mock path added", "path", name, "source", body.Source)
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/v3/config/paths/delete/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/v3/config/paths/delete/")

		mu.Lock()
		delete(paths, name)
		mu.Unlock()

		slog.Info("mock path deleted", "path", name)
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/hls/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/hls/"), "/index.m3u8")

		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		code := healthCode(name)
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		_, _ = w.Write([]byte("#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:2\n"))
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
