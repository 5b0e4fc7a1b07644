// Standalone mock MediaMTX server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/camwatch serve -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

type mockPath struct {
	source       string
	healthIdx    int
	nextChangeAt time.Time
}

var healthCodes = []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError}

var healthNames = map[int]string{
	http.StatusOK:                  "healthy",
	http.StatusNotFound:            "stalled",
	http.StatusInternalServerError: "broken",
}

func main() {
	fmt.Println("Mock MediaMTX server starting on :9999")
	fmt.Println("Control API under /v3, HLS manifests under /hls")
	fmt.Println("Streams cycle through: healthy, stalled, broken")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu    sync.Mutex
		paths = make(map[string]*mockPath)
	)

	healthCode := func(name string) int {
		mu.Lock()
		defer mu.Unlock()

		p, exists := paths[name]
		if !exists {
			return http.StatusNotFound
		}
		if time.Now().After(p.nextChangeAt) {
			old := healthCodes[p.healthIdx]
			p.healthIdx = (p.healthIdx + 1) % len(healthCodes)
			p.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("mock stream change",
				"path", name,
				"from", healthNames[old],
				"to", healthNames[healthCodes[p.healthIdx]],
			)
		}
		return healthCodes[p.healthIdx]
	}

	http.HandleFunc("/v3/paths/list", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		type item struct {
			Name  string `json:"name"`
			Ready bool   `json:"ready"`
		}
		items := make([]item, 0, len(paths))
		for name, p := range paths {
			items = append(items, item{Name: name, Ready: healthCodes[p.healthIdx] == http.StatusOK})
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"itemCount": len(items),
			"pageCount": 1,
			"items":     items,
		})
	})

	http.HandleFunc("/v3/config/paths/get/", func(w http.ResponseWriter, r *http.Request) {
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

	http.HandleFunc("/v3/config/paths/add/", func(w http.ResponseWriter, r *http.Request) {
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

	http.HandleFunc("/v3/config/paths/delete/", func(w http.ResponseWriter, r *http.Request) {
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

	http.HandleFunc("/hls/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/hls/"), "/index.m3u8")

		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		code := healthCode(name)
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		_, _ = w.Write([]byte("#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:2\n"))
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
