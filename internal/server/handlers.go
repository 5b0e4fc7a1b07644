package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/camwatch/camwatch/internal/mediamtx"
	"github.com/camwatch/camwatch/internal/store"
)

// cameraList is the envelope for camera collections.
type cameraList struct {
	Total int            `json:"total"`
	Items []store.Camera `json:"items"`
}

// ackResponse acknowledges a mutation, with an optional affected count.
type ackResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count,omitempty"`
}

// errorResponse is the JSON error shape for every non-2xx answer.
type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// addCameraRequest is the body for camera creation.
type addCameraRequest struct {
	Name      string            `json:"name" validate:"required,min=1,max=128"`
	Source    string            `json:"source" validate:"required,url"`
	Transport string            `json:"transport" validate:"omitempty,oneof=tcp udp"`
	OnDemand  *bool             `json:"on_demand"`
	Metadata  map[string]string `json:"metadata" validate:"omitempty,max=32"`
}

// setActiveRequest is the body for display selection.
type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// healthResponse is the healthz body.
type healthResponse struct {
	Status  string      `json:"status"`
	Uptime  string      `json:"uptime"`
	Cameras store.Stats `json:"cameras"`
}

func (s *Server) handleListCameras(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var cams []store.Camera
	switch {
	case q.Get("active") == "true":
		cams = s.store.ActiveCameras()
	case q.Get("online") == "true":
		cams = s.store.OnlineCameras()
	default:
		cams = s.store.Cameras()
	}

	if query := q.Get("q"); query != "" {
		cams = filterCameras(cams, query)
	}

	s.respondJSON(w, http.StatusOK, cameraList{Total: len(cams), Items: cams})
}

func (s *Server) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	cam, ok := s.store.CameraByID(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "camera not found")
		return
	}
	s.respondJSON(w, http.StatusOK, cam)
}

func (s *Server) handleAddCamera(w http.ResponseWriter, r *http.Request) {
	var req addCameraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Transport == "" {
		req.Transport = "tcp"
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	onDemand := true
	if req.OnDemand != nil {
		onDemand = *req.OnDemand
	}
	add := mediamtx.AddPathRequest{
		Source:         req.Source,
		RTSPTransport:  req.Transport,
		SourceOnDemand: onDemand,
	}
	if onDemand {
		add.SourceOnDemandStartTimeout = mediamtx.DefaultOnDemandStartTimeout
		add.SourceOnDemandCloseAfter = mediamtx.DefaultOnDemandCloseAfter
	}

	if !s.store.AddCamera(r.Context(), req.Name, add, req.Metadata) {
		s.respondError(w, http.StatusBadGateway, "media server rejected the camera")
		return
	}

	s.logger.Info("camera added", "camera", req.Name, "source", req.Source)

	if cam, ok := s.store.CameraByID(req.Name); ok {
		s.respondJSON(w, http.StatusCreated, cam)
		return
	}
	s.respondJSON(w, http.StatusCreated, ackResponse{Status: "ok"})
}

func (s *Server) handleRemoveCamera(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.CameraByID(id); !ok {
		s.respondError(w, http.StatusNotFound, "camera not found")
		return
	}
	if !s.store.RemoveCamera(r.Context(), id) {
		s.respondError(w, http.StatusBadGateway, "media server rejected the removal")
		return
	}

	s.logger.Info("camera removed", "camera", id)
	s.respondJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if !s.store.SetActive(id, *req.Active) {
		s.respondError(w, http.StatusNotFound, "camera not found")
		return
	}

	cam, _ := s.store.CameraByID(id)
	s.respondJSON(w, http.StatusOK, cam)
}

func (s *Server) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.ToggleActive(id); !ok {
		s.respondError(w, http.StatusNotFound, "camera not found")
		return
	}

	cam, _ := s.store.CameraByID(id)
	s.respondJSON(w, http.StatusOK, cam)
}

func (s *Server) handleStopAll(w http.ResponseWriter, r *http.Request) {
	n := s.store.StopAll()
	s.logger.Info("all cameras deselected", "stopped", n)
	s.respondJSON(w, http.StatusOK, ackResponse{Status: "ok", Count: n})
}

func (s *Server) handleActivateOnline(w http.ResponseWriter, r *http.Request) {
	n := s.store.ActivateAllOnline()
	s.logger.Info("online cameras selected", "activated", n)
	s.respondJSON(w, http.StatusOK, ackResponse{Status: "ok", Count: n})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force")
	if err := s.store.Refresh(r.Context(), force == "true" || force == "1"); err != nil {
		s.respondError(w, http.StatusBadGateway, "refresh failed: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

func (s *Server) handleForceRefreshStatus(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ForceRefreshStatus(r.Context()); err != nil {
		s.respondError(w, http.StatusBadGateway, "refresh failed: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Cameras: s.store.Stats(),
	})
}

// filterCameras keeps cameras whose ID, name or metadata values
// fuzzy-match the query, case-insensitively.
func filterCameras(cams []store.Camera, query string) []store.Camera {
	out := make([]store.Camera, 0, len(cams))
	for _, cam := range cams {
		if fuzzy.MatchFold(query, cam.ID) || fuzzy.MatchFold(query, cam.Name) {
			out = append(out, cam)
			continue
		}
		for _, v := range cam.Metadata {
			if fuzzy.MatchFold(query, v) {
				out = append(out, cam)
				break
			}
		}
	}
	return out
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: true, Message: message, Code: status})
}
