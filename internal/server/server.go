package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/camwatch/camwatch/internal/mediamtx"
	"github.com/camwatch/camwatch/internal/store"
)

// requestTimeout bounds every REST handler. The SSE stream is exempt;
// it lives as long as the client and the server context allow.
const requestTimeout = 60 * time.Second

// CameraStore is the view of camera state the API serves. It is satisfied
// by [store.Store].
type CameraStore interface {
	Cameras() []store.Camera
	ActiveCameras() []store.Camera
	OnlineCameras() []store.Camera
	CameraByID(id string) (store.Camera, bool)
	Stats() store.Stats

	Refresh(ctx context.Context, force bool) error
	ForceRefreshStatus(ctx context.Context) error

	SetActive(id string, active bool) bool
	ToggleActive(id string) (bool, bool)
	StopAll() int
	ActivateAllOnline() int
	AddCamera(ctx context.Context, id string, req mediamtx.AddPathRequest, metadata map[string]string) bool
	RemoveCamera(ctx context.Context, id string) bool

	Subscribe(fn func()) func()
}

// Server handles HTTP requests for the camwatch API.
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store          CameraStore
	addr           string
	boundAddr      string
	metricsHandler http.Handler
	validate       *validator.Validate
	httpServer     *http.Server
	started        time.Time
	logger         *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// addr is the TCP listen address (":8093"). metricsHandler, when non-nil,
// is mounted at /metrics. The server is not started until [Server.Start]
// is called.
func NewServer(st CameraStore, addr string, metricsHandler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:          st,
		addr:           addr,
		metricsHandler: metricsHandler,
		validate:       validator.New(),
		started:        time.Now(),
		logger:         logger,
	}
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server keeps running until the context is cancelled, at
// which point it initiates a graceful shutdown with a 5-second timeout.
//
// Returns an error if the server fails to bind to the configured address.
func (s *Server) Start(ctx context.Context) error {
	// create the listener first to verify the address synchronously
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.addr, err)
	}
	s.boundAddr = ln.Addr().String()

	s.httpServer = &http.Server{
		Handler: s.routes(),
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the address the server is bound to. Only valid after a
// successful [Server.Start]; useful when the configured address was ":0".
func (s *Server) Addr() string {
	return s.boundAddr
}

// routes builds the router with middleware and all API endpoints.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/cameras", s.handleListCameras)
			r.Post("/cameras", s.handleAddCamera)
			r.Post("/cameras/stop-all", s.handleStopAll)
			r.Post("/cameras/activate-online", s.handleActivateOnline)
			r.Get("/cameras/{id}", s.handleGetCamera)
			r.Delete("/cameras/{id}", s.handleRemoveCamera)
			r.Post("/cameras/{id}/active", s.handleSetActive)
			r.Post("/cameras/{id}/toggle", s.handleToggleActive)

			r.Post("/refresh", s.handleRefresh)
			r.Post("/refresh/status", s.handleForceRefreshStatus)

			r.Get("/stats", s.handleStats)
			r.Get("/healthz", s.handleHealthz)
		})

		// SSE stays open indefinitely, outside the timeout group
		r.Get("/events", s.handleSSE)
	})

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.respondError(w, http.StatusNotFound, "not found")
	})

	return r
}

// corsMiddleware allows browser panels served from other origins to call
// the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
