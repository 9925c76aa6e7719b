// Package server provides the HTTP server of the grading service.
package server

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/yanagihara/internal/app"
	"github.com/ayusman/yanagihara/internal/scoring"
	"github.com/ayusman/yanagihara/internal/server/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Previewer publishes the live camera preview.
type Previewer interface {
	LatestFrame() []byte
	LatestPreview() app.Preview
	Watch() (<-chan app.Preview, func())
}

var _ Previewer = (*app.App)(nil)

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Grader     api.Grader
	Preview    Previewer
	Thresholds scoring.Thresholds
	Log        logrus.FieldLogger
}

// Server represents the HTTP server of the grading service.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    logrus.FieldLogger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	log := config.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    log.WithField("component", "server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/protocol", api.NewProtocolHandler(s.config.Thresholds))

	if s.config.Grader != nil {
		evaluate := api.NewEvaluateHandler(s.config.Grader)
		s.mux.Handle("/api/evaluate", evaluate)
		s.mux.Handle("/api/replay", evaluate)

		captures := api.NewCaptureHandler(s.config.Grader)
		s.mux.Handle("/api/captures/", captures)

		sessions := api.NewSessionHandler(s.config.Grader)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
		s.mux.Handle("/api/preview", NewPreviewHandler(s.config.Preview, s.log))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Preview != nil {
		p := s.config.Preview.LatestPreview()
		response["busy"] = p.Busy
		response["faces"] = p.Faces
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.log.WithField("addr", addr).Info("listening")
	return http.ListenAndServe(addr, s)
}
