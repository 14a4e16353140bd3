// Package server provides the HTTP server for the SmartSign BIM detection
// service.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/classifier"
	"github.com/nadhir/smartsign/internal/insight"
	"github.com/nadhir/smartsign/internal/server/api"
	"github.com/nadhir/smartsign/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Detection    DetectionService
	Models       []classifier.ModelConfig
	Store        *store.Store
	Interpreter  *insight.Interpreter
	Intent       *insight.IntentEngine
	Brief        *insight.BriefGenerator
	Greeter      *insight.GreetingGenerator
	Transcriber  *insight.Transcriber
	// AvatarVideoPath locates the pre-rendered BIM avatar clip; empty
	// disables the video route.
	AvatarVideoPath string
	DemoFallback    bool
	Log             *zap.Logger
}

// Server represents the HTTP server for the SmartSign application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    *zap.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Log == nil {
		config.Log = zap.NewNop()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    config.Log,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/labels", s.handleLabels)
	s.mux.HandleFunc("/api/models", s.handleModels)
	s.mux.HandleFunc("/api/speech-to-text", s.handleSpeechToText)

	if s.config.AvatarVideoPath != "" {
		s.mux.HandleFunc("/video/bim-avatar", s.handleAvatarVideo)
	}

	if s.config.Detection != nil {
		s.mux.HandleFunc("/api/detect", s.handleDetect)
		s.mux.HandleFunc("/api/detect/fast", s.handleDetectFast)
		s.mux.Handle("/api/detect/ws", NewDetectSocketHandler(s.config.Detection, s.config.Interpreter, s.log))
	}

	if s.config.Store != nil {
		profileHandler := api.NewProfileHandler(s.config.Store, s.config.DemoFallback, s.log)
		s.mux.Handle("/api/lookup-id", profileHandler)
	}

	if s.config.Store != nil && s.config.Intent != nil {
		insightHandler := api.NewInsightHandler(s.config.Store, s.config.Intent, s.config.Brief, s.config.Greeter, s.log)
		s.mux.Handle("/api/predict-intent", insightHandler)
		s.mux.Handle("/api/case-brief", insightHandler)
		s.mux.Handle("/api/greeting", insightHandler)
	}
}

// ServeHTTP implements the http.Handler interface. All responses carry
// permissive CORS headers; the demo frontend is served from another origin.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	models := make([]string, 0, len(s.config.Models))
	for _, m := range s.config.Models {
		models = append(models, m.ID)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
		"models": models,
	})
}

// handleLabels handles GET requests to /api/labels and returns the label
// to sentence table.
func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	labels := insight.LabelSentences()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"labels": labels,
		"count":  len(labels),
	})
}

type modelResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// handleModels handles GET requests to /api/models.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	models := make([]modelResponse, 0, len(s.config.Models))
	for _, m := range s.config.Models {
		models = append(models, modelResponse{ID: m.ID, Name: m.Name, Color: m.Color})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
