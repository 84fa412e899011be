// Package server exposes the HTTP surface: chat, ingestion, and user-data
// management endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dharsanguruparan/insightmate/internal/chat"
	"github.com/dharsanguruparan/insightmate/internal/config"
	"github.com/dharsanguruparan/insightmate/internal/ingest"
	"github.com/dharsanguruparan/insightmate/internal/model"
	"github.com/dharsanguruparan/insightmate/internal/store"
)

// Server stitches together configuration, the data store, the ingestion
// pipeline, and the chat responder. Dependencies are passed in explicitly; no
// package-level state.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	pipeline  *ingest.Pipeline
	responder *chat.Responder
	server    *http.Server
	once      sync.Once
}

// New constructs a Server.
func New(cfg *config.Config, st *store.Store, pipeline *ingest.Pipeline, responder *chat.Responder) *Server {
	return &Server{
		cfg:       cfg,
		store:     st,
		pipeline:  pipeline,
		responder: responder,
	}
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:    s.cfg.Address,
			Handler: corsMiddleware(loggingMiddleware(s.routes())),
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	log.Printf("insightmate listening on %s", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/portfolio-links", s.handlePortfolioLinks)
	mux.HandleFunc("/api/portfolio-links/", s.handlePortfolioLinkDelete)
	mux.HandleFunc("/api/user-data", s.handleUserData)
	mux.HandleFunc("/api/files/", s.handleFileDelete)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Insightmate API is running!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]string{
			"ai_service":   "active",
			"file_service": "active",
			"data_service": "active",
		},
	})
}

type chatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	mode := chat.Mode(req.Mode)
	if mode == "" {
		mode = chat.ModeGeneral
	}
	// Anything other than general is personalized; the mode is an open
	// string, not a validated enum.
	var userData *model.UserData
	if mode != chat.ModeGeneral {
		data, err := s.store.UserData()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		userData = data
	}
	response := s.responder.Respond(r.Context(), req.Message, mode, userData)
	respondJSON(w, http.StatusOK, map[string]string{
		"response":  response,
		"mode":      string(mode),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	// Bound the request body well above the per-file cap so an oversized file
	// is still read fully and rejected with the size-limit error rather than
	// failing mid-stream.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxFileSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "expecting multipart file field: "+err.Error())
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}
	storagePath, err := s.pipeline.SaveFile(header.Filename, data)
	if err != nil {
		if errors.Is(err, ingest.ErrDisallowedType) || errors.Is(err, ingest.ErrTooLarge) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	result := s.pipeline.ProcessFile(storagePath)
	if err := s.store.AddFileData(header.Filename, result.Render()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message":   "File uploaded successfully",
		"filename":  header.Filename,
		"file_path": storagePath,
	})
}

type portfolioLinkRequest struct {
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (s *Server) handlePortfolioLinks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req portfolioLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}
	// The link type is an open set; linkedin/github/website are conventions,
	// not a validated enum.
	result := s.pipeline.IngestLink(r.Context(), req.URL)
	link := model.PortfolioLink{
		URL:         req.URL,
		Type:        req.Type,
		Description: req.Description,
	}
	if _, err := s.store.AddPortfolioLink(link, result.Render()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Portfolio link added successfully",
		"url":     req.URL,
		"type":    req.Type,
	})
}

func (s *Server) handlePortfolioLinkDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/portfolio-links/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if _, err := s.store.DeletePortfolioLink(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Portfolio link deleted successfully"})
}

func (s *Server) handleUserData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	data, err := s.store.UserData()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (s *Server) handleFileDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if filename == "" {
		http.NotFound(w, r)
		return
	}
	if _, err := s.store.DeleteFile(filename); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.pipeline.RemoveArtifact(filename)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("File %s deleted successfully", filename),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
