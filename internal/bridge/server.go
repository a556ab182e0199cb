// Package bridge exposes host capabilities over HTTP so a UI running in a
// different process can borrow them, and provides the matching client.
package bridge

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"filefield/internal/host"
	"filefield/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	pathFileExists = "/api/file_exists"
	pathGetFile    = "/api/get_file"

	headerRequestID = "X-Request-ID"
)

// existsRequest is the existence check payload.
type existsRequest struct {
	File string `json:"file"`
	Type string `json:"type"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

type pickResponse struct {
	Path      string `json:"path,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves a Capabilities implementation.
type Server struct {
	caps   host.Capabilities
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewServer wraps caps in an HTTP handler.
func NewServer(caps host.Capabilities) *Server {
	s := &Server{
		caps:   caps,
		logger: logging.Get(logging.CategoryBridge),
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("POST "+pathFileExists, s.handleFileExists)
	s.mux.HandleFunc("POST "+pathGetFile, s.handleGetFile)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get(headerRequestID)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(headerRequestID, reqID)

	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", reqID),
		zap.Duration("elapsed", time.Since(start)))
}

func (s *Server) handleFileExists(w http.ResponseWriter, r *http.Request) {
	var req existsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	exists, err := s.caps.FileExists(r.Context(), req.File, req.Type)
	if err != nil {
		s.logger.Warn("file_exists failed", zap.String("file", req.File), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, existsResponse{Exists: exists})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	path, err := s.caps.PickFile(r.Context())
	switch {
	case errors.Is(err, host.ErrCancelled):
		writeJSON(w, http.StatusOK, pickResponse{Cancelled: true})
	case err != nil:
		s.logger.Warn("get_file failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, pickResponse{Path: path})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
