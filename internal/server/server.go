// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the chat dispatcher over HTTP.
// See docs/ARCHITECTURE § Chat Server.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/chat"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// maxMessageLen bounds the chat message length in runes.
const maxMessageLen = 1000

const defaultShutdownTimeout = 5 * time.Second

// MessageProcessor is the part of the chat engine the server needs.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, message string) (chat.Response, error)
}

// Server serves the chat API. It implements http.Handler so tests can
// drive it without a live network listener.
type Server struct {
	cfg    types.ServerConfig
	engine MessageProcessor
	log    *zap.SugaredLogger
	mux    *http.ServeMux
	server *http.Server
}

// chatRequest is the body of POST /api/v1/chat/message.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// chatResponse is the reply to a chat message. Messages carries one or
// more Markdown messages rendered in order.
type chatResponse struct {
	Messages  []string  `json:"messages"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates and configures the server (does not start it).
func New(cfg types.ServerConfig, engine MessageProcessor, log *zap.SugaredLogger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		cfg:    cfg,
		engine: engine,
		log:    log,
		mux:    mux,
	}
	mux.HandleFunc("/api/v1/chat/message", s.handleMessage)
	mux.HandleFunc("/health", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start begins listening in the background. Blocks until the listener is
// established so the caller knows the port is open before returning. The
// server shuts down gracefully when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("chat server: listen %s: %w", s.cfg.Addr, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.log.Infow("chat server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Errorw("chat server stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop shuts down the HTTP server, waiting up to the configured timeout
// for in-flight requests.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Warnw("chat server shutdown error", "error", err)
	}
}

// handleMessage dispatches one chat message to the engine. A session id
// is generated when the client does not supply one.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if n := utf8.RuneCountInString(req.Message); n == 0 || n > maxMessageLen {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("message must be between 1 and %d characters", maxMessageLen))
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp, err := s.engine.ProcessMessage(r.Context(), req.Message)
	if err != nil {
		s.log.Errorw("processing message failed", "session_id", sessionID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Messages:  resp.Messages(),
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("encoding response failed", "error", err)
	}
}
