// Package server exposes the thin HTTP surface: the ask endpoint plus the
// CRUD endpoints for accounts, chat history, and the admin blocked listing.
// All orchestration lives behind the Asker interface.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"askpilot/internal/core"
)

// Asker processes one ask request end to end.
type Asker interface {
	Ask(ctx context.Context, req core.AskRequest) core.AskResult
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	asker   Asker
	users   core.UserStore
	archive core.ChatArchive
	logger  *zap.Logger
}

// New creates the HTTP server surface.
func New(asker Asker, users core.UserStore, archive core.ChatArchive, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{asker: asker, users: users, archive: archive, logger: logger}
}

// Router returns the configured mux wrapped in CORS handling.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /chats/{userId}", s.handleChats)
	mux.HandleFunc("GET /admin/blocked", s.handleBlocked)
	return corsMiddleware(mux)
}

// corsMiddleware mirrors the permissive policy of the upstream UI deployment.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// chatRecordJSON is the wire shape of an archived record.
type chatRecordJSON struct {
	UserID     string    `json:"userId"`
	Query      string    `json:"query"`
	Verdict    string    `json:"verdict"`
	Response   string    `json:"response,omitempty"`
	Confidence *int      `json:"confidence"`
	Embedding  []float32 `json:"embedding,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toChatRecordJSON(rec core.ChatRecord) chatRecordJSON {
	return chatRecordJSON{
		UserID:     rec.UserID,
		Query:      rec.Query,
		Verdict:    string(rec.Verdict),
		Response:   rec.Response,
		Confidence: rec.Confidence,
		Embedding:  rec.Embedding,
		CreatedAt:  rec.CreatedAt,
	}
}
