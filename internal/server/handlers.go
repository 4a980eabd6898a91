package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"askpilot/internal/core"
)

type askResponse struct {
	Topic               string `json:"topic"`
	Answer              string `json:"answer"`
	Confidence          *int   `json:"confidence"`
	FollowupUsedHistory bool   `json:"followup_used_history"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req core.AskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.UserID) == "" {
		s.writeError(w, http.StatusBadRequest, "topic and userId are required")
		return
	}

	result := s.asker.Ask(r.Context(), req)
	switch result.Status {
	case core.AskSuccess:
		s.writeJSON(w, http.StatusOK, askResponse{
			Topic:               result.Topic,
			Answer:              result.Answer,
			Confidence:          result.Confidence,
			FollowupUsedHistory: result.FollowupUsedHistory,
		})
	default:
		// Refusals and failures share the error shape; the status stays 200
		// so the UI can render the message inline.
		s.writeJSON(w, http.StatusOK, map[string]string{"error": result.Message})
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !strings.Contains(req.Email, "@") || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "valid email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := core.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, core.ErrEmailExists) {
			s.writeError(w, http.StatusBadRequest, "Email already exists")
			return
		}
		s.logger.Error("failed to create user", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := s.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			s.writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"userId": user.UserID,
		"email":  user.Email,
	})
}

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	records, err := s.archive.FindByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("chat history lookup failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]chatRecordJSON, len(records))
	for i, rec := range records {
		out[i] = toChatRecordJSON(rec)
	}
	s.writeJSON(w, http.StatusOK, out)
}

type blockedQueryJSON struct {
	Email     string `json:"email"`
	Query     string `json:"query"`
	CreatedAt string `json:"createdAt"`
}

func (s *Server) handleBlocked(w http.ResponseWriter, r *http.Request) {
	records, err := s.archive.FindBlocked(r.Context())
	if err != nil {
		s.logger.Error("blocked listing failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]blockedQueryJSON, 0, len(records))
	for _, rec := range records {
		email := "Unknown"
		if user, err := s.users.FindByID(r.Context(), rec.UserID); err == nil {
			email = user.Email
		} else if !errors.Is(err, core.ErrUserNotFound) {
			s.logger.Warn("user lookup failed for blocked listing",
				zap.String("user_id", rec.UserID), zap.Error(err))
		}
		out = append(out, blockedQueryJSON{
			Email:     email,
			Query:     rec.Query,
			CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}
