package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/J1yann/streamo/internal/auth"
	"github.com/J1yann/streamo/internal/db"
	"github.com/J1yann/streamo/internal/metrics"
	"github.com/J1yann/streamo/internal/model"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		auth.WriteError(w, http.StatusBadRequest, "invalid_email", "A valid email address is required")
		return
	}
	if len(req.Password) < 8 {
		auth.WriteError(w, http.StatusBadRequest, "weak_password", "Password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("registration failed"))
		return
	}

	user, err := s.repo.CreateUser(r.Context(), req.Email, hash, req.DisplayName)
	if err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			metrics.AuthEvents.WithLabelValues("register", "email_taken").Inc()
			auth.WriteError(w, http.StatusConflict, "email_taken", "An account with this email already exists")
			return
		}
		s.log.WithError(err).Error("create user")
		writeError(w, http.StatusInternalServerError, errors.New("registration failed"))
		return
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("registration failed"))
		return
	}

	metrics.AuthEvents.WithLabelValues("register", "ok").Inc()
	s.log.WithField("user_id", user.ID).Info("user registered")
	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Burn a bcrypt comparison so unknown emails take as long as
		// wrong passwords.
		auth.CompareDummy(req.Password)
		metrics.AuthEvents.WithLabelValues("login", "failed").Inc()
		auth.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Email or password is incorrect")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		metrics.AuthEvents.WithLabelValues("login", "failed").Inc()
		auth.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Email or password is incorrect")
		return
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("login failed"))
		return
	}

	metrics.AuthEvents.WithLabelValues("login", "ok").Inc()
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.repo.GetUserByID(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			auth.WriteError(w, http.StatusUnauthorized, "unknown_user", "Account no longer exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
