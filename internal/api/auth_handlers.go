package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vgogokhia/StrelokAI/internal/auth"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

type contextKey string

const usernameContextKey contextKey = "username"

// credentialsRequest is the payload for register and login
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakCredentials):
			WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUserExists):
			WriteError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("Registration failed", logger.Error(err))
			WriteError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	WriteJSON(w, http.StatusCreated, session)
}

// Login authenticates a user and returns a session token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("Login failed", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}

	WriteJSON(w, http.StatusOK, session)
}

// Logout invalidates the caller's session token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		h.authService.Logout(token)
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// RequireAuth rejects requests without a valid session token and puts
// the username on the request context
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		username, err := h.authService.ValidateSession(token)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), usernameContextKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// usernameFromContext returns the authenticated username, empty when the
// request skipped the auth middleware
func usernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameContextKey).(string)
	return username
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
