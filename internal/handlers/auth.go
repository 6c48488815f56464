package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pesantren/internal/auth"
	"pesantren/internal/middleware"
	"pesantren/internal/models"
	"pesantren/internal/session"
)

// Credentials looks up editors and checks their passwords.
type Credentials interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// Sessions creates and destroys cookie sessions.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(a *auth.Actor) (string, time.Time, error)
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	users    Credentials
	sessions Sessions
	tokens   TokenIssuer
}

// NewAuth creates a new Auth handler group.
func NewAuth(users Credentials, sessions Sessions, tokens TokenIssuer) *Auth {
	return &Auth{users: users, sessions: sessions, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      *auth.Actor `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Login checks the credentials, opens a cookie session and returns a
// bearer token for API clients.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Email and password are required.", Field: "email"})
		return
	}

	user, err := a.users.FindByEmail(r.Context(), email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	actor := auth.FromUser(user)
	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	token, expires, err := a.tokens.Issue(actor)
	if err != nil {
		slog.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	slog.Info("editor signed in", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusOK, loginResponse{User: actor, Token: token, ExpiresAt: expires})
}

// Logout destroys the cookie session. Bearer tokens expire on their own.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in editor and the CSRF token cookie clients must
// echo on writes.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.Require(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       actor,
		"csrf_token": middleware.CSRFTokenFromCtx(r.Context()),
	})
}
