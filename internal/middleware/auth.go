// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/session"
)

// SessionReader loads the session attached to a request.
type SessionReader interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(raw string) (*auth.Actor, error)
}

// LoadActor resolves the editor behind a request and stores it in the
// request context. A bearer token wins over the session cookie. This
// middleware does NOT enforce authentication; it only loads an actor if
// one is present.
func LoadActor(sessions SessionReader, tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := BearerToken(r); ok {
				if tokens != nil {
					if a, err := tokens.Parse(raw); err == nil {
						r = r.WithContext(auth.WithActor(r.Context(), a))
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			if sessions != nil {
				data, err := sessions.Get(r.Context(), r)
				if err != nil {
					// Treat as unauthenticated.
					slog.Warn("session lookup failed", "error", err)
				} else if data != nil {
					r = r.WithContext(auth.WithActor(r.Context(), &auth.Actor{
						ID:          data.UserID,
						Email:       data.Email,
						DisplayName: data.DisplayName,
						Role:        models.Role(data.Role),
					}))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireActor answers 401 when no actor was loaded.
// Must be applied after LoadActor in the middleware chain.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.Require(r.Context()); err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 403 if the actor is not an admin.
// Must be applied after RequireActor.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.ActorFrom(r.Context()).IsAdmin() {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

// writeError sends {"error": msg} with status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":` + quote(msg) + "}\n"))
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
