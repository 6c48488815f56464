// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"pesantren/internal/auth"
	"pesantren/internal/handlers"
	"pesantren/internal/middleware"
	"pesantren/internal/models"
	"pesantren/internal/reader"
	"pesantren/internal/session"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

type fakeSessions struct {
	data *session.Data
}

func (f *fakeSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return f.data, nil
}

type fakeUsers struct{}

func (fakeUsers) List(context.Context) ([]models.User, error) {
	return []models.User{{ID: uuid.New(), Email: "admin@pesantren.local", Role: models.RoleAdmin}}, nil
}

type fixture struct {
	handler  http.Handler
	tokens   *auth.TokenIssuer
	sessions *fakeSessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens := auth.NewTokenIssuer("router-test", time.Hour)
	sessions := &fakeSessions{}
	counter := middleware.NewMemoryCounter(time.Minute)
	t.Cleanup(counter.Stop)
	limiter := middleware.NewRateLimiter(counter, "login:", 1, time.Minute)

	rd := reader.New(nil, nil, nil, nil, nil, nil)
	h := New(Deps{
		Sessions:     sessions,
		Tokens:       tokens,
		Public:       handlers.NewPublic(rd, nil),
		Auth:         handlers.NewAuth(nil, nil, tokens),
		Admin:        handlers.NewAdmin(handlers.AdminDeps{Users: fakeUsers{}}),
		LoginLimiter: limiter,
	})
	return &fixture{handler: h, tokens: tokens, sessions: sessions}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) bearer(t *testing.T, role models.Role) string {
	t.Helper()
	tok, _, err := f.tokens.Issue(&auth.Actor{ID: uuid.New(), Email: "x@pesantren.local", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok
}

func TestRouter_PublicAndFallback(t *testing.T) {
	f := newFixture(t)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("health: got %d", rr.Code)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("secure headers missing")
	}

	rr = f.do(httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "site_name") {
		t.Errorf("settings: got %d %s", rr.Code, rr.Body.String())
	}

	rr = f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), `"error"`) {
		t.Errorf("not found: got %d %s", rr.Code, rr.Body.String())
	}
}

func TestRouter_AdminRequiresActor(t *testing.T) {
	f := newFixture(t)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	if rr := f.do(req); rr.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d, want 401", rr.Code)
	}
}

func TestRouter_UsersAdminOnly(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", f.bearer(t, models.RoleEditor))
	if rr := f.do(req); rr.Code != http.StatusForbidden {
		t.Errorf("editor: got %d, want 403", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", f.bearer(t, models.RoleAdmin))
	rr := f.do(req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "admin@pesantren.local") {
		t.Errorf("admin: got %d %s", rr.Code, rr.Body.String())
	}
}

func TestRouter_CookieWritesNeedCSRF(t *testing.T) {
	f := newFixture(t)
	f.sessions.data = &session.Data{UserID: uuid.New(), Email: "e@pesantren.local", Role: string(models.RoleEditor)}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/posts", strings.NewReader(`{"title":"x"}`))
	if rr := f.do(req); rr.Code != http.StatusForbidden {
		t.Errorf("cookie write without token: got %d, want 403", rr.Code)
	}

	// The GET sets the cookie that a later write has to echo.
	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("me: got %d", rr.Code)
	}
	var me struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &me); err != nil || me.CSRFToken == "" {
		t.Fatalf("me body: %s (%v)", rr.Body.String(), err)
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	f := newFixture(t)

	first := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{`)))
	if first.Code != http.StatusBadRequest {
		t.Errorf("first attempt: got %d, want 400", first.Code)
	}
	second := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{`)))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second attempt: got %d, want 429", second.Code)
	}
}
