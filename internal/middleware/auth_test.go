package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/session"
)

// fakeSessions serves one fixed session for any request carrying a
// session cookie.
type fakeSessions struct {
	data *session.Data
	err  error
}

func (f *fakeSessions) Get(_ context.Context, r *http.Request) (*session.Data, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := r.Cookie(session.CookieName); err != nil {
		return nil, nil
	}
	return f.data, nil
}

func newTestSession(role string) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "ustadz@pesantren.local",
		DisplayName: "Ustadz Ahmad",
		Role:        role,
	}
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// captureActor returns a handler storing the actor it sees.
func captureActor(dst **auth.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst = auth.ActorFrom(r.Context())
	})
}

func TestLoadActor_Session(t *testing.T) {
	sess := newTestSession("editor")
	var got *auth.Actor
	handler := LoadActor(&fakeSessions{data: sess}, nil)(captureActor(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "abc"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected actor from session")
	}
	if got.ID != sess.UserID || got.Email != sess.Email || got.Role != models.RoleEditor {
		t.Errorf("actor: got %+v", got)
	}
}

func TestLoadActor_NoCredentials(t *testing.T) {
	var got *auth.Actor
	handler := LoadActor(&fakeSessions{data: newTestSession("admin")}, nil)(captureActor(&got))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != nil {
		t.Errorf("expected no actor, got %+v", got)
	}
}

func TestLoadActor_SessionErrorIsAnonymous(t *testing.T) {
	var got *auth.Actor
	called := false
	handler := LoadActor(&fakeSessions{err: errors.New("valkey down")}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got = auth.ActorFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "abc"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("request should not be blocked")
	}
	if got != nil {
		t.Error("expected anonymous request")
	}
}

func TestLoadActor_Bearer(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	want := &auth.Actor{ID: uuid.New(), Email: "admin@pesantren.local", Role: models.RoleAdmin}
	token, _, err := issuer.Issue(want)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
		wantID uuid.UUID
	}{
		{"valid token", "Bearer " + token, want.ID},
		{"lowercase scheme", "bearer " + token, want.ID},
		{"garbage token", "Bearer not-a-jwt", uuid.Nil},
		{"empty token", "Bearer ", uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *auth.Actor
			// The session would resolve too; a bearer header must win.
			handler := LoadActor(&fakeSessions{data: newTestSession("editor")}, issuer)(captureActor(&got))

			req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
			req.Header.Set("Authorization", tt.header)
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "abc"})
			handler.ServeHTTP(httptest.NewRecorder(), req)

			switch {
			case tt.wantID == uuid.Nil && tt.header == "Bearer ":
				// An empty bearer header is not a bearer request; the session applies.
				if got == nil || got.Role != models.RoleEditor {
					t.Errorf("expected session actor, got %+v", got)
				}
			case tt.wantID == uuid.Nil:
				if got != nil {
					t.Errorf("expected no actor, got %+v", got)
				}
			default:
				if got == nil || got.ID != tt.wantID {
					t.Errorf("actor: got %+v, want id %s", got, tt.wantID)
				}
			}
		})
	}
}

func TestRequireActor(t *testing.T) {
	t.Run("rejects anonymous with 401 JSON", func(t *testing.T) {
		inner, called := okHandler()
		rr := httptest.NewRecorder()
		RequireActor(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil))

		if *called {
			t.Error("handler should not be called")
		}
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"error":"Not authenticated"`) {
			t.Errorf("body: got %q", rr.Body.String())
		}
	})

	t.Run("passes with actor", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
		req = req.WithContext(auth.WithActor(req.Context(), &auth.Actor{ID: uuid.New()}))
		rr := httptest.NewRecorder()
		RequireActor(inner).ServeHTTP(rr, req)

		if !*called || rr.Code != http.StatusOK {
			t.Errorf("got %d (called=%v), want 200", rr.Code, *called)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		actor    *auth.Actor
		wantCode int
	}{
		{"admin", &auth.Actor{ID: uuid.New(), Role: models.RoleAdmin}, http.StatusOK},
		{"editor", &auth.Actor{ID: uuid.New(), Role: models.RoleEditor}, http.StatusForbidden},
		{"anonymous", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, _ := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.actor != nil {
				req = req.WithContext(auth.WithActor(req.Context(), tt.actor))
			}
			rr := httptest.NewRecorder()
			RequireAdmin(inner).ServeHTTP(rr, req)
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER abc ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := BearerToken(req)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
