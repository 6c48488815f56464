package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/session"
)

type fakeCredentials struct {
	user     *models.User
	password string
	err      error
	asked    string
}

func (f *fakeCredentials) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.asked = email
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeCredentials) CheckPassword(_ *models.User, password string) bool {
	return password == f.password
}

type fakeSessionStore struct {
	created   *session.Data
	destroyed bool
	err       error
}

func (f *fakeSessionStore) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid", Path: "/"})
	return "sid", nil
}

func (f *fakeSessionStore) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	f.destroyed = true
	return f.err
}

func newAuthFixture() (*Auth, *fakeCredentials, *fakeSessionStore, *auth.TokenIssuer) {
	creds := &fakeCredentials{
		user:     &models.User{ID: uuid.New(), Email: "ustadz@pesantren.local", DisplayName: "Ustadz Ahmad", Role: models.RoleAdmin},
		password: "bismillah",
	}
	sessions := &fakeSessionStore{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewAuth(creds, sessions, tokens), creds, sessions, tokens
}

func TestLogin_Success(t *testing.T) {
	h, creds, sessions, tokens := newAuthFixture()

	rr := serve(h.Login, http.MethodPost, "/api/auth/login", "/api/auth/login",
		`{"email":"  USTADZ@pesantren.local ","password":"bismillah"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "ustadz@pesantren.local", creds.asked)

	var resp struct {
		User      auth.Actor `json:"user"`
		Token     string     `json:"token"`
		ExpiresAt time.Time  `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, creds.user.ID, resp.User.ID)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	actor, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, creds.user.ID, actor.ID)
	assert.True(t, actor.IsAdmin())

	require.NotNil(t, sessions.created)
	assert.Equal(t, creds.user.ID, sessions.created.UserID)
	assert.Equal(t, string(models.RoleAdmin), sessions.created.Role)
	assert.Contains(t, rr.Header().Get("Set-Cookie"), session.CookieName)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		lookup   error
		sessErr  error
		wantCode int
	}{
		{"wrong password", `{"email":"ustadz@pesantren.local","password":"salah"}`, nil, nil, http.StatusUnauthorized},
		{"unknown user", `{"email":"santri@pesantren.local","password":"bismillah"}`, nil, nil, http.StatusUnauthorized},
		{"missing password", `{"email":"ustadz@pesantren.local"}`, nil, nil, http.StatusUnprocessableEntity},
		{"missing email", `{"password":"bismillah"}`, nil, nil, http.StatusUnprocessableEntity},
		{"bad json", `{"email":`, nil, nil, http.StatusBadRequest},
		{"lookup error", `{"email":"ustadz@pesantren.local","password":"bismillah"}`, errors.New("db down"), nil, http.StatusInternalServerError},
		{"session error", `{"email":"ustadz@pesantren.local","password":"bismillah"}`, nil, errors.New("valkey down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, creds, sessions, _ := newAuthFixture()
			creds.err = tt.lookup
			sessions.err = tt.sessErr

			rr := serve(h.Login, http.MethodPost, "/api/auth/login", "/api/auth/login", tt.body, nil)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			assert.NotContains(t, rr.Body.String(), "token")
		})
	}
}

func TestLogout(t *testing.T) {
	h, _, sessions, _ := newAuthFixture()

	rr := serve(h.Logout, http.MethodPost, "/api/auth/logout", "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, sessions.destroyed)

	sessions.err = errors.New("valkey down")
	rr = serve(h.Logout, http.MethodPost, "/api/auth/logout", "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code, "logout always succeeds for the client")
}

func TestMe(t *testing.T) {
	h, _, _, _ := newAuthFixture()

	rr := serve(h.Me, http.MethodGet, "/api/auth/me", "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	actor := testActor()
	rr = serve(h.Me, http.MethodGet, "/api/auth/me", "/api/auth/me", "", actor)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), actor.Email))
	assert.Contains(t, rr.Body.String(), `"csrf_token"`)
}

func TestLogin_BodyTooLarge(t *testing.T) {
	h, _, _, _ := newAuthFixture()
	body := `{"email":"` + strings.Repeat("a", maxBodyBytes) + `","password":"x"}`

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
