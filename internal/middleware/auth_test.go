package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/vipauth/internal/auth"
	"github.com/ayush/vipauth/internal/models"
)

func withUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(auth.WithSession(r.Context(), &auth.Session{ID: "s1", CurrentUser: u}))
}

func TestIsLoggedIn(t *testing.T) {
	t.Parallel()

	called := false
	h := IsLoggedIn(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.False(t, called, "handler must not run without a session user")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/private", nil), &models.User{Username: "alice"}))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIsLoggedOut(t *testing.T) {
	t.Parallel()

	called := false
	h := IsLoggedOut(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/signup", nil), &models.User{Username: "alice"}))
	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type brokenBackend struct{}

func (brokenBackend) Load(context.Context, string) (*auth.Session, error) {
	return nil, errors.New("redis down")
}
func (brokenBackend) Save(context.Context, *auth.Session, time.Duration) error { return nil }
func (brokenBackend) Delete(context.Context, string) error { return nil }

func TestLoadSession(t *testing.T) {
	t.Parallel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend := auth.NewMemorySessions()
	sessions := auth.NewSessionStore(backend, time.Hour, false)
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Establish(context.Background(), rec, &auth.Session{}, &models.User{Username: "alice"}))
	cookie := rec.Result().Cookies()[0]

	var got *auth.Session
	h := LoadSession(sessions, log)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = auth.SessionFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/userProfile", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, got.Authenticated())
	assert.Equal(t, "alice", got.CurrentUser.Username)
}

func TestLoadSession_BackendFailureIsAnonymous(t *testing.T) {
	t.Parallel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewSessionStore(brokenBackend{}, time.Hour, false)

	var got *auth.Session
	h := LoadSession(sessions, log)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = auth.SessionFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/main", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "abc"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.False(t, got.Authenticated())
}
