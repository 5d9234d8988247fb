package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/logging"
	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/dmitrijs2005/secblog/internal/server/audit"
	"github.com/dmitrijs2005/secblog/internal/server/config"
	"github.com/dmitrijs2005/secblog/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		EndpointAddr:                 ":0",
		SecretKey:                    "k",
		LoginRateLimit:               100,
		LoginRateWindow:              time.Minute,
		SessionTokenValidityDuration: time.Hour,
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec, err := audit.NewRecorder(filepath.Join(t.TempDir(), "security.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return NewServer(cfg, logger, rec, nil, nil, nil)
}

func requestAs(user *models.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	if user != nil {
		req = req.WithContext(context.WithValue(req.Context(), ctxKeyPrincipal, user))
	}
	return req
}

func TestWithSessionCookie_IssuesAndPreserves(t *testing.T) {
	s := newTestServer(t)

	var seen []string
	h := s.withSessionCookie(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, sessionIDFrom(r))
	}))

	// first request: a new ID is minted and set as a cookie
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	require.Len(t, seen, 1)
	assert.Equal(t, cookies[0].Value, seen[0])

	// second request with the cookie: same ID, no new cookie
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Result().Cookies())
	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1])
}

func TestRequireAuthenticated_RejectsAnonymous(t *testing.T) {
	s := newTestServer(t)

	h := s.requireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_RefusalIsAudited(t *testing.T) {
	s := newTestServer(t)

	h := s.requireRole(access.RoleEndUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(&models.User{Email: "sec@example.com", Role: access.RoleSecAdmin}))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	events, err := s.audit.RecentEvents(1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0], "unauthorized role access")
	assert.Contains(t, events[0], "sec@example.com")
	assert.Contains(t, events[0], "/posts")
}

func TestRequireRole_AnonymousRefusedWithoutAudit(t *testing.T) {
	s := newTestServer(t)

	h := s.requireRole(access.RoleEndUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	// no principal, nothing to attribute: the refusal is not an audit event
	events, err := s.audit.RecentEvents(1)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRequireRole_AllowsMember(t *testing.T) {
	s := newTestServer(t)

	called := false
	h := s.requireRole(access.RoleEndUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(&models.User{Email: "a@example.com", Role: access.RoleEndUser}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestWriteError_StatusMapping(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		err  error
		want int
	}{
		{common.ErrorInvalidCredentials, http.StatusUnauthorized},
		{common.ErrorMfaInvalid, http.StatusUnauthorized},
		{common.ErrorMfaRequired, http.StatusForbidden},
		{common.ErrorLockedOut, http.StatusLocked},
		{common.ErrorRateLimited, http.StatusTooManyRequests},
		{common.ErrorUnauthorized, http.StatusForbidden},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrorDuplicateEmail, http.StatusConflict},
		{common.ErrorAuthentication, http.StatusUnauthorized},
		{common.ErrorInternal, http.StatusInternalServerError},
		{errBadRequest, http.StatusBadRequest},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		s.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.want, rec.Code, "error %v", tc.err)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	assert.Equal(t, "203.0.113.5", clientIP(req))

	req.RemoteAddr = "203.0.113.5"
	assert.Equal(t, "203.0.113.5", clientIP(req))
}
