package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

type mockRestorer struct {
	calls int
	err   error
}

func (m *mockRestorer) RestoreFromRemote(context.Context, session.Session) error {
	m.calls++
	return m.err
}

// capture runs the middleware and returns the session the inner handler saw.
func capture(mw *SessionMiddleware, r *http.Request) (session.Session, *httptest.ResponseRecorder) {
	var seen session.Session
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = session.FromContext(r.Context())
	})
	rec := httptest.NewRecorder()
	mw.Handler(inner).ServeHTTP(rec, r)
	return seen, rec
}

func authedRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("X-User-Id", "7")
	r.Header.Set("X-User-Name", "Jane")
	r.Header.Set("X-User-Email", "jane@example.com")
	return r
}

func TestSession_AuthenticatedFromHeaders(t *testing.T) {
	mw := NewSessionMiddleware(session.NewRegistry(), &mockRestorer{}, zerolog.Nop())

	sess, _ := capture(mw, authedRequest("tok-1"))

	require.True(t, sess.Authenticated())
	assert.Equal(t, "user:7", sess.Owner)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "jane@example.com", sess.Identity.Email)
}

func TestSession_NoCredentialsIssuesGuestCookie(t *testing.T) {
	mw := NewSessionMiddleware(session.NewRegistry(), &mockRestorer{}, zerolog.Nop())

	sess, rec := capture(mw, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.False(t, sess.Authenticated())
	assert.Contains(t, sess.Owner, "guest:")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cart_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSession_ExistingGuestCookieReused(t *testing.T) {
	mw := NewSessionMiddleware(session.NewRegistry(), &mockRestorer{}, zerolog.Nop())
	r := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	r.AddCookie(&http.Cookie{Name: "cart_session", Value: "abc-123"})

	sess, rec := capture(mw, r)

	assert.Equal(t, "guest:abc-123", sess.Owner)
	assert.Empty(t, rec.Result().Cookies(), "a returning guest must keep their cookie")
}

func TestSession_RevokedTokenDowngradesToGuest(t *testing.T) {
	registry := session.NewRegistry()
	registry.Invalidate("tok-revoked")
	mw := NewSessionMiddleware(registry, &mockRestorer{}, zerolog.Nop())

	sess, _ := capture(mw, authedRequest("tok-revoked"))

	assert.False(t, sess.Authenticated())
	assert.Contains(t, sess.Owner, "guest:")
}

func TestSession_RestoresCartOnceOnEstablishment(t *testing.T) {
	restorer := &mockRestorer{}
	mw := NewSessionMiddleware(session.NewRegistry(), restorer, zerolog.Nop())

	capture(mw, authedRequest("tok-1"))
	capture(mw, authedRequest("tok-1"))
	capture(mw, authedRequest("tok-1"))

	assert.Equal(t, 1, restorer.calls, "the remote cart restore runs once per token, not per request")
}

func TestSession_RestoreFailureDoesNotBlockRequest(t *testing.T) {
	restorer := &mockRestorer{err: errors.New("backend down")}
	mw := NewSessionMiddleware(session.NewRegistry(), restorer, zerolog.Nop())

	sess, _ := capture(mw, authedRequest("tok-1"))

	assert.True(t, sess.Authenticated(), "a failed restore must not fail the request")
}

func TestSession_BadIdentityHeaderFallsBackToGuest(t *testing.T) {
	mw := NewSessionMiddleware(session.NewRegistry(), &mockRestorer{}, zerolog.Nop())
	r := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	r.Header.Set("Authorization", "Bearer tok-1")
	r.Header.Set("X-User-Id", "not-a-number")

	sess, _ := capture(mw, r)

	assert.False(t, sess.Authenticated())
}
