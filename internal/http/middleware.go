package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

const guestCookieName = "cart_session"

// CartRestorer is what the session middleware needs from the cart store: the
// one-time remote-wins restore at session establishment.
type CartRestorer interface {
	RestoreFromRemote(ctx context.Context, sess session.Session) error
}

// SessionMiddleware resolves the caller's session from the bearer credential
// and the identity headers set by the auth layer in front of this service;
// token validation and refresh happen there, the storefront only reads the
// result.
type SessionMiddleware struct {
	registry *session.Registry
	carts    CartRestorer
	log      zerolog.Logger
}

func NewSessionMiddleware(registry *session.Registry, carts CartRestorer, log zerolog.Logger) *SessionMiddleware {
	return &SessionMiddleware{registry: registry, carts: carts, log: log}
}

// Handler resolves the caller's session: authenticated when a non-revoked
// bearer plus identity headers are present, otherwise a cookie-keyed guest.
// On session establishment the remote cart replaces local state before the
// request proceeds; a failed restore is logged and the (empty) local cart
// stands.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.resolve(w, r)

		if sess.Authenticated() && m.registry.FirstSeen(sess.Token) && m.carts != nil {
			if err := m.carts.RestoreFromRemote(r.Context(), sess); err != nil {
				m.log.Warn().Err(err).Str("owner", sess.Owner).Msg("cart restore on session establishment failed")
			}
		}

		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

func (m *SessionMiddleware) resolve(w http.ResponseWriter, r *http.Request) session.Session {
	token := bearerToken(r)
	identity := identityFromHeaders(r)

	if token != "" && identity != nil && !m.registry.Revoked(token) {
		return session.Session{
			Owner:    session.OwnerKey(*identity),
			Token:    token,
			Identity: identity,
		}
	}

	// Guest: key the cart by a browser cookie.
	cookie, err := r.Cookie(guestCookieName)
	if err != nil || cookie.Value == "" {
		id := uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     guestCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return session.Session{Owner: session.GuestKey(id)}
	}
	return session.Session{Owner: session.GuestKey(cookie.Value)}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func identityFromHeaders(r *http.Request) *session.Identity {
	idHeader := r.Header.Get("X-User-Id")
	if idHeader == "" {
		return nil
	}
	id, err := strconv.ParseInt(idHeader, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &session.Identity{
		ID:    id,
		Name:  r.Header.Get("X-User-Name"),
		Email: r.Header.Get("X-User-Email"),
	}
}
