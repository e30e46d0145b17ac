package session

import (
	"context"
	"fmt"
)

// Identity is what the auth layer knows about the signed-in customer. The
// storefront only reads it; token issuance and refresh live elsewhere.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session scopes a cart to one browser. Guests carry only an Owner key;
// authenticated sessions additionally carry the bearer credential and identity.
type Session struct {
	Owner    string
	Token    string
	Identity *Identity
}

func (s Session) Authenticated() bool {
	return s.Identity != nil && s.Token != ""
}

// OwnerKey builds the cart owner key for an authenticated identity.
func OwnerKey(id Identity) string {
	return fmt.Sprintf("user:%d", id.ID)
}

// GuestKey builds the cart owner key for an anonymous browser session.
func GuestKey(sessionID string) string {
	return "guest:" + sessionID
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
