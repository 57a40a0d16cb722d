// Package sessions tracks the logged in resource owner with a signed cookie.
// The cookie holds a session ticket encoded by the same codec as codes and
// tokens, so no server side session table is needed.
package sessions

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-authcode-server/ticket"
)

const (
	DefaultCookieName = "authcode_session"
	DefaultMaxAge     = 30 * time.Minute
)

// Session is an authenticated browser session. ID is unique per sign in and
// doubles as the CSRF token for forms rendered inside the session.
type Session struct {
	ID        string
	Identity  ticket.Identity
	ExpiresAt time.Time
}

// Authenticator answers whether a request carries a logged in identity.
type Authenticator interface {
	Current(r *http.Request) (*Session, bool)
	SignIn(w http.ResponseWriter, r *http.Request, identity ticket.Identity) (*Session, error)
	SignOut(w http.ResponseWriter, r *http.Request)
}

// IsSecure reports whether r arrived over TLS, directly or via a proxy.
func IsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
