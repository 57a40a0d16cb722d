package sessions

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-authcode-server/ticket"
	"github.com/rs/zerolog/log"
)

var _ Authenticator = (*CookieAuthenticator)(nil)

type CookieAuthenticator struct {
	codec      ticket.Codec
	cookieName string
	maxAge     time.Duration
	nowTime    func() time.Time
}

type CookieAuthenticatorOption func(*CookieAuthenticator)

func WithMaxAge(maxAge time.Duration) CookieAuthenticatorOption {
	return func(a *CookieAuthenticator) {
		if maxAge > 0 {
			a.maxAge = maxAge
		}
	}
}

func WithCookieName(name string) CookieAuthenticatorOption {
	return func(a *CookieAuthenticator) {
		if name != "" {
			a.cookieName = name
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CookieAuthenticatorOption {
	return func(a *CookieAuthenticator) {
		a.nowTime = nowFunc
	}
}

func NewCookieAuthenticator(codec ticket.Codec, opts ...CookieAuthenticatorOption) *CookieAuthenticator {
	a := &CookieAuthenticator{
		codec:      codec,
		cookieName: DefaultCookieName,
		maxAge:     DefaultMaxAge,
		nowTime:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *CookieAuthenticator) Current(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	t, err := a.codec.Decode(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring invalid session cookie")
		return nil, false
	}
	if t.Purpose != ticket.PurposeSession || t.AuthType != ticket.AuthTypeSession || t.Subject == "" {
		log.Debug().Str("purpose", string(t.Purpose)).Msg("ignoring session cookie with wrong purpose")
		return nil, false
	}

	return &Session{ID: t.ID, Identity: t.Identity(), ExpiresAt: t.ExpiresAt}, true
}

func (a *CookieAuthenticator) SignIn(w http.ResponseWriter, r *http.Request, identity ticket.Identity) (*Session, error) {
	if identity.Subject == "" {
		return nil, fmt.Errorf("[SignIn] identity has no subject")
	}

	t := ticket.New(identity, "", ticket.AuthTypeSession, ticket.PurposeSession, a.nowTime(), a.maxAge)
	encoded, err := a.codec.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("[SignIn] encoding session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.maxAge.Seconds()),
	})
	return &Session{ID: t.ID, Identity: t.Identity(), ExpiresAt: t.ExpiresAt}, nil
}

func (a *CookieAuthenticator) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
