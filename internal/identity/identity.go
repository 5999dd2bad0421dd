// Package identity issues and verifies the anonymous per-browser token that
// scopes history visibility. The token travels in a signed cookie; a missing
// or tampered cookie simply means a fresh identity, never an error.
package identity

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	CookieName = "loginToken"

	cookieMaxAge = 30 * 24 * 60 * 60 // 30 days
)

type Manager struct {
	codec *securecookie.SecureCookie
}

// NewManager builds a Manager signing with the given secret. Signing only, no
// encryption: the token is opaque and random, hiding it buys nothing.
func NewManager(secret []byte) *Manager {
	sc := securecookie.New(secret, nil)
	sc.MaxAge(cookieMaxAge)
	return &Manager{codec: sc}
}

// ResolveOrCreate returns the caller's verified token, generating a fresh one
// when the cookie is absent or fails verification. created reports whether the
// token is new; the caller decides whether to set the cookie.
func (m *Manager) ResolveOrCreate(r *http.Request) (token string, created bool) {
	cookie, err := r.Cookie(CookieName)
	if err == nil {
		if err := m.codec.Decode(CookieName, cookie.Value, &token); err == nil && token != "" {
			return token, false
		}
	}
	return uuid.New().String(), true
}

// Cookie builds the signed identity cookie for token. Exposed separately from
// SetCookie because a websocket handshake cannot use staged response headers:
// the upgrader only writes headers handed to it explicitly.
func (m *Manager) Cookie(r *http.Request, token string) (*http.Cookie, error) {
	encoded, err := m.codec.Encode(CookieName, token)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	}, nil
}

// SetCookie writes the signed identity cookie for token.
func (m *Manager) SetCookie(w http.ResponseWriter, r *http.Request, token string) error {
	cookie, err := m.Cookie(r, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, cookie)
	return nil
}
