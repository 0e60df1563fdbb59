package middleware

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "token"

// SessionCookies owns the session cookie policy: httpOnly always,
// sameSite=strict, secure only on production deployments, lifetime equal
// to the token's own expiry. Clear reuses the identical attribute set, or
// some browsers will not remove the cookie.
type SessionCookies struct {
	secure bool
	ttl    time.Duration
}

// NewSessionCookies creates the cookie policy. ttl must be the same value
// the token issuer uses.
func NewSessionCookies(secure bool, ttl time.Duration) *SessionCookies {
	return &SessionCookies{secure: secure, ttl: ttl}
}

// Set attaches the session token to the response.
func (c *SessionCookies) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(token, int(c.ttl.Seconds())))
}

// Clear expires the session cookie. Safe to call with no session present.
func (c *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

// Read returns the session token from the request, or "" when absent.
func (c *SessionCookies) Read(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *SessionCookies) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
