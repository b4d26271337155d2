package auth

import (
	"errors"
	"net/http"
	"time"
)

// Cookie names shared with the browser client.
const (
	TokenCookieName      = "token"
	CsrfSecretCookieName = "_csrf"
	CsrfTokenCookieName  = "XSRF-TOKEN"
	CsrfHeaderName       = "X-CSRF-Token"
)

// SessionTransport attaches and clears the cookies that carry the identity
// token and CSRF artifacts between client and server.
type SessionTransport struct {
	Secure bool
	TTL    time.Duration
}

// SetTokenCookie attaches the identity token. httpOnly keeps it out of
// script-readable storage; SameSite=Strict keeps it off cross-site requests.
func (t SessionTransport) SetTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.TTL.Seconds()),
		Expires:  time.Now().Add(t.TTL),
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearTokenCookie uses MaxAge<0 plus an Expires in the past to ensure
// deletion across clients.
func (t SessionTransport) ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ReadTokenCookie returns the identity token from the request, or "" when
// the cookie is absent.
func (t SessionTransport) ReadTokenCookie(r *http.Request) string {
	c, err := r.Cookie(TokenCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return ""
		}
		return ""
	}
	return c.Value
}

// SetCsrfSecretCookie stores the server-side CSRF secret. It stays httpOnly:
// only the derived token is meant to reach script.
func (t SessionTransport) SetCsrfSecretCookie(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CsrfSecretCookieName,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetCsrfTokenCookie exposes the derived token to the browser. It must be
// script-readable so the client can echo it in the X-CSRF-Token header.
func (t SessionTransport) SetCsrfTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CsrfTokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   t.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ReadCsrfSecretCookie returns the stored CSRF secret, or "" when unseeded.
func (t SessionTransport) ReadCsrfSecretCookie(r *http.Request) string {
	c, err := r.Cookie(CsrfSecretCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
