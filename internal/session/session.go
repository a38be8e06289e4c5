// internal/session/session.go
//
// Token storage between requests.
//
// Context
//   The only thing Student Desk persists for a browser is the bearer token
//   the backend handed out at login.  A Store keeps at most one token per
//   browser and knows nothing about its shape: any string is accepted, none
//   expires early, and a stale token is discovered only when the backend
//   rejects it.
//
//   Two stores exist.  CookieStore seals the token into an AES-GCM cookie,
//   so the server stays stateless.  RedisStore keeps the token server-side
//   under a random session ID.  `session.store` in config picks one.
//
//   Handlers never talk to a Store directly.  Middleware builds a per-request
//   *Context (see context.go) and everything downstream goes through it.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"time"
)

// Store persists one token per browser.
type Store interface {
	// Get returns the stored token.  ok == false when none is present or
	// the stored value cannot be read back.
	Get(r *http.Request) (tok string, ok bool)
	// Set replaces any stored token with tok.
	Set(w http.ResponseWriter, r *http.Request, tok string) error
	// Clear removes the token.  Clearing an empty store is not an error.
	Clear(w http.ResponseWriter, r *http.Request) error
}

// Options are the cookie attributes shared by both stores.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func (o Options) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     o.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(o.TTL / time.Second),
		Expires:  time.Now().Add(o.TTL),
	}
}

func (o Options) expired() *http.Cookie {
	return &http.Cookie{
		Name:     o.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
