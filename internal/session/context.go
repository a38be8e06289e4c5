// internal/session/context.go
//
// Per-request session context.
//
// Context
// -------
// Middleware reads the Store once per request and attaches a *Context to
// request.Context.  Components ask it for the token, and the auth service
// writes through it on login and logout.  Because the Context caches the
// token, a login followed by a render in the same request already sees the
// new state.
//
// Notes
// -----
//   • A nil *Context behaves like an anonymous visitor.
//   • TokenSource adapts FromContext to api.TokenSource.

package session

import (
	"context"
	"net/http"
)

// Context is the session view of one request.
type Context struct {
	store Store
	w     http.ResponseWriter
	r     *http.Request
	token string
}

// New reads the current token from store.
func New(store Store, w http.ResponseWriter, r *http.Request) *Context {
	tok, _ := store.Get(r)
	return &Context{store: store, w: w, r: r, token: tok}
}

// Token returns the stored token, if any.
func (c *Context) Token() (string, bool) {
	if c == nil || c.token == "" {
		return "", false
	}
	return c.token, true
}

// LoggedIn reports whether a token is present.
func (c *Context) LoggedIn() bool {
	_, ok := c.Token()
	return ok
}

// SetToken persists tok, replacing any previous one.
func (c *Context) SetToken(tok string) error {
	if err := c.store.Set(c.w, c.r, tok); err != nil {
		return err
	}
	c.token = tok
	return nil
}

// Clear removes the token.  Safe to call when nothing is stored.
func (c *Context) Clear() error {
	c.token = ""
	return c.store.Clear(c.w, c.r)
}

type ctxKey struct{}

// WithContext returns a child context carrying sc.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, sc)
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *Context {
	sc, _ := ctx.Value(ctxKey{}).(*Context)
	return sc
}

// Middleware attaches a *Context for store to every request.
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := New(store, w, r)
			r = r.WithContext(WithContext(r.Context(), sc))
			sc.r = r
			next.ServeHTTP(w, r)
		})
	}
}

// TokenSource reads the token from the session in ctx.
type TokenSource struct{}

func (TokenSource) Token(ctx context.Context) (string, bool) {
	return FromContext(ctx).Token()
}
