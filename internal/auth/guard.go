package auth

import (
	"net/http"

	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/session"
)

// LoginPath is where anonymous visitors are sent.
const LoginPath = "/login"

// Route describes a navigation target for CanEnter.
type Route struct {
	Path      string
	Protected bool
}

// Decision is the outcome of CanEnter.  Redirect is set iff Allow is false.
type Decision struct {
	Allow    bool
	Redirect string
}

// CanEnter allows public routes, and protected routes only when sc holds a
// token.  It never changes sc.
func CanEnter(rt Route, sc *session.Context) Decision {
	if !rt.Protected || sc.LoggedIn() {
		return Decision{Allow: true}
	}
	return Decision{Redirect: LoginPath}
}

// Guard marks every route below it protected.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := CanEnter(Route{Path: r.URL.Path, Protected: true}, session.FromContext(r.Context()))
		if !d.Allow {
			logger.FromContext(r.Context()).Debugw("guard redirect", "path", r.URL.Path, "to", d.Redirect)
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
