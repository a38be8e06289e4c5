// components/auth/auth.go
//
// Authentication component: login, registration, and logout pages.
//
// Context
// -------
// Login and Register are form instances driven through form.Kit: parse,
// validate, submit once, then redirect on success or re-render with the
// backend's message on failure.  Logout only drops the local token.
//
//------------------------------------------------------------------------------

package auth

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/studentdesk/internal/activity"
	authsvc "github.com/yanizio/studentdesk/internal/auth"
	"github.com/yanizio/studentdesk/internal/component"
	"github.com/yanizio/studentdesk/internal/form"
	"github.com/yanizio/studentdesk/internal/view"
)

const (
	loginForm    = "auth/login"
	registerForm = "auth/register"

	loginFallback    = "Login failed."
	registerFallback = "Registration failed."
	registeredNotice = "Registration successful. Please sign in."

	afterLogin = "/students"
)

//go:embed templates/*.html forms/*.yaml
var assets embed.FS

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates the auth pages.
type Component struct {
	svc      *authsvc.Service
	views    *view.Engine
	forms    *form.Kit
	activity activity.Recorder
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Init wires the API client, templates, and form definitions.
func (c *Component) Init(d component.Deps) error {
	tpl, err := fs.Sub(assets, "templates")
	if err != nil {
		return err
	}
	forms, err := fs.Sub(assets, "forms")
	if err != nil {
		return err
	}
	if err := form.RegisterForms(forms); err != nil {
		return err
	}
	d.Views.Register(c.Name(), tpl)

	c.svc = authsvc.NewService(d.API)
	c.views = d.Views
	c.forms = d.Forms
	c.activity = d.Activity
	return nil
}

// Routes adds the public auth pages.
func (c *Component) Routes(r chi.Router) {
	r.Get("/login", c.getLogin)
	r.Post("/login", c.postLogin)
	r.Get("/register", c.getRegister)
	r.Post("/register", c.postRegister)
	r.Get("/logout", c.logout)
	r.Post("/logout", c.logout)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Rendering ────────────────────────────────────*/

type formPage struct {
	Form *form.State
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, name, title string, st *form.State) {
	_ = c.views.Render(w, r, status, c.Name(), name, &view.Page{Title: title, Data: formPage{Form: st}})
}
