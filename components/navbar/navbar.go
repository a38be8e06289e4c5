// components/navbar/navbar.go
//
// Navbar component.  Owns no routes; it registers the "navbar/navbar"
// widget that layout.html draws on every page.
//
// The logged-in view is decided by the auth service's LoggedIn accessor,
// i.e. purely by whether the request's session holds a token.  When the
// token is a JWT its subject is shown next to the logout button.

package navbar

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/studentdesk/internal/auth"
	"github.com/yanizio/studentdesk/internal/component"
	"github.com/yanizio/studentdesk/internal/session"
	"github.com/yanizio/studentdesk/internal/widget"
)

//go:embed templates/navbar.html
var files embed.FS

var tpl = template.Must(template.ParseFS(files, "templates/navbar.html"))

var _ component.Component = (*Component)(nil)

type Component struct{}

func (c *Component) Name() string { return "navbar" }

func (c *Component) Init(d component.Deps) error {
	widget.Register(Widget{Auth: auth.NewService(d.API)})
	return nil
}

func (c *Component) Routes(chi.Router) {}

func init() { component.Register(&Component{}) }

// Widget draws the navigation bar for the request passed as rctx.
type Widget struct {
	Auth *auth.Service
}

func (Widget) ID() string { return "navbar/navbar" }

type model struct {
	LoggedIn bool
	Subject  string
	Path     string
}

func (w Widget) Render(rctx any, _ map[string]any) (string, error) {
	var m model
	if r, ok := rctx.(*http.Request); ok && r != nil {
		sc := session.FromContext(r.Context())
		m.Path = r.URL.Path
		m.LoggedIn = w.Auth.LoggedIn(sc)
		if tok, ok := sc.Token(); ok && m.LoggedIn {
			m.Subject = auth.Subject(tok)
		}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}
