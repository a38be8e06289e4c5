// components/students/students.go
//
// Student pages: list with email lookup, create, edit, delete with an
// explicit confirmation step, and CSV/PDF export.
//
// Context
// -------
// Every route sits behind auth.Guard.  The edit form carries the values it
// was loaded with as hidden "orig_*" inputs, so the update request can be
// limited to the fields the user actually changed without a second fetch.
// Delete is two requests: GET renders the confirmation page and calls
// nothing; only the confirmed POST reaches the API.
//
//------------------------------------------------------------------------------

package students

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/auth"
	"github.com/yanizio/studentdesk/internal/component"
	"github.com/yanizio/studentdesk/internal/form"
	"github.com/yanizio/studentdesk/internal/session"
	"github.com/yanizio/studentdesk/internal/student"
	"github.com/yanizio/studentdesk/internal/view"
)

const (
	studentForm = "students/student"
	deleteForm  = "students/delete"
	listPath    = "/students"
	origPrefix  = "orig_"
)

//go:embed templates/*.html forms/*.yaml
var assets embed.FS

var _ component.Component = (*Component)(nil)

// Component serves the student pages.
type Component struct {
	students *student.Client
	views    *view.Engine
	forms    *form.Kit
	activity activity.Recorder
	now      func() time.Time
}

func (c *Component) Name() string { return "students" }

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

	c.students = student.NewClient(d.API)
	c.views = d.Views
	c.forms = d.Forms
	c.activity = d.Activity
	c.now = time.Now
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Guard)
		r.Get("/students", c.list)
		r.Get("/students/export.csv", c.exportCSV)
		r.Get("/students/export.pdf", c.exportPDF)
		r.Get("/students/new", c.newForm)
		r.Post("/students/new", c.create)
		r.Get("/students/edit/{id}", c.editForm)
		r.Post("/students/edit/{id}", c.update)
		r.Get("/students/{id}/delete", c.confirmDelete)
		r.Post("/students/{id}/delete", c.delete)
	})
}

func init() { component.Register(&Component{}) }

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// idParam returns the {id} URL parameter, or false when it is not a
// positive integer.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// actor names the signed-in user for the activity log.
func actor(r *http.Request) string {
	tok, _ := session.FromContext(r.Context()).Token()
	return auth.Subject(tok)
}

// backToList redirects to the list with a flash message.
func backToList(w http.ResponseWriter, r *http.Request, kind, msg string) {
	session.SetFlash(w, session.Flash{Kind: kind, Message: msg})
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

// shadow returns f's values as hidden orig_* inputs.
func shadow(f form.StudentForm) map[string]string {
	out := make(map[string]string, 6)
	for k, v := range f.Values() {
		out[origPrefix+k] = v
	}
	return out
}
