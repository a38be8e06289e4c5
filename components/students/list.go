package students

import (
	"net/http"
	"strings"

	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/api"
	"github.com/yanizio/studentdesk/internal/export"
	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/student"
	"github.com/yanizio/studentdesk/internal/view"
)

const (
	listFallback   = "Failed to load students."
	exportFallback = "Failed to export students."
)

type listPage struct {
	Students []student.Student
	Email    string
	Error    string
}

// list loads every student, or the single match for ?email=.  An unknown
// email is an empty result, not an error.
func (c *Component) list(w http.ResponseWriter, r *http.Request) {
	data := listPage{Email: strings.TrimSpace(r.URL.Query().Get("email"))}
	status := http.StatusOK

	if data.Email != "" {
		s, err := c.students.GetByEmail(r.Context(), data.Email)
		switch {
		case err == nil:
			data.Students = []student.Student{*s}
		case api.StatusOf(err) == http.StatusNotFound:
		default:
			data.Error = api.Message(err, listFallback)
			status = api.PageStatus(err)
		}
	} else {
		list, err := c.students.List(r.Context())
		if err != nil {
			data.Error = api.Message(err, listFallback)
			status = api.PageStatus(err)
		}
		data.Students = list
	}

	_ = c.views.Render(w, r, status, c.Name(), "list", &view.Page{Title: "Students", Data: data})
}

func (c *Component) exportCSV(w http.ResponseWriter, r *http.Request) {
	c.export(w, r, "csv", "text/csv; charset=utf-8", func(list []student.Student) error {
		return export.CSV(w, list)
	})
}

func (c *Component) exportPDF(w http.ResponseWriter, r *http.Request) {
	c.export(w, r, "pdf", "application/pdf", func(list []student.Student) error {
		return export.PDF(w, "Students", c.now(), list)
	})
}

// export loads the full list and streams it with write.  A backend failure
// sends the user back to the list with the message.
func (c *Component) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func([]student.Student) error) {
	list, err := c.students.List(r.Context())
	if err != nil {
		backToList(w, r, "error", api.Message(err, exportFallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="students-`+c.now().Format("20060102")+`.`+ext+`"`)
	w.Header().Set("Cache-Control", "no-store")
	if err := write(list); err != nil {
		logger.FromContext(r.Context()).Errorw("export failed", "format", ext, "err", err)
		return
	}

	e := activity.For(r, actor(r), activity.Exported)
	e.Detail = ext
	activity.Note(r.Context(), c.activity, e)
}
