package students

import (
	"context"
	"net/http"
	"strings"

	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/api"
	"github.com/yanizio/studentdesk/internal/form"
	"github.com/yanizio/studentdesk/internal/view"
)

const deleteFallback = "Failed to delete student."

type deletePage struct {
	ID   int64
	Name string
	Form *form.State
}

// confirmDelete asks before deleting.  It makes no API call; the name shown
// is the one the list link carried.
func (c *Component) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		backToList(w, r, "error", "Unknown student.")
		return
	}
	data := deletePage{
		ID:   id,
		Name: strings.TrimSpace(r.URL.Query().Get("name")),
		Form: c.forms.New(deleteForm, nil),
	}
	_ = c.views.Render(w, r, http.StatusOK, c.Name(), "delete", &view.Page{Title: "Delete student", Data: data})
}

// delete performs the call only when the POST carries confirm=yes.  Either
// way the user lands on a freshly loaded list.
func (c *Component) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		backToList(w, r, "error", "Unknown student.")
		return
	}
	st, err := c.forms.Parse(deleteForm, r)
	if err != nil {
		backToList(w, r, "error", expiredMessage)
		return
	}
	if r.PostForm.Get("confirm") != "yes" {
		http.Redirect(w, r, listPath, http.StatusSeeOther)
		return
	}

	_, _, err = form.Submit(r.Context(), c.forms, st, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.students.Delete(ctx, id)
	})
	if err != nil {
		st.Fail(api.Message(err, deleteFallback))
		backToList(w, r, "error", st.Message)
		return
	}

	e := activity.For(r, actor(r), activity.Deleted)
	e.StudentID = id
	activity.Note(r.Context(), c.activity, e)
	backToList(w, r, "success", "Student deleted.")
}
