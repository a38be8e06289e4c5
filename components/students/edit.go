package students

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/api"
	"github.com/yanizio/studentdesk/internal/form"
	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/student"
	"github.com/yanizio/studentdesk/internal/view"
)

const (
	createFallback = "Failed to create student."
	updateFallback = "Failed to update student."
	loadFallback   = "Failed to load student."
	expiredMessage = "Your form expired. Please try again."

	updatedNotice   = "Student updated."
	unchangedNotice = "No changes to save."
	dateKeptNotice  = "The date of birth cannot be removed and was kept."
)

type formPage struct {
	Form   *form.State
	Edit   bool
	Action string
}

func (c *Component) renderForm(w http.ResponseWriter, r *http.Request, status int, p formPage) {
	title := "New student"
	if p.Edit {
		title = "Edit student"
	}
	_ = c.views.Render(w, r, status, c.Name(), "form", &view.Page{Title: title, Data: p})
}

// parse reads a posted student form.  A rejected token re-renders a fresh
// instance carrying keep as its values.
func (c *Component) parse(w http.ResponseWriter, r *http.Request, p formPage, keep map[string]string) (*form.State, bool) {
	st, err := c.forms.Parse(studentForm, r)
	if err == nil {
		return st, true
	}
	status := http.StatusBadRequest
	if errors.Is(err, form.ErrCSRF) {
		status = http.StatusForbidden
	}
	logger.FromContext(r.Context()).Infow("form rejected", "form", studentForm, "err", err)
	p.Form = c.forms.New(studentForm, keep)
	p.Form.Message = expiredMessage
	c.renderForm(w, r, status, p)
	return nil, false
}

/*──────────────────────────── Create ───────────────────────────────────────*/

func (c *Component) newForm(w http.ResponseWriter, r *http.Request) {
	c.renderForm(w, r, http.StatusOK, formPage{Form: c.forms.New(studentForm, nil), Action: "/students/new"})
}

func (c *Component) create(w http.ResponseWriter, r *http.Request) {
	p := formPage{Action: "/students/new"}
	st, ok := c.parse(w, r, p, nil)
	if !ok {
		return
	}
	p.Form = st
	if form.Action(r) == "reset" {
		st.Reset()
		c.renderForm(w, r, http.StatusOK, p)
		return
	}

	in := form.ParseStudent(r.PostForm, "")
	st.Values = in.Values()
	if !c.forms.Check(st, in) {
		c.renderForm(w, r, http.StatusUnprocessableEntity, p)
		return
	}

	created, _, err := form.Submit(r.Context(), c.forms, st, func(ctx context.Context) (*student.Student, error) {
		return c.students.Create(ctx, student.FromForm(in))
	})
	if err != nil {
		st.Fail(api.Message(err, createFallback))
		c.renderForm(w, r, api.PageStatus(err), p)
		return
	}

	e := activity.For(r, actor(r), activity.Created)
	if created != nil {
		e.StudentID = created.ID
	}
	e.Detail = in.FirstName + " " + in.LastName
	activity.Note(r.Context(), c.activity, e)
	backToList(w, r, "success", "Student created.")
}

/*──────────────────────────── Edit ─────────────────────────────────────────*/

func editAction(id int64) string { return "/students/edit/" + strconv.FormatInt(id, 10) }

// editForm loads the student and pre-fills the form with its values.
func (c *Component) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		backToList(w, r, "error", "Unknown student.")
		return
	}
	s, err := c.students.Get(r.Context(), id)
	if err != nil {
		backToList(w, r, "error", api.Message(err, loadFallback))
		return
	}

	loaded := student.ToForm(*s)
	st := c.forms.New(studentForm, loaded.Values())
	st.Hidden = shadow(loaded)
	c.renderForm(w, r, http.StatusOK, formPage{Form: st, Edit: true, Action: editAction(id)})
}

// update sends only the fields that differ from the orig_* shadow copy.
func (c *Component) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		backToList(w, r, "error", "Unknown student.")
		return
	}
	p := formPage{Edit: true, Action: editAction(id)}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	orig := form.ParseStudent(r.PostForm, origPrefix)

	st, ok := c.parse(w, r, p, orig.Values())
	if !ok {
		return
	}
	p.Form = st
	st.Hidden = shadow(orig)
	if form.Action(r) == "reset" {
		st.Reset()
		c.renderForm(w, r, http.StatusOK, p)
		return
	}

	edited := form.ParseStudent(r.PostForm, "")
	st.Values = edited.Values()
	if !c.forms.Check(st, edited) {
		c.renderForm(w, r, http.StatusUnprocessableEntity, p)
		return
	}

	diff := student.Diff(orig, edited)
	cleared := student.DateCleared(orig, edited)
	if diff.Empty() {
		msg := unchangedNotice
		if cleared {
			msg += " " + dateKeptNotice
		}
		backToList(w, r, "info", msg)
		return
	}

	_, _, err := form.Submit(r.Context(), c.forms, st, func(ctx context.Context) (*student.Student, error) {
		return c.students.Update(ctx, id, diff)
	})
	if err != nil {
		st.Fail(api.Message(err, updateFallback))
		c.renderForm(w, r, api.PageStatus(err), p)
		return
	}

	e := activity.For(r, actor(r), activity.Updated)
	e.StudentID = id
	e.Detail = diff.Fields()
	activity.Note(r.Context(), c.activity, e)
	msg := updatedNotice
	if cleared {
		msg += " " + dateKeptNotice
	}
	backToList(w, r, "success", msg)
}
