package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/api"
	authsvc "github.com/yanizio/studentdesk/internal/auth"
	"github.com/yanizio/studentdesk/internal/form"
	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/session"
)

const expiredMessage = "Your form expired. Please try again."

/*──────────────────────────── Login ────────────────────────────────────────*/

func (c *Component) getLogin(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "login", "Sign in", c.forms.New(loginForm, nil))
}

func (c *Component) postLogin(w http.ResponseWriter, r *http.Request) {
	st, ok := c.parse(w, r, loginForm, "login", "Sign in")
	if !ok {
		return
	}
	if form.Action(r) == "reset" {
		st.Reset()
		c.render(w, r, http.StatusOK, "login", "Sign in", st)
		return
	}

	in := form.ParseLogin(r.PostForm)
	st.Values = in.Values()
	if !c.forms.Check(st, in) {
		c.render(w, r, http.StatusUnprocessableEntity, "login", "Sign in", st)
		return
	}

	creds := authsvc.Credentials{Login: in.Login, Password: in.Password}
	tok, _, err := form.Submit(r.Context(), c.forms, st, func(ctx context.Context) (string, error) {
		return c.svc.Authenticate(ctx, creds)
	})
	if err == nil {
		// Every request sharing the outcome stores the token on its own
		// response.
		err = c.svc.Remember(session.FromContext(r.Context()), tok)
	}
	if err != nil {
		st.Fail(api.Message(err, loginFallback))
		c.render(w, r, api.PageStatus(err), "login", "Sign in", st)
		return
	}

	actor := authsvc.Subject(tok)
	if actor == "" {
		actor = in.Login
	}
	activity.Note(r.Context(), c.activity, activity.For(r, actor, activity.LoggedIn))
	logger.FromContext(r.Context()).Infow("login ok", "login", in.Login)
	http.Redirect(w, r, afterLogin, http.StatusSeeOther)
}

/*──────────────────────────── Register ─────────────────────────────────────*/

func (c *Component) getRegister(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "register", "Register", c.forms.New(registerForm, nil))
}

func (c *Component) postRegister(w http.ResponseWriter, r *http.Request) {
	st, ok := c.parse(w, r, registerForm, "register", "Register")
	if !ok {
		return
	}
	if form.Action(r) == "reset" {
		st.Reset()
		c.render(w, r, http.StatusOK, "register", "Register", st)
		return
	}

	in := form.ParseRegister(r.PostForm)
	st.Values = in.Values()
	if !c.forms.Check(st, in) {
		c.render(w, r, http.StatusUnprocessableEntity, "register", "Register", st)
		return
	}

	reg := authsvc.Registration{Login: in.Login, Password: in.Password, FirstName: in.FirstName, LastName: in.LastName}
	_, _, err := form.Submit(r.Context(), c.forms, st, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.svc.Register(ctx, reg)
	})
	if err != nil {
		st.Fail(api.Message(err, registerFallback))
		c.render(w, r, api.PageStatus(err), "register", "Register", st)
		return
	}

	activity.Note(r.Context(), c.activity, activity.For(r, in.Login, activity.Registered))
	session.SetFlash(w, session.Flash{Kind: "success", Message: registeredNotice})
	http.Redirect(w, r, authsvc.LoginPath, http.StatusSeeOther)
}

/*──────────────────────────── Logout ───────────────────────────────────────*/

// logout clears the token whether or not one exists.  It takes no CSRF
// token: the only effect is the one a visitor can always cause by dropping
// their own cookie.
func (c *Component) logout(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Logout(session.FromContext(r.Context())); err != nil {
		logger.FromContext(r.Context()).Warnw("logout: clear session", "err", err)
	}
	http.Redirect(w, r, authsvc.LoginPath, http.StatusSeeOther)
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// parse reads a posted instance.  On a bad CSRF token it re-renders a fresh
// instance with an explanation and reports false.
func (c *Component) parse(w http.ResponseWriter, r *http.Request, id, page, title string) (*form.State, bool) {
	st, err := c.forms.Parse(id, r)
	if err == nil {
		return st, true
	}
	status := http.StatusBadRequest
	if errors.Is(err, form.ErrCSRF) {
		status = http.StatusForbidden
	}
	logger.FromContext(r.Context()).Infow("form rejected", "form", id, "err", err)
	fresh := c.forms.New(id, nil)
	fresh.Message = expiredMessage
	c.render(w, r, status, page, title, fresh)
	return nil, false
}
