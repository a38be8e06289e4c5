// internal/form/submit.go
//
// Forms subsystem: request parsing and guarded submission.
//
// Context
//   Handlers want two calls.  Kit.Parse reads a POST, verifies CSRF, and
//   rebuilds the instance State.  Submit then runs the backend call.
//
//   Submit enforces "one submission per form instance".  A double click
//   sends two POSTs carrying the same form_id; singleflight collapses them
//   into one backend call and both requests receive its outcome.  The call
//   runs on a context detached from cancellation so the first browser
//   request being aborted does not fail the shared attempt; the API client
//   timeout still bounds it.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/studentdesk/internal/metrics"
)

// ErrCSRF means the posted token was missing, forged, or expired.
var ErrCSRF = errors.New("form: security token invalid")

// Kit issues and reads form instances.
type Kit struct {
	csrf  *CSRF
	group singleflight.Group
}

// NewKit keys CSRF tokens from secret.
func NewKit(secret string) *Kit {
	return &Kit{csrf: NewCSRF(secret)}
}

// New starts an Idle instance of formID pre-filled with values.
func (k *Kit) New(formID string, values map[string]string) *State {
	if values == nil {
		values = map[string]string{}
	}
	st := &State{Form: formID, ID: uuid.NewString(), Values: values}
	st.CSRF, _ = k.csrf.Generate()
	return st
}

// Parse reads r's POST body and returns the posted instance of formID.
// The returned State has a fresh CSRF token ready for re-render; Values are
// left for the caller to fill from its value object.
func (k *Kit) Parse(formID string, r *http.Request) (*State, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	if !k.csrf.Verify(r.PostForm.Get("csrf_token")) {
		return nil, ErrCSRF
	}

	id := r.PostForm.Get("form_id")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	st := &State{Form: formID, ID: id, Values: map[string]string{}}
	st.CSRF, _ = k.csrf.Generate()
	return st, nil
}

// Action returns the posted "action" button value ("submit" by default).
func Action(r *http.Request) string {
	if a := r.PostFormValue("action"); a != "" {
		return a
	}
	return "submit"
}

// Check validates v, records the outcome on st, and reports whether the
// submission may proceed.
func (k *Kit) Check(st *State, v any) bool {
	if errs := Validate(v); len(errs) > 0 {
		st.Invalid(errs)
		metrics.FormSubmissionsTotal.WithLabelValues(st.Form, "invalid").Inc()
		return false
	}
	return true
}

// Submit runs fn once per form instance.  shared is true when the outcome
// was handed to more than one request.
func Submit[T any](ctx context.Context, k *Kit, st *State, fn func(context.Context) (T, error)) (res T, shared bool, err error) {
	st.Begin()

	detached := context.WithoutCancel(ctx)
	v, err, shared := k.group.Do(st.Form+":"+st.ID, func() (any, error) {
		return fn(detached)
	})

	outcome := "success"
	switch {
	case shared:
		outcome = "duplicate"
	case err != nil:
		outcome = "failed"
	}
	metrics.FormSubmissionsTotal.WithLabelValues(st.Form, outcome).Inc()

	if err != nil {
		return res, shared, err
	}
	res, _ = v.(T)
	st.Succeed()
	return res, shared, nil
}
