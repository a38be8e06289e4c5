// internal/form/widget.go
//
// Forms subsystem: widget integration.
//
// Context
//   Page templates embed form markup through the widget system:
//
//       {{ widget "auth/login" (dict "state" .Data.Form) }}
//
//   One widget is registered per FormDef.  Output carries a CSRF token, so
//   it is rendered fresh every time.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"

	"github.com/yanizio/studentdesk/internal/widget"
)

var _ widget.Widget = (*formWidget)(nil)

type formWidget struct{ id string }

func (w *formWidget) ID() string { return w.id }

// Render expects params["state"] to hold the *State to draw.
func (w *formWidget) Render(_ any, params map[string]any) (string, error) {
	st, ok := params["state"].(*State)
	if !ok || st == nil {
		return "", fmt.Errorf("form widget %s: missing state", w.id)
	}
	if st.Form != w.id {
		return "", fmt.Errorf("form widget %s: state belongs to %s", w.id, st.Form)
	}
	out, err := RenderFields(st)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func injectWidgetRegistration(fd *FormDef) { widget.Register(&formWidget{id: fd.ID}) }
