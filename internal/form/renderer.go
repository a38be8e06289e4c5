// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   Given a registered FormDef and a *State, the renderer writes the form's
//   inputs as safe, accessible HTML.  It applies HTML5 validation attributes
//   from the definition, pre-fills values from the state, fills each field's
//   error span, and injects the hidden `csrf_token` and `form_id` inputs.
//
//   The <form> element and the buttons belong to the page template, so one
//   definition serves several actions (e.g. create and edit).
//
// Style
//   Output HTML is deliberately plain so pages can style via element
//   selectors or class hooks.  Each input gets id="fld-{name}" and is
//   wrapped in <div class="form-field">.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"sort"
	"strconv"
)

// RenderFields returns the markup for st's fields and hidden meta inputs.
func RenderFields(st *State) (template.HTML, error) {
	fd, ok := GetFormDef(st.Form)
	if !ok {
		return "", fmt.Errorf("RenderFields: unknown form %q", st.Form)
	}

	var buf bytes.Buffer
	buf.WriteString(`<div class="sd-form">` + "\n")

	if st.Message != "" {
		buf.WriteString(`<p class="form-error" role="alert">` + html.EscapeString(st.Message) + `</p>` + "\n")
	}

	for i := range fd.Fields {
		writeField(&buf, &fd.Fields[i], st)
	}

	writeHidden(&buf, "csrf_token", st.CSRF)
	writeHidden(&buf, "form_id", st.ID)

	// Stable order keeps output diffable.
	keys := make([]string, 0, len(st.Hidden))
	for k := range st.Hidden {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeHidden(&buf, k, st.Hidden[k])
	}

	buf.WriteString(`</div>`)
	return template.HTML(buf.String()), nil
}

func writeHidden(buf *bytes.Buffer, name, value string) {
	buf.WriteString(`<input type="hidden" name="` + html.EscapeString(name) + `" value="` + html.EscapeString(value) + `">` + "\n")
}

// writeField emits HTML for one field.
func writeField(buf *bytes.Buffer, f *FieldDef, st *State) {
	val := st.Value(f.Name)
	msg := st.Errors[f.Name]
	name := html.EscapeString(f.Name)

	class := "form-field"
	if msg != "" {
		class += " has-error"
	}
	buf.WriteString(`<div class="` + class + `">` + "\n")
	buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")

	var attrs bytes.Buffer
	attrs.WriteString(`id="fld-` + name + `" name="` + name + `"`)
	if f.Placeholder != "" {
		attrs.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
	}
	if f.Autocomplete != "" {
		attrs.WriteString(` autocomplete="` + html.EscapeString(f.Autocomplete) + `"`)
	}
	if f.Required {
		attrs.WriteString(` required`)
	}
	if f.MinLength > 0 {
		attrs.WriteString(` minlength="` + strconv.Itoa(f.MinLength) + `"`)
	}
	if f.MaxLength > 0 {
		attrs.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
	}
	if f.Pattern != "" {
		attrs.WriteString(` pattern="` + html.EscapeString(f.Pattern) + `"`)
	}
	if msg != "" {
		attrs.WriteString(` aria-invalid="true"`)
	}
	if !st.Editable() {
		attrs.WriteString(` disabled`)
	}

	switch f.Type {
	case "textarea":
		buf.WriteString(`<textarea ` + attrs.String() + `>` + html.EscapeString(val) + `</textarea>` + "\n")
	default:
		buf.WriteString(`<input ` + attrs.String() + ` type="` + f.Type + `"`)
		// Passwords are never echoed back.
		if val != "" && f.Type != "password" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")
	}

	buf.WriteString(`<span class="error" aria-live="polite">` + html.EscapeString(msg) + `</span>` + "\n")
	buf.WriteString(`</div>` + "\n")
}
