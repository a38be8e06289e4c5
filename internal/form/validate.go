// internal/form/validate.go
//
// Forms subsystem: server-side validation.
//
// Context
//   Posted input is parsed into a value object (values.go) and checked by
//   Validate.  Rules live in `validate:"…"` tags and run through
//   go-playground/validator; failures come back as FieldErrors keyed by the
//   same `form:"…"` name the renderer used, so templates can highlight the
//   exact input.
//
//   Validate is a pure function.  It does not look at CSRF, state, or the
//   network.  A non-empty result means the submission never reaches the
//   backend.
//
//   Messages come from an English universal-translator.  The stock
//   validator translations cover every tag; the tags our forms use are
//   overridden with shorter text that does not repeat the field name, since
//   the renderer already places the message under its label.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// FieldErrors maps a field name to its user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	names := make([]string, 0, len(fe))
	for n := range fe {
		names = append(names, n)
	}
	sort.Strings(names)
	return "form validation failed: " + strings.Join(names, ", ")
}

// messages override the stock translation for these tags.  {0} is the
// tag parameter.
var messages = map[string]string{
	"required": "This field is required.",
	"email":    "Enter a valid email address.",
	"min":      "Must be at least {0} characters.",
	"max":      "Must be at most {0} characters.",
	"datetime": "Use the YYYY-MM-DD format.",
}

var validate, trans = newValidator()

func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	locale := en.New()
	tr, _ := ut.New(locale, locale).GetTranslator("en")
	if err := entrans.RegisterDefaultTranslations(v, tr); err != nil {
		panic(err)
	}
	for tag, text := range messages {
		err := v.RegisterTranslation(tag, tr,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, err := t.T(fe.Tag(), fe.Param())
				if err != nil {
					return "Invalid input."
				}
				return msg
			})
		if err != nil {
			panic(err)
		}
	}
	return v, tr
}

// Validate checks v (a pointer or struct with validate tags) and returns the
// field errors, or nil when v is valid.
func Validate(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": "Invalid input."}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, dup := out[fe.Field()]; dup {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

// message turns one validator failure into text.
func message(fe validator.FieldError) string { return fe.Translate(trans) }
