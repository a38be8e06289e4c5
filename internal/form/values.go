package form

import (
	"net/url"
	"strings"
)

// LoginForm is the login submission.
type LoginForm struct {
	Login    string `form:"login"    validate:"required"`
	Password string `form:"password" validate:"required"`
}

// ParseLogin reads a LoginForm from posted values.
func ParseLogin(v url.Values) LoginForm {
	return LoginForm{
		Login:    strings.TrimSpace(v.Get("login")),
		Password: v.Get("password"),
	}
}

// Values returns the fields safe to echo back into the form.
func (f LoginForm) Values() map[string]string {
	return map[string]string{"login": f.Login}
}

// RegisterForm is the registration submission.
type RegisterForm struct {
	Login     string `form:"login"     validate:"required,email"`
	Password  string `form:"password"  validate:"required,min=6"`
	FirstName string `form:"firstName" validate:"required"`
	LastName  string `form:"lastName"  validate:"required"`
}

func ParseRegister(v url.Values) RegisterForm {
	return RegisterForm{
		Login:     strings.TrimSpace(v.Get("login")),
		Password:  v.Get("password"),
		FirstName: strings.TrimSpace(v.Get("firstName")),
		LastName:  strings.TrimSpace(v.Get("lastName")),
	}
}

func (f RegisterForm) Values() map[string]string {
	return map[string]string{
		"login":     f.Login,
		"firstName": f.FirstName,
		"lastName":  f.LastName,
	}
}

// StudentForm is the create/edit submission.  DateOfBirth is kept in the
// browser's native YYYY-MM-DD form; empty means unset.
type StudentForm struct {
	FirstName   string `form:"firstName"   validate:"required"`
	LastName    string `form:"lastName"    validate:"required"`
	Email       string `form:"email"       validate:"required,email"`
	DateOfBirth string `form:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	PhoneNumber string `form:"phoneNumber" validate:"max=32"`
	Address     string `form:"address"     validate:"max=255"`
}

// ParseStudent reads a StudentForm.  prefix selects a shadow copy, e.g. the
// "orig_" fields an edit form carries to compute the change set.
func ParseStudent(v url.Values, prefix string) StudentForm {
	get := func(k string) string { return strings.TrimSpace(v.Get(prefix + k)) }
	return StudentForm{
		FirstName:   get("firstName"),
		LastName:    get("lastName"),
		Email:       get("email"),
		DateOfBirth: get("dateOfBirth"),
		PhoneNumber: get("phoneNumber"),
		Address:     get("address"),
	}
}

func (f StudentForm) Values() map[string]string {
	return map[string]string{
		"firstName":   f.FirstName,
		"lastName":    f.LastName,
		"email":       f.Email,
		"dateOfBirth": f.DateOfBirth,
		"phoneNumber": f.PhoneNumber,
		"address":     f.Address,
	}
}
