// internal/student/model.go
//
// Student records as the registry API sends and accepts them.
//
// Context
// -------
// The backend owns every record.  Student Desk holds transient copies per
// request and never caches them.  Dates travel as strings because the API
// is not consistent about their shape ("1815-12-10", RFC 3339, or with a
// fractional second), so parsing happens at the edges in dates.go.
//
// Notes
// -----
//   • CreateRequest omits empty optional fields.
//   • UpdateRequest uses pointers so "unchanged" (nil) and "cleared" ("")
//     are different on the wire.

package student

import "strings"

// Student is one record from the registry.
type Student struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}

// BirthDate returns DateOfBirth in YYYY-MM-DD form, or "".
func (s Student) BirthDate() string { return FormDate(s.DateOfBirth) }

// CreateRequest is the body of POST /students.
type CreateRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
}

// UpdateRequest is the body of PUT /students/{id}.  Nil fields are left
// untouched by the backend.
type UpdateRequest struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u UpdateRequest) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.DateOfBirth == nil && u.PhoneNumber == nil && u.Address == nil
}

// Fields lists the JSON names of the fields u sets, comma-separated.
func (u UpdateRequest) Fields() string {
	var out []string
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"firstName", u.FirstName},
		{"lastName", u.LastName},
		{"email", u.Email},
		{"dateOfBirth", u.DateOfBirth},
		{"phoneNumber", u.PhoneNumber},
		{"address", u.Address},
	} {
		if f.v != nil {
			out = append(out, f.name)
		}
	}
	return strings.Join(out, ",")
}
