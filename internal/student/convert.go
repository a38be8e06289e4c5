package student

import "github.com/yanizio/studentdesk/internal/form"

// ToForm pre-fills an edit form from s, converting the date to the form's
// native YYYY-MM-DD representation.
func ToForm(s Student) form.StudentForm {
	return form.StudentForm{
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Email:       s.Email,
		DateOfBirth: FormDate(s.DateOfBirth),
		PhoneNumber: s.PhoneNumber,
		Address:     s.Address,
	}
}

// FromForm builds a create request.  An empty date is left out.
func FromForm(f form.StudentForm) CreateRequest {
	return CreateRequest{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		DateOfBirth: FormDate(f.DateOfBirth),
		PhoneNumber: f.PhoneNumber,
		Address:     f.Address,
	}
}

// Diff returns an update carrying only the fields that differ between the
// form as loaded (orig) and as submitted (edited).  A date that was cleared
// is left absent rather than sent empty.
func Diff(orig, edited form.StudentForm) UpdateRequest {
	var u UpdateRequest
	pick := func(a, b string) *string {
		if a == b {
			return nil
		}
		v := b
		return &v
	}
	u.FirstName = pick(orig.FirstName, edited.FirstName)
	u.LastName = pick(orig.LastName, edited.LastName)
	u.Email = pick(orig.Email, edited.Email)
	u.PhoneNumber = pick(orig.PhoneNumber, edited.PhoneNumber)
	u.Address = pick(orig.Address, edited.Address)

	if d := FormDate(edited.DateOfBirth); d != "" && d != FormDate(orig.DateOfBirth) {
		u.DateOfBirth = &d
	}
	return u
}

// DateCleared reports whether edited removes a date orig had.  Diff cannot
// express that change, so callers tell the user the date was kept.
func DateCleared(orig, edited form.StudentForm) bool {
	return FormDate(orig.DateOfBirth) != "" && FormDate(edited.DateOfBirth) == ""
}
