package form

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/studentdesk/internal/widget"
)

const testDef = `
id: test/student
title: Student
submit: Save
fields:
  - name: firstName
    label: First name
    type: text
    required: true
  - name: email
    label: Email
    type: email
    required: true
  - name: password
    label: Password
    type: password
    minlength: 6
  - name: address
    label: Address
    type: textarea
`

func registerTestForm(t *testing.T) {
	t.Helper()
	require.NoError(t, RegisterForms(fstest.MapFS{
		"forms/student.yaml": {Data: []byte(testDef)},
		"forms/README.md":    {Data: []byte("ignored")},
	}))
}

func TestCSRFRoundTrip(t *testing.T) {
	c := NewCSRF("secret-secret-secret-secret-secret")
	tok, err := c.Generate()
	require.NoError(t, err)
	assert.True(t, c.Verify(tok))

	assert.False(t, c.Verify(""))
	assert.False(t, c.Verify("garbage"))
	assert.False(t, NewCSRF("another-secret-another-secret-xx").Verify(tok))
}

func TestCSRFExpiry(t *testing.T) {
	c := NewCSRF("secret-secret-secret-secret-secret")
	base := time.Now()
	c.now = func() time.Time { return base }
	tok, err := c.Generate()
	require.NoError(t, err)

	c.now = func() time.Time { return base.Add(maxAge + time.Second) }
	assert.False(t, c.Verify(tok))

	c.now = func() time.Time { return base.Add(-2 * time.Minute) }
	assert.False(t, c.Verify(tok), "token from the future")
}

func TestValidateLogin(t *testing.T) {
	assert.Empty(t, Validate(LoginForm{Login: "ada", Password: "x"}))

	errs := Validate(LoginForm{})
	assert.Equal(t, "This field is required.", errs["login"])
	assert.Equal(t, "This field is required.", errs["password"])
}

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name  string
		form  RegisterForm
		field string
		msg   string
	}{
		{"email without at", RegisterForm{Login: "ada.example.com", Password: "secret1", FirstName: "A", LastName: "L"}, "login", "Enter a valid email address."},
		{"short password", RegisterForm{Login: "ada@example.com", Password: "12345", FirstName: "A", LastName: "L"}, "password", "Must be at least 6 characters."},
		{"missing first name", RegisterForm{Login: "ada@example.com", Password: "123456", LastName: "L"}, "firstName", "This field is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.form)
			assert.Equal(t, tt.msg, errs[tt.field])
		})
	}

	assert.Empty(t, Validate(RegisterForm{Login: "ada@example.com", Password: "123456", FirstName: "Ada", LastName: "Lovelace"}))
}

func TestValidateStudent(t *testing.T) {
	ok := StudentForm{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	assert.Empty(t, Validate(ok))

	withDate := ok
	withDate.DateOfBirth = "1815-12-10"
	assert.Empty(t, Validate(withDate))

	badDate := ok
	badDate.DateOfBirth = "10/12/1815"
	assert.Equal(t, "Use the YYYY-MM-DD format.", Validate(badDate)["dateOfBirth"])

	badEmail := ok
	badEmail.Email = "ada"
	assert.Contains(t, Validate(badEmail), "email")
}

func TestValidateStockTranslation(t *testing.T) {
	type seats struct {
		Count int `form:"count" validate:"gte=2"`
	}
	assert.Equal(t, FieldErrors{"count": "count must be 2 or greater"}, Validate(seats{Count: 1}))

	long := StudentForm{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PhoneNumber: strings.Repeat("1", 33)}
	assert.Equal(t, "Must be at most 32 characters.", Validate(long)["phoneNumber"])
}

func TestParseStudentWithPrefix(t *testing.T) {
	v := url.Values{
		"firstName":      {" Ada "},
		"orig_firstName": {"Augusta"},
		"orig_email":     {"a@example.com"},
	}
	assert.Equal(t, "Ada", ParseStudent(v, "").FirstName)
	orig := ParseStudent(v, "orig_")
	assert.Equal(t, "Augusta", orig.FirstName)
	assert.Equal(t, "a@example.com", orig.Email)
}

func TestLoginValuesOmitPassword(t *testing.T) {
	vals := ParseLogin(url.Values{"login": {"ada"}, "password": {"pw"}}).Values()
	assert.Equal(t, map[string]string{"login": "ada"}, vals)
}

func TestStateTransitions(t *testing.T) {
	st := &State{Values: map[string]string{"login": "ada"}}
	assert.True(t, st.Editable())

	st.Errors = FieldErrors{"login": "x"}
	st.Begin()
	assert.Equal(t, Submitting, st.Status)
	assert.Empty(t, st.Errors)
	assert.False(t, st.Editable())

	st.Fail("Login failed.")
	assert.Equal(t, Failed, st.Status)
	assert.True(t, st.Editable())
	assert.Equal(t, "ada", st.Value("login"), "values survive failure")

	st.Reset()
	assert.Equal(t, Idle, st.Status)
	assert.Empty(t, st.Values)
	assert.Empty(t, st.Message)
}

func TestLoadFormDefRejectsBadDefinitions(t *testing.T) {
	tests := map[string]string{
		"no id":         "fields: [{name: a, label: A, type: text}]",
		"no fields":     "id: x/y",
		"bad type":      "id: x/y\nfields: [{name: a, label: A, type: color}]",
		"reserved name": "id: x/y\nfields: [{name: csrf_token, label: A, type: text}]",
		"duplicate":     "id: x/y\nfields: [{name: a, label: A, type: text}, {name: a, label: B, type: text}]",
		"bad pattern":   "id: x/y\nfields: [{name: a, label: A, type: text, pattern: '('}]",
		"min over max":  "id: x/y\nfields: [{name: a, label: A, type: text, minlength: 5, maxlength: 2}]",
		"missing label": "id: x/y\nfields: [{name: a, type: text}]",
		"not yaml":      "id: [",
	}
	for name, def := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFormDef(fstest.MapFS{"f.yaml": {Data: []byte(def)}}, "f.yaml")
			assert.Error(t, err)
		})
	}
}

func TestRenderFields(t *testing.T) {
	registerTestForm(t)

	fd, ok := GetFormDef("test/student")
	require.True(t, ok)
	assert.Equal(t, "Save", fd.Submit)

	st := &State{
		Form:    "test/student",
		ID:      "id-1",
		CSRF:    "tok",
		Values:  map[string]string{"firstName": `<Ada>`, "password": "hunter2", "address": "1 Main St"},
		Errors:  FieldErrors{"email": "Enter a valid email address."},
		Hidden:  map[string]string{"orig_firstName": "Ada"},
		Message: "Something went wrong.",
	}
	out, err := RenderFields(st)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `id="fld-firstName" name="firstName" required type="text" value="&lt;Ada&gt;"`)
	assert.NotContains(t, html, "hunter2")
	assert.Contains(t, html, `minlength="6"`)
	assert.Contains(t, html, `<textarea id="fld-address" name="address">1 Main St</textarea>`)
	assert.Contains(t, html, `aria-invalid="true"`)
	assert.Contains(t, html, `<span class="error" aria-live="polite">Enter a valid email address.</span>`)
	assert.Contains(t, html, `<input type="hidden" name="csrf_token" value="tok">`)
	assert.Contains(t, html, `<input type="hidden" name="form_id" value="id-1">`)
	assert.Contains(t, html, `<input type="hidden" name="orig_firstName" value="Ada">`)
	assert.Contains(t, html, `role="alert">Something went wrong.`)
}

func TestRenderFieldsUnknownForm(t *testing.T) {
	_, err := RenderFields(&State{Form: "nope/nope"})
	assert.Error(t, err)
}

func TestFormWidget(t *testing.T) {
	registerTestForm(t)
	w := widget.Lookup("test/student")
	require.NotNil(t, w)

	kit := NewKit("0123456789abcdef0123456789abcdef")
	out, err := w.Render(nil, map[string]any{"state": kit.New("test/student", nil)})
	require.NoError(t, err)
	assert.Contains(t, out, `name="csrf_token"`)

	_, err = w.Render(nil, nil)
	assert.Error(t, err)
	_, err = w.Render(nil, map[string]any{"state": &State{Form: "other/form"}})
	assert.Error(t, err)
}

func postRequest(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestKitParse(t *testing.T) {
	kit := NewKit("0123456789abcdef0123456789abcdef")
	st := kit.New("auth/login", map[string]string{"login": "ada"})

	got, err := kit.Parse("auth/login", postRequest(url.Values{
		"csrf_token": {st.CSRF},
		"form_id":    {st.ID},
		"login":      {"ada"},
	}))
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)
	assert.NotEmpty(t, got.CSRF)

	_, err = kit.Parse("auth/login", postRequest(url.Values{"form_id": {st.ID}}))
	assert.ErrorIs(t, err, ErrCSRF)

	got, err = kit.Parse("auth/login", postRequest(url.Values{"csrf_token": {st.CSRF}, "form_id": {"not-a-uuid"}}))
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", got.ID)
}

func TestAction(t *testing.T) {
	assert.Equal(t, "submit", Action(postRequest(url.Values{})))
	assert.Equal(t, "reset", Action(postRequest(url.Values{"action": {"reset"}})))
}

func TestKitCheckBlocksInvalidInput(t *testing.T) {
	kit := NewKit("0123456789abcdef0123456789abcdef")
	st := kit.New("auth/login", nil)

	assert.False(t, kit.Check(st, LoginForm{Login: "ada"}))
	assert.Equal(t, Idle, st.Status)
	assert.Contains(t, st.Errors, "password")

	assert.True(t, kit.Check(st, LoginForm{Login: "ada", Password: "pw"}))
}

func TestSubmitOutcome(t *testing.T) {
	kit := NewKit("0123456789abcdef0123456789abcdef")

	st := kit.New("auth/login", nil)
	tok, shared, err := Submit(context.Background(), kit, st, func(context.Context) (string, error) {
		return "t-1", nil
	})
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, "t-1", tok)
	assert.Equal(t, Success, st.Status)

	st = kit.New("auth/login", nil)
	boom := errors.New("boom")
	_, _, err = Submit(context.Background(), kit, st, func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Submitting, st.Status, "caller decides the failure message")
}

func TestSubmitCollapsesDuplicateInstance(t *testing.T) {
	kit := NewKit("0123456789abcdef0123456789abcdef")
	id := kit.New("students/form", nil).ID

	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	fn := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st := &State{Form: "students/form", ID: id}
			v, _, err := Submit(context.Background(), kit, st, fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
		if i == 0 {
			<-started
		}
	}
	// Give the second goroutine time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []int{42, 42}, results)
}

func TestSubmitDetachesCancellation(t *testing.T) {
	kit := NewKit("0123456789abcdef0123456789abcdef")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Submit(ctx, kit, kit.New("auth/login", nil), func(ctx context.Context) (bool, error) {
		return true, ctx.Err()
	})
	assert.NoError(t, err)
}
