package students

import (
	"encoding/csv"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/yanizio/studentdesk/components/navbar"
	"github.com/yanizio/studentdesk/internal/apptest"
	"github.com/yanizio/studentdesk/internal/student"
)

// registry is an in-memory stand-in for the students API.
type registry struct {
	mu       sync.Mutex
	students map[int64]student.Student
	fail     map[string]int // "METHOD /path" → status
}

func newRegistry(list ...student.Student) *registry {
	r := &registry{students: map[int64]student.Student{}, fail: map[string]int{}}
	for _, s := range list {
		r.students[s.ID] = s
	}
	return r
}

func (g *registry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if status, ok := g.fail[r.Method+" "+r.URL.Path]; ok {
		apptest.JSON(w, status, map[string]string{"message": "backend says no"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/students")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		out := make([]student.Student, 0, len(g.students))
		for id := int64(1); id <= 100; id++ {
			if s, ok := g.students[id]; ok {
				out = append(out, s)
			}
		}
		apptest.JSON(w, http.StatusOK, out)
	case rest == "" && r.Method == http.MethodPost:
		apptest.JSON(w, http.StatusCreated, student.Student{ID: 99})
	case strings.HasPrefix(rest, "/email/"):
		email := strings.TrimPrefix(rest, "/email/")
		for _, s := range g.students {
			if s.Email == email {
				apptest.JSON(w, http.StatusOK, s)
				return
			}
		}
		apptest.JSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	default:
		id, err := strconv.ParseInt(strings.TrimPrefix(rest, "/"), 10, 64)
		s, ok := g.students[id]
		if err != nil || !ok {
			apptest.JSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		switch r.Method {
		case http.MethodGet, http.MethodPut:
			apptest.JSON(w, http.StatusOK, s)
		case http.MethodDelete:
			delete(g.students, id)
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

var ada = student.Student{
	ID: 3, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	DateOfBirth: "1815-12-10T00:00:00.000Z", PhoneNumber: "+44 20 0000", Address: "London",
}

var grace = student.Student{ID: 4, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}

func start(t *testing.T, g *registry) *apptest.Harness {
	t.Helper()
	h := apptest.New(t, g.ServeHTTP)
	h.LogIn("tok")
	return h
}

// paths lists the backend calls as "METHOD /path".
func paths(calls []apptest.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

func TestRoutesRequireLogin(t *testing.T) {
	h := apptest.New(t, newRegistry(ada).ServeHTTP)
	for _, p := range []string{"/students", "/students/new", "/students/edit/3", "/students/3/delete", "/students/export.csv"} {
		resp := h.Get(p)
		assert.Equal(t, http.StatusSeeOther, resp.Status, p)
		assert.Equal(t, "/login", resp.Location, p)
	}
	resp := h.Post("/students/3/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, "/login", resp.Location)
	assert.Empty(t, h.Calls(), "guarded routes never reach the backend")
}

func TestListShowsStudents(t *testing.T) {
	h := start(t, newRegistry(ada, grace))

	resp := h.Get("/students")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "Ada Lovelace")
	assert.Contains(t, resp.Body, "Grace Hopper")
	assert.Contains(t, resp.Body, "1815-12-10")
	assert.Contains(t, resp.Body, `href="/students/edit/3"`)

	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "GET /students", calls[0].Method+" "+calls[0].Path)
	assert.Equal(t, "Bearer tok", calls[0].Auth)
}

func TestListEmpty(t *testing.T) {
	h := start(t, newRegistry())
	resp := h.Get("/students")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "No students yet.")
}

func TestListBackendFailure(t *testing.T) {
	g := newRegistry(ada)
	g.fail["GET /students"] = http.StatusInternalServerError
	h := start(t, g)

	resp := h.Get("/students")
	assert.Equal(t, http.StatusBadGateway, resp.Status)
	assert.Contains(t, resp.Body, "backend says no")
	assert.NotContains(t, resp.Body, "No students yet.")
}

func TestLookupByEmail(t *testing.T) {
	h := start(t, newRegistry(ada, grace))

	resp := h.Get("/students?email=" + url.QueryEscape("grace@example.com"))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "Grace Hopper")
	assert.NotContains(t, resp.Body, "Ada Lovelace")

	resp = h.Get("/students?email=" + url.QueryEscape("nobody@example.com"))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "No student with that email.")

	assert.Equal(t, []string{"GET /students/email/grace@example.com", "GET /students/email/nobody@example.com"}, paths(h.Calls()))
}

func TestEditPrefillsExactly(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Get("/students/edit/3")
	require.Equal(t, http.StatusOK, resp.Status)
	for _, want := range []string{`value="Ada"`, `value="Lovelace"`, `value="ada@example.com"`, `value="1815-12-10"`, `value="+44 20 0000"`, `>London</textarea>`} {
		assert.Contains(t, resp.Body, want)
	}

	hidden := apptest.Hidden(resp.Body)
	assert.Equal(t, "1815-12-10", hidden["orig_dateOfBirth"])
	assert.Equal(t, "ada@example.com", hidden["orig_email"])
	assert.Equal(t, []string{"GET /students/3"}, paths(h.Calls()))
}

func TestEditUnknownStudent(t *testing.T) {
	h := start(t, newRegistry())
	resp := h.Get("/students/edit/9")
	assert.Equal(t, http.StatusSeeOther, resp.Status)
	assert.Equal(t, "/students", resp.Location)
	assert.Contains(t, h.Get("/students").Body, "not found")
}

func TestUpdateSendsOnlyChangedFields(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Submit("/students/edit/3", "/students/edit/3", url.Values{
		"firstName": {"Ada"}, "lastName": {"Lovelace"}, "email": {"countess@example.com"},
		"dateOfBirth": {"1815-12-10"}, "phoneNumber": {"+44 20 0000"}, "address": {"London"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.Status)
	assert.Equal(t, "/students", resp.Location)

	calls := h.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "PUT /students/3", calls[1].Method+" "+calls[1].Path)
	assert.Equal(t, "Bearer tok", calls[1].Auth)
	assert.Equal(t, map[string]any{"email": "countess@example.com"}, calls[1].Body)

	assert.Contains(t, h.Get("/students").Body, "Student updated.")
}

func TestUpdateWithoutChangesMakesNoCall(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Submit("/students/edit/3", "/students/edit/3", url.Values{
		"firstName": {"Ada"}, "lastName": {"Lovelace"}, "email": {"ada@example.com"},
		"dateOfBirth": {"1815-12-10"}, "phoneNumber": {"+44 20 0000"}, "address": {"London"},
	})
	assert.Equal(t, "/students", resp.Location)
	assert.Equal(t, []string{"GET /students/3"}, paths(h.Calls()))
}

func TestUpdateClearingDateOnly(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Submit("/students/edit/3", "/students/edit/3", url.Values{
		"firstName": {"Ada"}, "lastName": {"Lovelace"}, "email": {"ada@example.com"},
		"dateOfBirth": {""}, "phoneNumber": {"+44 20 0000"}, "address": {"London"},
	})
	assert.Equal(t, "/students", resp.Location)
	assert.Equal(t, []string{"GET /students/3"}, paths(h.Calls()))

	list := h.Get("/students").Body
	assert.Contains(t, list, "No changes to save.")
	assert.Contains(t, list, "cannot be removed")
}

func TestUpdateClearingDateWithOtherEdits(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Submit("/students/edit/3", "/students/edit/3", url.Values{
		"firstName": {"Ada"}, "lastName": {"Lovelace"}, "email": {"countess@example.com"},
		"dateOfBirth": {""}, "phoneNumber": {"+44 20 0000"}, "address": {"London"},
	})
	assert.Equal(t, "/students", resp.Location)

	calls := h.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, map[string]any{"email": "countess@example.com"}, calls[1].Body)

	list := h.Get("/students").Body
	assert.Contains(t, list, "Student updated.")
	assert.Contains(t, list, "cannot be removed")
}

func TestUpdateReset(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Submit("/students/edit/3", "/students/edit/3", url.Values{
		"firstName": {"Augusta"}, "lastName": {""}, "email": {"ada@example.com"}, "action": {"reset"},
	})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.NotContains(t, resp.Body, `value="Augusta"`)
	assert.NotContains(t, resp.Body, "This field is required.")
	assert.Equal(t, "Ada", apptest.Hidden(resp.Body)["orig_firstName"], "shadow survives reset")
	assert.Equal(t, []string{"GET /students/3"}, paths(h.Calls()))
}

func TestUpdateInvalid(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Submit("/students/edit/3", "/students/edit/3", url.Values{
		"firstName": {""}, "lastName": {"Lovelace"}, "email": {"ada@example.com"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Contains(t, resp.Body, "This field is required.")
	assert.Equal(t, "ada@example.com", apptest.Hidden(resp.Body)["orig_email"], "shadow survives re-render")
	assert.Equal(t, []string{"GET /students/3"}, paths(h.Calls()))
}

func TestUpdateFailureKeepsEdits(t *testing.T) {
	g := newRegistry(ada)
	g.fail["PUT /students/3"] = http.StatusConflict
	h := start(t, g)

	resp := h.Submit("/students/edit/3", "/students/edit/3", url.Values{
		"firstName": {"Augusta"}, "lastName": {"Lovelace"}, "email": {"ada@example.com"},
	})
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Contains(t, resp.Body, "backend says no")
	assert.Contains(t, resp.Body, `value="Augusta"`)
}

func TestCreate(t *testing.T) {
	h := start(t, newRegistry())

	resp := h.Submit("/students/new", "/students/new", url.Values{
		"firstName": {"Ada"}, "lastName": {"Lovelace"}, "email": {"ada@example.com"}, "dateOfBirth": {""},
	})
	assert.Equal(t, http.StatusSeeOther, resp.Status)
	assert.Equal(t, "/students", resp.Location)

	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "POST /students", calls[0].Method+" "+calls[0].Path)
	assert.Equal(t, "Ada", calls[0].Body["firstName"])
	assert.NotContains(t, calls[0].Body, "dateOfBirth")
}

func TestCreateReset(t *testing.T) {
	h := start(t, newRegistry())

	resp := h.Submit("/students/new", "/students/new", url.Values{
		"firstName": {"Ada"}, "lastName": {""}, "email": {"ada@example.com"}, "action": {"reset"},
	})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.NotContains(t, resp.Body, `value="Ada"`)
	assert.NotContains(t, resp.Body, `value="ada@example.com"`)
	assert.NotContains(t, resp.Body, "This field is required.")
	assert.Empty(t, h.Calls())
}

func TestCreateFailureKeepsValues(t *testing.T) {
	g := newRegistry()
	g.fail["POST /students"] = http.StatusConflict
	h := start(t, g)

	resp := h.Submit("/students/new", "/students/new", url.Values{
		"firstName": {"Ada"}, "lastName": {"Lovelace"}, "email": {"ada@example.com"},
	})
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Contains(t, resp.Body, "backend says no")
	assert.Contains(t, resp.Body, `value="Ada"`)
	assert.Contains(t, resp.Body, `value="Lovelace"`)
	assert.Contains(t, resp.Body, `value="ada@example.com"`)
	assert.Equal(t, []string{"POST /students"}, paths(h.Calls()))
}

func TestCreateRejectsForgedToken(t *testing.T) {
	h := start(t, newRegistry())
	resp := h.Post("/students/new", url.Values{
		"firstName": {"Ada"}, "lastName": {"Lovelace"}, "email": {"ada@example.com"}, "csrf_token": {"x"},
	})
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Contains(t, resp.Body, "Your form expired")
	assert.Empty(t, h.Calls())
}

func TestDeleteConfirmationMakesNoCall(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Get("/students/3/delete?name=" + url.QueryEscape("Ada Lovelace"))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "student #3")
	assert.Contains(t, resp.Body, "<strong>Ada Lovelace</strong>")
	assert.Empty(t, h.Calls())
}

func TestDeleteConfirmationAlwaysNamesID(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Get("/students/3/delete?name=" + url.QueryEscape("Grace Hopper"))
	assert.Contains(t, resp.Body, "Delete student #3 (listed as <strong>Grace Hopper</strong>)")

	resp = h.Get("/students/3/delete")
	assert.Contains(t, resp.Body, "Delete student #3?")
	assert.NotContains(t, resp.Body, "<strong>")
}

func TestDeleteDeclined(t *testing.T) {
	h := start(t, newRegistry(ada))

	resp := h.Submit("/students/3/delete", "/students/3/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, resp.Status)
	assert.Equal(t, "/students", resp.Location)
	assert.Empty(t, h.Calls())
}

func TestDeleteConfirmedReloadsList(t *testing.T) {
	h := start(t, newRegistry(ada, grace))

	resp := h.Submit("/students/3/delete", "/students/3/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, resp.Status)
	require.Equal(t, "/students", resp.Location)

	list := h.Get(resp.Location)
	assert.Contains(t, list.Body, "Student deleted.")
	assert.NotContains(t, list.Body, "Ada Lovelace")
	assert.Contains(t, list.Body, "Grace Hopper")
	assert.Equal(t, []string{"DELETE /students/3", "GET /students"}, paths(h.Calls()))
}

func TestDeleteFailureFlashes(t *testing.T) {
	g := newRegistry(ada)
	g.fail["DELETE /students/3"] = http.StatusInternalServerError
	h := start(t, g)

	resp := h.Submit("/students/3/delete", "/students/3/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, "/students", resp.Location)
	list := h.Get("/students")
	assert.Contains(t, list.Body, "backend says no")
	assert.Contains(t, list.Body, "Ada Lovelace")
}

func TestDeleteForgedToken(t *testing.T) {
	h := start(t, newRegistry(ada))
	resp := h.Post("/students/3/delete", url.Values{"confirm": {"yes"}, "csrf_token": {"forged"}})
	assert.Equal(t, "/students", resp.Location)
	assert.Empty(t, h.Calls())
}

func TestExportCSV(t *testing.T) {
	h := start(t, newRegistry(ada, grace))

	resp := h.Get("/students/export.csv")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="students-`)

	rows, err := csv.NewReader(strings.NewReader(resp.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Contains(t, rows[1], "ada@example.com")
	assert.Contains(t, rows[2], "grace@example.com")
}

func TestExportPDF(t *testing.T) {
	h := start(t, newRegistry(ada))
	resp := h.Get("/students/export.pdf")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Body, "%PDF-"))
}

func TestExportFailureReturnsToList(t *testing.T) {
	g := newRegistry(ada)
	g.fail["GET /students"] = http.StatusInternalServerError
	h := start(t, g)

	resp := h.Get("/students/export.csv")
	assert.Equal(t, http.StatusSeeOther, resp.Status)
	assert.Equal(t, "/students", resp.Location)
}
