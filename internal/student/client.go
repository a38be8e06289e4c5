// internal/student/client.go
//
// Student registry client.
//
// Context
// -------
// Six calls, one per REST verb on the student resource.  Each is a direct
// passthrough to api.Client.Do: no caching, no retries, no optimistic
// updates.  Errors (400, 404, 409, transport) come back unchanged as
// *api.Error.

package student

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Doer is the slice of *api.Client the student client uses.
type Doer interface {
	Do(ctx context.Context, op, method, path string, in, out any) error
}

// Client issues CRUD requests against /students.
type Client struct {
	api Doer
}

func NewClient(api Doer) *Client { return &Client{api: api} }

func idPath(id int64) string { return "students/" + strconv.FormatInt(id, 10) }

// List returns every student.
func (c *Client) List(ctx context.Context) ([]Student, error) {
	var out []Student
	if err := c.api.Do(ctx, "students.list", http.MethodGet, "students", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the student with id.
func (c *Client) Get(ctx context.Context, id int64) (*Student, error) {
	var out Student
	if err := c.api.Do(ctx, "students.get", http.MethodGet, idPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByEmail returns the student registered under email.
func (c *Client) GetByEmail(ctx context.Context, email string) (*Student, error) {
	var out Student
	path := "students/email/" + url.PathEscape(email)
	if err := c.api.Do(ctx, "students.by_email", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a student and returns the stored record.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Student, error) {
	var out Student
	if err := c.api.Do(ctx, "students.create", http.MethodPost, "students", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes the non-nil fields of req and returns the stored record.
func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (*Student, error) {
	var out Student
	if err := c.api.Do(ctx, "students.update", http.MethodPut, idPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the student with id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Do(ctx, "students.delete", http.MethodDelete, idPath(id), nil, nil)
}
