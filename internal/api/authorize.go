package api

import "net/http"

// Authorize returns a clone of r carrying `Authorization: Bearer tok`.  An
// empty tok returns r itself.  r is never modified.
func Authorize(r *http.Request, tok string) *http.Request {
	if tok == "" {
		return r
	}
	out := r.Clone(r.Context())
	out.Header.Set("Authorization", "Bearer "+tok)
	return out
}
