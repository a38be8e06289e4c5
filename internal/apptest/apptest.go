// Package apptest runs the full root handler against a fake registry API
// for page-level tests.
//
// A Harness owns two httptest servers, the app and the backend, plus a
// browser-like client with a cookie jar that does not follow redirects.
// Every backend request is recorded so tests can assert which calls were,
// or were not, made.
package apptest

import (
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/studentdesk/internal/app"
	"github.com/yanizio/studentdesk/internal/config"
	"github.com/yanizio/studentdesk/internal/session"
)

// Secret keys both the session cookie and CSRF tokens.
const Secret = "test-secret-test-secret-test-secret!"

// Call is one request the backend received.
type Call struct {
	Method string
	Path   string // escaped, without the /api prefix
	Auth   string
	Body   map[string]any
}

// Harness is a running app plus its fake backend.
type Harness struct {
	T       *testing.T
	App     *httptest.Server
	Backend *httptest.Server
	Client  *http.Client
	Store   session.Store

	mu    sync.Mutex
	calls []Call
}

// New starts the app with every component the test binary registered.
// backend answers API calls; paths arrive with the /api prefix stripped.
func New(t *testing.T, backend http.HandlerFunc) *Harness {
	t.Helper()
	h := &Harness{T: t}

	h.Backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Call{Method: r.Method, Path: strings.TrimPrefix(r.URL.EscapedPath(), "/api"), Auth: r.Header.Get("Authorization")}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &c.Body)
		}
		h.mu.Lock()
		h.calls = append(h.calls, c)
		h.mu.Unlock()

		r.URL.Path = strings.TrimPrefix(r.URL.Path, "/api")
		backend(w, r)
	}))
	t.Cleanup(h.Backend.Close)

	cfg := &config.Config{
		HTTP: config.HTTP{ListenAddr: "127.0.0.1:0"},
		API:  config.API{BaseURL: h.Backend.URL + "/api", Timeout: 2 * time.Second},
		Session: config.Session{
			Store: "cookie", CookieName: "sd_token", Secret: Secret, TTL: time.Hour,
		},
	}
	store, err := session.NewCookieStore(cfg.Session.Secret, session.Options{CookieName: cfg.Session.CookieName, TTL: cfg.Session.TTL})
	require.NoError(t, err)
	h.Store = store

	handler, err := app.New(app.Options{Config: cfg, Log: zap.NewNop().Sugar(), Sessions: store})
	require.NoError(t, err)
	h.App = httptest.NewServer(handler)
	t.Cleanup(h.App.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.Client = &http.Client{
		Jar:           jar,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	return h
}

// Calls returns what the backend has received so far.
func (h *Harness) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// Reset forgets recorded calls.
func (h *Harness) Reset() {
	h.mu.Lock()
	h.calls = nil
	h.mu.Unlock()
}

// LogIn stores tok in the client's session cookie without any API call.
func (h *Harness) LogIn(tok string) {
	h.T.Helper()
	rec := httptest.NewRecorder()
	require.NoError(h.T, h.Store.Set(rec, httptest.NewRequest(http.MethodGet, "/", nil), tok))
	u, _ := url.Parse(h.App.URL)
	h.Client.Jar.SetCookies(u, rec.Result().Cookies())
}

// HasSession reports whether the client holds a session cookie.
func (h *Harness) HasSession() bool {
	u, _ := url.Parse(h.App.URL)
	for _, c := range h.Client.Jar.Cookies(u) {
		if c.Name == "sd_token" && c.Value != "" {
			return true
		}
	}
	return false
}

// Response is a fully read reply.
type Response struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

// Get fetches path.
func (h *Harness) Get(path string) Response {
	h.T.Helper()
	resp, err := h.Client.Get(h.App.URL + path)
	require.NoError(h.T, err)
	return read(h.T, resp)
}

// Post submits form values to path.
func (h *Harness) Post(path string, v url.Values) Response {
	h.T.Helper()
	resp, err := h.Client.PostForm(h.App.URL+path, v)
	require.NoError(h.T, err)
	return read(h.T, resp)
}

// Submit GETs page, copies its hidden inputs (CSRF token, form ID, edit
// shadows) into v, and POSTs v to action.
func (h *Harness) Submit(page, action string, v url.Values) Response {
	h.T.Helper()
	got := h.Get(page)
	require.Equal(h.T, http.StatusOK, got.Status, "GET %s", page)
	for name, value := range Hidden(got.Body) {
		if _, set := v[name]; !set {
			v.Set(name, value)
		}
	}
	return h.Post(action, v)
}

func read(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return Response{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Header:   resp.Header,
		Body:     string(raw),
	}
}

var hiddenRe = regexp.MustCompile(`<input type="hidden" name="([^"]+)" value="([^"]*)">`)

// Hidden extracts every hidden input from body.
func Hidden(body string) map[string]string {
	out := map[string]string{}
	for _, m := range hiddenRe.FindAllStringSubmatch(body, -1) {
		out[m[1]] = html.UnescapeString(m[2])
	}
	return out
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
