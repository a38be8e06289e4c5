// internal/widget/registry.go
//
// Widget registry and lookup helpers.
//
// A **Widget** is a reusable view fragment rendered inside a page.  Two
// kinds exist: every YAML form definition becomes a widget keyed by its
// form ID (see internal/form), and components may register their own, like
// the navbar, from Component.Init.
//
// The key is `<component>/<widget>`, e.g. "auth/login" or "navbar/navbar",
// and must be returned by the widget's `ID` method.
//
// Template authors embed a widget with:
//
//	{{ widget "auth/login" (dict "state" .Data.Form) }}
//
// Params are optional.  The helper looks up the widget, invokes
// `Render`, and returns `template.HTML`.
package widget

import (
	"sync"
)

// Widget represents a view fragment that can be embedded inside any page
// template.  Render returns the generated HTML and a cache policy hint.
// Params are an arbitrary key‑value map passed from the template.
//
// params may be nil.  rctx is the current *http.Request when rendered from
// a page, or nil.
//
// Output is never cached: form widgets embed a fresh CSRF token and the
// navbar depends on the session.
//
// Errors should be returned, not written to http.ResponseWriter, so the
// calling helper can decide how to surface the failure.
//
// Render MUST be concurrency‑safe; multiple goroutines may call it.
type Widget interface {
	ID() string
	Render(rctx any, params map[string]any) (html string, err error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Widget{}
)

// Register a widget during init().  If a duplicate key is registered the
// latter entry overwrites the former; duplicates are logged by the caller.
func Register(w Widget) {
	mu.Lock()
	registry[w.ID()] = w
	mu.Unlock()
}

// Lookup returns the widget or nil.
func Lookup(key string) Widget {
	mu.RLock()
	defer mu.RUnlock()
	return registry[key]
}
