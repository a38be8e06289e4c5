// internal/module/registry.go
//
// A super-light registry for operator tools: modules call
// Register(path, handler) in an init() function and the app mounts every
// registered path, exact match only, when http.debug is on.
//
// Handler signature:
//
//	func(env *module.Env, w http.ResponseWriter, r *http.Request)
//
// Env gives handlers the loaded config and the activity recorder without
// importing the app.
package module

import (
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/config"
)

// Env is what handlers may read.
type Env struct {
	Config   *config.Config
	Activity activity.Recorder
}

// Handler is what modules register.
type Handler func(*Env, http.ResponseWriter, *http.Request)

var (
	mu       sync.RWMutex
	registry = map[string]Handler{}
)

// Register is called from module init() functions.
func Register(path string, h Handler) {
	mu.Lock()
	registry[path] = h
	mu.Unlock()
}

// Lookup returns the handler for an exact path or nil.
func Lookup(path string) Handler {
	mu.RLock()
	defer mu.RUnlock()
	return registry[path]
}

// Mount adds a GET route for every registered path.
func Mount(r chi.Router, env *Env) {
	mu.RLock()
	paths := make([]string, 0, len(registry))
	for p := range registry {
		paths = append(paths, p)
	}
	mu.RUnlock()
	sort.Strings(paths)

	for _, p := range paths {
		h := Lookup(p)
		r.Get(p, func(w http.ResponseWriter, r *http.Request) { h(env, w, r) })
	}
}
