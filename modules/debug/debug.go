// modules/debug/debug.go
//
// Operator module that echoes what the server knows about a request, plus
// the latest activity rows.  Mounted only when http.debug is on.
package debug

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/module"
	"github.com/yanizio/studentdesk/internal/requestinfo"
	"github.com/yanizio/studentdesk/internal/session"
)

func init() {
	module.Register("/debug/request", request)
	module.Register("/debug/activity", recent)
}

// request writes a JSON blob with selected context fields.  The token
// itself is never echoed.
func request(env *module.Env, w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"query":      r.URL.RawQuery,
		"logged_in":  session.FromContext(r.Context()).LoggedIn(),
		"info":       requestinfo.FromContext(r.Context()),
		"api":        env.Config.API.BaseURL,
		"store":      env.Config.Session.Store,
	}
	writeJSON(w, r, http.StatusOK, out)
}

// recent lists activity rows, newest first.  ?limit= caps the count.
func recent(env *module.Env, w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := env.Activity.Recent(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("debug activity", "err", err)
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "activity unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": events})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.FromContext(r.Context()).Warnw("debug encode", "err", err)
	}
}
