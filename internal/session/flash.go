package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "sd_flash"

// Flash is a one-shot message shown on the page after a redirect.
type Flash struct {
	Kind    string `json:"k"` // "success" or "error"
	Message string `json:"m"`
}

// SetFlash stores f for the next page render.
func SetFlash(w http.ResponseWriter, f Flash) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// PopFlash returns the pending flash, if any, and expires the cookie.
func PopFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return Flash{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Flash{}, false
	}
	var f Flash
	if json.Unmarshal(raw, &f) != nil || f.Message == "" {
		return Flash{}, false
	}
	return f, true
}
