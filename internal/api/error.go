package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is any failed backend call.  Status 0 means the request never got
// an HTTP answer (Err holds the transport error).
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("api %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("api %s: %d %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("api %s: status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Message returns the backend-supplied message inside err, or fallback when
// there is none (transport failures, empty bodies, non-API errors).
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// extractMessage pulls a human-readable message out of an error body.
// JSON bodies may carry "message" or "error" (string or nested object with a
// "message"), or be a bare JSON string.  Plain-text bodies are used as is.
func extractMessage(contentType string, raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return ""
	}

	if strings.Contains(contentType, "json") || strings.HasPrefix(body, "{") || strings.HasPrefix(body, `"`) {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return strings.TrimSpace(s)
		}
		var obj struct {
			Message json.RawMessage `json:"message"`
			Error   json.RawMessage `json:"error"`
		}
		if json.Unmarshal(raw, &obj) == nil {
			for _, field := range []json.RawMessage{obj.Message, obj.Error} {
				if m := rawString(field); m != "" {
					return m
				}
			}
			return ""
		}
	}

	if strings.HasPrefix(contentType, "text/plain") || contentType == "" {
		return body
	}
	return ""
}

func rawString(r json.RawMessage) string {
	if len(r) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(r, &s) == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(r, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

// PageStatus is the status a page should answer with after err: the
// backend's own 4xx, or 502 for anything else.
func PageStatus(err error) int {
	if s := StatusOf(err); s >= 400 && s < 500 {
		return s
	}
	return http.StatusBadGateway
}
