// internal/view/uahelpers.go
//
// User‑Agent‑related template helpers, bound to the current request:
//
//	{{ browser }} on {{ os }}
package view

import (
	"html/template"
	"net/http"

	"github.com/yanizio/studentdesk/internal/requestinfo"
	"github.com/yanizio/studentdesk/internal/ua"
)

func uaFuncMap(r *http.Request) template.FuncMap {
	info := func() ua.Info {
		if r == nil {
			return ua.Info{}
		}
		if ri := requestinfo.FromContext(r.Context()); ri != nil {
			return ri.UA
		}
		return ua.Info{}
	}
	return template.FuncMap{
		"browser":        func() string { return info().Browser },
		"browserVersion": func() string { return info().Version },
		"os":             func() string { return info().OS },
		"device":         func() string { return info().Device },
		"isBot":          func() bool { return info().IsBot },
	}
}
