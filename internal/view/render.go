// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Engine.Register – attach a component's embedded templates.
//   - Engine.Render   – execute layout + page and write the response.
//
// Lookup precedence (first hit wins):
//   1. <http.template_dir>/<comp>/<name>.html   (optional override dir)
//   2. the component's embedded <name>.html
//
// Every page file defines a "content" block (and optionally "title").  The
// shared layout.html defines "layout", which draws the navbar widget, the
// flash message, and then calls {{ template "content" . }}.
//
// Parsed sets are cached per (comp, name).  Each request executes a
// *clone* of the cached set with request-bound funcs (widget, ua helpers),
// so one request's context can never leak into another's output.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yanizio/studentdesk/internal/cache"
	"github.com/yanizio/studentdesk/internal/head"
	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/session"
	"github.com/yanizio/studentdesk/internal/widget"
)

//go:embed templates/layout.html
var layoutFS embed.FS

// ErrTemplateNotFound is returned when no source provides comp/name.
var ErrTemplateNotFound = errors.New("view: template not found")

// Page is the data every page template receives.  Head may be pre-seeded
// by a handler; Render fills in the title and robots policy.
type Page struct {
	Title    string
	Head     *head.Builder
	Flash    *session.Flash
	LoggedIn bool
	Request  *http.Request
	Data     any
}

// Engine resolves, parses, caches, and executes page templates.
type Engine struct {
	overrideDir string

	mu    sync.RWMutex
	comps map[string]fs.FS

	sets *cache.LRU
}

// New returns an Engine.  overrideDir may be empty.
func New(overrideDir string) *Engine {
	return &Engine{
		overrideDir: overrideDir,
		comps:       map[string]fs.FS{},
		sets:        cache.New(256),
	}
}

// Register attaches fsys as the template source for comp.  Page files live
// at the root of fsys.
func (e *Engine) Register(comp string, fsys fs.FS) {
	e.mu.Lock()
	e.comps[comp] = fsys
	e.mu.Unlock()
	e.sets.Purge()
}

// Render executes comp/name inside the layout and writes it with status.
// The flash cookie is consumed when page.Flash is nil.  Output is buffered
// so a template error still yields a clean 500.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, status int, comp, name string, page *Page) error {
	if page == nil {
		page = &Page{}
	}
	page.Request = r
	if page.Head == nil {
		page.Head = head.New()
	}
	page.Head.SetTitle(page.Title)
	page.Head.Meta("robots", "noindex, nofollow")
	page.LoggedIn = session.FromContext(r.Context()).LoggedIn()
	if page.Flash == nil {
		if f, ok := session.PopFlash(w, r); ok {
			page.Flash = &f
		}
	}

	base, err := e.load(comp, name)
	if err != nil {
		return e.fail(w, r, comp, name, err)
	}
	t, err := base.Clone()
	if err != nil {
		return e.fail(w, r, comp, name, err)
	}
	t.Funcs(requestFuncs(r))

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return e.fail(w, r, comp, name, err)
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

func (e *Engine) fail(w http.ResponseWriter, r *http.Request, comp, name string, err error) error {
	logger.FromContext(r.Context()).Errorw("render failed", "component", comp, "template", name, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	return err
}

//
// internal: load
//

// load returns the cached set for comp/name, parsing it on a miss.
func (e *Engine) load(comp, name string) (*template.Template, error) {
	key := comp + "::" + name
	if v, ok := e.sets.Get(key); ok {
		return v.(*template.Template), nil
	}

	src, file, err := e.source(comp, name)
	if err != nil {
		return nil, err
	}

	t, err := template.New("layout").Funcs(placeholderFuncs()).ParseFS(layoutFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}
	if _, err := t.ParseFS(src, file); err != nil {
		return nil, fmt.Errorf("view: parse %s/%s: %w", comp, name, err)
	}

	e.sets.Add(key, t)
	return t, nil
}

// source walks the override chain.
func (e *Engine) source(comp, name string) (fs.FS, string, error) {
	file := name + ".html"
	if e.overrideDir != "" {
		dir := filepath.Join(e.overrideDir, comp)
		if _, err := os.Stat(filepath.Join(dir, file)); err == nil {
			return os.DirFS(dir), file, nil
		}
	}

	e.mu.RLock()
	src, ok := e.comps[comp]
	e.mu.RUnlock()
	if ok {
		if _, err := fs.Stat(src, file); err == nil {
			return src, file, nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s/%s", ErrTemplateNotFound, comp, name)
}

//
// func-map builders
//

// placeholderFuncs registers every func name at parse time.  The request
// bound versions replace them on each clone.
func placeholderFuncs() template.FuncMap {
	fm := requestFuncs(nil)
	fm["dict"] = dict
	fm["join"] = strings.Join
	return fm
}

func requestFuncs(r *http.Request) template.FuncMap {
	fm := template.FuncMap{
		"widget": widgetFunc(r),
	}
	for k, v := range uaFuncMap(r) {
		fm[k] = v
	}
	return fm
}

//
// helpers
//

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// widgetFunc renders a registered widget and returns safe HTML.  Errors are
// hidden behind <!-- comments --> so end-users never see stack traces.
func widgetFunc(r *http.Request) func(string, map[string]any) template.HTML {
	return func(key string, params map[string]any) template.HTML {
		w := widget.Lookup(key)
		if w == nil {
			return template.HTML("<!-- widget not found -->")
		}
		html, err := w.Render(r, params)
		if err != nil {
			if r != nil {
				logger.FromContext(r.Context()).Warnw("widget failed", "widget", key, "err", err)
			}
			return template.HTML("<!-- widget error -->")
		}
		return template.HTML(html)
	}
}
