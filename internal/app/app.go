// internal/app/app.go
//
// Root handler assembly.
//
// Request life-cycle
// ------------------
//
//  1. RequestID and requestinfo enrichment (UA, IP, optional geo).
//
//  2. Access log with a request-scoped zap logger, then Recoverer.
//
//  3. ForceHTTPS (when configured) and security headers.
//
//  4. Session middleware attaches *session.Context.
//
//  5. Component routes.  Protected pages wrap themselves in auth.Guard.
//
//  6. Operator modules (/debug/...) when http.debug is on.
//
//  7. The bare root and every unmatched path redirect to /login.
package app

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/api"
	"github.com/yanizio/studentdesk/internal/auth"
	"github.com/yanizio/studentdesk/internal/component"
	"github.com/yanizio/studentdesk/internal/config"
	"github.com/yanizio/studentdesk/internal/form"
	"github.com/yanizio/studentdesk/internal/middleware"
	"github.com/yanizio/studentdesk/internal/module"
	"github.com/yanizio/studentdesk/internal/requestinfo"
	"github.com/yanizio/studentdesk/internal/session"
	"github.com/yanizio/studentdesk/internal/view"
)

// Options carries the resources main (or a test) has opened.
type Options struct {
	Config   *config.Config
	Log      *zap.SugaredLogger
	Sessions session.Store
	Geo      requestinfo.GeoDB // nil disables geolocation
	Activity activity.Recorder // nil means activity.Nop
	APIOpts  []api.Option
}

// New builds the root handler from every registered component.
func New(o Options) (http.Handler, error) {
	cfg := o.Config
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
	if o.Activity == nil {
		o.Activity = activity.Nop{}
	}

	client, err := api.New(cfg.API.BaseURL, cfg.API.Timeout, session.TokenSource{}, o.APIOpts...)
	if err != nil {
		return nil, err
	}
	deps := component.Deps{
		Config:   cfg,
		API:      client,
		Views:    view.New(cfg.HTTP.TemplateDir),
		Forms:    form.NewKit(cfg.Session.Secret),
		Activity: o.Activity,
	}

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		requestinfo.Enrich(o.Geo),
		middleware.AccessLog(o.Log),
		chimw.Recoverer,
		middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS),
		middleware.Security,
		session.Middleware(o.Sessions),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, c := range component.All() {
		if err := c.Init(deps); err != nil {
			return nil, fmt.Errorf("init component %s: %w", c.Name(), err)
		}
		c.Routes(r)
		o.Log.Debugw("component mounted", "component", c.Name())
	}

	if cfg.HTTP.Debug {
		module.Mount(r, &module.Env{Config: cfg, Activity: o.Activity})
		o.Log.Infow("debug modules mounted")
	}

	toLogin := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
	}
	r.Get("/", toLogin)
	r.NotFound(toLogin)
	r.MethodNotAllowed(toLogin)
	return r, nil
}
