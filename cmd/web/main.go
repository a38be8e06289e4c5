// cmd/web/main.go
//
// Student Desk – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Vault client when VAULT_ADDR is set (resolves `vault:` config values).
//
//  2. Layered config (conf/.env → conf/studentdesk.yaml → STUDENTDESK_ env).
//
//  3. Daily rotating logger (tees to console when running in a TTY or when
//     log.console is set).
//
//  4. Session store: sealed cookie, or Redis when session.store = redis.
//
//  5. Optional GeoLite2 reader and MySQL activity log.
//
//  6. Root handler from every registered component, served with timeouts
//     until SIGINT/SIGTERM, then drained gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/yanizio/studentdesk/internal/activity"
	"github.com/yanizio/studentdesk/internal/app"
	"github.com/yanizio/studentdesk/internal/config"
	"github.com/yanizio/studentdesk/internal/database"
	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/requestinfo"
	"github.com/yanizio/studentdesk/internal/server"
	"github.com/yanizio/studentdesk/internal/session"
	"github.com/yanizio/studentdesk/internal/vault"

	_ "github.com/yanizio/studentdesk/components/auth"
	_ "github.com/yanizio/studentdesk/components/navbar"
	_ "github.com/yanizio/studentdesk/components/students"
	_ "github.com/yanizio/studentdesk/modules/debug"
)

// runningInTTY returns true when stdout is a terminal.
func runningInTTY() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("studentdesk: %v", err)
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Secrets and config ─────────────────────────────────────────
	//
	var secrets config.SecretResolver
	if vault.Enabled() {
		cli, err := vault.New(ctx, nil)
		if err != nil {
			return err
		}
		secrets = cli
	}
	cfg, err := config.Load(secrets)
	if err != nil {
		return err
	}

	//
	// ── 2.  Logger ─────────────────────────────────────────────────────
	//
	logDir := cfg.Log.Dir
	if logDir == "" {
		logDir = filepath.Join(cfg.Paths.Root, "logs")
	}
	logOut, err := logger.New(logDir, cfg.Log.Level, cfg.Log.Console || runningInTTY())
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 3.  Session store ──────────────────────────────────────────────
	//
	opts := session.Options{CookieName: cfg.Session.CookieName, TTL: cfg.Session.TTL, Secure: cfg.Session.Secure}
	var store session.Store
	switch cfg.Session.Store {
	case "redis":
		rdb, err := session.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = session.NewRedisStore(session.RedisBackend{C: rdb}, opts)
	default:
		if store, err = session.NewCookieStore(cfg.Session.Secret, opts); err != nil {
			return err
		}
	}
	logOut.Infow("session store ready", "store", cfg.Session.Store)

	//
	// ── 4.  Optional geo and activity log ─────────────────────────────
	//
	o := app.Options{Config: cfg, Log: logOut, Sessions: store}

	if cfg.GeoIP.Path != "" {
		geo, err := requestinfo.OpenGeo(cfg.GeoIP.Path)
		if err != nil {
			logOut.Warnw("geoip disabled", "path", cfg.GeoIP.Path, "err", err)
		} else {
			defer geo.Close()
			o.Geo = geo
		}
	}

	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		st := activity.NewStore(db)
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		o.Activity = st
		logOut.Infow("activity log online")
	}

	//
	// ── 5.  Serve ──────────────────────────────────────────────────────
	//
	handler, err := app.New(o)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.HTTP.ListenAddr)
	if err != nil {
		return err
	}
	srv := server.New(cfg.HTTP.ListenAddr, handler, cfg.API.Timeout)
	return server.Run(ctx, srv, ln, logOut.With("component", "http"))
}
