// internal/config/model.go
//
// Typed configuration model for Student Desk.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                          – dotenv values,
//   • `conf/studentdesk.yaml`                       – primary static file,
//   • `STUDENTDESK_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the Vault
// client *before* unmarshalling, so the model never stores Vault URIs, only
// plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations accept Go syntax ("10s", "336h").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr  string `koanf:"listen_addr"  validate:"required,hostname_port"`
	ForceHTTPS  bool   `koanf:"force_https"`
	Debug       bool   `koanf:"debug"`        // mounts /debug/request
	TemplateDir string `koanf:"template_dir"` // optional template overrides
}

//
// Backend API section
//

// API points at the external student registry.
type API struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"  validate:"gte=0"`
}

//
// Session section
//

// Session selects where the bearer token lives between requests.
//
// The cookie store seals the token into the cookie itself.  The redis store
// keeps the token server-side and hands the browser a random session ID.
type Session struct {
	Store      string        `koanf:"store"       validate:"oneof=cookie redis"`
	CookieName string        `koanf:"cookie_name" validate:"required"`
	Secret     string        `koanf:"secret"      validate:"required,min=32"`
	TTL        time.Duration `koanf:"ttl"         validate:"gt=0"`
	Secure     bool          `koanf:"secure"`
}

// Redis is only consulted when Session.Store == "redis".
type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

//
// Database section (optional activity log)
//

// Database holds the MySQL DSN for the activity log.  Empty disables it.
type Database struct {
	DSN string `koanf:"dsn"`
}

//
// Log, GeoIP, and Vault sections
//

// Log controls the zap + lumberjack sink.
type Log struct {
	Dir     string `koanf:"dir"`
	Level   string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Console bool   `koanf:"console"`
}

// GeoIP points at an optional GeoLite2-City database.
type GeoIP struct {
	Path string `koanf:"path"`
}

// Vault caches resolved secrets for SecretTTL.  Address and token come from
// the standard VAULT_ADDR and VAULT_TOKEN variables.
type Vault struct {
	SecretTTL time.Duration `koanf:"secret_ttl"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // STUDENTDESK_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load().  main hands it to
// app.New; nothing reads it from a global.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	API      API      `koanf:"api"`
	Session  Session  `koanf:"session"`
	Redis    Redis    `koanf:"redis"`
	Database Database `koanf:"database"`
	Log      Log      `koanf:"log"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Vault    Vault    `koanf:"vault"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills zero values that have a sensible fallback.  Runs
// before validation so required fields with defaults never fail.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Session.Store == "" {
		c.Session.Store = "cookie"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sd_token"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 14 * 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Vault.SecretTTL == 0 {
		c.Vault.SecretTTL = 5 * time.Minute
	}
}
