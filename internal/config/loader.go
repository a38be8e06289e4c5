// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env` file.
  2. `conf/studentdesk.yaml`.
  3. Environment variables prefixed `STUDENTDESK_`, where `__` maps to “.”
     (e.g., `STUDENTDESK_API__BASE_URL → api.base_url`).

String leaves of the form `vault:<path>#<key>` are replaced by the secret
they point at, through the SecretResolver handed to Load.  After merging,
the tree is unmarshalled into strongly-typed structs, defaulted, validated,
and enriched with the runtime root path.  The caller owns the result and
passes it down explicitly; there is no package-level copy.

Instrumentation
---------------
  • DEBUG: root discovery, YAML read, env overlay.
  • ERROR: YAML parse, env overlay, secret lookup, unmarshal,
    validation failures.
  • INFO: final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/studentdesk.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • The env prefix is stripped before key mapping.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix   = "STUDENTDESK_"
	fileName    = "studentdesk.yaml"
	vaultScheme = "vault:"
)

// SecretResolver fetches one key from a KV secret.  *vault.Client satisfies
// it; nil disables `vault:` resolution.
type SecretResolver interface {
	GetKV(ctx context.Context, path, key string, ttl time.Duration) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves STUDENTDESK_ROOT or climbs directories until
// conf/studentdesk.yaml is found.
func rootDir() string {
	if r := os.Getenv(envPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", fileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root directory and delegates to LoadFrom.
func Load(secrets SecretResolver) (*Config, error) {
	return LoadFrom(rootDir(), secrets)
}

// LoadFrom reads .env, YAML, env overrides, resolves vault references,
// validates, and caches Config.
func LoadFrom(root string, secrets SecretResolver) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", fileName)
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// STUDENTDESK_API__BASE_URL → api.base_url
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(k, secrets); err != nil {
		zap.S().Errorw("config secret lookup failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"api", cfg.API.BaseURL,
		"session_store", cfg.Session.Store,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// resolveSecrets rewrites every `vault:path#key` leaf in place.
func resolveSecrets(k *koanf.Koanf, secrets SecretResolver) error {
	ttl := k.Duration("vault.secret_ttl")
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, vaultScheme) {
			continue
		}
		if secrets == nil {
			return fmt.Errorf("config: %s references vault but no resolver is configured", key)
		}
		ref := strings.TrimPrefix(s, vaultScheme)
		path, field, ok := strings.Cut(ref, "#")
		if !ok || path == "" || field == "" {
			return fmt.Errorf("config: %s: malformed vault reference %q", key, s)
		}
		secret, err := secrets.GetKV(context.Background(), path, field, ttl)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return err
		}
	}
	return nil
}
