// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` immediately after it unmarshals the merged
// Koanf tree.  Any tag mismatch aborts startup, so the binary never runs with
// partial or malformed configuration.  Rules that span sections (redis store
// needs an address) cannot be expressed as tags and live here too.

package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// ErrRedisAddr is returned when the redis session store has no address.
var ErrRedisAddr = errors.New("config: session.store is redis but redis.addr is empty")

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Session.Store == "redis" && c.Redis.Addr == "" {
		return ErrRedisAddr
	}
	return nil
}
