//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, IP + geolocation, language, URL, and
//  timestamp).  These structs are inert.  They contain no pointers to
//  database handles or large buffers, so they are safe to log or
//  JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (through internal/ua)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/yanizio/studentdesk/internal/ua"
)

// Geo holds IP-based geolocation hints.
// These are best-effort and may be empty if no database is configured.
type Geo struct {
	IP         net.IP `json:"ip"`
	CountryISO string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
}

// RequestInfo is attached to request.Context by Enrich.
type RequestInfo struct {
	UA          ua.Info   `json:"ua"`
	PrimaryLang string    `json:"lang,omitempty"`
	Geo         Geo       `json:"geo"`
	URL         *url.URL  `json:"-"`
	Timestamp   time.Time `json:"ts"`
}

// GeoDB is the lookup half of *geoip2.Reader.
type GeoDB interface {
	City(ip net.IP) (*geoip2.City, error)
}

// OpenGeo opens a GeoLite2-City database.  Callers treat an empty path as
// "geo disabled" and never call this.
func OpenGeo(path string) (*geoip2.Reader, error) {
	return geoip2.Open(path)
}

type ctxKey struct{}

// WithInfo returns a child context carrying info.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(strings.TrimSpace(tag), ";")
	return strings.ToLower(tag)
}

// lookupGeo returns best-effort Geo data.
func lookupGeo(db GeoDB, ip net.IP) Geo {
	if db == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := db.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
