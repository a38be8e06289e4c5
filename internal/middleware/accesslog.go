// internal/middleware/accesslog.go
//
// Per-request logger and access log.
//
// AccessLog derives a child of the base logger tagged with chi's request ID,
// stores it in request.Context (logger.FromContext picks it up everywhere
// downstream), and writes one "http request" line when the handler returns.
// Browser and country come from requestinfo when that middleware ran first.

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/requestinfo"
)

// AccessLog returns the logging middleware for base.
func AccessLog(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With("request_id", chimw.GetReqID(r.Context()))
			r = r.WithContext(logger.WithContext(r.Context(), log))

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields, "ip", info.Geo.IP, "browser", info.UA.Browser, "country", info.Geo.CountryISO)
			}
			if status >= http.StatusInternalServerError {
				log.Warnw("http request", fields...)
				return
			}
			log.Infow("http request", fields...)
		})
	}
}
