package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// LogRequest logs each request at debug level once it has been served.
func LogRequest(h http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).
			Int("size", size).Str("addr", clientAddr(r)).Dur("duration", d).Msg("[HTTP] request")
	})(h)
}

func clientAddr(r *http.Request) string {
	for _, h := range []string{"X-Real-IP", "X-Forwarded-For"} {
		if addr := r.Header.Get(h); addr != "" {
			return addr
		}
	}
	return r.RemoteAddr
}
