package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/justinas/alice"
)

// Allow rejects requests whose method is not one of methods with 405 and
// an Allow header listing them.
func Allow(methods ...string) alice.Constructor {
	allowed := strings.Join(methods, ", ")
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(methods, r.Method) {
				w.Header().Set("Allow", allowed)
				http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}
