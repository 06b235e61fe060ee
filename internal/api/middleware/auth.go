package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/proposalpilot/hub/internal/api/response"
)

// Auth requires a Bearer token matching the configured API key on every
// request it wraps. The comparison is constant-time.
func Auth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.RespondUnauthorized(w, "missing Authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.RespondUnauthorized(w, "Authorization header must be of the form 'Bearer <key>'")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				response.RespondUnauthorized(w, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
