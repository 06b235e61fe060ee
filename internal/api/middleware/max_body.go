package middleware

import "net/http"

// DefaultMaxBodyBytes caps request bodies at 1 MiB. Session payloads with a
// few hundred questions stay well under this.
const DefaultMaxBodyBytes = 1 << 20

// MaxBody limits the size of request bodies. Handlers reading past the limit
// get an error from the body reader and net/http responds with 413.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
