package middleware

import (
	"io"
	"net/http"
)

// DefaultMaxBodyBytes is plenty for a full workout with all its sets.
const DefaultMaxBodyBytes = 1 << 20

// DrainAndCloseRequest limits the request body size, and after the handler is done
// drains what is left of the body and closes it, so the connection can be reused.
func DrainAndCloseRequest(maxBodyBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && maxBodyBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.Copy(io.Discard, r.Body)
				_ = r.Body.Close()
			}
		})
	}
}
