package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes caps request bodies. Only GraphQL queries carry one.
const DefaultMaxBodyBytes = 1 << 20

// BodySizeLimit creates middleware that limits the size of incoming request
// bodies. Declared oversize bodies are refused up front; chunked bodies fail
// on read.
func BodySizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
