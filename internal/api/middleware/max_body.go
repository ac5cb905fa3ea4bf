package middleware

import (
	"net/http"

	"github.com/inkwell-labs/inkwell/internal/api"
)

// MaxBodyBytes rejects oversized request bodies. A declared Content-Length
// above the limit is refused outright; chunked bodies are capped by
// http.MaxBytesReader and fail at read time.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
