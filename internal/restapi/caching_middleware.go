package restapi

import (
	"fmt"
	"net/http"
)

const noStore = "no-cache, no-store, must-revalidate"

// CacheControlMiddleware marks successful responses cacheable for maxAge seconds. Error
// responses, and every response when maxAge is not positive, are marked uncacheable.
func CacheControlMiddleware(maxAge int, next http.Handler) http.Handler {
	success := noStore
	if maxAge > 0 {
		success = fmt.Sprintf("public, max-age=%d", maxAge)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheControlWriter{ResponseWriter: w, success: success}, r)
	})
}

type cacheControlWriter struct {
	http.ResponseWriter
	success string
	written bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.written {
		w.written = true
		value := noStore
		if code >= 200 && code < 300 {
			value = w.success
		}
		w.Header().Set("Cache-Control", value)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
