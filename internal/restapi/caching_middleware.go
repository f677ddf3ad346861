package restapi

import (
	"fmt"
	"net/http"
)

const noStore = "no-cache, no-store, must-revalidate"

// CacheControlMiddleware marks successful responses cacheable for
// maxAgeSeconds. Errors and a zero max age are never cached.
func CacheControlMiddleware(maxAgeSeconds int, next http.Handler) http.Handler {
	cacheable := noStore
	if maxAgeSeconds > 0 {
		cacheable = fmt.Sprintf("public, max-age=%d", maxAgeSeconds)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheControlWriter{ResponseWriter: w, cacheable: cacheable}, r)
	})
}

type cacheControlWriter struct {
	http.ResponseWriter
	cacheable   string
	wroteHeader bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		value := noStore
		if code >= 200 && code < 300 {
			value = w.cacheable
		}
		w.Header().Set("Cache-Control", value)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
