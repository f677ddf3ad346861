package restapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache tiers in seconds.
const (
	cacheNone  = 0
	cacheShort = 30
	cacheLong  = 300
)

// SetRoutes registers every API endpoint on mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	api.handle(mux, "GET /api/where/current-time.json", cacheNone, api.currentTimeHandler)
	api.handle(mux, "GET /api/where/config.json", cacheLong, api.configHandler)
	api.handle(mux, "GET /api/where/stops.json", cacheLong, api.stopsHandler)
	api.handle(mux, "GET /api/where/stops-for-location.json", cacheLong, api.stopsForLocationHandler)
	api.handle(mux, "GET /api/where/plan.json", cacheShort, api.planHandler)
	api.handle(mux, "GET /api/where/round-trip.json", cacheShort, api.roundTripHandler)
	api.handle(mux, "GET /api/where/departures.json", cacheShort, api.departuresHandler)

	mux.HandleFunc("GET /healthz", api.healthHandler)
	if api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// handle wraps an API handler with key validation, rate limiting and
// caching headers.
func (api *RestAPI) handle(mux *http.ServeMux, pattern string, cacheSeconds int, h http.HandlerFunc) {
	var handler http.Handler = h
	handler = CacheControlMiddleware(cacheSeconds, handler)
	handler = api.rateLimiter.Handler()(handler)
	handler = api.requireAPIKey(handler)
	mux.Handle(pattern, handler)
}

func (api *RestAPI) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns mux wrapped in the server-wide middleware: request IDs,
// request logging, metrics and compression.
func (api *RestAPI) Handler(mux *http.ServeMux) http.Handler {
	var handler http.Handler = mux
	handler = MetricsHandler(api.Metrics)(handler)
	handler = CompressionMiddleware(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}
