package middleware

import (
	"net/http"
	"time"
)

const unmatchedRoute = "unmatched"

// httpObserver is the subset of telemetry.Metrics the middleware needs.
type httpObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Metrics returns middleware that records request counts and latency per
// route. It must wrap the ServeMux directly: the route is read from
// r.Pattern, which the mux sets on the request it is handed.
func Metrics(obs httpObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := wrap(w)
			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			obs.ObserveHTTP(r.Method, route, rw.status, time.Since(start))
		})
	}
}
