package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Surfaces label which part of the server handled a request.
const (
	SurfaceAdmin = "admin"
	SurfaceMock  = "mock"
)

// HTTP records per-request metrics for the server.
type HTTP struct {
	Requests *Counter
	Duration *Histogram
}

// NewHTTP registers the request metrics on r:
//
//	apisim_http_requests_total{surface, method, status}
//	apisim_http_request_duration_seconds{surface}
func NewHTTP(r *Registry) *HTTP {
	return &HTTP{
		Requests: r.NewCounter("apisim_http_requests_total",
			"Total HTTP requests by surface, method and status code.",
			"surface", "method", "status"),
		Duration: r.NewHistogram("apisim_http_request_duration_seconds",
			"HTTP request latency in seconds, including configured mock delays.",
			nil, "surface"),
	}
}

// Middleware records every request passing through it under surface.
func (m *HTTP) Middleware(surface string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				m.Requests.WithLabels(surface, methodLabel(r.Method), strconv.Itoa(status)).Inc()
				m.Duration.WithLabels(surface).Observe(time.Since(start).Seconds())
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// methodLabel folds nonstandard methods into one label value.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions:
		return method
	}
	return "OTHER"
}
