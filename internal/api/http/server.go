// Package httpapi exposes the REST transport for the points service.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"points-service/internal/auditlog"
	"points-service/internal/logging"
	"points-service/internal/metrics"
)

// Server exposes the HTTP transport for the points application.
type Server struct {
	router chi.Router
}

// NewServer constructs a chi based HTTP server that forwards requests to the
// application service and mirrors them into the audit sink.
func NewServer(service Service, logger *logging.Logger, sink auditlog.Sink, m *metrics.Metrics) *Server {
	router := chi.NewRouter()
	router.Use(requestAudit(logger, sink, m))

	handler := &handler{service: service}
	registerRoutes(router, handler)

	if m != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			m.Registry(), promhttp.HandlerOpts{},
		))
	}

	return &Server{router: router}
}

// Router returns the configured chi router for reuse in tests or external HTTP servers.
func (s *Server) Router() http.Handler {
	return s.router
}

// ServeHTTP allows Server to satisfy the http.Handler interface directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
