// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/routerelay/internal/domain/route"
	"github.com/okian/routerelay/pkg/logger"
	"github.com/okian/routerelay/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultMaxBodyBytes = 1 << 20

// RouteService relays a decoded route request and returns the provider payload.
type RouteService interface {
	GetRoute(ctx context.Context, req route.Request) ([]byte, error)
}

// Server wires HTTP routes for the relay API.
type Server struct {
	healthHandler *HealthHandler
	routeHandler  *RouteHandler

	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	logger   logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
	metrics      *metrics.Manager
	gatherer     prometheus.Gatherer
	logger       logger.Logger
}

// WithMaxBodyBytes caps the POST /get_route body.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithMetrics sets the metrics manager used by handlers and middleware.
func WithMetrics(m *metrics.Manager) ServerOption {
	return func(o *serverOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(o *serverOptions) {
		if g != nil {
			o.gatherer = g
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(svc RouteService, opts ...ServerOption) *Server {
	o := serverOptions{
		maxBodyBytes: defaultMaxBodyBytes,
		metrics:      metrics.Default(),
		gatherer:     metrics.GetRegistry(),
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler: NewHealthHandler(o.gatherer),
		routeHandler:  NewRouteHandler(svc, o.maxBodyBytes, o.metrics, o.logger),
		metrics:       o.metrics,
		gatherer:      o.gatherer,
		logger:        o.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.Handle("/get_route", s.wrap(s.routeHandler.HandleGetRoute, "get_route"))
}

func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(MetricsMiddleware(s.metrics, h, endpoint))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRawJSON writes an already-encoded JSON document unchanged.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
