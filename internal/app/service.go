// Package service provides the relay service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/routerelay/internal/adapters/provider/tomtom"
	"github.com/okian/routerelay/internal/config"
	"github.com/okian/routerelay/internal/domain/route"
	"github.com/okian/routerelay/pkg/logger"
	"github.com/okian/routerelay/pkg/metrics"
)

// Provider performs the upstream route calculation.
type Provider interface {
	CalculateRoute(ctx context.Context, q route.Query) (tomtom.Response, error)
}

// Service relays route requests to the provider. Its configuration is fixed
// at construction; the zero value is not usable.
type Service struct {
	provider        Provider
	endpoint        string
	apiKey          string
	forwardFuelType bool
	metrics         *metrics.Manager
	logger          logger.Logger

	warnOnce sync.Once
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProvider sets the upstream provider.
func WithProvider(p Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithEndpoint sets the provider base URL.
func WithEndpoint(endpoint string) Option {
	return func(s *Service) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithAPIKey sets the provider key.
func WithAPIKey(key string) Option {
	return func(s *Service) { s.apiKey = key }
}

// WithForwardFuelType enables fuelType -> vehicleEngineType mapping.
func WithForwardFuelType(enabled bool) Option {
	return func(s *Service) { s.forwardFuelType = enabled }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithProvider it talks to TomTom with
// a default client.
func New(opts ...Option) *Service {
	s := &Service{
		endpoint: config.DefaultProviderEndpoint,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	if s.provider == nil {
		s.provider = tomtom.New(tomtom.WithLogger(s.logger))
	}
	return s
}

// NewFromConfig wires a Service and its TomTom client from cfg.
func NewFromConfig(cfg *config.Config, l logger.Logger, m *metrics.Manager) *Service {
	client := tomtom.New(
		tomtom.WithTimeout(cfg.ProviderTimeout()),
		tomtom.WithMaxResponseBytes(cfg.MaxResponseBytes),
		tomtom.WithLogger(l),
	)
	return New(
		WithProvider(client),
		WithEndpoint(cfg.ProviderEndpoint),
		WithAPIKey(cfg.APIKey),
		WithForwardFuelType(cfg.ForwardFuelType),
		WithMetrics(m),
		WithLogger(l),
	)
}

// Start logs the effective settings. A missing API key is reported but not
// treated as fatal; the provider rejects such calls itself.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "route relay ready",
		logger.String("endpoint", s.endpoint),
		logger.Bool("forwardFuelType", s.forwardFuelType))
	s.warnMissingKey(ctx)
	return nil
}

func (s *Service) warnMissingKey(ctx context.Context) {
	if s.apiKey != "" {
		return
	}
	s.warnOnce.Do(func() {
		s.logger.Warn(ctx, "provider API key is empty; upstream calls will be rejected")
	})
}

// Query returns the provider query for req without calling upstream.
func (s *Service) Query(req route.Request) route.Query {
	return route.BuildQuery(s.endpoint, s.apiKey, req, route.WithFuelType(s.forwardFuelType))
}

// GetRoute relays req and returns the provider's JSON payload unmodified.
// Errors are the tomtom package's kinds.
func (s *Service) GetRoute(ctx context.Context, req route.Request) ([]byte, error) {
	q := s.Query(req)
	s.metrics.RecordRouteRequest(req.VehicleType.Label(), req.RoutePreference.Label())

	done := s.metrics.UpstreamStarted()
	start := time.Now()
	resp, err := s.provider.CalculateRoute(ctx, q)
	elapsed := time.Since(start)
	done()

	s.metrics.RecordUpstreamResponse(resp.StatusCode, float64(elapsed.Milliseconds()))

	if err != nil {
		s.metrics.RecordUpstreamError(tomtom.Kind(err))
		fields := []logger.Field{
			logger.String("query", q.Redacted()),
			logger.Int("upstreamStatus", resp.StatusCode),
			logger.Duration("latency", elapsed),
			logger.String("fuelType", string(req.FuelType)),
			logger.Error(err),
		}
		var se *tomtom.StatusError
		if errors.As(err, &se) {
			s.logger.Warn(ctx, "route provider rejected request", fields...)
		} else {
			s.logger.Error(ctx, "route provider call failed", fields...)
		}
		return nil, err
	}

	s.metrics.RecordUpstreamPayload(len(resp.Body))
	s.logger.Info(ctx, "route relayed",
		logger.String("query", q.Redacted()),
		logger.Int("bytes", len(resp.Body)),
		logger.Duration("latency", elapsed))
	return resp.Body, nil
}
