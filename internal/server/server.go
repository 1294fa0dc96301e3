// Package server provides the FibraDoc HTTP server.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fibradoc/fibradoc/internal/audit"
	"github.com/fibradoc/fibradoc/internal/config"
	"github.com/fibradoc/fibradoc/internal/events"
	"github.com/fibradoc/fibradoc/internal/httputil"
	"github.com/fibradoc/fibradoc/internal/store"
	"github.com/fibradoc/fibradoc/internal/telemetry"
	"github.com/fibradoc/fibradoc/pkg/types"
)

const serviceName = "fibradoc"

// Server wraps HTTP routes and dependencies.
type Server struct {
	store       store.Store
	cfg         config.Config
	version     string
	commit      string
	buildDate   string
	openapiSpec []byte
	publisher   events.Publisher
	audit       *audit.Logger
	metrics     *telemetry.Metrics
	router      chi.Router
}

// Option configures server construction.
type Option func(*Server)

// WithOpenAPISpec sets the embedded OpenAPI bytes.
func WithOpenAPISpec(spec []byte) Option {
	return func(s *Server) {
		s.openapiSpec = spec
	}
}

// WithPublisher sets the write-event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Server) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithAuditLogger enables audit entries for every write.
func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Server) {
		s.audit = l
	}
}

// WithMetrics enables request metrics and the /metrics endpoint.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New constructs a FibraDoc API server.
func New(st store.Store, cfg config.Config, version, commit, buildDate string, opts ...Option) *Server {
	s := &Server{
		store:     st,
		cfg:       cfg,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		publisher: events.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.DefaultPageSize <= 0 {
		s.cfg.DefaultPageSize = 10
	}
	if s.cfg.MaxPageSize < s.cfg.DefaultPageSize {
		s.cfg.MaxPageSize = max(100, s.cfg.DefaultPageSize)
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	if s.cfg.TracesEnabled {
		r.Use(telemetry.Tracing(serviceName))
	}
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(httputil.RequestID)
	r.Use(httputil.RequestLogger(log.Logger))
	r.Use(httputil.Recoverer)
	r.Use(httputil.SecureHeaders)
	r.Use(httputil.BodyLimit(1 << 20))
	r.Use(httputil.ContentType)
	r.Use(httputil.APIVersion(types.APIVersion))
	r.Use(httputil.CacheControl)
	r.Use(httputil.ETag)

	r.Group(func(r chi.Router) {
		r.Method(http.MethodGet, "/health", httputil.HealthHandler())
		r.Method(http.MethodGet, "/readiness", httputil.ReadinessHandler(func() error {
			return s.store.Ping(context.Background())
		}))
		r.Method(http.MethodGet, "/version", httputil.VersionHandler(s.version, s.commit, s.buildDate))
		if s.cfg.MetricsEnabled && s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		}
		r.Method(http.MethodGet, "/api/openapi.yaml", httputil.OpenAPIHandler(s.openapiSpec))
	})

	r.Route("/api", func(r chi.Router) {
		s.cityResource().mount(r)
		s.boxResource().mount(r, func(r chi.Router) {
			r.Put("/portas", s.handleReplaceBoxPorts)
			r.Get("/ocupacao", s.handleBoxOccupancy)
		})
		s.portResource().mount(r)
		s.trayResource().mount(r)
		s.splitterResource().mount(r)
		s.capillaryResource().mount(r)
		s.routeResource().mount(r)
		s.tubeResource().mount(r)
		s.fusionResource().mount(r)
		s.clientResource().mount(r)
	})

	return r
}
