// Package api provides the HTTP API for Breezy.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/breezy/breezy/internal/api/handler"
	"github.com/breezy/breezy/internal/api/middleware"
	"github.com/breezy/breezy/internal/forecast"
	"github.com/breezy/breezy/internal/provider/resilience"
	"github.com/breezy/breezy/internal/session"
)

// TokenService issues and validates session tokens. *auth.JWTService
// satisfies it.
type TokenService interface {
	handler.TokenIssuer
	middleware.TokenValidator
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Sessions *session.Service
	Tokens   TokenService
	Registry *resilience.Registry
	Cache    handler.CacheStatter
	Refresh  handler.RefreshStatter

	// RequireTLS rejects plain-HTTP requests that were not forwarded as HTTPS.
	RequireTLS bool

	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "breezy-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type
	r.Use(middleware.RequireJSON)                // Reject non-JSON bodies

	// Initialize handlers
	opsConfig := handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Cache:     cfg.Cache,
		Refresh:   cfg.Refresh,
	}
	if cfg.Sessions != nil {
		opsConfig.Sessions = cfg.Sessions
	}
	opsHandler := handler.NewOpsHandler(opsConfig)
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Tokens, cfg.Logger)
	forecastHandler := handler.NewForecastHandler(cfg.Sessions, forecast.NewView(cfg.Logger))

	sessionAuth := middleware.SessionAuth(cfg.Tokens)

	createRateLimit := middleware.SessionCreateRateLimit.ByIP()
	lookupRateLimit := middleware.LookupRateLimit.BySession()
	standardRateLimit := middleware.StandardRateLimit.ByIP()
	sessionRateLimit := middleware.StandardRateLimit.BySession()

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(standardRateLimit).Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.With(createRateLimit).Post("/", sessionHandler.Create)

			// The caller's own session, identified by its bearer token
			r.Route("/current", func(r chi.Router) {
				r.Use(sessionAuth)

				// Provider lookups for a new location - strict rate limiting
				r.With(lookupRateLimit).Post("/search", sessionHandler.Search)
				r.With(lookupRateLimit).Post("/locate", sessionHandler.Locate)

				r.Group(func(r chi.Router) {
					r.Use(sessionRateLimit)
					r.Get("/", sessionHandler.Get)
					r.Delete("/", sessionHandler.Delete)

					r.Post("/unit:toggle", sessionHandler.ToggleUnit)
					r.Put("/unit", sessionHandler.SetUnit)
					r.Post("/theme:toggle", sessionHandler.ToggleTheme)
					r.Put("/theme", sessionHandler.SetTheme)

					r.Get("/forecast", forecastHandler.Window)
					r.Get("/forecast/year", forecastHandler.Year)
					r.Get("/forecast/month-grid", forecastHandler.MonthGrid)
					r.Get("/advice", forecastHandler.Advice)
				})
			})
		})
	})

	return r
}
