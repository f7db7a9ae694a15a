package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neighborjob/marketplace/internal/middleware"
	"github.com/neighborjob/marketplace/internal/service"
	"github.com/neighborjob/marketplace/pkg/logger"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Marketplace       *service.Marketplace
	Logger            *logger.Logger
	Events            ReadinessChecker
	JWTSecret         string
	AllowedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	healthHandler := NewHealthHandler(cfg.Events)
	sessionHandler := NewSessionHandler(cfg.Marketplace, log)
	jobHandler := NewJobHandler(cfg.Marketplace, log)
	conversationHandler := NewConversationHandler(cfg.Marketplace, log)
	advisorHandler := NewAdvisorHandler(cfg.Marketplace, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Put("/location", sessionHandler.SetLocation)
			r.Put("/mode", sessionHandler.SetMode)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobHandler.List)
			r.Post("/", jobHandler.Post)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", jobHandler.Get)
				r.Post("/conversation", jobHandler.StartConversation)
				r.Get("/advice", jobHandler.Advice)
			})
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Post("/messages", conversationHandler.SendMessage)
			})
		})

		r.Route("/advisor", func(r chi.Router) {
			r.Post("/refine", advisorHandler.Refine)
			r.Post("/advice", advisorHandler.Advice)
		})
	})

	return r
}
