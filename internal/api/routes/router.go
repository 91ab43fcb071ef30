package routes

import (
	"net/http"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/api/handlers"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/api/middleware"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	healthHandler   *handlers.HealthHandler
	patientHandler  *handlers.PatientHandler
	qaHandler       *handlers.QAHandler
	summaryHandler  *handlers.SummaryHandler
	aiStatusHandler *handlers.AIStatusHandler

	cacheMiddleware *middleware.CacheMiddleware
	rateLimiter     *middleware.IPRateLimiter
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	healthHandler *handlers.HealthHandler,
	patientHandler *handlers.PatientHandler,
	qaHandler *handlers.QAHandler,
	summaryHandler *handlers.SummaryHandler,
	aiStatusHandler *handlers.AIStatusHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	rateLimiter *middleware.IPRateLimiter,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		healthHandler:   healthHandler,
		patientHandler:  patientHandler,
		qaHandler:       qaHandler,
		summaryHandler:  summaryHandler,
		aiStatusHandler: aiStatusHandler,
		cacheMiddleware: cacheMiddleware,
		rateLimiter:     rateLimiter,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoints. "{$}" keeps the root pattern from
	// swallowing every unmatched GET.
	r.mux.HandleFunc("GET /{$}", r.healthHandler.Health)
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Patient endpoints
	r.mux.HandleFunc("GET /api/patients", r.patientHandler.ListPatients)
	r.mux.HandleFunc("GET /api/patients/{id}", r.patientHandler.GetPatient)

	// Question answering
	r.mux.HandleFunc("POST /api/patients/{id}/ask", r.qaHandler.AskQuestion)

	// Summary generation
	r.mux.HandleFunc("POST /api/patients/{id}/summary", r.summaryHandler.GenerateSummary)

	// AI provider status
	r.mux.HandleFunc("GET /api/ai/status", r.aiStatusHandler.GetStatus)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	if r.rateLimiter != nil {
		handler = r.rateLimiter.Middleware(handler)
	}

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.NewCORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
