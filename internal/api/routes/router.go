package routes

import (
	"net/http"

	"github.com/cityguide/backend/internal/api/handlers"
	"github.com/cityguide/backend/internal/api/middleware"
	"github.com/cityguide/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux            *http.ServeMux
	guideHandler   *handlers.GuideHandler
	metrics        *observability.HTTPMetrics
	allowedOrigins []string
}

// NewRouter creates a new router. metrics may be nil.
func NewRouter(guideHandler *handlers.GuideHandler, metrics *observability.HTTPMetrics, allowedOrigins []string) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		guideHandler:   guideHandler,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// User profile endpoints
	r.mux.HandleFunc("POST /api/users/{id}", r.guideHandler.RegisterUser)
	r.mux.HandleFunc("PUT /api/users/{id}/location", r.guideHandler.SetLocation)
	r.mux.HandleFunc("POST /api/users/{id}/address", r.guideHandler.SetAddress)
	r.mux.HandleFunc("PUT /api/users/{id}/preferences/{key}", r.guideHandler.SetPreference)

	// Recommendation endpoints
	r.mux.HandleFunc("GET /api/users/{id}/nearby", r.guideHandler.FindNearby)
	r.mux.HandleFunc("GET /api/users/{id}/route", r.guideHandler.Route)
	r.mux.HandleFunc("GET /api/users/{id}/events", r.guideHandler.UpcomingEvents)

	// Subscription endpoints
	r.mux.HandleFunc("POST /api/users/{id}/subscriptions", r.guideHandler.Subscribe)
	r.mux.HandleFunc("GET /api/users/{id}/subscriptions", r.guideHandler.ListSubscriptions)

	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
