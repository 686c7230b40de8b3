// Package api wires the HTTP surface of the search backend.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/campusworks/searchkit/internal/api/handlers"
	"github.com/campusworks/searchkit/internal/api/middleware"
	"github.com/campusworks/searchkit/internal/index"
	"github.com/campusworks/searchkit/pkg/observe"
)

// Router builds the HTTP handler for the search service.
type Router struct {
	searchHandler *handlers.SearchHandler
	logger        zerolog.Logger
	metrics       *observe.ServerMetrics
	registry      *prometheus.Registry
}

// NewRouter creates a router over the record index.
func NewRouter(ix *index.Index, logger zerolog.Logger) *Router {
	registry := prometheus.NewRegistry()
	return &Router{
		searchHandler: handlers.NewSearchHandler(ix),
		logger:        logger.With().Str("component", "api").Logger(),
		metrics:       observe.NewServerMetrics(registry),
		registry:      registry,
	}
}

// SetupRoutes configures middleware and routes.
func (rt *Router) SetupRoutes() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Recoverer(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Use(chimiddleware.Timeout(30 * time.Second))
	router.Use(middleware.RateLimit(300, time.Minute))

	router.Get("/health", rt.healthCheck)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(apiRouter chi.Router) {
		apiRouter.Post("/search", rt.instrument("search", rt.searchHandler.Search))
		apiRouter.Get("/suggest", rt.instrument("suggest", rt.searchHandler.Suggest))
		apiRouter.Get("/stats", rt.instrument("stats", rt.searchHandler.Stats))
	})

	return router
}

// instrument records request counts and latency per route.
func (rt *Router) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next(ww, r)

		rt.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		rt.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
	}
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	middleware.Respond(w, http.StatusOK, map[string]string{"status": "healthy"})
}
