package rest

import (
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"flowengine/infrastructure/config"
	"flowengine/infrastructure/observability"
	"flowengine/interfaces/http/rest/middleware"
	"flowengine/pkg/auth"
)

const analyzeBreakerName = "analyze"

// Router creates and configures the HTTP router
type Router struct {
	cfg       *config.Config
	analyze   *AnalyzeHandler
	websocket http.Handler
	collector *observability.Collector
	validator *auth.JWTValidator
	logger    *zap.Logger

	shuttingDown atomic.Bool
}

// NewRouter creates a new router instance. websocket, collector and
// validator may be nil; the matching routes and middleware are then skipped.
func NewRouter(
	cfg *config.Config,
	analyze *AnalyzeHandler,
	websocket http.Handler,
	collector *observability.Collector,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:       cfg,
		analyze:   analyze,
		websocket: websocket,
		collector: collector,
		validator: validator,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	if rt.collector != nil {
		router.Use(middleware.Logger(rt.logger, rt.collector))
	} else {
		router.Use(middleware.Logger(rt.logger, nil))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil && rt.cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.HandlerFor(rt.collector.GetRegistry(), promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.EnableAuth && rt.validator != nil {
			r.Use(middleware.Authenticate(rt.validator, rt.logger))
		}

		r.With(middleware.CircuitBreaker(rt.breakerConfig(), rt.logger)).
			Post("/analyze", rt.analyze.Analyze)
		r.Get("/operations", rt.analyze.ListOperations)

		if rt.websocket != nil {
			r.Handle("/ws", rt.websocket)
		}
	})

	return router
}

// MarkShuttingDown makes /ready fail so load balancers stop routing here
// while in-flight requests drain
func (rt *Router) MarkShuttingDown() {
	rt.shuttingDown.Store(true)
}

func (rt *Router) breakerConfig() middleware.CircuitBreakerConfig {
	cfg := middleware.DefaultCircuitBreakerConfig(analyzeBreakerName)
	if rt.cfg.BreakerMaxFailures > 0 {
		cfg.MaxFailures = rt.cfg.BreakerMaxFailures
	}
	if rt.cfg.BreakerOpenTimeout > 0 {
		cfg.OpenTimeout = rt.cfg.BreakerOpenTimeout
	}
	if rt.collector != nil {
		gauge := rt.collector.BreakerState
		gauge.WithLabelValues(analyzeBreakerName).Set(0)
		cfg.OnStateChange = func(name string, to gobreaker.State) {
			gauge.WithLabelValues(name).Set(middleware.StateValue(to))
		}
	}
	return cfg
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.shuttingDown.Load() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
