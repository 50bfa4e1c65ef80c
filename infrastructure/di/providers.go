package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"flowengine/application/dispatch"
	"flowengine/application/ports"
	"flowengine/application/queries/bus"
	"flowengine/application/queries/handlers"
	"flowengine/application/worker"
	"flowengine/domain/services"
	"flowengine/infrastructure/config"
	"flowengine/infrastructure/messaging/eventbridge"
	"flowengine/infrastructure/observability"
	"flowengine/interfaces/http/rest"
	"flowengine/interfaces/websocket"
	"flowengine/pkg/auth"
)

const (
	serviceName      = "flowengine"
	metricsNamespace = "flowengine"
)

// Logging bundles the logger with the level that controls it at runtime
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// ProvideLogging creates the process logger
func ProvideLogging(cfg *config.Config) (*Logging, func(), error) {
	logger, level, err := observability.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = logger.Sync() }
	return &Logging{Logger: logger, Level: level}, cleanup, nil
}

// ProvideLogger exposes the logger from Logging
func ProvideLogger(logging *Logging) *zap.Logger {
	return logging.Logger
}

// ProvideTracerProvider installs the global tracer provider when tracing is
// enabled. The returned provider is nil otherwise.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Production:  cfg.IsProduction(),
		Endpoint:    cfg.TracingEndpoint,
		SampleRate:  cfg.TracingSampleRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideEventPublisher publishes analysis events to EventBridge, or drops
// them when events are disabled
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return eventbridge.NoopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, cfg.EventSource, logger)
}

// ProvideClock supplies wall-clock time
func ProvideClock() ports.Clock {
	return ports.SystemClock{}
}

// ProvideComplexityAnalyzer creates the report builder
func ProvideComplexityAnalyzer() *services.ComplexityAnalyzer {
	return services.NewComplexityAnalyzer()
}

// ProvideQueryBus builds the bus with the enabled middlewares and every
// analysis handler registered
func ProvideQueryBus(
	cfg *config.Config,
	collector *observability.Collector,
	complexity *handlers.AnalyzeComplexityHandler,
	progress *handlers.AnalyzeProgressHandler,
	bottlenecks *handlers.DetectBottlenecksHandler,
	criticalPath *handlers.FindCriticalPathHandler,
) (*bus.QueryBus, error) {
	var middlewares []bus.Middleware
	if cfg.EnableTracing {
		middlewares = append(middlewares, bus.NewTracingMiddleware(serviceName))
	}
	if cfg.EnableMetrics {
		middlewares = append(middlewares, bus.NewMetricsMiddleware(collector))
	}

	b := bus.NewQueryBus(middlewares...)
	if err := handlers.RegisterAll(b, complexity, progress, bottlenecks, criticalPath); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return b, nil
}

// ProvideWorkerPool starts the workers. Cleanup drains and stops them.
func ProvideWorkerPool(cfg *config.Config, dispatcher *dispatch.Dispatcher, logger *zap.Logger) (*worker.Pool, func()) {
	pool := worker.NewPool(dispatcher, worker.Options{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.WorkerQueueSize,
	}, logger)
	return pool, pool.Close
}

// ProvideJWTValidator returns nil when authentication is disabled
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.EnableAuth {
		return nil, nil
	}
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// ProvideWebSocketServer creates the WebSocket transport
func ProvideWebSocketServer(cfg *config.Config, pool *worker.Pool, collector *observability.Collector, logger *zap.Logger) *websocket.Server {
	wsConfig := websocket.DefaultServerConfig()
	wsConfig.ReadLimit = cfg.WebSocketReadLimit
	wsConfig.PingInterval = cfg.WebSocketPingInterval
	if cfg.EnableCORS {
		wsConfig.AllowedOrigins = withoutWildcard(cfg.AllowedOrigins)
	}
	return websocket.NewServer(pool, wsConfig, collector.WebSocketConnections, logger)
}

// ProvideAnalyzeHandler creates the HTTP analysis handler
func ProvideAnalyzeHandler(cfg *config.Config, pool *worker.Pool, logger *zap.Logger) *rest.AnalyzeHandler {
	return rest.NewAnalyzeHandler(pool, cfg.RequestTimeout, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	analyze *rest.AnalyzeHandler,
	ws *websocket.Server,
	collector *observability.Collector,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, analyze, ws, collector, validator, logger)
}

// withoutWildcard returns nil, meaning any origin, when "*" is configured
func withoutWildcard(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			return nil
		}
		out = append(out, origin)
	}
	return out
}
