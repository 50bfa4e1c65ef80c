package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"flowengine/application/dispatch"
)

// Submitter enqueues a request and hands back where its response will arrive
type Submitter interface {
	Submit(ctx context.Context, req dispatch.Request) (<-chan dispatch.Response, error)
}

// ConnectionGauge tracks open connections
type ConnectionGauge interface {
	Inc()
	Dec()
}

// ServerConfig holds WebSocket server configuration
type ServerConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	ReadLimit       int64
	PingInterval    time.Duration
	AllowedOrigins  []string
}

// DefaultServerConfig returns default WebSocket server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		ReadLimit:       defaultReadLimit,
		PingInterval:    defaultPingInterval,
	}
}

// Server upgrades HTTP requests and runs one Client per connection
type Server struct {
	pool     Submitter
	upgrader websocket.Upgrader
	config   ServerConfig
	gauge    ConnectionGauge
	logger   *zap.Logger
}

// NewServer creates a new WebSocket server. gauge may be nil.
func NewServer(pool Submitter, config ServerConfig, gauge ConnectionGauge, logger *zap.Logger) *Server {
	defaults := DefaultServerConfig()
	if config.ReadBufferSize <= 0 {
		config.ReadBufferSize = defaults.ReadBufferSize
	}
	if config.WriteBufferSize <= 0 {
		config.WriteBufferSize = defaults.WriteBufferSize
	}
	if config.ReadLimit <= 0 {
		config.ReadLimit = defaults.ReadLimit
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}

	return &Server{
		pool: pool,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     originChecker(config.AllowedOrigins),
		},
		config: config,
		gauge:  gauge,
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection",
			zap.Error(err),
			zap.String("remoteAddr", r.RemoteAddr),
		)
		return
	}

	client := NewClient(conn, s.pool, s.config, s.logger)
	if s.gauge != nil {
		s.gauge.Inc()
	}
	s.logger.Info("WebSocket connection established",
		zap.String("connectionID", client.ID()),
		zap.String("remoteAddr", r.RemoteAddr),
	)

	go func() {
		client.Run()
		if s.gauge != nil {
			s.gauge.Dec()
		}
	}()
}

// originChecker allows any origin when none are configured. Requests without
// an Origin header come from non-browser clients and are always accepted.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
