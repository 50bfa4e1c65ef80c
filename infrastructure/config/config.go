package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
//
// Sources are applied in order, later ones winning: built-in defaults, the
// YAML file named by CONFIG_FILE, then environment variables. A .env file in
// the working directory is loaded into the environment first and never
// overrides variables that are already set.
type Config struct {
	// Server configuration
	ServerAddress  string        `yaml:"server_address"`
	Environment    string        `yaml:"environment"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Worker pool
	WorkerCount     int `yaml:"worker_count"`
	WorkerQueueSize int `yaml:"worker_queue_size"`

	// AWS configuration
	AWSRegion    string `yaml:"aws_region"`
	EventBusName string `yaml:"event_bus_name"`
	EventSource  string `yaml:"event_source"`

	// Lambda configuration
	IsLambda bool `yaml:"is_lambda"`

	// WebSocket configuration
	WebSocketReadLimit    int64         `yaml:"websocket_read_limit"`
	WebSocketPingInterval time.Duration `yaml:"websocket_ping_interval"`

	// Circuit breaker around the analysis endpoint
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Tracing
	TracingEndpoint   string  `yaml:"tracing_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate"`

	// CORS
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Feature flags
	EnableAuth    bool `yaml:"enable_auth"`
	EnableEvents  bool `yaml:"enable_events"`
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`

	// ConfigFile is the YAML file the values were read from, if any
	ConfigFile string `yaml:"-"`
}

// Defaults returns the configuration used when nothing else is set
func Defaults() *Config {
	return &Config{
		ServerAddress:         ":8080",
		Environment:           "development",
		RequestTimeout:        30 * time.Second,
		WorkerCount:           1,
		WorkerQueueSize:       64,
		AWSRegion:             "us-west-2",
		EventBusName:          "flowengine-events",
		EventSource:           "flowengine.analysis",
		WebSocketReadLimit:    4 << 20,
		WebSocketPingInterval: 30 * time.Second,
		BreakerMaxFailures:    5,
		BreakerOpenTimeout:    30 * time.Second,
		LogLevel:              "info",
		JWTIssuer:             "flowengine",
		TracingSampleRate:     1.0,
		AllowedOrigins:        []string{"*"},
		EnableMetrics:         true,
		EnableCORS:            true,
	}
}

// LoadConfig loads configuration from defaults, the optional YAML file and
// the environment
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MergeFile overlays the keys present in a YAML file onto c
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)

	c.WorkerCount = getEnvInt("WORKER_COUNT", c.WorkerCount)
	c.WorkerQueueSize = getEnvInt("WORKER_QUEUE_SIZE", c.WorkerQueueSize)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.EventSource = getEnv("EVENT_SOURCE", c.EventSource)

	// Lambda sets AWS_LAMBDA_FUNCTION_NAME for every function
	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.WebSocketReadLimit = int64(getEnvInt("WEBSOCKET_READ_LIMIT", int(c.WebSocketReadLimit)))
	c.WebSocketPingInterval = getEnvDuration("WEBSOCKET_PING_INTERVAL", c.WebSocketPingInterval)

	c.BreakerMaxFailures = uint32(getEnvInt("BREAKER_MAX_FAILURES", int(c.BreakerMaxFailures)))
	c.BreakerOpenTimeout = getEnvDuration("BREAKER_OPEN_TIMEOUT", c.BreakerOpenTimeout)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)

	c.TracingEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.TracingEndpoint)
	c.TracingSampleRate = getEnvFloat("TRACING_SAMPLE_RATE", c.TracingSampleRate)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}

	c.EnableAuth = getEnvBool("ENABLE_AUTH", c.EnableAuth)
	c.EnableEvents = getEnvBool("ENABLE_EVENTS", c.EnableEvents)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.WorkerCount)
	}
	if c.WorkerQueueSize < 1 {
		return fmt.Errorf("WORKER_QUEUE_SIZE must be at least 1, got %d", c.WorkerQueueSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within [0,1], got %g", c.TracingSampleRate)
	}
	if c.EnableAuth && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENABLE_AUTH is set")
	}
	if c.EnableEvents && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when ENABLE_EVENTS is set")
	}

	return nil
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or plain milliseconds ("45000")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
