package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete gateway configuration, loadable from
// environment variables (CHECKOUT_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8090" usage:"Gateway listen address"`
	Backend      BackendConfig
	RedisAddr    string   `default:"" usage:"Redis address for session storage; empty keeps sessions in memory" flag:"redis-addr"`
	KafkaBrokers []string `usage:"Kafka brokers for checkout events; empty disables publishing" flag:"kafka-brokers"`
	KafkaTopic   string   `default:"checkout.events" usage:"Topic for checkout lifecycle events" flag:"kafka-topic"`
	Session      SessionConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// BackendConfig points at the dealership REST backend.
type BackendConfig struct {
	URL     string        `default:"http://localhost:8080/api" usage:"Dealership backend API root"`
	Token   string        `usage:"Bearer token for the backend; the public checkout path works without one"`
	Timeout time.Duration `default:"10s" usage:"Per-request backend timeout"`
}

// SessionConfig controls wizard session lifetimes.
type SessionConfig struct {
	TTL          time.Duration `default:"30m" usage:"Idle lifetime of an active checkout session"`
	CompletedTTL time.Duration `default:"3s" usage:"How long a completed checkout stays readable" flag:"completed-ttl"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CHECKOUT",
		Files:     []string{"config.yaml", "/etc/checkout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Backend.URL == "" {
		return nil, errors.New("backend URL is required: set CHECKOUT_BACKEND_URL or BACKEND_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like PORT and REDIS_ADDR
// to the CHECKOUT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if v := os.Getenv("BACKEND_URL"); v != "" && c.Backend.URL == "http://localhost:8080/api" {
		c.Backend.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" && c.RedisAddr == "" {
		c.RedisAddr = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8090" {
		c.Addr = "0.0.0.0:" + port
	}
}
