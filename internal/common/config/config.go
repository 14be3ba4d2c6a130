package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// GatewayConfig is loaded once at startup and never mutated afterwards.
type GatewayConfig struct {
	ListenAddrV4 string `env:"LISTEN_ADDR_V4" envDefault:"0.0.0.0:14514"`
	ListenAddrV6 string `env:"LISTEN_ADDR_V6" envDefault:"[::]:14514"`

	DatabaseURL      string        `env:"DATABASE_URL"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	DBAcquireTimeout time.Duration `env:"DB_ACQUIRE_TIMEOUT" envDefault:"3s"`

	BoltURL             string        `env:"BOLT_URL"`
	BoltUsername        string        `env:"BOLT_USERNAME"`
	BoltPassword        string        `env:"BOLT_PASSWORD"`
	BoltDomain          string        `env:"BOLT_DOMAIN"`
	GraphMaxSessions    int           `env:"GRAPH_MAX_SESSIONS" envDefault:"25"`
	GraphAcquireTimeout time.Duration `env:"GRAPH_ACQUIRE_TIMEOUT" envDefault:"3s"`

	AuthURL         string        `env:"AUTH_URL"`
	UserURL         string        `env:"USER_URL"`
	ConsulAddr      string        `env:"CONSUL_ADDR"`
	AuthServiceName string        `env:"AUTH_SERVICE_NAME" envDefault:"auth"`
	UserServiceName string        `env:"USER_SERVICE_NAME" envDefault:"user"`
	RPCTimeout      time.Duration `env:"RPC_TIMEOUT" envDefault:"3s"`
	RPCHealthCheck  bool          `env:"RPC_HEALTH_CHECK" envDefault:"false"`

	StepTimeout             time.Duration `env:"STEP_TIMEOUT" envDefault:"5s"`
	CircuitBreakerThreshold int32         `env:"CIRCUIT_BREAKER_THRESHOLD" envDefault:"50"`
	CircuitBreakerReset     time.Duration `env:"CIRCUIT_BREAKER_RESET" envDefault:"10s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func LoadGatewayConfig() (GatewayConfig, error) {
	var cfg GatewayConfig
	if err := env.Parse(&cfg); err != nil {
		return GatewayConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return GatewayConfig{}, err
	}
	return cfg, nil
}

func (c GatewayConfig) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"DATABASE_URL", c.DatabaseURL},
		{"BOLT_URL", c.BoltURL},
		{"BOLT_USERNAME", c.BoltUsername},
		{"BOLT_PASSWORD", c.BoltPassword},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequiredEnv, r.key)
		}
	}

	if c.AuthURL == "" && c.ConsulAddr == "" {
		return fmt.Errorf("%w: AUTH_URL or CONSUL_ADDR", ErrMissingRequiredEnv)
	}
	if c.UserURL == "" && c.ConsulAddr == "" {
		return fmt.Errorf("%w: USER_URL or CONSUL_ADDR", ErrMissingRequiredEnv)
	}

	if c.ListenAddrV4 == "" && c.ListenAddrV6 == "" {
		return fmt.Errorf("%w: at least one listen address is required", ErrInvalidConfig)
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("%w: DB_MAX_CONNS must be positive, got %d", ErrInvalidConfig, c.DBMaxConns)
	}
	if c.GraphMaxSessions <= 0 {
		return fmt.Errorf("%w: GRAPH_MAX_SESSIONS must be positive, got %d", ErrInvalidConfig, c.GraphMaxSessions)
	}
	if c.RPCTimeout <= 0 || c.StepTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}
