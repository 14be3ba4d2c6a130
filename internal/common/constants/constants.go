package constants

import "time"

const (
	UsernameMaxBytes      = 32
	PasswordMaxBytes      = 32
	DefaultMaxRequestSize = 1 << 16

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 2
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBAcquireTimeout      = 3 * time.Second
	ApplicationName       = "MiniTikTok-User-Http"

	GraphMaxSessions        = 25
	GraphAcquireTimeout     = 3 * time.Second
	GraphLivenessCheck      = 30 * time.Second
	GraphUserAgent          = "MiniTikTok-User-Http/0"
	GraphConnectTimeout     = 5 * time.Second
	GraphMetricsLabel       = "graph"
	RelationalMetricsLabel  = "relational"
	DefaultRPCDialTimeout   = 10 * time.Second
	DefaultStepTimeout      = 5 * time.Second
	DefaultDiscoveryTimeout = 5 * time.Second
	RequestTimeout          = 15 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second

	RateLimitRegisterRequestsPerSecond = 5.0
	RateLimitRegisterBurst             = 10
	RateLimitLoginRequestsPerSecond    = 10.0
	RateLimitLoginBurst                = 20
	RateLimitGeneralRequestsPerSecond  = 100.0
	RateLimitGeneralBurst              = 200
	RateLimitCleanupInterval           = 5 * time.Minute

	Argon2Time     = 2
	Argon2Memory   = 19 * 1024
	Argon2Threads  = 1
	Argon2KeyLen   = 32
	Argon2SaltSize = 16

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
