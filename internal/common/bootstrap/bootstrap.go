// Package bootstrap assembles the gateway from its configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/grpc"

	authservice "github.com/ThalliMega/MiniTikTok-User-Http/internal/auth/service"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/config"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	commoncrypto "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/crypto"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/db"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/discovery"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/pool"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/resilience"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/server"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/downstream"
	gatewayhttp "github.com/ThalliMega/MiniTikTok-User-Http/internal/gateway/http"
	graphrepo "github.com/ThalliMega/MiniTikTok-User-Http/internal/graph/repository"
	profileservice "github.com/ThalliMega/MiniTikTok-User-Http/internal/profile/service"
	regservice "github.com/ThalliMega/MiniTikTok-User-Http/internal/registration/service"
	userrepo "github.com/ThalliMega/MiniTikTok-User-Http/internal/user/repository"
)

const serviceName = "user-http"

type GatewayApp struct {
	Log          *logger.Logger
	Config       config.GatewayConfig
	Pools        *pool.Manager
	AuthConn     *grpc.ClientConn
	UserConn     *grpc.ClientConn
	Gate         *authservice.Gate
	Orchestrator *regservice.Orchestrator
	Aggregator   *profileservice.Aggregator
	Handler      http.Handler
}

// NewGatewayApp connects to every backend. ctx bounds the lifetime of
// background pool metrics, not just startup.
func NewGatewayApp(ctx context.Context) (*GatewayApp, error) {
	log, err := initializeLogger(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return nil, err
	}

	app := &GatewayApp{Log: log, Config: cfg}
	if err := app.connectStores(ctx); err != nil {
		app.Close(context.Background())
		return nil, err
	}
	if err := app.connectServices(ctx); err != nil {
		app.Close(context.Background())
		return nil, err
	}

	breakerFor := func(name string) *resilience.CircuitBreaker {
		return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  cfg.CircuitBreakerThreshold,
			Timeout:    cfg.RPCTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       name,
			IsFailure:  downstream.IsTransportFailure,
			Logger:     log,
		})
	}

	authClient := downstream.NewAuthClient(app.AuthConn, breakerFor("auth_rpc"))
	profileClient := downstream.NewProfileClient(app.UserConn, breakerFor("user_rpc"))

	app.Gate = authservice.NewGate(authClient, log)
	app.Orchestrator = regservice.NewOrchestrator(regservice.Dependencies{
		Graphs:      app.Pools.Graph,
		Relational:  app.Pools.Relational,
		Credentials: userrepo.NewPgRepository(),
		Graph:       graphrepo.NewBoltRepository(),
		Hasher:      commoncrypto.NewArgon2Hasher(nil),
		Tokens:      app.Gate,
		StepTimeout: cfg.StepTimeout,
		Log:         log,
	})
	app.Aggregator = profileservice.NewAggregator(app.Gate, profileClient, log)
	app.Handler = gatewayhttp.NewHandler(app.Orchestrator, app.Gate, app.Aggregator, log)

	return app, nil
}

func (a *GatewayApp) connectStores(ctx context.Context) error {
	pgPool, err := db.NewPool(ctx, a.Log, db.PoolOptions{
		DatabaseURL: a.Config.DatabaseURL,
		MaxConns:    a.Config.DBMaxConns,
	}, db.StartupRetryConfig)
	if err != nil {
		return fmt.Errorf("connect relational store: %w", err)
	}
	relational := pool.NewRelational(pgPool, a.Config.DBAcquireTimeout)

	driver, err := db.NewGraphDriver(ctx, a.Log, db.GraphOptions{
		URL:         a.Config.BoltURL,
		Username:    a.Config.BoltUsername,
		Password:    a.Config.BoltPassword,
		MaxSessions: a.Config.GraphMaxSessions,
	}, db.StartupRetryConfig)
	if err != nil {
		relational.Close()
		return fmt.Errorf("connect graph store: %w", err)
	}
	graph := pool.NewGraph(driver, a.Config.BoltDomain, a.Config.GraphMaxSessions, a.Config.GraphAcquireTimeout)

	a.Pools = pool.NewManager(relational, graph)
	for _, id := range []pool.ID{pool.RelationalPool, pool.GraphPool} {
		if err := a.Pools.Ping(ctx, id); err != nil {
			return fmt.Errorf("lease from %s pool: %w", id, err)
		}
	}
	return nil
}

func (a *GatewayApp) connectServices(ctx context.Context) error {
	var resolver *discovery.Resolver
	if a.Config.ConsulAddr != "" {
		r, err := discovery.NewResolver(a.Config.ConsulAddr)
		if err != nil {
			return fmt.Errorf("create discovery client: %w", err)
		}
		resolver = r
	}

	resolveCtx, cancel := context.WithTimeout(ctx, constants.DefaultDiscoveryTimeout)
	defer cancel()

	authURL, err := discovery.ResolveOr(resolveCtx, resolver, a.Config.AuthURL, a.Config.AuthServiceName)
	if err != nil {
		return fmt.Errorf("resolve auth service: %w", err)
	}
	userURL, err := discovery.ResolveOr(resolveCtx, resolver, a.Config.UserURL, a.Config.UserServiceName)
	if err != nil {
		return fmt.Errorf("resolve user service: %w", err)
	}

	dial := func(url string) (*grpc.ClientConn, error) {
		return downstream.Dial(ctx, downstream.DialConfig{
			URL:         url,
			HealthCheck: a.Config.RPCHealthCheck,
			DialTimeout: constants.DefaultRPCDialTimeout,
			Logf:        a.Log.Infof,
		})
	}

	if a.AuthConn, err = dial(authURL); err != nil {
		return fmt.Errorf("dial auth service: %w", err)
	}
	if a.UserConn, err = dial(userURL); err != nil {
		return fmt.Errorf("dial user service: %w", err)
	}
	a.Log.Infof("downstream services: auth=%s user=%s", downstream.Target(authURL), downstream.Target(userURL))
	return nil
}

// ShutdownHooks closes RPC connections first, then the pools.
func (a *GatewayApp) ShutdownHooks() []server.ShutdownHook {
	return []server.ShutdownHook{
		func(ctx context.Context) error {
			a.Log.Infof("%s service: closing downstream connections and pools", serviceName)
			return a.Close(ctx)
		},
	}
}

func (a *GatewayApp) Close(ctx context.Context) error {
	var errs []error
	for _, conn := range []*grpc.ClientConn{a.AuthConn, a.UserConn} {
		if conn != nil {
			errs = append(errs, conn.Close())
		}
	}
	if a.Pools != nil {
		errs = append(errs, a.Pools.Close(ctx))
	}
	return errors.Join(errs...)
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
