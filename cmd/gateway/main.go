package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/bootstrap"
	commonhttp "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/http"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/listener"
	srv "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewGatewayApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start gateway: %v\n", err)
		os.Exit(1)
	}
	log := app.Log
	cfg := app.Config

	mux := http.NewServeMux()
	mux.Handle("/", app.Handler)
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := commonhttp.NewStrictRateLimiter()
	finalHandler := rateLimiter.Middleware(commonhttp.BuildBaseHandler(log, mux))

	ln, err := listener.Listen(ctx, cfg.ListenAddrV4, cfg.ListenAddrV6)
	if err != nil {
		_ = app.Close(context.Background())
		log.Fatalf("failed to bind listeners: %v", err)
	}

	serverConfig := srv.DefaultServerConfig()
	serverConfig.ShutdownTimeout = cfg.ShutdownTimeout
	server := srv.NewServer(serverConfig, finalHandler)

	hooks := append([]srv.ShutdownHook{
		func(context.Context) error {
			rateLimiter.Stop()
			cancel()
			return nil
		},
	}, app.ShutdownHooks()...)

	if err := srv.StartWithGracefulShutdownAndHooks(server, ln, log, "user-http", serverConfig.ShutdownTimeout, hooks); err != nil {
		log.Errorf("gateway exited with error: %v", err)
		os.Exit(1)
	}
}
