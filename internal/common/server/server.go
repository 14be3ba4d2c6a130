package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

// ShutdownHook runs after in-flight requests have drained.
type ShutdownHook func(ctx context.Context) error

// StartWithGracefulShutdownAndHooks serves until SIGINT or SIGTERM.
func StartWithGracefulShutdownAndHooks(
	server *http.Server,
	ln net.Listener,
	log *logger.Logger,
	serviceName string,
	shutdownTimeout time.Duration,
	hooks []ShutdownHook,
) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	return Serve(ctx, server, ln, log, serviceName, shutdownTimeout, hooks)
}

// Serve accepts on ln until ctx is done, then stops accepting, waits for
// handlers to finish and runs hooks in order. A serve failure also triggers
// the hooks so resources are never leaked.
func Serve(
	ctx context.Context,
	server *http.Server,
	ln net.Listener,
	log *logger.Logger,
	serviceName string,
	shutdownTimeout time.Duration,
	hooks []ShutdownHook,
) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = constants.ShutdownTimeout
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("%s service listening on %s", serviceName, describe(ln))
		serveErr <- server.Serve(ln)
	}()

	var result error
	stopped := false
	select {
	case err := <-serveErr:
		stopped = true
		if !errors.Is(err, http.ErrServerClosed) {
			result = fmt.Errorf("%s service: serve: %w", serviceName, err)
			log.Errorf("%s service stopped serving: %v", serviceName, err)
		}
	case <-ctx.Done():
		log.Infof("shutting down %s service...", serviceName)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	server.SetKeepAlivesEnabled(false)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service forced to shutdown: %v", serviceName, err)
		result = errors.Join(result, err)
	} else {
		log.Infof("%s service drained", serviceName)
	}
	if !stopped {
		<-serveErr
	}

	if len(hooks) > 0 {
		log.Infof("%s service: executing shutdown hooks", serviceName)
	}
	for i, hook := range hooks {
		if err := hook(shutdownCtx); err != nil {
			log.Errorf("%s service: shutdown hook %d failed: %v", serviceName, i, err)
			result = errors.Join(result, err)
		}
	}

	if result == nil {
		log.Infof("%s service stopped gracefully", serviceName)
	}
	return result
}

// describe prefers a listener's own description so every bound socket is
// named, not just the first.
func describe(ln net.Listener) string {
	if s, ok := ln.(fmt.Stringer); ok {
		return s.String()
	}
	return ln.Addr().String()
}
